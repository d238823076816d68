package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

func TestFileStoreRoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tracker.json")

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	task := testTask("task-file")
	if err := first.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}

	// A freshly constructed store over the same file sees the write.
	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	got, err := second.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title || got.Category != task.Category || !got.DueDate.Equal(task.DueDate) {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Fatalf("created at changed across round trip: %s", got.CreatedAt)
	}
}

func TestFileStoreTaskMoveBetweenSections(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "tracker.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	task := testTask("task-move")
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}
	task.Section = model.SectionWork
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("move task: %v", err)
	}

	household, err := store.Tasks(ctx, model.SectionHousehold)
	if err != nil {
		t.Fatalf("list household: %v", err)
	}
	if len(household) != 0 {
		t.Fatalf("task left behind in old section: %#v", household)
	}
	work, err := store.Tasks(ctx, model.SectionWork)
	if err != nil {
		t.Fatalf("list work: %v", err)
	}
	if len(work) != 1 || work[0].ID != task.ID {
		t.Fatalf("task missing from new section: %#v", work)
	}
}

func TestFileStoreSubGoalStatusSyncAndProgress(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "tracker.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	task := testTask("task-goals")
	task.Section = model.SectionPersonal
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"sg-a", "sg-b"} {
		goal := model.SubGoal{ID: id, TaskID: task.ID, Title: "step", Status: model.StatusTodo, DueDate: due}
		if err := store.SaveSubGoal(ctx, goal); err != nil {
			t.Fatalf("save sub-goal: %v", err)
		}
	}

	if err := store.UpdateSubGoalStatus(ctx, "sg-a", model.StatusCompleted); err != nil {
		t.Fatalf("update sub-goal status: %v", err)
	}

	got, err := store.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Progress != 50 {
		t.Fatalf("progress = %d, want 50", got.Progress)
	}
	goals, err := store.SubGoals(ctx, task.ID)
	if err != nil {
		t.Fatalf("list sub-goals: %v", err)
	}
	for _, goal := range goals {
		if goal.ID == "sg-a" && (!goal.Completed || goal.Status != model.StatusCompleted) {
			t.Fatalf("completed flag out of sync: %#v", goal)
		}
	}
}

func TestFileStoreCategoryRemovalLeavesTasksAlone(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "tracker.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	if err := store.AddCategory(ctx, model.SectionHousehold, "Garden"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := store.SaveTask(ctx, testTask("task-cat")); err != nil {
		t.Fatalf("save task: %v", err)
	}
	if err := store.RemoveCategory(ctx, model.SectionHousehold, "Garden"); err != nil {
		t.Fatalf("remove category: %v", err)
	}

	got, err := store.Task(ctx, "task-cat")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Category != "Garden" {
		t.Fatalf("task category changed to %q after category removal", got.Category)
	}
	if _, err := store.Task(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreDeleteTaskCascadesSubGoals(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	task := testTask("task-mem")
	task.SubGoals = []model.SubGoal{
		{ID: "sg-m", TaskID: "task-mem", Title: "child", Status: model.StatusTodo, DueDate: task.DueDate},
	}
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}
	if err := store.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	goals, err := store.SubGoals(ctx, task.ID)
	if err != nil {
		t.Fatalf("list sub-goals: %v", err)
	}
	if len(goals) != 0 {
		t.Fatalf("sub-goals survived task deletion: %#v", goals)
	}
}

func TestFallbackStoreMasksBackendWriteFailures(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{MemoryStore: NewMemoryStore()}
	store := NewFallbackStore(flaky, testLogger())

	flaky.fail = true
	task := testTask("task-fallback")
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("write should be masked, got %v", err)
	}

	// The backend is down for reads too; the mirror serves the write.
	got, err := store.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("read after fallback: %v", err)
	}
	if got.Title != task.Title {
		t.Fatalf("mirror served wrong task: %#v", got)
	}
}

func TestFallbackStoreServesPreexistingDataAfterBackendFailure(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{MemoryStore: NewMemoryStore()}

	// The task exists in the backend before the fallback wrapper ever sees
	// a write, as after a process restart over a populated database.
	task := testTask("task-preexisting")
	if err := flaky.MemoryStore.SaveTask(ctx, task); err != nil {
		t.Fatalf("seed backend: %v", err)
	}

	store := NewFallbackStore(flaky, testLogger())
	if _, err := store.Task(ctx, task.ID); err != nil {
		t.Fatalf("read while healthy: %v", err)
	}

	flaky.fail = true
	got, err := store.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("read after backend failure: %v", err)
	}
	if got.Title != task.Title {
		t.Fatalf("mirror served wrong task: %#v", got)
	}
	tasks, err := store.Tasks(ctx, task.Section)
	if err != nil {
		t.Fatalf("list after backend failure: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("mirror list mismatch: %#v", tasks)
	}
}

func TestFallbackStoreHydratesMirrorFromListReads(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{MemoryStore: NewMemoryStore()}
	task := testTask("task-listed")
	if err := flaky.MemoryStore.SaveTask(ctx, task); err != nil {
		t.Fatalf("seed backend: %v", err)
	}

	store := NewFallbackStore(flaky, testLogger())
	if _, err := store.Tasks(ctx, task.Section); err != nil {
		t.Fatalf("list while healthy: %v", err)
	}

	flaky.fail = true
	got, err := store.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("get after backend failure: %v", err)
	}
	if got.ID != task.ID {
		t.Fatalf("mirror served wrong task: %#v", got)
	}
}

func TestFallbackStorePassesNotFoundThrough(t *testing.T) {
	ctx := context.Background()
	store := NewFallbackStore(NewMemoryStore(), testLogger())
	if _, err := store.Task(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteTask(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from delete, got %v", err)
	}
}
