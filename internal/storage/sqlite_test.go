package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

func setupSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "task-manage-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTask(id string) model.Task {
	return model.Task{
		ID:        id,
		Section:   model.SectionHousehold,
		Title:     "Water the plants",
		Status:    model.StatusTodo,
		DueDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Category:  "Garden",
		CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteTaskUpsertAndList(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	task := testTask("task-1")
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}

	got, err := store.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title || got.Section != model.SectionHousehold {
		t.Fatalf("unexpected task: %#v", got)
	}

	// Saving again with the same id replaces, not duplicates.
	task.Title = "Water the plants twice"
	task.Status = model.StatusInProgress
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("upsert task: %v", err)
	}
	list, err := store.Tasks(ctx, model.SectionHousehold)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Water the plants twice" {
		t.Fatalf("unexpected list after upsert: %#v", list)
	}

	if err := store.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := store.Task(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteSubGoalProgressCascade(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	task := testTask("task-progress")
	task.Section = model.SectionPersonal
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"sg-1", "sg-2", "sg-3", "sg-4"} {
		goal := model.SubGoal{ID: id, TaskID: task.ID, Title: "step", Status: model.StatusTodo, DueDate: due.AddDate(0, 0, i)}
		if err := store.SaveSubGoal(ctx, goal); err != nil {
			t.Fatalf("save sub-goal %s: %v", id, err)
		}
	}

	for _, id := range []string{"sg-1", "sg-2", "sg-3"} {
		if err := store.UpdateSubGoalStatus(ctx, id, model.StatusCompleted); err != nil {
			t.Fatalf("complete sub-goal %s: %v", id, err)
		}
	}

	got, err := store.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Progress != 75 {
		t.Fatalf("progress = %d, want 75", got.Progress)
	}
	if len(got.SubGoals) != 4 {
		t.Fatalf("expected 4 sub-goals, got %d", len(got.SubGoals))
	}
	for _, goal := range got.SubGoals {
		if goal.ID == "sg-1" && !goal.Completed {
			t.Fatal("completed flag not synced with status")
		}
	}
}

func TestSQLiteDeleteTaskCascadesSubGoals(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	task := testTask("task-cascade")
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}
	goal := model.SubGoal{
		ID: "sg-cascade", TaskID: task.ID, Title: "child",
		Status: model.StatusTodo, DueDate: task.DueDate,
	}
	if err := store.SaveSubGoal(ctx, goal); err != nil {
		t.Fatalf("save sub-goal: %v", err)
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

func TestSQLiteRecurringTaskRoundTrip(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	task := model.RecurringTask{
		ID:              "rec-1",
		Section:         model.SectionWork,
		Title:           "Weekly report",
		Status:          model.StatusInProgress,
		StartDate:       time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EndDate:         &end,
		RecurrenceValue: 1,
		RecurrenceUnit:  model.UnitWeeks,
		NextOccurrence:  time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		CreatedAt:       time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	}
	if err := store.SaveRecurringTask(ctx, task); err != nil {
		t.Fatalf("save recurring task: %v", err)
	}

	got, err := store.RecurringTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get recurring task: %v", err)
	}
	if got.RecurrenceUnit != model.UnitWeeks || got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Fatalf("unexpected recurring task: %#v", got)
	}

	list, err := store.RecurringTasks(ctx, model.SectionWork)
	if err != nil {
		t.Fatalf("list recurring tasks: %v", err)
	}
	if len(list) != 1 || list[0].ID != task.ID {
		t.Fatalf("unexpected recurring list: %#v", list)
	}
}

func TestSQLiteCategoryUniqueness(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.AddCategory(ctx, model.SectionHousehold, "Shopping"); err != nil {
			t.Fatalf("add category (attempt %d): %v", i+1, err)
		}
	}
	list, err := store.Categories(ctx, model.SectionHousehold)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one category, got %#v", list)
	}

	// Same name in a different section is a distinct category.
	if err := store.AddCategory(ctx, model.SectionWork, "Shopping"); err != nil {
		t.Fatalf("add category other section: %v", err)
	}
}

func TestSQLiteCategoryRemovalLeavesTasksAlone(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	if err := store.AddCategory(ctx, model.SectionHousehold, "Garden"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	task := testTask("task-cat")
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}

	if err := store.RemoveCategory(ctx, model.SectionHousehold, "Garden"); err != nil {
		t.Fatalf("remove category: %v", err)
	}
	got, err := store.Task(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Category != "Garden" {
		t.Fatalf("task category changed to %q after category removal", got.Category)
	}
}

func TestSQLiteNotificationSettingsRoundTrip(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	// No rows yet: defaults come back.
	settings, err := store.NotificationSettings(ctx)
	if err != nil {
		t.Fatalf("default settings: %v", err)
	}
	if !settings[model.SectionWork].Enabled {
		t.Fatal("default settings should enable every section")
	}

	settings[model.SectionHousehold] = model.SectionNotificationConfig{
		IntervalSetting: model.IntervalSetting{Enabled: true, Value: 30, Unit: model.UnitMinutes},
		Categories: map[string]model.IntervalSetting{
			"Shopping": {Enabled: true, Value: 2, Unit: model.UnitHours},
		},
	}
	if err := store.SaveNotificationSettings(ctx, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	got, err := store.NotificationSettings(ctx)
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	household := got[model.SectionHousehold]
	if household.Value != 30 || household.Unit != model.UnitMinutes {
		t.Fatalf("unexpected section config: %#v", household)
	}
	override, ok := household.Categories["Shopping"]
	if !ok || !override.Enabled || override.Value != 2 {
		t.Fatalf("unexpected category override: %#v", override)
	}
}

func TestSQLiteSectionData(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	if err := store.SaveTask(ctx, testTask("task-agg")); err != nil {
		t.Fatalf("save task: %v", err)
	}
	if err := store.AddCategory(ctx, model.SectionHousehold, "Garden"); err != nil {
		t.Fatalf("add category: %v", err)
	}

	data, err := store.SectionData(ctx, model.SectionHousehold)
	if err != nil {
		t.Fatalf("section data: %v", err)
	}
	if len(data.Tasks) != 1 || len(data.Categories) != 1 || len(data.RecurringTasks) != 0 {
		t.Fatalf("unexpected aggregate: %#v", data)
	}
}
