package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// FallbackStore decorates a backend with the lenient failure policy: a
// backend I/O error on a write is logged and masked, with the mutation
// applied to an in-memory mirror so the UI keeps seeing its own writes.
// Reads prefer the backend, copy what they find into the mirror, and serve
// the mirror when the backend fails, so data that predates this process
// survives a backend outage too. ErrNotFound is a domain answer, not a
// failure, and always passes through.
type FallbackStore struct {
	backend Store
	mirror  *MemoryStore
	logger  *slog.Logger
}

func NewFallbackStore(backend Store, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{
		backend: backend,
		mirror:  NewMemoryStore(),
		logger:  logger,
	}
}

func (s *FallbackStore) write(op string, mirror func() error, backend func() error) error {
	// Mirror first so the fallback state is current whether or not the
	// backend accepts the write.
	if err := mirror(); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("mirror write failed", "op", op, "error", err)
	}
	err := backend()
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	s.logger.Error("backend write failed, keeping in-memory state", "op", op, "error", err)
	return nil
}

func (s *FallbackStore) read(op string, backend, hydrate, mirror func() error) error {
	err := backend()
	if err == nil {
		if herr := hydrate(); herr != nil {
			s.logger.Warn("mirror refresh failed", "op", op, "error", herr)
		}
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	s.logger.Error("backend read failed, serving in-memory state", "op", op, "error", err)
	return mirror()
}

func (s *FallbackStore) SaveTask(ctx context.Context, task model.Task) error {
	return s.write("save_task",
		func() error { return s.mirror.SaveTask(ctx, task) },
		func() error { return s.backend.SaveTask(ctx, task) })
}

func (s *FallbackStore) Task(ctx context.Context, id string) (model.Task, error) {
	var out model.Task
	err := s.read("get_task",
		func() (e error) { out, e = s.backend.Task(ctx, id); return },
		func() error { return s.mirror.SaveTask(ctx, out) },
		func() (e error) { out, e = s.mirror.Task(ctx, id); return })
	return out, err
}

func (s *FallbackStore) Tasks(ctx context.Context, section model.Section) ([]model.Task, error) {
	var out []model.Task
	err := s.read("list_tasks",
		func() (e error) { out, e = s.backend.Tasks(ctx, section); return },
		func() error { return s.mirrorTasks(ctx, out) },
		func() (e error) { out, e = s.mirror.Tasks(ctx, section); return })
	return out, err
}

func (s *FallbackStore) DeleteTask(ctx context.Context, id string) error {
	return s.write("delete_task",
		func() error { return s.mirror.DeleteTask(ctx, id) },
		func() error { return s.backend.DeleteTask(ctx, id) })
}

func (s *FallbackStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	return s.write("update_task_status",
		func() error { return s.mirror.UpdateTaskStatus(ctx, id, status) },
		func() error { return s.backend.UpdateTaskStatus(ctx, id, status) })
}

func (s *FallbackStore) SaveRecurringTask(ctx context.Context, task model.RecurringTask) error {
	return s.write("save_recurring_task",
		func() error { return s.mirror.SaveRecurringTask(ctx, task) },
		func() error { return s.backend.SaveRecurringTask(ctx, task) })
}

func (s *FallbackStore) RecurringTask(ctx context.Context, id string) (model.RecurringTask, error) {
	var out model.RecurringTask
	err := s.read("get_recurring_task",
		func() (e error) { out, e = s.backend.RecurringTask(ctx, id); return },
		func() error { return s.mirror.SaveRecurringTask(ctx, out) },
		func() (e error) { out, e = s.mirror.RecurringTask(ctx, id); return })
	return out, err
}

func (s *FallbackStore) RecurringTasks(ctx context.Context, section model.Section) ([]model.RecurringTask, error) {
	var out []model.RecurringTask
	err := s.read("list_recurring_tasks",
		func() (e error) { out, e = s.backend.RecurringTasks(ctx, section); return },
		func() error { return s.mirrorRecurringTasks(ctx, out) },
		func() (e error) { out, e = s.mirror.RecurringTasks(ctx, section); return })
	return out, err
}

func (s *FallbackStore) DeleteRecurringTask(ctx context.Context, id string) error {
	return s.write("delete_recurring_task",
		func() error { return s.mirror.DeleteRecurringTask(ctx, id) },
		func() error { return s.backend.DeleteRecurringTask(ctx, id) })
}

func (s *FallbackStore) SaveSubGoal(ctx context.Context, goal model.SubGoal) error {
	return s.write("save_sub_goal",
		func() error { return s.mirror.SaveSubGoal(ctx, goal) },
		func() error { return s.backend.SaveSubGoal(ctx, goal) })
}

func (s *FallbackStore) SubGoals(ctx context.Context, taskID string) ([]model.SubGoal, error) {
	var out []model.SubGoal
	err := s.read("list_sub_goals",
		func() (e error) { out, e = s.backend.SubGoals(ctx, taskID); return },
		func() error { return s.mirrorSubGoals(ctx, out) },
		func() (e error) { out, e = s.mirror.SubGoals(ctx, taskID); return })
	return out, err
}

func (s *FallbackStore) DeleteSubGoal(ctx context.Context, id string) error {
	return s.write("delete_sub_goal",
		func() error { return s.mirror.DeleteSubGoal(ctx, id) },
		func() error { return s.backend.DeleteSubGoal(ctx, id) })
}

func (s *FallbackStore) UpdateSubGoalStatus(ctx context.Context, id string, status model.Status) error {
	return s.write("update_sub_goal_status",
		func() error { return s.mirror.UpdateSubGoalStatus(ctx, id, status) },
		func() error { return s.backend.UpdateSubGoalStatus(ctx, id, status) })
}

func (s *FallbackStore) SaveBlogEntry(ctx context.Context, entry model.BlogEntry) error {
	return s.write("save_blog_entry",
		func() error { return s.mirror.SaveBlogEntry(ctx, entry) },
		func() error { return s.backend.SaveBlogEntry(ctx, entry) })
}

func (s *FallbackStore) BlogEntry(ctx context.Context, id string) (model.BlogEntry, error) {
	var out model.BlogEntry
	err := s.read("get_blog_entry",
		func() (e error) { out, e = s.backend.BlogEntry(ctx, id); return },
		func() error { return s.mirror.SaveBlogEntry(ctx, out) },
		func() (e error) { out, e = s.mirror.BlogEntry(ctx, id); return })
	return out, err
}

func (s *FallbackStore) BlogEntries(ctx context.Context) ([]model.BlogEntry, error) {
	var out []model.BlogEntry
	err := s.read("list_blog_entries",
		func() (e error) { out, e = s.backend.BlogEntries(ctx); return },
		func() error { return s.mirrorBlogEntries(ctx, out) },
		func() (e error) { out, e = s.mirror.BlogEntries(ctx); return })
	return out, err
}

func (s *FallbackStore) DeleteBlogEntry(ctx context.Context, id string) error {
	return s.write("delete_blog_entry",
		func() error { return s.mirror.DeleteBlogEntry(ctx, id) },
		func() error { return s.backend.DeleteBlogEntry(ctx, id) })
}

func (s *FallbackStore) Categories(ctx context.Context, section model.Section) ([]string, error) {
	var out []string
	err := s.read("list_categories",
		func() (e error) { out, e = s.backend.Categories(ctx, section); return },
		func() error { return s.mirrorCategories(ctx, section, out) },
		func() (e error) { out, e = s.mirror.Categories(ctx, section); return })
	return out, err
}

func (s *FallbackStore) AddCategory(ctx context.Context, section model.Section, name string) error {
	return s.write("add_category",
		func() error { return s.mirror.AddCategory(ctx, section, name) },
		func() error { return s.backend.AddCategory(ctx, section, name) })
}

func (s *FallbackStore) RemoveCategory(ctx context.Context, section model.Section, name string) error {
	return s.write("remove_category",
		func() error { return s.mirror.RemoveCategory(ctx, section, name) },
		func() error { return s.backend.RemoveCategory(ctx, section, name) })
}

func (s *FallbackStore) SectionData(ctx context.Context, section model.Section) (SectionData, error) {
	var out SectionData
	err := s.read("section_data",
		func() (e error) { out, e = s.backend.SectionData(ctx, section); return },
		func() error { return s.mirrorSectionData(ctx, section, out) },
		func() (e error) { out, e = s.mirror.SectionData(ctx, section); return })
	return out, err
}

func (s *FallbackStore) NotificationSettings(ctx context.Context) (model.NotificationSettings, error) {
	var out model.NotificationSettings
	err := s.read("get_notification_settings",
		func() (e error) { out, e = s.backend.NotificationSettings(ctx); return },
		func() error { return s.mirror.SaveNotificationSettings(ctx, out) },
		func() (e error) { out, e = s.mirror.NotificationSettings(ctx); return })
	return out, err
}

func (s *FallbackStore) SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings) error {
	return s.write("save_notification_settings",
		func() error { return s.mirror.SaveNotificationSettings(ctx, settings) },
		func() error { return s.backend.SaveNotificationSettings(ctx, settings) })
}

func (s *FallbackStore) mirrorTasks(ctx context.Context, tasks []model.Task) error {
	for _, t := range tasks {
		if err := s.mirror.SaveTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *FallbackStore) mirrorRecurringTasks(ctx context.Context, tasks []model.RecurringTask) error {
	for _, t := range tasks {
		if err := s.mirror.SaveRecurringTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *FallbackStore) mirrorSubGoals(ctx context.Context, goals []model.SubGoal) error {
	for _, g := range goals {
		if err := s.mirror.SaveSubGoal(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func (s *FallbackStore) mirrorBlogEntries(ctx context.Context, entries []model.BlogEntry) error {
	for _, e := range entries {
		if err := s.mirror.SaveBlogEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *FallbackStore) mirrorCategories(ctx context.Context, section model.Section, names []string) error {
	for _, name := range names {
		if err := s.mirror.AddCategory(ctx, section, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *FallbackStore) mirrorSectionData(ctx context.Context, section model.Section, data SectionData) error {
	if err := s.mirrorTasks(ctx, data.Tasks); err != nil {
		return err
	}
	if err := s.mirrorRecurringTasks(ctx, data.RecurringTasks); err != nil {
		return err
	}
	return s.mirrorCategories(ctx, section, data.Categories)
}

func (s *FallbackStore) Close() error {
	return s.backend.Close()
}
