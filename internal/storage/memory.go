package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// MemoryStore keeps the full document in process memory. It backs the
// in-memory runtime and serves as the mirror for the fallback decorator.
type MemoryStore struct {
	mu  sync.RWMutex
	doc *document
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: newDocument(), now: time.Now}
}

func (s *MemoryStore) write(fn func(d *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.doc); err != nil {
		return err
	}
	s.doc.touch(s.now())
	return nil
}

func (s *MemoryStore) SaveTask(_ context.Context, task model.Task) error {
	return s.write(func(d *document) error {
		d.upsertTask(task)
		return nil
	})
}

func (s *MemoryStore) Task(_ context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.doc.task(id)
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return task, nil
}

func (s *MemoryStore) Tasks(_ context.Context, section model.Section) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.tasksBySection(section), nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id string) error {
	return s.write(func(d *document) error {
		if !d.deleteTask(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MemoryStore) UpdateTaskStatus(_ context.Context, id string, status model.Status) error {
	return s.write(func(d *document) error {
		if !d.setTaskStatus(id, status) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MemoryStore) SaveRecurringTask(_ context.Context, task model.RecurringTask) error {
	return s.write(func(d *document) error {
		d.upsertRecurring(task)
		return nil
	})
}

func (s *MemoryStore) RecurringTask(_ context.Context, id string) (model.RecurringTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.doc.recurring(id)
	if !ok {
		return model.RecurringTask{}, ErrNotFound
	}
	return task, nil
}

func (s *MemoryStore) RecurringTasks(_ context.Context, section model.Section) ([]model.RecurringTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.recurringBySection(section), nil
}

func (s *MemoryStore) DeleteRecurringTask(_ context.Context, id string) error {
	return s.write(func(d *document) error {
		if !d.deleteRecurring(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MemoryStore) SaveSubGoal(_ context.Context, goal model.SubGoal) error {
	return s.write(func(d *document) error {
		d.upsertSubGoal(goal)
		return nil
	})
}

func (s *MemoryStore) SubGoals(_ context.Context, taskID string) ([]model.SubGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.subGoals(taskID), nil
}

func (s *MemoryStore) DeleteSubGoal(_ context.Context, id string) error {
	return s.write(func(d *document) error {
		if !d.deleteSubGoal(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MemoryStore) UpdateSubGoalStatus(_ context.Context, id string, status model.Status) error {
	return s.write(func(d *document) error {
		if !d.setSubGoalStatus(id, status) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MemoryStore) SaveBlogEntry(_ context.Context, entry model.BlogEntry) error {
	return s.write(func(d *document) error {
		d.upsertBlogEntry(entry)
		return nil
	})
}

func (s *MemoryStore) BlogEntry(_ context.Context, id string) (model.BlogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.doc.blogEntry(id)
	if !ok {
		return model.BlogEntry{}, ErrNotFound
	}
	return entry, nil
}

func (s *MemoryStore) BlogEntries(_ context.Context) ([]model.BlogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.BlogEntry(nil), s.doc.BlogEntries...), nil
}

func (s *MemoryStore) DeleteBlogEntry(_ context.Context, id string) error {
	return s.write(func(d *document) error {
		if !d.deleteBlogEntry(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MemoryStore) Categories(_ context.Context, section model.Section) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.categories(section), nil
}

func (s *MemoryStore) AddCategory(_ context.Context, section model.Section, name string) error {
	return s.write(func(d *document) error {
		d.addCategory(section, name)
		return nil
	})
}

func (s *MemoryStore) RemoveCategory(_ context.Context, section model.Section, name string) error {
	return s.write(func(d *document) error {
		if !d.removeCategory(section, name) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MemoryStore) SectionData(_ context.Context, section model.Section) (SectionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SectionData{
		Section:        section,
		Tasks:          s.doc.tasksBySection(section),
		RecurringTasks: s.doc.recurringBySection(section),
		Categories:     s.doc.categories(section),
	}, nil
}

func (s *MemoryStore) NotificationSettings(_ context.Context) (model.NotificationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc.Settings == nil {
		return model.DefaultNotificationSettings(), nil
	}
	out := make(model.NotificationSettings, len(s.doc.Settings))
	for section, cfg := range s.doc.Settings {
		out[section] = cfg
	}
	return out, nil
}

func (s *MemoryStore) SaveNotificationSettings(_ context.Context, settings model.NotificationSettings) error {
	return s.write(func(d *document) error {
		d.Settings = settings
		return nil
	})
}

func (s *MemoryStore) Close() error { return nil }
