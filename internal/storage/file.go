package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// FileStore persists the document as a single JSON file. No caching: every
// operation locks the file, reads the whole document, and writes it back on
// mutation. The file is the single source of truth across restarts with
// last-writer-wins semantics.
type FileStore struct {
	path string
	now  func() time.Time
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data directory: %w", err)
	}
	return &FileStore{path: path, now: time.Now}, nil
}

// withLock runs fn against the decoded document under an exclusive flock.
// When fn reports dirty the document is written back in full.
func (s *FileStore) withLock(fn func(d *document) (dirty bool, err error)) error {
	file, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", s.path, err)
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("storage: lock %s: %w", s.path, err)
	}
	defer syscall.Flock(int(file.Fd()), syscall.LOCK_UN)

	doc, err := readDocument(file)
	if err != nil {
		return err
	}

	dirty, err := fn(doc)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	doc.touch(s.now())
	return writeDocument(file, doc)
}

func readDocument(file *os.File) (*document, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("storage: stat: %w", err)
	}
	if info.Size() == 0 {
		return newDocument(), nil
	}
	data := make([]byte, info.Size())
	if _, err := file.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("storage: read: %w", err)
	}
	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("storage: decode document: %w", err)
	}
	doc.normalize()
	return doc, nil
}

func writeDocument(file *os.File, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode document: %w", err)
	}
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("storage: truncate: %w", err)
	}
	if _, err := file.WriteAt(data, 0); err != nil {
		return fmt.Errorf("storage: write: %w", err)
	}
	return nil
}

func (s *FileStore) view(fn func(d *document) error) error {
	return s.withLock(func(d *document) (bool, error) { return false, fn(d) })
}

func (s *FileStore) update(fn func(d *document) error) error {
	return s.withLock(func(d *document) (bool, error) { return true, fn(d) })
}

func (s *FileStore) SaveTask(_ context.Context, task model.Task) error {
	return s.update(func(d *document) error {
		d.upsertTask(task)
		return nil
	})
}

func (s *FileStore) Task(_ context.Context, id string) (model.Task, error) {
	var out model.Task
	err := s.view(func(d *document) error {
		task, ok := d.task(id)
		if !ok {
			return ErrNotFound
		}
		out = task
		return nil
	})
	return out, err
}

func (s *FileStore) Tasks(_ context.Context, section model.Section) ([]model.Task, error) {
	var out []model.Task
	err := s.view(func(d *document) error {
		out = d.tasksBySection(section)
		return nil
	})
	return out, err
}

func (s *FileStore) DeleteTask(_ context.Context, id string) error {
	return s.update(func(d *document) error {
		if !d.deleteTask(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) UpdateTaskStatus(_ context.Context, id string, status model.Status) error {
	return s.update(func(d *document) error {
		if !d.setTaskStatus(id, status) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) SaveRecurringTask(_ context.Context, task model.RecurringTask) error {
	return s.update(func(d *document) error {
		d.upsertRecurring(task)
		return nil
	})
}

func (s *FileStore) RecurringTask(_ context.Context, id string) (model.RecurringTask, error) {
	var out model.RecurringTask
	err := s.view(func(d *document) error {
		task, ok := d.recurring(id)
		if !ok {
			return ErrNotFound
		}
		out = task
		return nil
	})
	return out, err
}

func (s *FileStore) RecurringTasks(_ context.Context, section model.Section) ([]model.RecurringTask, error) {
	var out []model.RecurringTask
	err := s.view(func(d *document) error {
		out = d.recurringBySection(section)
		return nil
	})
	return out, err
}

func (s *FileStore) DeleteRecurringTask(_ context.Context, id string) error {
	return s.update(func(d *document) error {
		if !d.deleteRecurring(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) SaveSubGoal(_ context.Context, goal model.SubGoal) error {
	return s.update(func(d *document) error {
		d.upsertSubGoal(goal)
		return nil
	})
}

func (s *FileStore) SubGoals(_ context.Context, taskID string) ([]model.SubGoal, error) {
	var out []model.SubGoal
	err := s.view(func(d *document) error {
		out = d.subGoals(taskID)
		return nil
	})
	return out, err
}

func (s *FileStore) DeleteSubGoal(_ context.Context, id string) error {
	return s.update(func(d *document) error {
		if !d.deleteSubGoal(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) UpdateSubGoalStatus(_ context.Context, id string, status model.Status) error {
	return s.update(func(d *document) error {
		if !d.setSubGoalStatus(id, status) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) SaveBlogEntry(_ context.Context, entry model.BlogEntry) error {
	return s.update(func(d *document) error {
		d.upsertBlogEntry(entry)
		return nil
	})
}

func (s *FileStore) BlogEntry(_ context.Context, id string) (model.BlogEntry, error) {
	var out model.BlogEntry
	err := s.view(func(d *document) error {
		entry, ok := d.blogEntry(id)
		if !ok {
			return ErrNotFound
		}
		out = entry
		return nil
	})
	return out, err
}

func (s *FileStore) BlogEntries(_ context.Context) ([]model.BlogEntry, error) {
	var out []model.BlogEntry
	err := s.view(func(d *document) error {
		out = append([]model.BlogEntry(nil), d.BlogEntries...)
		return nil
	})
	return out, err
}

func (s *FileStore) DeleteBlogEntry(_ context.Context, id string) error {
	return s.update(func(d *document) error {
		if !d.deleteBlogEntry(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) Categories(_ context.Context, section model.Section) ([]string, error) {
	var out []string
	err := s.view(func(d *document) error {
		out = d.categories(section)
		return nil
	})
	return out, err
}

func (s *FileStore) AddCategory(_ context.Context, section model.Section, name string) error {
	return s.update(func(d *document) error {
		d.addCategory(section, name)
		return nil
	})
}

func (s *FileStore) RemoveCategory(_ context.Context, section model.Section, name string) error {
	return s.update(func(d *document) error {
		if !d.removeCategory(section, name) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *FileStore) SectionData(_ context.Context, section model.Section) (SectionData, error) {
	var out SectionData
	err := s.view(func(d *document) error {
		out = SectionData{
			Section:        section,
			Tasks:          d.tasksBySection(section),
			RecurringTasks: d.recurringBySection(section),
			Categories:     d.categories(section),
		}
		return nil
	})
	return out, err
}

func (s *FileStore) NotificationSettings(_ context.Context) (model.NotificationSettings, error) {
	var out model.NotificationSettings
	err := s.view(func(d *document) error {
		if d.Settings == nil {
			out = model.DefaultNotificationSettings()
			return nil
		}
		out = make(model.NotificationSettings, len(d.Settings))
		for section, cfg := range d.Settings {
			out[section] = cfg
		}
		return nil
	})
	return out, err
}

func (s *FileStore) SaveNotificationSettings(_ context.Context, settings model.NotificationSettings) error {
	return s.update(func(d *document) error {
		d.Settings = settings
		return nil
	})
}

func (s *FileStore) Close() error { return nil }
