package storage

import (
	"context"
	"errors"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// SectionData is the aggregate a UI needs to render one section.
type SectionData struct {
	Section        model.Section         `json:"section"`
	Tasks          []model.Task          `json:"tasks"`
	RecurringTasks []model.RecurringTask `json:"recurringTasks"`
	Categories     []string              `json:"categories"`
}

// Store is the persistence contract shared by all backends. Writes are
// upsert-by-identifier: insert if absent, full replace otherwise. Partial
// patches are applied by the caller before the upsert.
type Store interface {
	SaveTask(ctx context.Context, task model.Task) error
	Task(ctx context.Context, id string) (model.Task, error)
	Tasks(ctx context.Context, section model.Section) ([]model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	UpdateTaskStatus(ctx context.Context, id string, status model.Status) error

	SaveRecurringTask(ctx context.Context, task model.RecurringTask) error
	RecurringTask(ctx context.Context, id string) (model.RecurringTask, error)
	RecurringTasks(ctx context.Context, section model.Section) ([]model.RecurringTask, error)
	DeleteRecurringTask(ctx context.Context, id string) error

	SaveSubGoal(ctx context.Context, goal model.SubGoal) error
	SubGoals(ctx context.Context, taskID string) ([]model.SubGoal, error)
	DeleteSubGoal(ctx context.Context, id string) error
	UpdateSubGoalStatus(ctx context.Context, id string, status model.Status) error

	SaveBlogEntry(ctx context.Context, entry model.BlogEntry) error
	BlogEntry(ctx context.Context, id string) (model.BlogEntry, error)
	BlogEntries(ctx context.Context) ([]model.BlogEntry, error)
	DeleteBlogEntry(ctx context.Context, id string) error

	Categories(ctx context.Context, section model.Section) ([]string, error)
	AddCategory(ctx context.Context, section model.Section, name string) error
	RemoveCategory(ctx context.Context, section model.Section, name string) error

	SectionData(ctx context.Context, section model.Section) (SectionData, error)

	NotificationSettings(ctx context.Context) (model.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings) error

	Close() error
}
