// Package service implements the application operations: entity CRUD with
// validation and server-assigned fields, due-task checks, and notification
// scheduling glued together over a storage backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rajshekhar-verma01/task-manage/internal/due"
	"github.com/rajshekhar-verma01/task-manage/internal/model"
	"github.com/rajshekhar-verma01/task-manage/internal/notify"
	"github.com/rajshekhar-verma01/task-manage/internal/recurrence"
	"github.com/rajshekhar-verma01/task-manage/internal/storage"
)

// ValidationError carries the field-level complaints a rejected write
// produced. The HTTP layer maps it to a 400 with an error-list payload.
type ValidationError struct {
	Errors []string `json:"errors"`
}

func (e *ValidationError) Error() string {
	return "service: " + strings.Join(e.Errors, "; ")
}

func invalid(err error) error {
	return &ValidationError{Errors: []string{err.Error()}}
}

// Service is the operation surface shared by the HTTP server and the
// notification scheduler.
type Service struct {
	store    storage.Store
	notifier notify.Notifier
	sched    *notify.Scheduler
	clock    notify.Clock
	logger   *slog.Logger
	newID    func() string
}

func New(store storage.Store, notifier notify.Notifier, clock notify.Clock, logger *slog.Logger) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		newID:    uuid.NewString,
	}
	s.sched = notify.NewScheduler(clock, s.notifyScope, logger)
	return s
}

// Start loads the persisted notification settings and builds the timer set.
func (s *Service) Start(ctx context.Context) error {
	settings, err := s.store.NotificationSettings(ctx)
	if err != nil {
		return fmt.Errorf("service: load notification settings: %w", err)
	}
	s.sched.Rebuild(settings)
	return nil
}

// Stop tears down the notification timers.
func (s *Service) Stop() { s.sched.Stop() }

// Suspend and Resume forward system sleep transitions to the scheduler.
func (s *Service) Suspend() { s.sched.Suspend() }
func (s *Service) Resume()  { s.sched.Resume() }

// stamp assigns server-side timestamps. CreatedAt survives updates and
// UpdatedAt never moves backwards across it.
func (s *Service) stamp(createdAt time.Time) (created, updated time.Time) {
	now := s.clock.Now()
	if createdAt.IsZero() {
		return now, now
	}
	if now.Before(createdAt) {
		now = createdAt
	}
	return createdAt, now
}

// --- tasks ---

func (s *Service) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	if task.ID == "" {
		task.ID = s.newID()
	}
	if task.Status == "" {
		task.Status = model.StatusTodo
	}
	task.CreatedAt, task.UpdatedAt = s.stamp(time.Time{})
	for i := range task.SubGoals {
		if task.SubGoals[i].ID == "" {
			task.SubGoals[i].ID = s.newID()
		}
		task.SubGoals[i].TaskID = task.ID
		task.SubGoals[i].Completed = task.SubGoals[i].Status == model.StatusCompleted
	}
	task.Progress = model.ComputeProgress(task.SubGoals)
	if err := task.Validate(); err != nil {
		return model.Task{}, invalid(err)
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// TaskPatch is a partial task update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *model.Status  `json:"status"`
	DueDate     *time.Time     `json:"dueDate"`
	Category    *string        `json:"category"`
	Section     *model.Section `json:"section"`
}

func (s *Service) PatchTask(ctx context.Context, id string, patch TaskPatch) (model.Task, error) {
	task, err := s.store.Task(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.Section != nil {
		task.Section = *patch.Section
	}
	_, task.UpdatedAt = s.stamp(task.CreatedAt)
	if err := task.Validate(); err != nil {
		return model.Task{}, invalid(err)
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *Service) Task(ctx context.Context, id string) (model.Task, error) {
	return s.store.Task(ctx, id)
}

func (s *Service) Tasks(ctx context.Context, section model.Section) ([]model.Task, error) {
	if !section.IsValid() {
		return nil, invalid(fmt.Errorf("%w: %q", model.ErrInvalidSection, section))
	}
	return s.store.Tasks(ctx, section)
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.store.DeleteTask(ctx, id)
}

func (s *Service) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	if !status.IsValid() {
		return invalid(fmt.Errorf("%w: %q", model.ErrInvalidStatus, status))
	}
	return s.store.UpdateTaskStatus(ctx, id, status)
}

// --- recurring tasks ---

// CreateRecurringTask assigns the initial status from the start date rather
// than trusting the caller, and derives the first next occurrence.
func (s *Service) CreateRecurringTask(ctx context.Context, task model.RecurringTask) (model.RecurringTask, error) {
	if task.ID == "" {
		task.ID = s.newID()
	}
	if task.RecurrenceValue < 1 {
		task.RecurrenceValue = 1
	}
	now := s.clock.Now()
	task.Status = recurrence.InitialStatus(task.StartDate, now)
	task.NextOccurrence = recurrence.NextOccurrence(task.StartDate, task.RecurrenceValue, task.RecurrenceUnit)
	task.CreatedAt, task.UpdatedAt = s.stamp(time.Time{})
	if err := task.Validate(); err != nil {
		return model.RecurringTask{}, invalid(err)
	}
	if err := s.store.SaveRecurringTask(ctx, task); err != nil {
		return model.RecurringTask{}, err
	}
	return task, nil
}

// RecurringTaskPatch is a partial recurring-task update.
type RecurringTaskPatch struct {
	Title           *string               `json:"title"`
	Description     *string               `json:"description"`
	Status          *model.Status         `json:"status"`
	Category        *string               `json:"category"`
	StartDate       *time.Time            `json:"startDate"`
	EndDate         *time.Time            `json:"endDate"`
	RecurrenceValue *int                  `json:"recurrenceValue"`
	RecurrenceUnit  *model.RecurrenceUnit `json:"recurrenceUnit"`
}

// PatchRecurringTask applies the non-nil fields and recomputes the next
// occurrence, which is derived state and never caller-supplied.
func (s *Service) PatchRecurringTask(ctx context.Context, id string, patch RecurringTaskPatch) (model.RecurringTask, error) {
	task, err := s.store.RecurringTask(ctx, id)
	if err != nil {
		return model.RecurringTask{}, err
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.StartDate != nil {
		task.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		task.EndDate = patch.EndDate
	}
	if patch.RecurrenceValue != nil {
		task.RecurrenceValue = *patch.RecurrenceValue
	}
	if patch.RecurrenceUnit != nil {
		task.RecurrenceUnit = *patch.RecurrenceUnit
	}
	if task.RecurrenceValue < 1 {
		task.RecurrenceValue = 1
	}
	task.NextOccurrence = recurrence.NextOccurrence(task.StartDate, task.RecurrenceValue, task.RecurrenceUnit)
	_, task.UpdatedAt = s.stamp(task.CreatedAt)
	if err := task.Validate(); err != nil {
		return model.RecurringTask{}, invalid(err)
	}
	if err := s.store.SaveRecurringTask(ctx, task); err != nil {
		return model.RecurringTask{}, err
	}
	return task, nil
}

func (s *Service) RecurringTasks(ctx context.Context, section model.Section) ([]model.RecurringTask, error) {
	if !section.IsValid() {
		return nil, invalid(fmt.Errorf("%w: %q", model.ErrInvalidSection, section))
	}
	return s.store.RecurringTasks(ctx, section)
}

func (s *Service) DeleteRecurringTask(ctx context.Context, id string) error {
	return s.store.DeleteRecurringTask(ctx, id)
}

// --- sub-goals ---

func (s *Service) AddSubGoal(ctx context.Context, goal model.SubGoal) (model.SubGoal, error) {
	if goal.ID == "" {
		goal.ID = s.newID()
	}
	if goal.Status == "" {
		goal.Status = model.StatusTodo
	}
	goal.Completed = goal.Status == model.StatusCompleted
	if err := goal.Validate(); err != nil {
		return model.SubGoal{}, invalid(err)
	}
	if _, err := s.store.Task(ctx, goal.TaskID); err != nil {
		return model.SubGoal{}, err
	}
	if err := s.store.SaveSubGoal(ctx, goal); err != nil {
		return model.SubGoal{}, err
	}
	return goal, nil
}

func (s *Service) SubGoals(ctx context.Context, taskID string) ([]model.SubGoal, error) {
	return s.store.SubGoals(ctx, taskID)
}

func (s *Service) DeleteSubGoal(ctx context.Context, id string) error {
	return s.store.DeleteSubGoal(ctx, id)
}

func (s *Service) UpdateSubGoalStatus(ctx context.Context, id string, status model.Status) error {
	if !status.IsValid() {
		return invalid(fmt.Errorf("%w: %q", model.ErrInvalidStatus, status))
	}
	return s.store.UpdateSubGoalStatus(ctx, id, status)
}

// --- blog entries ---

func (s *Service) CreateBlogEntry(ctx context.Context, entry model.BlogEntry) (model.BlogEntry, error) {
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	if entry.Status == "" {
		entry.Status = model.BlogToRead
	}
	entry.CreatedAt, entry.UpdatedAt = s.stamp(time.Time{})
	if err := entry.Validate(); err != nil {
		return model.BlogEntry{}, invalid(err)
	}
	if err := s.store.SaveBlogEntry(ctx, entry); err != nil {
		return model.BlogEntry{}, err
	}
	return entry, nil
}

// BlogEntryPatch is a partial blog-entry update.
type BlogEntryPatch struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Status      *model.BlogStatus `json:"status"`
	TargetDate  *time.Time        `json:"targetDate"`
	Category    *string           `json:"category"`
}

func (s *Service) PatchBlogEntry(ctx context.Context, id string, patch BlogEntryPatch) (model.BlogEntry, error) {
	entry, err := s.store.BlogEntry(ctx, id)
	if err != nil {
		return model.BlogEntry{}, err
	}
	if patch.Title != nil {
		entry.Title = *patch.Title
	}
	if patch.Description != nil {
		entry.Description = *patch.Description
	}
	if patch.Status != nil {
		entry.Status = *patch.Status
	}
	if patch.TargetDate != nil {
		entry.TargetDate = *patch.TargetDate
	}
	if patch.Category != nil {
		entry.Category = *patch.Category
	}
	_, entry.UpdatedAt = s.stamp(entry.CreatedAt)
	if err := entry.Validate(); err != nil {
		return model.BlogEntry{}, invalid(err)
	}
	if err := s.store.SaveBlogEntry(ctx, entry); err != nil {
		return model.BlogEntry{}, err
	}
	return entry, nil
}

// AdvanceBlogEntry moves an entry one step along the reading progression.
// Advancing an expert entry is a no-op.
func (s *Service) AdvanceBlogEntry(ctx context.Context, id string) (model.BlogEntry, error) {
	entry, err := s.store.BlogEntry(ctx, id)
	if err != nil {
		return model.BlogEntry{}, err
	}
	next := entry.Status.Advance()
	if next == entry.Status {
		return entry, nil
	}
	entry.Status = next
	_, entry.UpdatedAt = s.stamp(entry.CreatedAt)
	if err := s.store.SaveBlogEntry(ctx, entry); err != nil {
		return model.BlogEntry{}, err
	}
	return entry, nil
}

func (s *Service) BlogEntries(ctx context.Context) ([]model.BlogEntry, error) {
	return s.store.BlogEntries(ctx)
}

func (s *Service) DeleteBlogEntry(ctx context.Context, id string) error {
	return s.store.DeleteBlogEntry(ctx, id)
}

// --- categories ---

func (s *Service) Categories(ctx context.Context, section model.Section) ([]string, error) {
	if !section.IsValid() {
		return nil, invalid(fmt.Errorf("%w: %q", model.ErrInvalidSection, section))
	}
	return s.store.Categories(ctx, section)
}

func (s *Service) AddCategory(ctx context.Context, section model.Section, name string) error {
	if !section.IsValid() {
		return invalid(fmt.Errorf("%w: %q", model.ErrInvalidSection, section))
	}
	if strings.TrimSpace(name) == "" {
		return invalid(errors.New("category name is required"))
	}
	return s.store.AddCategory(ctx, section, name)
}

// RemoveCategory deletes the name from the section's list only. Tasks that
// reference the name keep it unchanged.
func (s *Service) RemoveCategory(ctx context.Context, section model.Section, name string) error {
	return s.store.RemoveCategory(ctx, section, name)
}

func (s *Service) SectionData(ctx context.Context, section model.Section) (storage.SectionData, error) {
	if !section.IsValid() {
		return storage.SectionData{}, invalid(fmt.Errorf("%w: %q", model.ErrInvalidSection, section))
	}
	return s.store.SectionData(ctx, section)
}

// --- notifications ---

func (s *Service) NotificationSettings(ctx context.Context) (model.NotificationSettings, error) {
	return s.store.NotificationSettings(ctx)
}

// SaveNotificationSettings persists the full settings object and rebuilds the
// timer set against it. Every interval, section-level and category override
// alike, must carry a recognized unit.
func (s *Service) SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings) error {
	if err := settings.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.SaveNotificationSettings(ctx, settings); err != nil {
		return err
	}
	s.sched.Rebuild(settings)
	return nil
}

// CheckDueNow runs one due-task check for the scope and returns the items.
func (s *Service) CheckDueNow(ctx context.Context, scope due.Scope) ([]due.Item, error) {
	if !scope.Section.IsValid() {
		return nil, invalid(fmt.Errorf("%w: %q", model.ErrInvalidSection, scope.Section))
	}
	snap, err := s.snapshot(ctx, scope.Section)
	if err != nil {
		return nil, err
	}
	return due.Detect(snap, scope, s.clock.Now()), nil
}

// ShowNotification delivers an ad hoc notification on behalf of a caller.
func (s *Service) ShowNotification(title, body string) error {
	return s.notifier.Notify(title, body)
}

// notifyScope is the scheduler callback: run the due check for the scope and
// notify when anything came back. Errors are logged, never fatal to the
// timer.
func (s *Service) notifyScope(scope due.Scope) {
	items, err := s.CheckDueNow(context.Background(), scope)
	if err != nil {
		s.logger.Error("due check failed",
			"section", scope.Section, "category", scope.Category, "error", err)
		return
	}
	if len(items) == 0 {
		return
	}
	title := fmt.Sprintf("Due tasks: %s", scope.Section)
	if scope.Category != "" {
		title = fmt.Sprintf("Due tasks: %s / %s", scope.Section, scope.Category)
	}
	if err := s.notifier.Notify(title, due.FormatBody(items)); err != nil {
		s.logger.Error("notification delivery failed",
			"section", scope.Section, "error", err)
	}
}

// snapshot assembles the detector input for one section. Sub-goals ride along
// on the tasks the stores return, so no extra reads are needed.
func (s *Service) snapshot(ctx context.Context, section model.Section) (due.Snapshot, error) {
	tasks, err := s.store.Tasks(ctx, section)
	if err != nil {
		return due.Snapshot{}, err
	}
	recurring, err := s.store.RecurringTasks(ctx, section)
	if err != nil {
		return due.Snapshot{}, err
	}
	settings, err := s.store.NotificationSettings(ctx)
	if err != nil {
		return due.Snapshot{}, err
	}

	snap := due.Snapshot{
		Tasks:          map[model.Section][]model.Task{section: tasks},
		RecurringTasks: map[model.Section][]model.RecurringTask{section: recurring},
		SubGoals:       make(map[string][]model.SubGoal),
		Settings:       settings,
	}
	for _, task := range tasks {
		if len(task.SubGoals) > 0 {
			snap.SubGoals[task.ID] = task.SubGoals
		}
	}
	return snap, nil
}
