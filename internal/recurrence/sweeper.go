package recurrence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// SweepStore is the slice of the storage contract the sweeper needs.
type SweepStore interface {
	RecurringTasks(ctx context.Context, section model.Section) ([]model.RecurringTask, error)
	SaveRecurringTask(ctx context.Context, task model.RecurringTask) error
}

// Sweeper periodically walks the full recurring-task set and activates tasks
// whose start date has arrived. It only flips status; next occurrences are
// recomputed on save so past-due occurrences stay visible to due detection.
type Sweeper struct {
	store  SweepStore
	logger *slog.Logger
	cron   *cron.Cron
	now    func() time.Time
}

func NewSweeper(store SweepStore, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		logger: logger,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start registers the periodic sweep and runs one pass immediately.
func (s *Sweeper) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("recurrence: sweep interval must be positive, got %s", interval)
	}
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("recurrence: register sweep: %w", err)
	}
	s.cron.Start()
	s.RunOnce(context.Background())
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs a single sweep across all sections. Failures are logged
// per section so one section cannot halt the others.
func (s *Sweeper) RunOnce(ctx context.Context) {
	now := s.now()
	for _, section := range model.Sections() {
		if err := s.sweepSection(ctx, section, now); err != nil {
			s.logger.Error("recurrence sweep failed", "section", section, "error", err)
		}
	}
}

func (s *Sweeper) sweepSection(ctx context.Context, section model.Section, now time.Time) error {
	tasks, err := s.store.RecurringTasks(ctx, section)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if !Activate(&task, now) {
			continue
		}
		task.UpdatedAt = now
		if err := s.store.SaveRecurringTask(ctx, task); err != nil {
			s.logger.Error("recurrence sweep save failed", "section", section, "task", task.ID, "error", err)
		}
	}
	return nil
}
