// Package recurrence computes occurrence dates and status transitions for
// recurring tasks.
package recurrence

import (
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// NextOccurrence returns start + value × unit using calendar arithmetic.
// A non-positive value is coerced to 1 rather than rejected. Month steps use
// AddDate, so day-of-month overflow normalizes forward (Jan 31 + 1 month
// lands in early March).
func NextOccurrence(start time.Time, value int, unit model.RecurrenceUnit) time.Time {
	if value < 1 {
		value = 1
	}
	switch unit {
	case model.UnitMinutes:
		return start.Add(time.Duration(value) * time.Minute)
	case model.UnitHours:
		return start.Add(time.Duration(value) * time.Hour)
	case model.UnitDays:
		return start.AddDate(0, 0, value)
	case model.UnitWeeks:
		return start.AddDate(0, 0, 7*value)
	case model.UnitMonths:
		return start.AddDate(0, value, 0)
	default:
		// Unknown units are rejected by RecurringTask.Validate; anything
		// that skips validation still gets day arithmetic, not a zero time.
		return start.AddDate(0, 0, value)
	}
}

// InitialStatus decides the status of a freshly created recurring task:
// in-progress once the start date has arrived, todo while it is still in the
// future. Date-only comparison.
func InitialStatus(start, now time.Time) model.Status {
	if !DateOnly(start).After(DateOnly(now)) {
		return model.StatusInProgress
	}
	return model.StatusTodo
}

// Activate flips a todo recurring task to in-progress once its start date has
// passed. It never regresses an in-progress or completed task, and leaves a
// task alone once its end date is behind us. Reports whether the task
// changed.
func Activate(task *model.RecurringTask, now time.Time) bool {
	if task.Status != model.StatusTodo {
		return false
	}
	if task.EndDate != nil && DateOnly(*task.EndDate).Before(DateOnly(now)) {
		return false
	}
	if DateOnly(task.StartDate).After(DateOnly(now)) {
		return false
	}
	task.Status = model.StatusInProgress
	return true
}

// DateOnly truncates to local midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
