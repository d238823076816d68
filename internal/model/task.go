package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Task is a dated item within one section. Category is free text drawn from
// the section's category list; a dangling category name is allowed.
type Task struct {
	ID          string    `json:"id"`
	Section     Section   `json:"section"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	Category    string    `json:"category,omitempty"`
	SubGoals    []SubGoal `json:"subGoals,omitempty"`
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Section.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSection, t.Section)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.DueDate.IsZero() {
		return errors.New("model: task due date is required")
	}
	return nil
}

// SubGoal is a child checklist item owned by a task. Completed mirrors
// Status == completed and is kept in sync on every status write.
type SubGoal struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	Category    string    `json:"category,omitempty"`
	Completed   bool      `json:"completed"`
}

func (g SubGoal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return errors.New("model: sub-goal id is required")
	}
	if strings.TrimSpace(g.TaskID) == "" {
		return errors.New("model: sub-goal task id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return errors.New("model: sub-goal title is required")
	}
	if !g.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, g.Status)
	}
	if g.Completed != (g.Status == StatusCompleted) {
		return errors.New("model: sub-goal completed flag out of sync with status")
	}
	return nil
}

// ComputeProgress returns round(100 * completed / total) for the given
// sub-goals, or 0 when there are none.
func ComputeProgress(goals []SubGoal) int {
	if len(goals) == 0 {
		return 0
	}
	done := 0
	for _, g := range goals {
		if g.Status == StatusCompleted {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(goals))))
}
