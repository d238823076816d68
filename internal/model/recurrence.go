package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RecurringTask repeats from a start date at a fixed interval instead of
// carrying a single due date. NextOccurrence is derived and recomputed on
// every save.
type RecurringTask struct {
	ID              string         `json:"id"`
	Section         Section        `json:"section"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Status          Status         `json:"status"`
	Category        string         `json:"category,omitempty"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         *time.Time     `json:"endDate,omitempty"`
	RecurrenceValue int            `json:"recurrenceValue"`
	RecurrenceUnit  RecurrenceUnit `json:"recurrenceUnit"`
	NextOccurrence  time.Time      `json:"nextOccurrence"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (t RecurringTask) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: recurring task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: recurring task title is required")
	}
	if !t.Section.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSection, t.Section)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.StartDate.IsZero() {
		return errors.New("model: recurring task start date is required")
	}
	if !t.RecurrenceUnit.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidUnit, t.RecurrenceUnit)
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return errors.New("model: recurring task end date before start date")
	}
	return nil
}
