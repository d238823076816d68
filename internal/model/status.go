package model

import "errors"

var (
	ErrInvalidStatus     = errors.New("model: invalid task status")
	ErrInvalidBlogStatus = errors.New("model: invalid blog status")
	ErrInvalidUnit       = errors.New("model: invalid recurrence unit")
)

// Status is the lifecycle state shared by tasks, recurring tasks and
// sub-goals.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// BlogStatus tracks a learning entry through its reading lifecycle.
type BlogStatus string

const (
	BlogToRead    BlogStatus = "to-read"
	BlogReading   BlogStatus = "reading"
	BlogPracticed BlogStatus = "practiced"
	BlogExpert    BlogStatus = "expert"
)

func (s BlogStatus) IsValid() bool {
	switch s {
	case BlogToRead, BlogReading, BlogPracticed, BlogExpert:
		return true
	default:
		return false
	}
}

// Advance returns the next status in the reading progression. Expert is
// terminal. Direct status writes are not constrained to this order; only the
// advance action is monotonic.
func (s BlogStatus) Advance() BlogStatus {
	switch s {
	case BlogToRead:
		return BlogReading
	case BlogReading:
		return BlogPracticed
	case BlogPracticed:
		return BlogExpert
	default:
		return s
	}
}

// RecurrenceUnit is the unit of a recurrence or notification interval.
type RecurrenceUnit string

const (
	UnitMinutes RecurrenceUnit = "minutes"
	UnitHours   RecurrenceUnit = "hours"
	UnitDays    RecurrenceUnit = "days"
	UnitWeeks   RecurrenceUnit = "weeks"
	UnitMonths  RecurrenceUnit = "months"
)

func (u RecurrenceUnit) IsValid() bool {
	switch u {
	case UnitMinutes, UnitHours, UnitDays, UnitWeeks, UnitMonths:
		return true
	default:
		return false
	}
}
