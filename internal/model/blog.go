package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BlogEntry is a reading/learning item tracked through the blog section.
type BlogEntry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      BlogStatus `json:"status"`
	TargetDate  time.Time  `json:"targetDate"`
	Category    string     `json:"category,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (e BlogEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("model: blog entry id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("model: blog entry title is required")
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBlogStatus, e.Status)
	}
	if e.TargetDate.IsZero() {
		return errors.New("model: blog entry target date is required")
	}
	return nil
}
