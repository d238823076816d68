// Package due selects the tasks, recurring tasks and sub-goals whose dates
// have arrived, scoped to a section or a single category within it.
package due

import (
	"fmt"
	"strings"
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
	"github.com/rajshekhar-verma01/task-manage/internal/recurrence"
)

// Kind tags where a due item came from.
type Kind string

const (
	KindTask      Kind = "task"
	KindRecurring Kind = "recurring"
	KindSubGoal   Kind = "sub-goal"
)

// Item is one due entry ready for display or notification text.
type Item struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Title    string        `json:"title"`
	Section  model.Section `json:"section"`
	Category string        `json:"category,omitempty"`
	Due      time.Time     `json:"due"`
}

// Scope selects what a check covers. An empty Category means a section-level
// check; a set Category restricts the check to that category and disables
// override suppression.
type Scope struct {
	Section  model.Section
	Category string
}

// Snapshot is the full in-memory task tree the detector works on, plus the
// active notification settings.
type Snapshot struct {
	Tasks          map[model.Section][]model.Task
	RecurringTasks map[model.Section][]model.RecurringTask
	SubGoals       map[string][]model.SubGoal
	Settings       model.NotificationSettings
}

// Detect returns every non-completed item in scope whose relevant date is on
// or before today. Tasks and sub-goals compare their due date, recurring
// tasks their next occurrence; time of day is ignored.
//
// During a section-level check, items whose category carries its own enabled
// override are left out: the category timer reports them on its own schedule,
// so including them here would notify twice.
func Detect(snap Snapshot, scope Scope, now time.Time) []Item {
	items := make([]Item, 0)

	for _, task := range snap.Tasks[scope.Section] {
		if task.Status == model.StatusCompleted {
			continue
		}
		if scope.Section == model.SectionPersonal {
			items = append(items, subGoalItems(snap, scope, task, now)...)
		}
		if !inScope(snap, scope, task.Category) {
			continue
		}
		if onOrBefore(task.DueDate, now) {
			items = append(items, Item{
				ID:       task.ID,
				Kind:     KindTask,
				Title:    task.Title,
				Section:  scope.Section,
				Category: task.Category,
				Due:      task.DueDate,
			})
		}
	}

	for _, task := range snap.RecurringTasks[scope.Section] {
		if task.Status == model.StatusCompleted {
			continue
		}
		// A recurring task past its end date has finished its schedule.
		if task.EndDate != nil && recurrence.DateOnly(*task.EndDate).Before(recurrence.DateOnly(now)) {
			continue
		}
		if !inScope(snap, scope, task.Category) {
			continue
		}
		if onOrBefore(task.NextOccurrence, now) {
			items = append(items, Item{
				ID:       task.ID,
				Kind:     KindRecurring,
				Title:    task.Title,
				Section:  scope.Section,
				Category: task.Category,
				Due:      task.NextOccurrence,
			})
		}
	}

	return items
}

// FormatBody renders notification body text: up to three bulleted titles,
// then a truncation line naming how many items were left out.
func FormatBody(items []Item) string {
	const maxShown = 3
	lines := make([]string, 0, maxShown+1)
	for i, item := range items {
		if i == maxShown {
			break
		}
		lines = append(lines, fmt.Sprintf("• %s", item.Title))
	}
	if extra := len(items) - maxShown; extra > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more", extra))
	}
	return strings.Join(lines, "\n")
}

// subGoalItems flattens a personal-development task's sub-goals into
// standalone due items with a "<parent> - <sub-goal>" display title.
func subGoalItems(snap Snapshot, scope Scope, parent model.Task, now time.Time) []Item {
	out := make([]Item, 0)
	for _, goal := range snap.SubGoals[parent.ID] {
		if goal.Status == model.StatusCompleted {
			continue
		}
		if !inScope(snap, scope, goal.Category) {
			continue
		}
		if !onOrBefore(goal.DueDate, now) {
			continue
		}
		out = append(out, Item{
			ID:       goal.ID,
			Kind:     KindSubGoal,
			Title:    fmt.Sprintf("%s - %s", parent.Title, goal.Title),
			Section:  scope.Section,
			Category: goal.Category,
			Due:      goal.DueDate,
		})
	}
	return out
}

// inScope applies the category filter: section-level checks suppress
// categories with their own enabled override, category-level checks match
// only their category.
func inScope(snap Snapshot, scope Scope, category string) bool {
	if scope.Category != "" {
		return category == scope.Category
	}
	override, ok := snap.Settings[scope.Section].Categories[category]
	return !ok || !override.Enabled
}

// onOrBefore reports whether the date part of d has arrived.
func onOrBefore(d, now time.Time) bool {
	return !recurrence.DateOnly(d).After(recurrence.DateOnly(now))
}
