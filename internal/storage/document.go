package storage

import (
	"time"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

// document is the logical dataset shared by the memory and file backends.
// Its shape matches the persisted JSON file: tasks and recurring tasks keyed
// by section, sub-goals keyed by owning task, flat blog entries, category
// names per section.
type document struct {
	Tasks          map[model.Section][]model.Task          `json:"tasks"`
	RecurringTasks map[model.Section][]model.RecurringTask `json:"recurringTasks"`
	BlogEntries    []model.BlogEntry                       `json:"blogEntries"`
	Categories     map[model.Section][]string              `json:"categories"`
	SubGoals       map[string][]model.SubGoal              `json:"subGoals"`
	Settings       model.NotificationSettings              `json:"notificationSettings,omitempty"`
	Metadata       documentMetadata                        `json:"metadata"`
}

type documentMetadata struct {
	LastModified time.Time `json:"lastModified"`
}

func newDocument() *document {
	d := &document{}
	d.normalize()
	return d
}

// normalize replaces nil maps after a JSON load so mutations never hit a nil
// map.
func (d *document) normalize() {
	if d.Tasks == nil {
		d.Tasks = make(map[model.Section][]model.Task)
	}
	if d.RecurringTasks == nil {
		d.RecurringTasks = make(map[model.Section][]model.RecurringTask)
	}
	if d.Categories == nil {
		d.Categories = make(map[model.Section][]string)
	}
	if d.SubGoals == nil {
		d.SubGoals = make(map[string][]model.SubGoal)
	}
	if d.BlogEntries == nil {
		d.BlogEntries = []model.BlogEntry{}
	}
}

func (d *document) touch(now time.Time) {
	d.Metadata.LastModified = now
}

// upsertTask inserts or fully replaces a task. A task that moved sections is
// removed from its old list. Embedded sub-goals, when present, replace the
// stored set for that task; a nil slice leaves stored sub-goals alone.
func (d *document) upsertTask(task model.Task) {
	goals := task.SubGoals
	task.SubGoals = nil
	for section, list := range d.Tasks {
		d.Tasks[section] = removeTask(list, task.ID)
	}
	d.Tasks[task.Section] = append(d.Tasks[task.Section], task)
	if goals != nil {
		d.SubGoals[task.ID] = append([]model.SubGoal(nil), goals...)
		d.refreshProgress(task.ID)
	}
}

func (d *document) task(id string) (model.Task, bool) {
	for _, list := range d.Tasks {
		for _, t := range list {
			if t.ID == id {
				t.SubGoals = append([]model.SubGoal(nil), d.SubGoals[id]...)
				return t, true
			}
		}
	}
	return model.Task{}, false
}

func (d *document) tasksBySection(section model.Section) []model.Task {
	list := d.Tasks[section]
	out := make([]model.Task, len(list))
	for i, t := range list {
		t.SubGoals = append([]model.SubGoal(nil), d.SubGoals[t.ID]...)
		out[i] = t
	}
	return out
}

// deleteTask removes a task and cascades to its sub-goals.
func (d *document) deleteTask(id string) bool {
	found := false
	for section, list := range d.Tasks {
		trimmed := removeTask(list, id)
		if len(trimmed) != len(list) {
			found = true
			d.Tasks[section] = trimmed
		}
	}
	if found {
		delete(d.SubGoals, id)
	}
	return found
}

func (d *document) setTaskStatus(id string, status model.Status) bool {
	for section, list := range d.Tasks {
		for i := range list {
			if list[i].ID == id {
				list[i].Status = status
				d.Tasks[section] = list
				return true
			}
		}
	}
	return false
}

func (d *document) upsertRecurring(task model.RecurringTask) {
	for section, list := range d.RecurringTasks {
		d.RecurringTasks[section] = removeRecurring(list, task.ID)
	}
	d.RecurringTasks[task.Section] = append(d.RecurringTasks[task.Section], task)
}

func (d *document) recurring(id string) (model.RecurringTask, bool) {
	for _, list := range d.RecurringTasks {
		for _, t := range list {
			if t.ID == id {
				return t, true
			}
		}
	}
	return model.RecurringTask{}, false
}

func (d *document) recurringBySection(section model.Section) []model.RecurringTask {
	return append([]model.RecurringTask(nil), d.RecurringTasks[section]...)
}

func (d *document) deleteRecurring(id string) bool {
	found := false
	for section, list := range d.RecurringTasks {
		trimmed := removeRecurring(list, id)
		if len(trimmed) != len(list) {
			found = true
			d.RecurringTasks[section] = trimmed
		}
	}
	return found
}

func (d *document) upsertSubGoal(goal model.SubGoal) {
	list := d.SubGoals[goal.TaskID]
	replaced := false
	for i := range list {
		if list[i].ID == goal.ID {
			list[i] = goal
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, goal)
	}
	d.SubGoals[goal.TaskID] = list
	d.refreshProgress(goal.TaskID)
}

func (d *document) subGoals(taskID string) []model.SubGoal {
	return append([]model.SubGoal(nil), d.SubGoals[taskID]...)
}

func (d *document) deleteSubGoal(id string) bool {
	for taskID, list := range d.SubGoals {
		for i := range list {
			if list[i].ID == id {
				d.SubGoals[taskID] = append(list[:i:i], list[i+1:]...)
				d.refreshProgress(taskID)
				return true
			}
		}
	}
	return false
}

// setSubGoalStatus updates status, keeps the completed flag in sync, and
// recomputes the parent task's progress.
func (d *document) setSubGoalStatus(id string, status model.Status) bool {
	for taskID, list := range d.SubGoals {
		for i := range list {
			if list[i].ID == id {
				list[i].Status = status
				list[i].Completed = status == model.StatusCompleted
				d.SubGoals[taskID] = list
				d.refreshProgress(taskID)
				return true
			}
		}
	}
	return false
}

func (d *document) refreshProgress(taskID string) {
	for section, list := range d.Tasks {
		for i := range list {
			if list[i].ID == taskID {
				list[i].Progress = model.ComputeProgress(d.SubGoals[taskID])
				d.Tasks[section] = list
				return
			}
		}
	}
}

func (d *document) upsertBlogEntry(entry model.BlogEntry) {
	for i := range d.BlogEntries {
		if d.BlogEntries[i].ID == entry.ID {
			d.BlogEntries[i] = entry
			return
		}
	}
	d.BlogEntries = append(d.BlogEntries, entry)
}

func (d *document) blogEntry(id string) (model.BlogEntry, bool) {
	for _, e := range d.BlogEntries {
		if e.ID == id {
			return e, true
		}
	}
	return model.BlogEntry{}, false
}

func (d *document) deleteBlogEntry(id string) bool {
	for i := range d.BlogEntries {
		if d.BlogEntries[i].ID == id {
			d.BlogEntries = append(d.BlogEntries[:i:i], d.BlogEntries[i+1:]...)
			return true
		}
	}
	return false
}

// addCategory enforces (section, name) uniqueness by ignoring duplicates.
func (d *document) addCategory(section model.Section, name string) {
	for _, existing := range d.Categories[section] {
		if existing == name {
			return
		}
	}
	d.Categories[section] = append(d.Categories[section], name)
}

// removeCategory drops the name from the section list. Tasks carrying the
// name keep it untouched.
func (d *document) removeCategory(section model.Section, name string) bool {
	list := d.Categories[section]
	for i, existing := range list {
		if existing == name {
			d.Categories[section] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (d *document) categories(section model.Section) []string {
	return append([]string(nil), d.Categories[section]...)
}

func removeTask(list []model.Task, id string) []model.Task {
	for i := range list {
		if list[i].ID == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func removeRecurring(list []model.RecurringTask, id string) []model.RecurringTask {
	for i := range list {
		if list[i].ID == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
