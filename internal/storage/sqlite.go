package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rajshekhar-verma01/task-manage/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteStore is the relational backend. Timestamps are stored as RFC3339
// text; writes are upserts keyed on the entity id.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLite opens the database file, applies migrations and returns a ready
// store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveTask(ctx context.Context, task model.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, section, title, description, status, due_date, category, progress, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			section = excluded.section, title = excluded.title, description = excluded.description,
			status = excluded.status, due_date = excluded.due_date, category = excluded.category,
			progress = excluded.progress, updated_at = excluded.updated_at`,
		task.ID, task.Section, task.Title, task.Description, task.Status,
		mustTime(task.DueDate), task.Category, task.Progress, mustTime(task.CreatedAt), mustTime(task.UpdatedAt),
	)
	if err != nil {
		return err
	}

	// A nil slice leaves stored sub-goals alone; a non-nil slice replaces
	// the full set.
	if task.SubGoals != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sub_goals WHERE task_id = ?`, task.ID); err != nil {
			return err
		}
		for _, goal := range task.SubGoals {
			if err := insertSubGoal(ctx, tx, goal); err != nil {
				return err
			}
		}
		if err := refreshTaskProgress(ctx, tx, task.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Task(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, section, title, description, status, due_date, category, progress, created_at, updated_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	goals, err := s.SubGoals(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	task.SubGoals = goals
	return task, nil
}

func (s *SQLiteStore) Tasks(ctx context.Context, section model.Section) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, section, title, description, status, due_date, category, progress, created_at, updated_at
		FROM tasks WHERE section = ? ORDER BY due_date ASC, created_at ASC`, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		goals, goalErr := s.SubGoals(ctx, out[i].ID)
		if goalErr != nil {
			return nil, goalErr
		}
		out[i].SubGoals = goals
	}
	return out, nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	// Sub-goals go with the task via ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) SaveRecurringTask(ctx context.Context, task model.RecurringTask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_tasks (id, section, title, description, status, category, start_date, end_date,
			recurrence_value, recurrence_unit, next_occurrence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			section = excluded.section, title = excluded.title, description = excluded.description,
			status = excluded.status, category = excluded.category, start_date = excluded.start_date,
			end_date = excluded.end_date, recurrence_value = excluded.recurrence_value,
			recurrence_unit = excluded.recurrence_unit, next_occurrence = excluded.next_occurrence,
			updated_at = excluded.updated_at`,
		task.ID, task.Section, task.Title, task.Description, task.Status, task.Category,
		mustTime(task.StartDate), nullTime(task.EndDate), task.RecurrenceValue, task.RecurrenceUnit,
		mustTime(task.NextOccurrence), mustTime(task.CreatedAt), mustTime(task.UpdatedAt),
	)
	return err
}

func (s *SQLiteStore) RecurringTask(ctx context.Context, id string) (model.RecurringTask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, section, title, description, status, category, start_date, end_date,
			recurrence_value, recurrence_unit, next_occurrence, created_at, updated_at
		FROM recurring_tasks WHERE id = ?`, id)
	task, err := scanRecurringTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RecurringTask{}, ErrNotFound
		}
		return model.RecurringTask{}, err
	}
	return task, nil
}

func (s *SQLiteStore) RecurringTasks(ctx context.Context, section model.Section) ([]model.RecurringTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, section, title, description, status, category, start_date, end_date,
			recurrence_value, recurrence_unit, next_occurrence, created_at, updated_at
		FROM recurring_tasks WHERE section = ? ORDER BY next_occurrence ASC`, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.RecurringTask, 0)
	for rows.Next() {
		task, scanErr := scanRecurringTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteRecurringTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) SaveSubGoal(ctx context.Context, goal model.SubGoal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertSubGoal(ctx, tx, goal); err != nil {
		return err
	}
	if err := refreshTaskProgress(ctx, tx, goal.TaskID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SubGoals(ctx context.Context, taskID string) ([]model.SubGoal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, title, description, status, due_date, category, completed
		FROM sub_goals WHERE task_id = ? ORDER BY due_date ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SubGoal, 0)
	for rows.Next() {
		goal, scanErr := scanSubGoal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, goal)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteSubGoal(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var taskID string
	if err := tx.QueryRowContext(ctx, `SELECT task_id FROM sub_goals WHERE id = ?`, id).Scan(&taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sub_goals WHERE id = ?`, id); err != nil {
		return err
	}
	if err := refreshTaskProgress(ctx, tx, taskID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) UpdateSubGoalStatus(ctx context.Context, id string, status model.Status) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE sub_goals SET status = ?, completed = ? WHERE id = ?`,
		status, boolInt(status == model.StatusCompleted), id)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}

	var taskID string
	if err := tx.QueryRowContext(ctx, `SELECT task_id FROM sub_goals WHERE id = ?`, id).Scan(&taskID); err != nil {
		return err
	}
	if err := refreshTaskProgress(ctx, tx, taskID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveBlogEntry(ctx context.Context, entry model.BlogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blog_entries (id, title, description, status, target_date, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, description = excluded.description, status = excluded.status,
			target_date = excluded.target_date, category = excluded.category, updated_at = excluded.updated_at`,
		entry.ID, entry.Title, entry.Description, entry.Status,
		mustTime(entry.TargetDate), entry.Category, mustTime(entry.CreatedAt), mustTime(entry.UpdatedAt),
	)
	return err
}

func (s *SQLiteStore) BlogEntry(ctx context.Context, id string) (model.BlogEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, target_date, category, created_at, updated_at
		FROM blog_entries WHERE id = ?`, id)
	entry, err := scanBlogEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BlogEntry{}, ErrNotFound
		}
		return model.BlogEntry{}, err
	}
	return entry, nil
}

func (s *SQLiteStore) BlogEntries(ctx context.Context) ([]model.BlogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, target_date, category, created_at, updated_at
		FROM blog_entries ORDER BY target_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BlogEntry, 0)
	for rows.Next() {
		entry, scanErr := scanBlogEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteBlogEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) Categories(ctx context.Context, section model.Section) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories WHERE section = ? ORDER BY name ASC`, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddCategory(ctx context.Context, section model.Section, name string) error {
	// (section, name) is unique; re-adding is a no-op.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (section, name) VALUES (?, ?) ON CONFLICT(section, name) DO NOTHING`,
		section, name)
	return err
}

func (s *SQLiteStore) RemoveCategory(ctx context.Context, section model.Section, name string) error {
	// Tasks referencing the name keep it; only the list entry goes away.
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE section = ? AND name = ?`, section, name)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) SectionData(ctx context.Context, section model.Section) (SectionData, error) {
	tasks, err := s.Tasks(ctx, section)
	if err != nil {
		return SectionData{}, err
	}
	recurring, err := s.RecurringTasks(ctx, section)
	if err != nil {
		return SectionData{}, err
	}
	categories, err := s.Categories(ctx, section)
	if err != nil {
		return SectionData{}, err
	}
	return SectionData{
		Section:        section,
		Tasks:          tasks,
		RecurringTasks: recurring,
		Categories:     categories,
	}, nil
}

func (s *SQLiteStore) NotificationSettings(ctx context.Context) (model.NotificationSettings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT section, config FROM notification_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(model.NotificationSettings)
	for rows.Next() {
		var section model.Section
		var raw string
		if err := rows.Scan(&section, &raw); err != nil {
			return nil, err
		}
		var cfg model.SectionNotificationConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, fmt.Errorf("decode notification config for %s: %w", section, err)
		}
		out[section] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return model.DefaultNotificationSettings(), nil
	}
	return out, nil
}

func (s *SQLiteStore) SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notification_settings`); err != nil {
		return err
	}
	for section, cfg := range settings {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode notification config for %s: %w", section, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notification_settings (section, config) VALUES (?, ?)`, section, string(raw)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertSubGoal(ctx context.Context, tx *sql.Tx, goal model.SubGoal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sub_goals (id, task_id, title, description, status, due_date, category, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id, title = excluded.title, description = excluded.description,
			status = excluded.status, due_date = excluded.due_date, category = excluded.category,
			completed = excluded.completed`,
		goal.ID, goal.TaskID, goal.Title, goal.Description, goal.Status,
		mustTime(goal.DueDate), goal.Category, boolInt(goal.Completed),
	)
	return err
}

func refreshTaskProgress(ctx context.Context, tx *sql.Tx, taskID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tasks SET progress = COALESCE((
			SELECT CAST(ROUND(100.0 * SUM(completed) / COUNT(*)) AS INTEGER)
			FROM sub_goals WHERE task_id = ?
		), 0) WHERE id = ?`, taskID, taskID)
	return err
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var due, created, updated string
	if err := s.Scan(&out.ID, &out.Section, &out.Title, &out.Description, &out.Status,
		&due, &out.Category, &out.Progress, &created, &updated); err != nil {
		return model.Task{}, err
	}
	var err error
	if out.DueDate, err = parseRequiredTime(due); err != nil {
		return model.Task{}, err
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return model.Task{}, err
	}
	if out.UpdatedAt, err = parseRequiredTime(updated); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func scanRecurringTask(s scanner) (model.RecurringTask, error) {
	var out model.RecurringTask
	var start, next, created, updated string
	var end sql.NullString
	if err := s.Scan(&out.ID, &out.Section, &out.Title, &out.Description, &out.Status, &out.Category,
		&start, &end, &out.RecurrenceValue, &out.RecurrenceUnit, &next, &created, &updated); err != nil {
		return model.RecurringTask{}, err
	}
	var err error
	if out.StartDate, err = parseRequiredTime(start); err != nil {
		return model.RecurringTask{}, err
	}
	if out.EndDate, err = parseNullableTime(end); err != nil {
		return model.RecurringTask{}, err
	}
	if out.NextOccurrence, err = parseRequiredTime(next); err != nil {
		return model.RecurringTask{}, err
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return model.RecurringTask{}, err
	}
	if out.UpdatedAt, err = parseRequiredTime(updated); err != nil {
		return model.RecurringTask{}, err
	}
	return out, nil
}

func scanSubGoal(s scanner) (model.SubGoal, error) {
	var out model.SubGoal
	var due string
	var completed int
	if err := s.Scan(&out.ID, &out.TaskID, &out.Title, &out.Description, &out.Status,
		&due, &out.Category, &completed); err != nil {
		return model.SubGoal{}, err
	}
	var err error
	if out.DueDate, err = parseRequiredTime(due); err != nil {
		return model.SubGoal{}, err
	}
	out.Completed = completed == 1
	return out, nil
}

func scanBlogEntry(s scanner) (model.BlogEntry, error) {
	var out model.BlogEntry
	var target, created, updated string
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &out.Status,
		&target, &out.Category, &created, &updated); err != nil {
		return model.BlogEntry{}, err
	}
	var err error
	if out.TargetDate, err = parseRequiredTime(target); err != nil {
		return model.BlogEntry{}, err
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return model.BlogEntry{}, err
	}
	if out.UpdatedAt, err = parseRequiredTime(updated); err != nil {
		return model.BlogEntry{}, err
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
