package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/habito/internal/datekey"
	"github.com/nhle/habito/internal/model"
)

const taskColumns = `id, date, description, time, is_completed,
	template_id, template_name, created_at, completed_at`

// CreateTask inserts a new task. Generates ID and CreatedAt if unset.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	// Keep the completion invariant even for pre-populated tasks.
	if task.IsCompleted && task.CompletedAt == nil {
		now := time.Now().UTC()
		task.CompletedAt = &now
	} else if !task.IsCompleted {
		task.CompletedAt = nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, date, description, time, is_completed,
			template_id, template_name, created_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Date, task.Description, task.Time, boolToInt(task.IsCompleted),
		task.TemplateID, task.TemplateName,
		formatStamp(task.CreatedAt), optionalStamp(task.CompletedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task %s: %w", task.ID, err)
	}

	return &task, nil
}

// GetTask retrieves a single task by its ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	task, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	return &task, nil
}

// GetTasksByDate retrieves all tasks for an exact date key, ordered by
// time ascending with untimed tasks last, then by creation time so that
// same-time tasks keep insertion order.
func (s *SQLiteStore) GetTasksByDate(ctx context.Context, date string) ([]model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE date = ?
		ORDER BY time IS NULL, time ASC, created_at ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for %s: %w", date, err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// GetTasksByMonth retrieves all tasks whose date key falls in the given
// month. The query matches the fixed-width ".MM.YYYY" suffix of the date
// key, which is why the key's zero padding is a hard invariant.
func (s *SQLiteStore) GetTasksByMonth(ctx context.Context, month time.Month, year int) ([]model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	suffix := datekey.MonthSuffix(month, year)
	rows, err := s.db.QueryxContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE date LIKE ?
		ORDER BY date ASC, time IS NULL, time ASC`, "%"+suffix)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for month %s: %w", suffix, err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// UpdateTask applies the set fields of patch to the task with the given
// id. ID and CreatedAt are never overwritten. Setting IsCompleted also
// maintains CompletedAt so the completion invariant holds.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if patch.IsZero() {
		return s.GetTask(ctx, id)
	}

	var set []string
	var args []interface{}

	if patch.Date != nil {
		set = append(set, "date = ?")
		args = append(args, *patch.Date)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Time != nil {
		set = append(set, "time = ?")
		args = append(args, emptyToNull(*patch.Time))
	}
	if patch.IsCompleted != nil {
		if *patch.IsCompleted {
			set = append(set, "is_completed = 1",
				"completed_at = COALESCE(completed_at, ?)")
			args = append(args, formatStamp(time.Now()))
		} else {
			set = append(set, "is_completed = 0", "completed_at = NULL")
		}
	}
	if patch.TemplateID != nil {
		set = append(set, "template_id = ?")
		args = append(args, emptyToNull(*patch.TemplateID))
	}
	if patch.TemplateName != nil {
		set = append(set, "template_name = ?")
		args = append(args, emptyToNull(*patch.TemplateName))
	}

	args = append(args, id)
	query := "UPDATE tasks SET " + strings.Join(set, ", ") + " WHERE id = ?"

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("updating task %s: %w", id, ErrNotFound)
	}

	return s.GetTask(ctx, id)
}

// ToggleTaskComplete flips IsCompleted and stamps or clears CompletedAt
// in a single statement; the CASE expressions see the pre-update value,
// so the flip and the stamp cannot drift apart.
func (s *SQLiteStore) ToggleTaskComplete(ctx context.Context, id string) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			is_completed = CASE WHEN is_completed = 0 THEN 1 ELSE 0 END,
			completed_at = CASE WHEN is_completed = 0 THEN ? ELSE NULL END
		WHERE id = ?`,
		formatStamp(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("toggling task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("toggling task %s: %w", id, ErrNotFound)
	}

	return s.GetTask(ctx, id)
}

// DeleteTask removes a task by ID. Deleting a missing task is a no-op.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// DeleteTasksByDate removes every task for a date key.
func (s *SQLiteStore) DeleteTasksByDate(ctx context.Context, date string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE date = ?", date); err != nil {
		return fmt.Errorf("deleting tasks for %s: %w", date, err)
	}
	return nil
}

// collectTasks drains a result set into a task slice.
func collectTasks(rows *sqlx.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	return scanTaskFrom(rows.Scan)
}

// scanTaskRow scans a single task row from a sqlx.Row.
func scanTaskRow(row *sqlx.Row) (model.Task, error) {
	return scanTaskFrom(row.Scan)
}

func scanTaskFrom(scan func(dest ...interface{}) error) (model.Task, error) {
	var (
		task         model.Task
		taskTime     sql.NullString
		completedInt int
		templateID   sql.NullString
		templateName sql.NullString
		createdAt    string
		completedAt  sql.NullString
	)

	err := scan(
		&task.ID, &task.Date, &task.Description, &taskTime, &completedInt,
		&templateID, &templateName, &createdAt, &completedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	task.IsCompleted = completedInt != 0
	task.Time = nullToPtr(taskTime)
	task.TemplateID = nullToPtr(templateID)
	task.TemplateName = nullToPtr(templateName)

	if task.CreatedAt, err = parseStamp(createdAt); err != nil {
		return model.Task{}, err
	}
	if completedAt.Valid {
		t, err := parseStamp(completedAt.String)
		if err != nil {
			return model.Task{}, err
		}
		task.CompletedAt = &t
	}

	return task, nil
}

// optionalStamp renders a nullable timestamp for storage.
func optionalStamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatStamp(*t)
}

// emptyToNull maps the empty string to SQL NULL, used by patches that
// clear optional text columns.
func emptyToNull(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullToPtr converts a nullable text column to an optional string.
func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
