package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhle/habito/internal/datekey"
	"github.com/nhle/habito/internal/model"
)

// postgresSchema mirrors the SQLite migrations. Postgres gets native
// boolean and timestamptz columns instead of the integer and text
// encodings SQLite uses.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	date          TEXT NOT NULL,
	description   TEXT NOT NULL,
	time          TEXT,
	is_completed  BOOLEAN NOT NULL DEFAULT FALSE,
	template_id   TEXT,
	template_name TEXT,
	created_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks (date);

CREATE TABLE IF NOT EXISTS daily_ratings (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL UNIQUE,
	rating     INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 10),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ratings_date ON daily_ratings (date);

CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	icon       TEXT NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT FALSE,
	tasks      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS app_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// PostgresStore implements Store on a PostgreSQL connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	log    *slog.Logger
	closed atomic.Bool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to the given database URL, creates the
// schema if needed, and seeds the default templates on first
// initialization.
func NewPostgresStore(ctx context.Context, databaseURL string, opts ...Option) (*PostgresStore, error) {
	o := applyOptions(opts)

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, log: o.logger}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := s.seedDefaultTemplates(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seeding default templates: %w", err)
	}

	s.log.Debug("store opened", "backend", "postgres")
	return s, nil
}

// Close releases the connection pool. Safe to call more than once.
func (s *PostgresStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) guard() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (s *PostgresStore) seedDefaultTemplates(ctx context.Context) error {
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM templates WHERE is_default").Scan(&count)
	if err != nil {
		return fmt.Errorf("counting default templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, tpl := range model.DefaultTemplates() {
		tasksJSON, err := json.Marshal(tpl.Tasks)
		if err != nil {
			return fmt.Errorf("encoding tasks for template %s: %w", tpl.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO templates (id, name, icon, is_default, tasks, created_at, updated_at)
			VALUES ($1, $2, $3, TRUE, $4, $5, $5)`,
			tpl.ID, tpl.Name, tpl.Icon, string(tasksJSON), now)
		if err != nil {
			return fmt.Errorf("seeding template %s: %w", tpl.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	s.log.Debug("seeded default templates", "count", len(model.DefaultTemplates()))
	return nil
}

// === Tasks ===

func (s *PostgresStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.IsCompleted && task.CompletedAt == nil {
		now := time.Now().UTC()
		task.CompletedAt = &now
	} else if !task.IsCompleted {
		task.CompletedAt = nil
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (
			id, date, description, time, is_completed,
			template_id, template_name, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.Date, task.Description, task.Time, task.IsCompleted,
		task.TemplateID, task.TemplateName, task.CreatedAt, task.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task %s: %w", task.ID, err)
	}

	return &task, nil
}

func (s *PostgresStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)

	task, err := scanPgTask(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("getting task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	return &task, nil
}

func (s *PostgresStore) GetTasksByDate(ctx context.Context, date string) ([]model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE date = $1
		ORDER BY time ASC NULLS LAST, created_at ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for %s: %w", date, err)
	}
	defer rows.Close()

	return collectPgTasks(rows)
}

func (s *PostgresStore) GetTasksByMonth(ctx context.Context, month time.Month, year int) ([]model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	suffix := datekey.MonthSuffix(month, year)
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE date LIKE $1
		ORDER BY date ASC, time ASC NULLS LAST`, "%"+suffix)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for month %s: %w", suffix, err)
	}
	defer rows.Close()

	return collectPgTasks(rows)
}

func (s *PostgresStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if patch.IsZero() {
		return s.GetTask(ctx, id)
	}

	var set []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Date != nil {
		set = append(set, "date = "+arg(*patch.Date))
	}
	if patch.Description != nil {
		set = append(set, "description = "+arg(*patch.Description))
	}
	if patch.Time != nil {
		set = append(set, "time = "+arg(emptyToNull(*patch.Time)))
	}
	if patch.IsCompleted != nil {
		if *patch.IsCompleted {
			set = append(set, "is_completed = TRUE",
				"completed_at = COALESCE(completed_at, "+arg(time.Now().UTC())+")")
		} else {
			set = append(set, "is_completed = FALSE", "completed_at = NULL")
		}
	}
	if patch.TemplateID != nil {
		set = append(set, "template_id = "+arg(emptyToNull(*patch.TemplateID)))
	}
	if patch.TemplateName != nil {
		set = append(set, "template_name = "+arg(emptyToNull(*patch.TemplateName)))
	}

	query := "UPDATE tasks SET " + strings.Join(set, ", ") +
		" WHERE id = " + arg(id)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("updating task %s: %w", id, ErrNotFound)
	}

	return s.GetTask(ctx, id)
}

func (s *PostgresStore) ToggleTaskComplete(ctx context.Context, id string) (*model.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET
			is_completed = NOT is_completed,
			completed_at = CASE WHEN NOT is_completed THEN $1 ELSE NULL END
		WHERE id = $2`,
		time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("toggling task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("toggling task %s: %w", id, ErrNotFound)
	}

	return s.GetTask(ctx, id)
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) DeleteTasksByDate(ctx context.Context, date string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, "DELETE FROM tasks WHERE date = $1", date); err != nil {
		return fmt.Errorf("deleting tasks for %s: %w", date, err)
	}
	return nil
}

// === Daily ratings ===

func (s *PostgresStore) SetRating(ctx context.Context, date string, rating int) (*model.DailyRating, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, fmt.Errorf("rating %d for %s: %w", rating, date, ErrInvalidRating)
	}

	// ON CONFLICT keeps the original id and created_at; only the rating
	// and updated_at move on re-rating a day.
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_ratings (id, date, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (date) DO UPDATE
			SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), date, rating, now)
	if err != nil {
		return nil, fmt.Errorf("setting rating for %s: %w", date, err)
	}

	return s.GetRating(ctx, date)
}

func (s *PostgresStore) GetRating(ctx context.Context, date string) (*model.DailyRating, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var r model.DailyRating
	err := s.pool.QueryRow(ctx,
		"SELECT "+ratingColumns+" FROM daily_ratings WHERE date = $1", date).
		Scan(&r.ID, &r.Date, &r.Rating, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting rating for %s: %w", date, err)
	}

	return &r, nil
}

func (s *PostgresStore) GetRatingsForMonth(ctx context.Context, month time.Month, year int) ([]model.DailyRating, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	suffix := datekey.MonthSuffix(month, year)
	rows, err := s.pool.Query(ctx, `
		SELECT `+ratingColumns+` FROM daily_ratings
		WHERE date LIKE $1
		ORDER BY date ASC`, "%"+suffix)
	if err != nil {
		return nil, fmt.Errorf("querying ratings for month %s: %w", suffix, err)
	}
	defer rows.Close()

	var ratings []model.DailyRating
	for rows.Next() {
		var r model.DailyRating
		if err := rows.Scan(&r.ID, &r.Date, &r.Rating, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

func (s *PostgresStore) DeleteRating(ctx context.Context, date string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, "DELETE FROM daily_ratings WHERE date = $1", date); err != nil {
		return fmt.Errorf("deleting rating for %s: %w", date, err)
	}
	return nil
}

// === Templates ===

func (s *PostgresStore) AddTemplate(ctx context.Context, tpl model.Template) (*model.Template, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if tpl.ID == "" {
		tpl.ID = model.CustomTemplateIDPrefix + uuid.New().String()
	}
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	if tpl.UpdatedAt.IsZero() {
		tpl.UpdatedAt = now
	}

	tasksJSON, err := json.Marshal(tpl.Tasks)
	if err != nil {
		return nil, fmt.Errorf("encoding tasks for template %s: %w", tpl.ID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO templates (id, name, icon, is_default, tasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tpl.ID, tpl.Name, tpl.Icon, tpl.IsDefault, string(tasksJSON),
		tpl.CreatedAt, tpl.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating template %s: %w", tpl.ID, err)
	}

	return &tpl, nil
}

func (s *PostgresStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		"SELECT "+templateColumns+" FROM templates WHERE id = $1", id)

	tpl, err := scanPgTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("getting template %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting template %s: %w", id, err)
	}

	return &tpl, nil
}

func (s *PostgresStore) GetAllTemplates(ctx context.Context) ([]model.Template, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+templateColumns+` FROM templates
		ORDER BY is_default DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		tpl, err := scanPgTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (s *PostgresStore) UpdateTemplate(ctx context.Context, id string, patch model.TemplatePatch) (*model.Template, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if patch.IsZero() {
		return s.GetTemplate(ctx, id)
	}

	var set []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Name != nil {
		set = append(set, "name = "+arg(*patch.Name))
	}
	if patch.Icon != nil {
		set = append(set, "icon = "+arg(*patch.Icon))
	}
	if patch.Tasks != nil {
		tasksJSON, err := json.Marshal(*patch.Tasks)
		if err != nil {
			return nil, fmt.Errorf("encoding tasks for template %s: %w", id, err)
		}
		set = append(set, "tasks = "+arg(string(tasksJSON)))
	}
	set = append(set, "updated_at = "+arg(time.Now().UTC()))

	query := "UPDATE templates SET " + strings.Join(set, ", ") +
		" WHERE id = " + arg(id)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating template %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("updating template %s: %w", id, ErrNotFound)
	}

	return s.GetTemplate(ctx, id)
}

func (s *PostgresStore) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, "DELETE FROM templates WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	return nil
}

// === Settings ===

func (s *PostgresStore) GetSetting(ctx context.Context, key string) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}

	var value string
	err := s.pool.QueryRow(ctx,
		"SELECT value FROM app_settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("getting setting %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}

	return value, nil
}

func (s *PostgresStore) SetSetting(ctx context.Context, key, value string) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) GetSettingJSON(ctx context.Context, key string, out any) error {
	value, err := s.GetSetting(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) SetSettingJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}
	return s.SetSetting(ctx, key, string(data))
}

// === Lifecycle ===

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	if err := s.guard(); err != nil {
		return Stats{}, err
	}

	var st Stats
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tasks").Scan(&st.Tasks); err != nil {
		return Stats{}, fmt.Errorf("counting tasks: %w", err)
	}
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM daily_ratings").Scan(&st.Ratings); err != nil {
		return Stats{}, fmt.Errorf("counting ratings: %w", err)
	}
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM templates").Scan(&st.Templates); err != nil {
		return Stats{}, fmt.Errorf("counting templates: %w", err)
	}

	return st, nil
}

// === Scanning ===

func collectPgTasks(rows pgx.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		task, err := scanPgTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanPgTask(scan func(dest ...interface{}) error) (model.Task, error) {
	var (
		task        model.Task
		createdAt   time.Time
		completedAt *time.Time
	)

	err := scan(
		&task.ID, &task.Date, &task.Description, &task.Time, &task.IsCompleted,
		&task.TemplateID, &task.TemplateName, &createdAt, &completedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	task.CreatedAt = createdAt
	task.CompletedAt = completedAt
	return task, nil
}

func scanPgTemplate(scan func(dest ...interface{}) error) (model.Template, error) {
	var (
		tpl       model.Template
		tasksJSON string
	)

	err := scan(&tpl.ID, &tpl.Name, &tpl.Icon, &tpl.IsDefault, &tasksJSON,
		&tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return model.Template{}, err
	}

	if err := json.Unmarshal([]byte(tasksJSON), &tpl.Tasks); err != nil {
		return model.Template{}, fmt.Errorf("decoding tasks for template %s: %w", tpl.ID, err)
	}
	return tpl, nil
}
