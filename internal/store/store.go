// Package store provides durable persistence for tasks, daily ratings,
// templates, and app settings, keyed by the DD.MM.YYYY date key. Two
// backends implement the Store interface: an embedded SQLite database
// (the default) and PostgreSQL.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/nhle/habito/internal/model"
)

// Stats holds per-table row counts, mainly for diagnostics.
type Stats struct {
	Tasks     int `json:"tasks"`
	Ratings   int `json:"ratings"`
	Templates int `json:"templates"`
}

// Store is the persistence interface consumed by the repositories. All
// operations are short-lived transactions; no call holds a lock across
// returns. After Close, every operation fails with ErrClosed.
type Store interface {
	// === Tasks ===

	// CreateTask inserts a task, generating ID and CreatedAt when unset.
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)

	// GetTask retrieves a task by id; ErrNotFound when missing.
	GetTask(ctx context.Context, id string) (*model.Task, error)

	// GetTasksByDate returns the tasks for an exact date key, ordered by
	// time ascending with untimed tasks last, then by creation time.
	GetTasksByDate(ctx context.Context, date string) ([]model.Task, error)

	// GetTasksByMonth returns every task whose date key falls in the
	// given month, ordered by date then time.
	GetTasksByMonth(ctx context.Context, month time.Month, year int) ([]model.Task, error)

	// UpdateTask applies the set fields of patch; ID and CreatedAt are
	// never touched. ErrNotFound when no row matches id.
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)

	// ToggleTaskComplete atomically flips IsCompleted, stamping or
	// clearing CompletedAt. ErrNotFound when missing.
	ToggleTaskComplete(ctx context.Context, id string) (*model.Task, error)

	// DeleteTask and DeleteTasksByDate hard-delete; deleting nothing is
	// not an error.
	DeleteTask(ctx context.Context, id string) error
	DeleteTasksByDate(ctx context.Context, date string) error

	// === Daily ratings ===

	// SetRating upserts the rating for a date: insert when absent,
	// update rating/UpdatedAt in place when present (CreatedAt and ID
	// are preserved). ErrInvalidRating outside [0, 10].
	SetRating(ctx context.Context, date string, rating int) (*model.DailyRating, error)

	// GetRating returns the rating for a date, or nil when none exists.
	GetRating(ctx context.Context, date string) (*model.DailyRating, error)

	// GetRatingsForMonth returns the month's ratings ordered by date.
	GetRatingsForMonth(ctx context.Context, month time.Month, year int) ([]model.DailyRating, error)

	// DeleteRating removes a date's rating; no-op when absent.
	DeleteRating(ctx context.Context, date string) error

	// === Templates ===

	// AddTemplate inserts a template, generating a namespaced custom id
	// when unset.
	AddTemplate(ctx context.Context, tpl model.Template) (*model.Template, error)

	// GetTemplate retrieves a template by id; ErrNotFound when missing.
	GetTemplate(ctx context.Context, id string) (*model.Template, error)

	// GetAllTemplates returns defaults and custom templates together,
	// defaults first, then by name.
	GetAllTemplates(ctx context.Context) ([]model.Template, error)

	// UpdateTemplate applies the set fields of patch; ErrNotFound when
	// no row matches id.
	UpdateTemplate(ctx context.Context, id string, patch model.TemplatePatch) (*model.Template, error)

	// DeleteTemplate removes a template; no-op when absent. Tasks
	// created from the template keep their provenance fields.
	DeleteTemplate(ctx context.Context, id string) error

	// === Settings ===

	// GetSetting returns the raw value for key; ErrNotFound when unset.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting stores a raw string value, replacing any previous one.
	SetSetting(ctx context.Context, key, value string) error

	// GetSettingJSON unmarshals the value for key into out.
	GetSettingJSON(ctx context.Context, key string, out any) error

	// SetSettingJSON marshals v and stores it under key.
	SetSettingJSON(ctx context.Context, key string, v any) error

	// === Lifecycle ===

	// Stats returns per-table row counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the underlying resources.
	Close() error
}

// options collects construction knobs shared by both backends.
type options struct {
	logger *slog.Logger
}

// Option configures a store at construction time.
type Option func(*options)

// WithLogger sets the logger used for lifecycle messages. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
