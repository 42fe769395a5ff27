package model

import "time"

// Task limits enforced by the repositories before any write.
const (
	MaxDescriptionLength = 100
	MinDescriptionLength = 1
)

// Task is a single entry on a day's list. Tasks are partitioned by the
// DD.MM.YYYY date key; almost every query goes through it.
type Task struct {
	// ID is the unique identifier, generated at creation and immutable.
	ID string `json:"id" db:"id"`

	// Date is the canonical DD.MM.YYYY date key the task belongs to.
	Date string `json:"date" db:"date"`

	// Description is the task text, 1-100 characters after trimming.
	Description string `json:"description" db:"description"`

	// Time is an optional HH:MM time of day. Untimed tasks sort after
	// timed ones.
	Time *string `json:"time,omitempty" db:"time"`

	// IsCompleted marks the task done.
	IsCompleted bool `json:"is_completed" db:"is_completed"`

	// TemplateID and TemplateName record which template the task was
	// expanded from, if any. Deleting the template leaves them in place.
	TemplateID   *string `json:"template_id,omitempty" db:"template_id"`
	TemplateName *string `json:"template_name,omitempty" db:"template_name"`

	// CreatedAt is set once at creation and never overwritten.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// CompletedAt is set when IsCompleted flips to true and cleared when
	// it flips back. Invariant: non-nil iff IsCompleted.
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// TimeOfDay implements timeutil.Timed.
func (t Task) TimeOfDay() *string { return t.Time }

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Date         string
	Description  string
	Time         *string
	TemplateID   *string
	TemplateName *string
}
