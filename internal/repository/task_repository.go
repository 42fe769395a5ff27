// Package repository provides validating facades over the store. Each
// repository rejects bad input with a *model.ValidationError before it
// reaches storage, so callers can tell bad input from storage failure
// with errors.As. Store errors pass through unchanged.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/habito/internal/model"
	"github.com/nhle/habito/internal/store"
)

// TaskRepository validates task input and delegates to the store.
type TaskRepository struct {
	store store.Store
}

// NewTaskRepository wraps a store with task validation.
func NewTaskRepository(s store.Store) *TaskRepository {
	return &TaskRepository{store: s}
}

// Create validates the input and inserts a new task. The description is
// stored trimmed.
func (r *TaskRepository) Create(ctx context.Context, input model.CreateTaskInput) (*model.Task, error) {
	if err := validateDate("date", input.Date); err != nil {
		return nil, err
	}
	description, err := validateDescription("description", input.Description)
	if err != nil {
		return nil, err
	}
	if input.Time != nil {
		if err := validateTime("time", *input.Time); err != nil {
			return nil, err
		}
	}

	return r.store.CreateTask(ctx, model.Task{
		Date:         input.Date,
		Description:  description,
		Time:         input.Time,
		TemplateID:   input.TemplateID,
		TemplateName: input.TemplateName,
	})
}

// CreateFromTemplate expands a template's blueprint into task rows for
// the given date, stamping each with the template's provenance.
func (r *TaskRepository) CreateFromTemplate(ctx context.Context, date, templateID string) ([]model.Task, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	if err := validateID("template_id", templateID); err != nil {
		return nil, err
	}

	tpl, err := r.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(tpl.Tasks))
	for i, blueprint := range tpl.Tasks {
		taskTime := blueprint.Time
		task := model.Task{
			Date:         date,
			Description:  blueprint.Description,
			TemplateID:   &tpl.ID,
			TemplateName: &tpl.Name,
		}
		if taskTime != "" {
			task.Time = &taskTime
		}
		created, err := r.store.CreateTask(ctx, task)
		if err != nil {
			return tasks, fmt.Errorf("expanding template %s task %d: %w", tpl.ID, i, err)
		}
		tasks = append(tasks, *created)
	}

	return tasks, nil
}

// Get retrieves a task by id.
func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	return r.store.GetTask(ctx, id)
}

// ListByDate returns the tasks for a date key, timed first.
func (r *TaskRepository) ListByDate(ctx context.Context, date string) ([]model.Task, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	return r.store.GetTasksByDate(ctx, date)
}

// ListByMonth returns every task in the given month.
func (r *TaskRepository) ListByMonth(ctx context.Context, month time.Month, year int) ([]model.Task, error) {
	return r.store.GetTasksByMonth(ctx, month, year)
}

// Update validates the set fields of patch and applies it.
func (r *TaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	if patch.Date != nil {
		if err := validateDate("date", *patch.Date); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		description, err := validateDescription("description", *patch.Description)
		if err != nil {
			return nil, err
		}
		patch.Description = &description
	}
	// An empty time in a patch clears the field; anything else must be
	// a valid HH:MM.
	if patch.Time != nil && *patch.Time != "" {
		if err := validateTime("time", *patch.Time); err != nil {
			return nil, err
		}
	}

	return r.store.UpdateTask(ctx, id, patch)
}

// ToggleComplete flips a task's completion state.
func (r *TaskRepository) ToggleComplete(ctx context.Context, id string) (*model.Task, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	return r.store.ToggleTaskComplete(ctx, id)
}

// Delete removes a task by id.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	return r.store.DeleteTask(ctx, id)
}

// DeleteByDate removes every task for a date key.
func (r *TaskRepository) DeleteByDate(ctx context.Context, date string) error {
	if err := validateDate("date", date); err != nil {
		return err
	}
	return r.store.DeleteTasksByDate(ctx, date)
}
