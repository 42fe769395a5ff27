package repository

import (
	"context"
	"fmt"

	"github.com/nhle/habito/internal/model"
	"github.com/nhle/habito/internal/store"
)

// TemplateRepository validates template input and delegates to the store.
type TemplateRepository struct {
	store store.Store
}

// NewTemplateRepository wraps a store with template validation.
func NewTemplateRepository(s store.Store) *TemplateRepository {
	return &TemplateRepository{store: s}
}

// Create validates and inserts a custom template. A template carries at
// least one blueprint task, each with a valid description and time.
func (r *TemplateRepository) Create(ctx context.Context, input model.CreateTemplateInput) (*model.Template, error) {
	name, err := validateTemplateName("name", input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateTemplateIcon("icon", input.Icon); err != nil {
		return nil, err
	}
	tasks, err := validateBlueprint("tasks", input.Tasks)
	if err != nil {
		return nil, err
	}

	return r.store.AddTemplate(ctx, model.Template{
		Name:  name,
		Icon:  input.Icon,
		Tasks: tasks,
	})
}

// Get retrieves a template by id.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*model.Template, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	return r.store.GetTemplate(ctx, id)
}

// List returns defaults and custom templates together, defaults first.
func (r *TemplateRepository) List(ctx context.Context) ([]model.Template, error) {
	return r.store.GetAllTemplates(ctx)
}

// Update validates the set fields of patch and applies it.
func (r *TemplateRepository) Update(ctx context.Context, id string, patch model.TemplatePatch) (*model.Template, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name, err := validateTemplateName("name", *patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Icon != nil {
		if err := validateTemplateIcon("icon", *patch.Icon); err != nil {
			return nil, err
		}
	}
	if patch.Tasks != nil {
		tasks, err := validateBlueprint("tasks", *patch.Tasks)
		if err != nil {
			return nil, err
		}
		patch.Tasks = &tasks
	}

	return r.store.UpdateTemplate(ctx, id, patch)
}

// Delete removes a template. Tasks created from it keep their
// provenance fields.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	return r.store.DeleteTemplate(ctx, id)
}

// validateBlueprint checks the blueprint task list, returning it with
// descriptions trimmed.
func validateBlueprint(field string, tasks []model.TemplateTask) ([]model.TemplateTask, error) {
	if len(tasks) == 0 {
		return nil, model.NewValidationError(field, "at least one task is required")
	}

	out := make([]model.TemplateTask, len(tasks))
	for i, task := range tasks {
		description, err := validateDescription(
			fmt.Sprintf("%s[%d].description", field, i), task.Description)
		if err != nil {
			return nil, err
		}
		if err := validateTime(fmt.Sprintf("%s[%d].time", field, i), task.Time); err != nil {
			return nil, err
		}
		out[i] = task
		out[i].Description = description
	}
	return out, nil
}
