package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/habito/internal/model"
)

const templateColumns = "id, name, icon, is_default, tasks, created_at, updated_at"

// AddTemplate inserts a template. Custom templates get a namespaced
// generated id so they can never collide with the fixed built-in ids.
func (s *SQLiteStore) AddTemplate(ctx context.Context, tpl model.Template) (*model.Template, error) {
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
	tpl.UpdatedAt = now

	tasksJSON, err := json.Marshal(tpl.Tasks)
	if err != nil {
		return nil, fmt.Errorf("marshaling template tasks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, icon, is_default, tasks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID, tpl.Name, tpl.Icon, boolToInt(tpl.IsDefault), string(tasksJSON),
		formatStamp(tpl.CreatedAt), formatStamp(tpl.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("creating template %s: %w", tpl.ID, err)
	}

	return &tpl, nil
}

// GetTemplate retrieves a template by its ID.
func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowxContext(ctx,
		"SELECT "+templateColumns+" FROM templates WHERE id = ?", id)

	tpl, err := scanTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting template %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting template %s: %w", id, err)
	}

	return &tpl, nil
}

// GetAllTemplates returns every template, built-in defaults first, then
// alphabetically by name.
func (s *SQLiteStore) GetAllTemplates(ctx context.Context) ([]model.Template, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT `+templateColumns+` FROM templates
		ORDER BY is_default DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	return templates, rows.Err()
}

// UpdateTemplate applies the set fields of patch to the template with the
// given id. ID, IsDefault and CreatedAt are never overwritten.
func (s *SQLiteStore) UpdateTemplate(ctx context.Context, id string, patch model.TemplatePatch) (*model.Template, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	if patch.IsZero() {
		return s.GetTemplate(ctx, id)
	}

	var set []string
	var args []interface{}

	if patch.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Icon != nil {
		set = append(set, "icon = ?")
		args = append(args, *patch.Icon)
	}
	if patch.Tasks != nil {
		tasksJSON, err := json.Marshal(*patch.Tasks)
		if err != nil {
			return nil, fmt.Errorf("marshaling template tasks: %w", err)
		}
		set = append(set, "tasks = ?")
		args = append(args, string(tasksJSON))
	}
	set = append(set, "updated_at = ?")
	args = append(args, formatStamp(time.Now()))

	args = append(args, id)
	query := "UPDATE templates SET " + strings.Join(set, ", ") + " WHERE id = ?"

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating template %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("updating template %s: %w", id, ErrNotFound)
	}

	return s.GetTemplate(ctx, id)
}

// DeleteTemplate removes a template by ID. Tasks created from it keep
// their template_id/template_name provenance; nothing cascades.
func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	return nil
}

func scanTemplate(scan func(dest ...interface{}) error) (model.Template, error) {
	var (
		tpl                  model.Template
		defaultInt           int
		tasksJSON            string
		createdAt, updatedAt string
	)

	err := scan(&tpl.ID, &tpl.Name, &tpl.Icon, &defaultInt, &tasksJSON, &createdAt, &updatedAt)
	if err != nil {
		return model.Template{}, err
	}

	tpl.IsDefault = defaultInt != 0

	if tasksJSON != "" {
		if err := json.Unmarshal([]byte(tasksJSON), &tpl.Tasks); err != nil {
			return model.Template{}, fmt.Errorf("unmarshaling template tasks: %w", err)
		}
	}
	if tpl.CreatedAt, err = parseStamp(createdAt); err != nil {
		return model.Template{}, err
	}
	if tpl.UpdatedAt, err = parseStamp(updatedAt); err != nil {
		return model.Template{}, err
	}

	return tpl, nil
}
