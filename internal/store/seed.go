package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nhle/habito/internal/model"
)

// seedDefaultTemplates inserts the built-in templates on first launch.
// Seeding is detected by counting rows with is_default set, so once the
// user edits or deletes a built-in template the change sticks across
// restarts.
func (s *SQLiteStore) seedDefaultTemplates(ctx context.Context) error {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM templates WHERE is_default = 1")
	if err != nil {
		return fmt.Errorf("counting default templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := formatStamp(time.Now())
	for _, tpl := range model.DefaultTemplates() {
		tasksJSON, err := json.Marshal(tpl.Tasks)
		if err != nil {
			return fmt.Errorf("encoding tasks for template %s: %w", tpl.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO templates (id, name, icon, is_default, tasks, created_at, updated_at)
			VALUES (?, ?, ?, 1, ?, ?, ?)`,
			tpl.ID, tpl.Name, tpl.Icon, string(tasksJSON), now, now)
		if err != nil {
			return fmt.Errorf("seeding template %s: %w", tpl.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	s.log.Debug("seeded default templates", "count", len(model.DefaultTemplates()))
	return nil
}
