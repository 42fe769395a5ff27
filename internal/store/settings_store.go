package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// GetSetting returns the raw value stored under key, or ErrNotFound.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}

	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM app_settings WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("getting setting %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}

	return value, nil
}

// SetSetting stores a raw string value, replacing any previous one.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	if err := s.guard(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO app_settings (key, value) VALUES (?, ?)",
		key, value)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

// GetSettingJSON unmarshals the value stored under key into out.
func (s *SQLiteStore) GetSettingJSON(ctx context.Context, key string, out any) error {
	value, err := s.GetSetting(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return nil
}

// SetSettingJSON marshals v and stores it under key.
func (s *SQLiteStore) SetSettingJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}
	return s.SetSetting(ctx, key, string(data))
}

// Stats returns row counts for the three entity tables.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	if err := s.guard(); err != nil {
		return Stats{}, err
	}

	var st Stats
	if err := s.db.GetContext(ctx, &st.Tasks, "SELECT COUNT(*) FROM tasks"); err != nil {
		return Stats{}, fmt.Errorf("counting tasks: %w", err)
	}
	if err := s.db.GetContext(ctx, &st.Ratings, "SELECT COUNT(*) FROM daily_ratings"); err != nil {
		return Stats{}, fmt.Errorf("counting ratings: %w", err)
	}
	if err := s.db.GetContext(ctx, &st.Templates, "SELECT COUNT(*) FROM templates"); err != nil {
		return Stats{}, fmt.Errorf("counting templates: %w", err)
	}

	return st, nil
}
