package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/habito/internal/datekey"
	"github.com/nhle/habito/internal/model"
)

const ratingColumns = "id, date, rating, created_at, updated_at"

// SetRating upserts the rating for a date. The write is an atomic
// conditional insert: it relies on the UNIQUE constraint on date and falls
// back to an update when the insert loses, so two near-simultaneous calls
// for the same date can never produce two rows. A plain read-then-write
// would race here; this is the one store operation where that matters.
func (s *SQLiteStore) SetRating(ctx context.Context, date string, rating int) (*model.DailyRating, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, fmt.Errorf("setting rating for %s: %w", date, ErrInvalidRating)
	}

	now := formatStamp(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_ratings (id, date, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), date, rating, now, now)
	if err != nil {
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("inserting rating for %s: %w", date, err)
		}
		// Lost the insert to an existing row: update it in place,
		// preserving id and created_at.
		_, err = s.db.ExecContext(ctx,
			"UPDATE daily_ratings SET rating = ?, updated_at = ? WHERE date = ?",
			rating, now, date)
		if err != nil {
			return nil, fmt.Errorf("updating rating for %s: %w", date, err)
		}
	}

	return s.GetRating(ctx, date)
}

// GetRating returns the rating for a date, or nil when none exists.
func (s *SQLiteStore) GetRating(ctx context.Context, date string) (*model.DailyRating, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowxContext(ctx,
		"SELECT "+ratingColumns+" FROM daily_ratings WHERE date = ?", date)

	r, err := scanRating(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting rating for %s: %w", date, err)
	}

	return &r, nil
}

// GetRatingsForMonth returns the month's ratings ordered by date, using
// the same fixed-width suffix match as the task month query.
func (s *SQLiteStore) GetRatingsForMonth(ctx context.Context, month time.Month, year int) ([]model.DailyRating, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	suffix := datekey.MonthSuffix(month, year)
	rows, err := s.db.QueryxContext(ctx, `
		SELECT `+ratingColumns+` FROM daily_ratings
		WHERE date LIKE ?
		ORDER BY date ASC`, "%"+suffix)
	if err != nil {
		return nil, fmt.Errorf("querying ratings for month %s: %w", suffix, err)
	}
	defer rows.Close()

	var ratings []model.DailyRating
	for rows.Next() {
		r, err := scanRating(rows.Scan)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}

	return ratings, rows.Err()
}

// DeleteRating removes a date's rating. Deleting a missing rating is a
// no-op.
func (s *SQLiteStore) DeleteRating(ctx context.Context, date string) error {
	if err := s.guard(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM daily_ratings WHERE date = ?", date); err != nil {
		return fmt.Errorf("deleting rating for %s: %w", date, err)
	}
	return nil
}

func scanRating(scan func(dest ...interface{}) error) (model.DailyRating, error) {
	var (
		r                    model.DailyRating
		createdAt, updatedAt string
	)

	if err := scan(&r.ID, &r.Date, &r.Rating, &createdAt, &updatedAt); err != nil {
		return model.DailyRating{}, err
	}

	var err error
	if r.CreatedAt, err = parseStamp(createdAt); err != nil {
		return model.DailyRating{}, err
	}
	if r.UpdatedAt, err = parseStamp(updatedAt); err != nil {
		return model.DailyRating{}, err
	}

	return r, nil
}

// isUniqueViolation matches the driver's unique-constraint failure. The
// modernc driver surfaces SQLite errors as text, so this follows the
// error string the engine produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
