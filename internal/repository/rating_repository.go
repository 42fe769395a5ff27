package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/habito/internal/model"
	"github.com/nhle/habito/internal/store"
)

// RatingRepository validates rating input and delegates to the store.
type RatingRepository struct {
	store store.Store
}

// NewRatingRepository wraps a store with rating validation.
func NewRatingRepository(s store.Store) *RatingRepository {
	return &RatingRepository{store: s}
}

// Set upserts the day's rating after checking the date key and bounds.
func (r *RatingRepository) Set(ctx context.Context, date string, rating int) (*model.DailyRating, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, model.NewValidationError("rating",
			fmt.Sprintf("must be between %d and %d", model.MinRating, model.MaxRating))
	}
	return r.store.SetRating(ctx, date, rating)
}

// Get returns the rating for a date, or nil when the day is unrated.
func (r *RatingRepository) Get(ctx context.Context, date string) (*model.DailyRating, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	return r.store.GetRating(ctx, date)
}

// ListForMonth returns the month's ratings ordered by date.
func (r *RatingRepository) ListForMonth(ctx context.Context, month time.Month, year int) ([]model.DailyRating, error) {
	return r.store.GetRatingsForMonth(ctx, month, year)
}

// Delete removes a date's rating; deleting an unrated day is a no-op.
func (r *RatingRepository) Delete(ctx context.Context, date string) error {
	if err := validateDate("date", date); err != nil {
		return err
	}
	return r.store.DeleteRating(ctx, date)
}
