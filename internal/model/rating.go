package model

import "time"

// Rating scale bounds, inclusive.
const (
	MinRating = 0
	MaxRating = 10
)

// DailyRating is the user's 0-10 rating of a single day. At most one
// rating exists per date key; writes upsert by date.
type DailyRating struct {
	ID     string `json:"id" db:"id"`
	Date   string `json:"date" db:"date"`
	Rating int    `json:"rating" db:"rating"`

	// CreatedAt is set on first write for a date and preserved by
	// subsequent upserts; UpdatedAt advances on every write.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
