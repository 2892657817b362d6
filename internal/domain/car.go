package domain

import "time"

type Car struct {
	ID            string
	Make          string
	Model         string
	Year          int
	RegNo         string
	RateCents     int64
	Lat           float64
	Lng           float64
	AverageRating float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Review is derived from a booking that carries feedback or a rating.
type Review struct {
	ReviewerName string
	Rating       *int
	Feedback     *string
	ReviewDate   time.Time
}
