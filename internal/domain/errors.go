package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrNotBooked     = errors.New("booking is not in Booked status")
	ErrNotCancelled  = errors.New("booking has not been cancelled")
)

// ConflictError rejects an admission attempt and carries exactly the active
// bookings whose intervals overlap the candidate.
type ConflictError struct {
	Conflicts []Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d existing booking(s)", len(e.Conflicts))
}

// AsConflict unwraps err into a *ConflictError if there is one in the chain.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
