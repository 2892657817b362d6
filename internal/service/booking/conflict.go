package booking

import (
	"time"

	"github.com/hivemotors/carbooking/internal/domain"
)

// FindConflicts returns exactly the active bookings whose intervals overlap
// the candidate, in input order. An empty result means the interval is free.
// The Postgres store encodes the same predicate in SQL inside its admission
// transaction; this function is the in-memory authority.
func FindConflicts(active []domain.Booking, candidate domain.Interval) []domain.Booking {
	conflicts := make([]domain.Booking, 0)
	for _, b := range active {
		if b.Interval.Overlaps(candidate) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// CurrentBooking returns the active booking whose interval contains now,
// or nil when the car is free at that instant.
func CurrentBooking(active []domain.Booking, now time.Time) *domain.Booking {
	for i := range active {
		if active[i].Interval.Contains(now) {
			return &active[i]
		}
	}
	return nil
}
