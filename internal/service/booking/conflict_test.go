package booking

import (
	"testing"
	"time"

	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func iv(startHour, endHour int) domain.Interval {
	return domain.Interval{
		Start: time.Date(2024, 1, 1, startHour, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, endHour, 0, 0, 0, time.UTC),
	}
}

func TestFindConflicts(t *testing.T) {
	active := []domain.Booking{
		{ID: "a", Interval: iv(8, 10), Status: domain.BookingStatusBooked},
		{ID: "b", Interval: iv(10, 12), Status: domain.BookingStatusBooked},
		{ID: "c", Interval: iv(14, 16), Status: domain.BookingStatusBooked},
	}

	t.Run("empty result for a free slot", func(t *testing.T) {
		assert.Empty(t, FindConflicts(active, iv(12, 14)))
	})

	t.Run("returns exactly the overlapping bookings", func(t *testing.T) {
		conflicts := FindConflicts(active, iv(9, 15))
		assert.Len(t, conflicts, 3)
	})

	t.Run("single blocker identified", func(t *testing.T) {
		conflicts := FindConflicts(active, iv(15, 17))
		assert.Len(t, conflicts, 1)
		assert.Equal(t, "c", conflicts[0].ID)
	})

	t.Run("no bookings means trivially available", func(t *testing.T) {
		assert.Empty(t, FindConflicts(nil, iv(0, 24)))
	})
}

func TestCurrentBooking(t *testing.T) {
	active := []domain.Booking{
		{ID: "a", Interval: iv(8, 10), Status: domain.BookingStatusBooked},
		{ID: "b", Interval: iv(12, 14), Status: domain.BookingStatusBooked},
	}

	at := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }

	assert.Nil(t, CurrentBooking(active, at(11)))
	assert.Nil(t, CurrentBooking(active, at(10)), "interval end is exclusive")

	current := CurrentBooking(active, at(12))
	assert.NotNil(t, current)
	assert.Equal(t, "b", current.ID)

	assert.Nil(t, CurrentBooking(nil, at(12)))
}
