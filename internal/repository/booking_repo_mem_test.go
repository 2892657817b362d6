package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func interval(startHour, endHour int) domain.Interval {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return domain.Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func booked(id, carID string, iv domain.Interval) *domain.Booking {
	return &domain.Booking{ID: id, CarID: carID, CustomerID: "cust-" + id, Interval: iv}
}

func TestMemBookingRepository_CreateBooked_RejectsOverlap(t *testing.T) {
	repo := NewMemBookingRepository()
	ctx := context.Background()

	assert.NoError(t, repo.CreateBooked(ctx, booked("a", "car-1", interval(10, 12))))

	err := repo.CreateBooked(ctx, booked("b", "car-1", interval(11, 13)))
	conflict, ok := domain.AsConflict(err)
	assert.True(t, ok)
	if assert.Len(t, conflict.Conflicts, 1) {
		assert.Equal(t, "a", conflict.Conflicts[0].ID)
	}

	// Back to back intervals share a boundary instant and do not collide.
	assert.NoError(t, repo.CreateBooked(ctx, booked("c", "car-1", interval(12, 14))))

	// A different car is a different admission scope.
	assert.NoError(t, repo.CreateBooked(ctx, booked("d", "car-2", interval(11, 13))))
}

func TestMemBookingRepository_CreateBooked_ConcurrentOverlapAdmitsExactlyOne(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		repo := NewMemBookingRepository()
		first := booked(fmt.Sprintf("first-%d", round), "car-1", interval(13, 14))
		second := booked(fmt.Sprintf("second-%d", round), "car-1", interval(13, 15))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[0] = repo.CreateBooked(ctx, first)
		}()
		go func() {
			defer wg.Done()
			errs[1] = repo.CreateBooked(ctx, second)
		}()
		wg.Wait()

		var admitted, rejected int
		for _, err := range errs {
			if err == nil {
				admitted++
				continue
			}
			conflict, ok := domain.AsConflict(err)
			assert.True(t, ok, "unexpected error: %v", err)
			if ok {
				assert.Len(t, conflict.Conflicts, 1)
			}
			rejected++
		}
		assert.Equal(t, 1, admitted)
		assert.Equal(t, 1, rejected)

		stored, err := repo.ListActiveByCar(ctx, "car-1")
		assert.NoError(t, err)
		assert.Len(t, stored, 1)
	}
}

func TestMemBookingRepository_CancelFreesCapacity(t *testing.T) {
	repo := NewMemBookingRepository()
	ctx := context.Background()

	assert.NoError(t, repo.CreateBooked(ctx, booked("a", "car-1", interval(10, 12))))

	err := repo.CreateBooked(ctx, booked("b", "car-1", interval(10, 12)))
	_, ok := domain.AsConflict(err)
	assert.True(t, ok)

	_, err = repo.UpdateStatus(ctx, "a", domain.BookingStatusCancelled, nil, nil)
	assert.NoError(t, err)

	// The cancelled booking no longer blocks the slot.
	assert.NoError(t, repo.CreateBooked(ctx, booked("b", "car-1", interval(10, 12))))
}

func TestMemBookingRepository_UpdateStatus(t *testing.T) {
	repo := NewMemBookingRepository()
	ctx := context.Background()

	assert.NoError(t, repo.CreateBooked(ctx, booked("a", "car-1", interval(10, 12))))

	feedback := "clean car"
	rating := 4
	updated, err := repo.UpdateStatus(ctx, "a", domain.BookingStatusCancelled, &feedback, &rating)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, updated.Status)
	assert.Equal(t, &feedback, updated.Feedback)
	assert.Equal(t, &rating, updated.Rating)

	_, err = repo.UpdateStatus(ctx, "missing", domain.BookingStatusCancelled, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemBookingRepository_ConfirmCancellation(t *testing.T) {
	repo := NewMemBookingRepository()
	ctx := context.Background()

	assert.NoError(t, repo.CreateBooked(ctx, booked("a", "car-1", interval(10, 12))))

	// Still Booked, nothing to confirm.
	_, err := repo.ConfirmCancellation(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotCancelled)

	_, err = repo.UpdateStatus(ctx, "a", domain.BookingStatusCancelled, nil, nil)
	assert.NoError(t, err)

	confirmed, err := repo.ConfirmCancellation(ctx, "a")
	assert.NoError(t, err)
	assert.True(t, confirmed.CancellationConfirmed)
}

func TestMemBookingRepository_CompleteElapsedBefore(t *testing.T) {
	repo := NewMemBookingRepository()
	ctx := context.Background()

	assert.NoError(t, repo.CreateBooked(ctx, booked("past", "car-1", interval(8, 9))))
	assert.NoError(t, repo.CreateBooked(ctx, booked("ongoing", "car-1", interval(9, 11))))
	assert.NoError(t, repo.CreateBooked(ctx, booked("future", "car-2", interval(14, 16))))

	deadline := interval(10, 11).Start
	completed, err := repo.CompleteElapsedBefore(ctx, deadline)
	assert.NoError(t, err)
	if assert.Len(t, completed, 1) {
		assert.Equal(t, "past", completed[0].ID)
	}

	stored, err := repo.GetByID(ctx, "past")
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, stored.Status)

	stored, err = repo.GetByID(ctx, "ongoing")
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusBooked, stored.Status)
}

func TestMemBookingRepository_Listing(t *testing.T) {
	repo := NewMemBookingRepository()
	ctx := context.Background()

	assert.NoError(t, repo.CreateBooked(ctx, booked("late", "car-1", interval(14, 16))))
	assert.NoError(t, repo.CreateBooked(ctx, booked("early", "car-1", interval(8, 10))))
	assert.NoError(t, repo.CreateBooked(ctx, booked("other", "car-2", interval(8, 10))))

	byCar, err := repo.ListByCar(ctx, "car-1")
	assert.NoError(t, err)
	if assert.Len(t, byCar, 2) {
		// Sorted by start time.
		assert.Equal(t, "early", byCar[0].ID)
		assert.Equal(t, "late", byCar[1].ID)
	}

	byCustomer, err := repo.ListByCustomer(ctx, "cust-other")
	assert.NoError(t, err)
	if assert.Len(t, byCustomer, 1) {
		assert.Equal(t, "other", byCustomer[0].ID)
	}

	all, err := repo.ListActive(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}
