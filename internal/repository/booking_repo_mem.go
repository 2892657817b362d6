package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hivemotors/carbooking/internal/domain"
)

// MemBookingRepository keeps bookings in memory. Admission holds a per-car
// mutex across the conflict check and the insert, the same serialization
// point the Postgres implementation gets from its advisory lock.
type MemBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
	carLocks map[string]*sync.Mutex
}

func NewMemBookingRepository() *MemBookingRepository {
	return &MemBookingRepository{
		bookings: make(map[string]*domain.Booking),
		carLocks: make(map[string]*sync.Mutex),
	}
}

func (r *MemBookingRepository) carLock(carID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.carLocks[carID]
	if !ok {
		lock = &sync.Mutex{}
		r.carLocks[carID] = lock
	}
	return lock
}

func (r *MemBookingRepository) CreateBooked(ctx context.Context, booking *domain.Booking) error {
	lock := r.carLock(booking.CarID)
	lock.Lock()
	defer lock.Unlock()

	active, err := r.ListActiveByCar(ctx, booking.CarID)
	if err != nil {
		return err
	}
	var conflicts []domain.Booking
	for _, existing := range active {
		if existing.Interval.Overlaps(booking.Interval) {
			conflicts = append(conflicts, existing)
		}
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}

	now := time.Now()
	booking.Status = domain.BookingStatusBooked
	booking.CreatedAt = now
	booking.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *MemBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *MemBookingRepository) ListByCar(ctx context.Context, carID string) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.CarID == carID }), nil
}

func (r *MemBookingRepository) ListActiveByCar(ctx context.Context, carID string) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool {
		return b.CarID == carID && b.Status == domain.BookingStatusBooked
	}), nil
}

func (r *MemBookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.CustomerID == customerID }), nil
}

func (r *MemBookingRepository) ListActive(ctx context.Context) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.Status == domain.BookingStatusBooked }), nil
}

func (r *MemBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, feedback *string, rating *int) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.Status = status
	if feedback != nil {
		b.Feedback = feedback
	}
	if rating != nil {
		b.Rating = rating
	}
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (r *MemBookingRepository) ConfirmCancellation(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != domain.BookingStatusCancelled {
		return nil, domain.ErrNotCancelled
	}
	b.CancellationConfirmed = true
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (r *MemBookingRepository) CompleteElapsedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var completed []domain.Booking
	for _, b := range r.bookings {
		if b.Status == domain.BookingStatusBooked && !b.Interval.End.After(deadline) {
			b.Status = domain.BookingStatusCompleted
			b.UpdatedAt = time.Now()
			completed = append(completed, *b)
		}
	}
	return completed, nil
}

func (r *MemBookingRepository) list(keep func(*domain.Booking) bool) []domain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Interval.Start.Before(out[j].Interval.Start) })
	return out
}

var _ BookingRepository = (*MemBookingRepository)(nil)
