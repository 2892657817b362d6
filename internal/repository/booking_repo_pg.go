package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	CreateBooked(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByCar(ctx context.Context, carID string) ([]domain.Booking, error)
	ListActiveByCar(ctx context.Context, carID string) ([]domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error)
	ListActive(ctx context.Context) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, feedback *string, rating *int) (*domain.Booking, error)
	ConfirmCancellation(ctx context.Context, id string) (*domain.Booking, error)
	CompleteElapsedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

const bookingColumns = `id, car_id, customer_id, start_time, end_time, status, cancellation_confirmed, feedback, rating, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// CreateBooked admits a booking atomically: the transaction takes a per-car
// advisory lock, re-checks the overlap predicate against active bookings and
// only then inserts. Concurrent admissions for the same car serialize on the
// lock; admissions for different cars proceed in parallel.
func (r *PGBookingRepository) CreateBooked(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, booking.CarID); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE car_id=$1 AND status=$2 AND start_time < $4 AND end_time > $3
		ORDER BY start_time`,
		booking.CarID, domain.BookingStatusBooked, booking.Interval.Start, booking.Interval.End)
	if err != nil {
		return err
	}
	conflicts, err := scanBookings(rows)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}

	booking.Status = domain.BookingStatusBooked
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, car_id, customer_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		booking.ID, booking.CarID, booking.CustomerID, booking.Interval.Start, booking.Interval.End, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByCar(ctx context.Context, carID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE car_id=$1 ORDER BY start_time`, carID)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *PGBookingRepository) ListActiveByCar(ctx context.Context, carID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE car_id=$1 AND status=$2 ORDER BY start_time`,
		carID, domain.BookingStatusBooked)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *PGBookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer_id=$1 ORDER BY start_time DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *PGBookingRepository) ListActive(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 ORDER BY start_time`, domain.BookingStatusBooked)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, feedback *string, rating *int) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1, feedback=COALESCE($2, feedback), rating=COALESCE($3, rating), updated_at=now()
		WHERE id=$4
		RETURNING `+bookingColumns, status, feedback, rating, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ConfirmCancellation(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET cancellation_confirmed=true, updated_at=now()
		WHERE id=$1 AND status=$2
		RETURNING `+bookingColumns, id, domain.BookingStatusCancelled)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Missing row or a booking that was never cancelled; the service
			// distinguishes the two with a follow-up GetByID.
			return nil, domain.ErrNotCancelled
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) CompleteElapsedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND end_time <= $3
		RETURNING `+bookingColumns, domain.BookingStatusCompleted, domain.BookingStatusBooked, deadline)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CarID, &b.CustomerID, &b.Interval.Start, &b.Interval.End,
		&b.Status, &b.CancellationConfirmed, &b.Feedback, &b.Rating, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
