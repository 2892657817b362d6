package repository

import (
	"context"
	"errors"

	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CarRepository interface {
	List(ctx context.Context) ([]domain.Car, error)
	GetByID(ctx context.Context, id string) (*domain.Car, error)
	Create(ctx context.Context, car *domain.Car) error
	Update(ctx context.Context, car *domain.Car) (*domain.Car, error)
	Delete(ctx context.Context, id string) error
	Reviews(ctx context.Context, carID string) ([]domain.Review, error)
	AverageRating(ctx context.Context, carID string) (float64, error)
}

const carColumns = `id, make, model, year, reg_no, rate_cents, lat, lng, created_at, updated_at`

type PGCarRepository struct {
	db *pgxpool.Pool
}

func NewCarRepository(db *pgxpool.Pool) CarRepository {
	return &PGCarRepository{db: db}
}

func (r *PGCarRepository) List(ctx context.Context) ([]domain.Car, error) {
	rows, err := r.db.Query(ctx, `SELECT `+carColumns+` FROM cars ORDER BY make, model`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]domain.Car, 0)
	for rows.Next() {
		var c domain.Car
		if err := rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.RegNo, &c.RateCents, &c.Lat, &c.Lng, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (r *PGCarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	row := r.db.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id=$1`, id)
	var c domain.Car
	if err := row.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.RegNo, &c.RateCents, &c.Lat, &c.Lng, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGCarRepository) Create(ctx context.Context, car *domain.Car) error {
	return r.db.QueryRow(ctx, `INSERT INTO cars (id, make, model, year, reg_no, rate_cents, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		car.ID, car.Make, car.Model, car.Year, car.RegNo, car.RateCents, car.Lat, car.Lng).
		Scan(&car.CreatedAt, &car.UpdatedAt)
}

func (r *PGCarRepository) Update(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	row := r.db.QueryRow(ctx, `UPDATE cars
		SET make=$1, model=$2, year=$3, reg_no=$4, rate_cents=$5, lat=$6, lng=$7, updated_at=now()
		WHERE id=$8
		RETURNING `+carColumns,
		car.Make, car.Model, car.Year, car.RegNo, car.RateCents, car.Lat, car.Lng, car.ID)
	var c domain.Car
	if err := row.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.RegNo, &c.RateCents, &c.Lat, &c.Lng, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGCarRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM cars WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reviews surfaces feedback and ratings attached to this car's bookings.
// Bookings are never deleted, so past reviews survive cancellation.
func (r *PGCarRepository) Reviews(ctx context.Context, carID string) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, `SELECT u.name, b.rating, b.feedback, b.end_time
		FROM bookings b
		JOIN users u ON u.id = b.customer_id
		WHERE b.car_id=$1 AND (b.rating IS NOT NULL OR b.feedback IS NOT NULL)
		ORDER BY b.end_time DESC`, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ReviewerName, &rv.Rating, &rv.Feedback, &rv.ReviewDate); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *PGCarRepository) AverageRating(ctx context.Context, carID string) (float64, error) {
	var avg float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(AVG(rating), 0) FROM bookings WHERE car_id=$1 AND rating IS NOT NULL`, carID).Scan(&avg)
	return avg, err
}

var _ CarRepository = (*PGCarRepository)(nil)
