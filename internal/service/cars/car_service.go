package cars

import (
	"context"

	"github.com/google/uuid"
	"github.com/hivemotors/carbooking/internal/broadcast"
	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/hivemotors/carbooking/internal/logger"
	"github.com/hivemotors/carbooking/internal/repository"
	"go.uber.org/zap"
)

type CarUseCase interface {
	List(ctx context.Context) ([]domain.Car, error)
	Get(ctx context.Context, id string) (*domain.Car, error)
	Create(ctx context.Context, principal domain.Principal, input CarInput) (*domain.Car, error)
	Update(ctx context.Context, principal domain.Principal, id string, input CarInput) (*domain.Car, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
	Reviews(ctx context.Context, carID string) ([]domain.Review, error)
}

type Cache interface {
	GetCars(ctx context.Context) ([]domain.Car, error)
	SetCars(ctx context.Context, cars []domain.Car) error
	InvalidateCars(ctx context.Context) error
}

type CarInput struct {
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Year      int     `json:"year"`
	RegNo     string  `json:"reg_no"`
	RateCents int64   `json:"rate_cents"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

type CarService struct {
	repo  repository.CarRepository
	cache Cache
	hub   *broadcast.Hub
}

func NewCarService(repo repository.CarRepository, cache Cache, hub *broadcast.Hub) *CarService {
	return &CarService{repo: repo, cache: cache, hub: hub}
}

func (s *CarService) List(ctx context.Context) ([]domain.Car, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCars(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	cars, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cars {
		if avg, err := s.repo.AverageRating(ctx, cars[i].ID); err == nil {
			cars[i].AverageRating = avg
		}
	}
	if s.cache != nil {
		if err := s.cache.SetCars(ctx, cars); err != nil {
			logger.Get().Warn("failed to cache car list", zap.Error(err))
		}
	}
	return cars, nil
}

func (s *CarService) Get(ctx context.Context, id string) (*domain.Car, error) {
	car, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if avg, err := s.repo.AverageRating(ctx, id); err == nil {
		car.AverageRating = avg
	}
	return car, nil
}

func (s *CarService) Create(ctx context.Context, principal domain.Principal, input CarInput) (*domain.Car, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	car := &domain.Car{
		ID:        uuid.NewString(),
		Make:      input.Make,
		Model:     input.Model,
		Year:      input.Year,
		RegNo:     input.RegNo,
		RateCents: input.RateCents,
		Lat:       input.Lat,
		Lng:       input.Lng,
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}
	s.changed(ctx, car)
	return car, nil
}

func (s *CarService) Update(ctx context.Context, principal domain.Principal, id string, input CarInput) (*domain.Car, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	car := &domain.Car{
		ID:        id,
		Make:      input.Make,
		Model:     input.Model,
		Year:      input.Year,
		RegNo:     input.RegNo,
		RateCents: input.RateCents,
		Lat:       input.Lat,
		Lng:       input.Lng,
	}
	updated, err := s.repo.Update(ctx, car)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, updated)
	return updated, nil
}

func (s *CarService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	if !principal.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, nil)
	return nil
}

func (s *CarService) Reviews(ctx context.Context, carID string) ([]domain.Review, error) {
	if _, err := s.repo.GetByID(ctx, carID); err != nil {
		return nil, err
	}
	return s.repo.Reviews(ctx, carID)
}

func (s *CarService) changed(ctx context.Context, car *domain.Car) {
	if s.cache != nil {
		if err := s.cache.InvalidateCars(ctx); err != nil {
			logger.Get().Warn("failed to invalidate car cache", zap.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Publish(broadcast.Event{Type: broadcast.EventCarUpdated, Car: car})
	}
}

var _ CarUseCase = (*CarService)(nil)
