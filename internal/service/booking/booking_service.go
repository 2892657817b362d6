package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hivemotors/carbooking/internal/broadcast"
	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/hivemotors/carbooking/internal/kafka"
	"github.com/hivemotors/carbooking/internal/logger"
	"github.com/hivemotors/carbooking/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Create(ctx context.Context, principal domain.Principal, input CreateBookingInput) (*domain.Booking, error)
	Cancel(ctx context.Context, principal domain.Principal, id string, input CancelBookingInput) (*domain.Booking, error)
	ConfirmCancellation(ctx context.Context, id string) (*domain.Booking, error)
	CompleteElapsed(ctx context.Context) ([]domain.Booking, error)
	Get(ctx context.Context, id string) (*domain.Booking, error)
	ListForCar(ctx context.Context, carID string) ([]domain.Booking, error)
	ListForCustomer(ctx context.Context, principal domain.Principal) ([]domain.Booking, error)
	ListActive(ctx context.Context) ([]domain.Booking, error)
	CurrentStatus(ctx context.Context, carID string) (*CarStatus, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	CarID    string          `json:"car_id"`
	Interval domain.Interval `json:"interval"`
}

type CancelBookingInput struct {
	Feedback *string `json:"feedback,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
}

// CarStatus answers "is this car free right now".
type CarStatus struct {
	Available bool            `json:"available"`
	Current   *domain.Booking `json:"current,omitempty"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	cars               repository.CarRepository
	users              repository.UserRepository
	hub                *broadcast.Hub
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	cars repository.CarRepository,
	users repository.UserRepository,
	hub *broadcast.Hub,
	producer Producer,
	eventsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		cars:        cars,
		users:       users,
		hub:         hub,
		producer:    producer,
		eventsTopic: eventsTopic,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Create admits a reservation. The role check runs before anything else:
// administrators manage the fleet, they do not book from it. The conflict
// check and the insert happen as one operation inside the store.
func (s *BookingService) Create(ctx context.Context, principal domain.Principal, input CreateBookingInput) (*domain.Booking, error) {
	if principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := input.Interval.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.cars.GetByID(ctx, input.CarID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:         uuid.NewString(),
		CarID:      input.CarID,
		CustomerID: principal.ID,
		Interval:   input.Interval,
		Status:     domain.BookingStatusBooked,
	}
	if err := s.bookings.CreateBooked(ctx, booking); err != nil {
		return nil, err
	}

	s.emit(ctx, broadcast.EventBookingCreated, booking, true)
	return booking, nil
}

// Cancel transitions Booked -> Cancelled. Only the owning customer or an
// administrator may cancel; feedback and a 1..5 rating may be attached.
func (s *BookingService) Cancel(ctx context.Context, principal domain.Principal, id string, input CancelBookingInput) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CustomerID != principal.ID && !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.BookingStatusBooked {
		return nil, domain.ErrNotBooked
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, domain.ErrInvalidRating
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled, input.Feedback, input.Rating)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, broadcast.EventBookingCancelled, updated, true)
	return updated, nil
}

// ConfirmCancellation finalizes a cancellation. Confirming twice is a no-op
// success so duplicate e-mail links stay harmless; only a booking that was
// never cancelled is rejected.
func (s *BookingService) ConfirmCancellation(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusCancelled {
		return nil, domain.ErrNotCancelled
	}
	if current.CancellationConfirmed {
		return current, nil
	}

	updated, err := s.bookings.ConfirmCancellation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, broadcast.EventBookingCancellationConfirmed, updated, false)
	return updated, nil
}

// CompleteElapsed marks Booked reservations whose interval has fully passed
// as Completed. The worker runs it on a schedule.
func (s *BookingService) CompleteElapsed(ctx context.Context) ([]domain.Booking, error) {
	completed, err := s.bookings.CompleteElapsedBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range completed {
		s.emit(ctx, broadcast.EventBookingCompleted, &completed[i], false)
	}
	return completed, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListForCar(ctx context.Context, carID string) ([]domain.Booking, error) {
	return s.bookings.ListByCar(ctx, carID)
}

func (s *BookingService) ListForCustomer(ctx context.Context, principal domain.Principal) ([]domain.Booking, error) {
	return s.bookings.ListByCustomer(ctx, principal.ID)
}

func (s *BookingService) ListActive(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListActive(ctx)
}

func (s *BookingService) CurrentStatus(ctx context.Context, carID string) (*CarStatus, error) {
	active, err := s.bookings.ListActiveByCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	current := CurrentBooking(active, s.now())
	return &CarStatus{Available: current == nil, Current: current}, nil
}

// emit pushes the transition to connected observers and onto Kafka. Fan-out
// is fire-and-forget: a failed publish is logged and the completed state
// transition stands.
func (s *BookingService) emit(ctx context.Context, eventType string, booking *domain.Booking, notify bool) {
	if s.hub != nil {
		s.hub.Publish(broadcast.Event{Type: eventType, Booking: booking})
	}
	if s.producer == nil {
		return
	}

	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		CarID:      booking.CarID,
		CustomerID: booking.CustomerID,
		Start:      booking.Interval.Start,
		End:        booking.Interval.End,
		Status:     string(booking.Status),
	}
	if user, err := s.users.GetByID(ctx, booking.CustomerID); err == nil {
		event.CustomerName = user.Name
		event.CustomerEmail = user.Email
	}
	if car, err := s.cars.GetByID(ctx, booking.CarID); err == nil {
		event.CarLabel = fmt.Sprintf("%s %s (%s)", car.Make, car.Model, car.RegNo)
	}

	if s.eventsTopic != "" {
		if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
			logger.Get().Warn("failed to publish booking event",
				zap.String("type", eventType), zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}
	if notify && s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			logger.Get().Warn("failed to publish notification",
				zap.String("type", eventType), zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
