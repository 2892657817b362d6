package broadcast

import (
	"sync"

	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/hivemotors/carbooking/internal/logger"
	"go.uber.org/zap"
)

const (
	EventBookingCreated               = "booking.created"
	EventBookingCancelled             = "booking.cancelled"
	EventBookingCancellationConfirmed = "booking.cancellation_confirmed"
	EventBookingCompleted             = "booking.completed"
	EventCarUpdated                   = "car.updated"
)

// Event is a full-snapshot notification pushed to connected observers.
type Event struct {
	Type    string          `json:"type"`
	Booking *domain.Booking `json:"booking,omitempty"`
	Car     *domain.Car     `json:"car,omitempty"`
}

// Observer receives events over a buffered channel. A reconnecting observer
// must re-fetch state through the list endpoints; missed events are not
// replayed.
type Observer struct {
	C chan Event
}

// Hub fans out state changes to registered observers. Publish never blocks:
// an observer whose buffer is full misses the event.
type Hub struct {
	mu        sync.RWMutex
	observers map[*Observer]struct{}
	buffer    int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		observers: make(map[*Observer]struct{}),
		buffer:    buffer,
	}
}

func (h *Hub) Register() *Observer {
	obs := &Observer{C: make(chan Event, h.buffer)}
	h.mu.Lock()
	h.observers[obs] = struct{}{}
	h.mu.Unlock()
	return obs
}

func (h *Hub) Unregister(obs *Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.observers[obs]; !ok {
		return
	}
	delete(h.observers, obs)
	close(obs.C)
}

func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for obs := range h.observers {
		select {
		case obs.C <- event:
		default:
			logger.Get().Warn("observer buffer full, dropping event",
				zap.String("type", event.Type))
		}
	}
}

func (h *Hub) ObserverCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}
