package broadcast

import (
	"testing"

	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesAllObservers(t *testing.T) {
	hub := NewHub(4)

	first := hub.Register()
	second := hub.Register()
	assert.Equal(t, 2, hub.ObserverCount())

	booking := &domain.Booking{ID: "bk-1", CarID: "car-1"}
	hub.Publish(Event{Type: EventBookingCreated, Booking: booking})

	got := <-first.C
	assert.Equal(t, EventBookingCreated, got.Type)
	assert.Equal(t, "bk-1", got.Booking.ID)

	got = <-second.C
	assert.Equal(t, EventBookingCreated, got.Type)
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub(4)

	obs := hub.Register()
	hub.Unregister(obs)
	assert.Equal(t, 0, hub.ObserverCount())

	_, open := <-obs.C
	assert.False(t, open)

	// Unregistering twice is harmless.
	hub.Unregister(obs)
}

func TestHub_PublishNeverBlocksOnFullBuffer(t *testing.T) {
	hub := NewHub(1)

	obs := hub.Register()
	hub.Publish(Event{Type: EventBookingCreated})
	// Buffer is full; this one is dropped instead of blocking.
	hub.Publish(Event{Type: EventBookingCancelled})

	got := <-obs.C
	assert.Equal(t, EventBookingCreated, got.Type)

	select {
	case extra := <-obs.C:
		t.Fatalf("expected dropped event, got %q", extra.Type)
	default:
	}
}

func TestHub_PublishWithoutObservers(t *testing.T) {
	hub := NewHub(4)
	hub.Publish(Event{Type: EventCarUpdated, Car: &domain.Car{ID: "car-1"}})
	assert.Equal(t, 0, hub.ObserverCount())
}
