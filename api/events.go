package api

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/hivemotors/carbooking/internal/broadcast"
)

type EventHandler struct {
	hub *broadcast.Hub
}

func NewEventHandler(hub *broadcast.Hub) *EventHandler {
	return &EventHandler{hub: hub}
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.stream)
}

// stream pushes booking and catalog changes to the client as server-sent
// events. The observer is dropped as soon as the client disconnects; there
// is no replay, a reconnecting client re-fetches state first.
func (h *EventHandler) stream(c *gin.Context) {
	observer := h.hub.Register()
	defer h.hub.Unregister(observer)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-observer.C:
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
