package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hivemotors/carbooking/internal/domain"
	"github.com/hivemotors/carbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	CarID string    `json:"car_id" binding:"required"`
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

type cancelBookingRequest struct {
	Feedback *string `json:"feedback"`
	Rating   *int    `json:"rating"`
}

type bookingResponse struct {
	ID                    string    `json:"id"`
	CarID                 string    `json:"car_id"`
	CustomerID            string    `json:"customer_id"`
	Start                 time.Time `json:"start"`
	End                   time.Time `json:"end"`
	Status                string    `json:"status"`
	CancellationConfirmed bool      `json:"cancellation_confirmed"`
	Feedback              *string   `json:"feedback,omitempty"`
	Rating                *int      `json:"rating,omitempty"`
}

type carStatusResponse struct {
	Status  string           `json:"status"`
	Booking *bookingResponse `json:"booking,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	router.POST("/", authMiddleware, h.create)
	router.PATCH("/:id/cancel", authMiddleware, h.cancel)
	router.GET("/:id/confirm-cancellation", h.confirmCancellation)
	router.GET("/car/:carID", h.listForCar)
	router.GET("/car/:carID/status", h.carStatus)
	router.GET("/customer", authMiddleware, h.listForCustomer)
	router.GET("/active", h.listActive)
}

func (h *BookingHandler) create(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), principal, booking.CreateBookingInput{
		CarID:    req.CarID,
		Interval: domain.Interval{Start: req.Start, End: req.End},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), principal, c.Param("id"), booking.CancelBookingInput{
		Feedback: req.Feedback,
		Rating:   req.Rating,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) confirmCancellation(c *gin.Context) {
	confirmed, err := h.service.ConfirmCancellation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "cancellation confirmed",
		"booking": toBookingResponse(confirmed),
	})
}

func (h *BookingHandler) listForCar(c *gin.Context) {
	bookings, err := h.service.ListForCar(c.Request.Context(), c.Param("carID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) carStatus(c *gin.Context) {
	status, err := h.service.CurrentStatus(c.Request.Context(), c.Param("carID"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := carStatusResponse{Status: "Available"}
	if !status.Available {
		resp.Status = string(domain.BookingStatusBooked)
		resp.Booking = toBookingResponse(status.Current)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) listForCustomer(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	bookings, err := h.service.ListForCustomer(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) listActive(c *gin.Context) {
	bookings, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func toBookingResponse(b *domain.Booking) *bookingResponse {
	if b == nil {
		return nil
	}
	return &bookingResponse{
		ID:                    b.ID,
		CarID:                 b.CarID,
		CustomerID:            b.CustomerID,
		Start:                 b.Interval.Start,
		End:                   b.Interval.End,
		Status:                string(b.Status),
		CancellationConfirmed: b.CancellationConfirmed,
		Feedback:              b.Feedback,
		Rating:                b.Rating,
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *toBookingResponse(&bookings[i]))
	}
	return out
}
