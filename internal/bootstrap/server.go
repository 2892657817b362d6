package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hivemotors/carbooking/api"
	"github.com/hivemotors/carbooking/config"
	"github.com/hivemotors/carbooking/internal/broadcast"
	"github.com/hivemotors/carbooking/internal/service/auth"
	"github.com/hivemotors/carbooking/internal/service/booking"
	"github.com/hivemotors/carbooking/internal/service/cars"
)

// Run builds the HTTP router, starts the server and blocks until the context
// is cancelled or the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	authSvc auth.AuthUseCase,
	carSvc cars.CarUseCase,
	bookingSvc booking.BookingUseCase,
	hub *broadcast.Hub,
) error {
	router := NewRouter(authSvc, carSvc, bookingSvc, hub)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(
	authSvc auth.AuthUseCase,
	carSvc cars.CarUseCase,
	bookingSvc booking.BookingUseCase,
	hub *broadcast.Hub,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	authMiddleware := api.AuthRequired(authSvc)

	api.NewAuthHandler(authSvc).Register(router.Group("/api/auth"))
	api.NewCarHandler(carSvc).Register(router.Group("/api/cars"), authMiddleware)
	api.NewBookingHandler(bookingSvc).Register(router.Group("/api/bookings"), authMiddleware)
	api.NewEventHandler(hub).Register(router.Group("/api/events"))

	return router
}
