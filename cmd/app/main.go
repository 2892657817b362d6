package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hivemotors/carbooking/config"
	"github.com/hivemotors/carbooking/internal/bootstrap"
	"github.com/hivemotors/carbooking/internal/broadcast"
	"github.com/hivemotors/carbooking/internal/cache"
	"github.com/hivemotors/carbooking/internal/kafka"
	"github.com/hivemotors/carbooking/internal/logger"
	"github.com/hivemotors/carbooking/internal/repository"
	"github.com/hivemotors/carbooking/internal/service/auth"
	"github.com/hivemotors/carbooking/internal/service/booking"
	"github.com/hivemotors/carbooking/internal/service/cars"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog := logger.Get()
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CarsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	hub := broadcast.NewHub(cfg.Booking.EventBufferSize)

	userRepo := repository.NewUserRepository(pool)
	carRepo := repository.NewCarRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	authSvc := auth.NewAuthService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	carSvc := cars.NewCarService(carRepo, redisCache, hub)
	bookingSvc := booking.NewBookingService(
		bookingRepo,
		carRepo,
		userRepo,
		hub,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, authSvc, carSvc, bookingSvc, hub); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
