package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hivemotors/carbooking/config"
	"github.com/hivemotors/carbooking/internal/email"
	"github.com/hivemotors/carbooking/internal/kafka"
	"github.com/hivemotors/carbooking/internal/logger"
	"github.com/hivemotors/carbooking/internal/repository"
	"github.com/hivemotors/carbooking/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	carRepo := repository.NewCarRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	bookingSvc := booking.NewBookingService(
		bookingRepo,
		carRepo,
		userRepo,
		nil,
		producer,
		cfg.Kafka.BookingEventsTopic,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(cfg.Mail)

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				zlog.Warn("skipping undecodable notification", zap.Error(err))
				return nil
			}
			return sender.Send(ctx, event)
		})
		if err != nil {
			zlog.Info("notifications consumer stopped", zap.Error(err))
		}
	}()

	// Completion sweep: bookings whose interval has elapsed without
	// cancellation become Completed.
	c := cron.New()
	if _, err := c.AddFunc(cfg.Worker.CompletionCron, func() {
		completed, err := bookingSvc.CompleteElapsed(ctx)
		if err != nil {
			zlog.Error("completion sweep failed", zap.Error(err))
			return
		}
		if len(completed) > 0 {
			zlog.Info("completed elapsed bookings", zap.Int("count", len(completed)))
		}
	}); err != nil {
		log.Fatalf("schedule completion sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	zlog.Info("worker shutting down")
}
