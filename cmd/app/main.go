package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avialane/charterops/config"
	"github.com/avialane/charterops/internal/bootstrap"
	"github.com/avialane/charterops/internal/cache"
	"github.com/avialane/charterops/internal/kafka"
	"github.com/avialane/charterops/internal/repository"
	"github.com/avialane/charterops/internal/service/booking"
	"github.com/avialane/charterops/internal/service/scheduling"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Scheduling.FleetCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	resourceRepo := repository.NewResourceRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	schedulingService := scheduling.NewSchedulingService(resourceRepo, bookingRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		schedulingService,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Scheduling.AssignLockTTLSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, schedulingService, bookingService, resourceRepo); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
