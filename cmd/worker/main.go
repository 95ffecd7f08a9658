package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avialane/charterops/config"
	"github.com/avialane/charterops/internal/cache"
	"github.com/avialane/charterops/internal/kafka"
	"github.com/avialane/charterops/internal/notify"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := notify.NewSender()

	go func() {
		if err := consumer.Consume(ctx, sender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.OverdueSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			cancelled, err := bookingService.CancelOverdueRequests(ctx)
			if err != nil {
				log.Printf("overdue sweep error: %v", err)
				continue
			}
			if len(cancelled) > 0 {
				log.Printf("cancelled %d overdue booking requests", len(cancelled))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
