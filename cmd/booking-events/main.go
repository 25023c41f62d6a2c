package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spacelink/internal/bookings/events"
	"spacelink/pkg/config"
	"spacelink/pkg/kafka"
	kafka_config "spacelink/pkg/kafka/config"
	kafka_middleware "spacelink/pkg/kafka/middleware"
)

const (
	ServiceName     = "booking-events"
	metricsInterval = time.Minute
)

// booking-events consumes lifecycle events and writes one audit log line
// per booking change. It needs Kafka but no database.
func main() {
	cfg := config.Load(ServiceName)
	if !cfg.KafkaEnabled() {
		cfg.Log.Fatal("KAFKA_BROKERS must be set")
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.BookingEventsGroup,
		events.DLQTopic(cfg.BookingEventsTopic),
		events.AuditHandler(cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reportMetrics(ctx, metrics, cfg)

	cfg.Log.Info("Starting booking events consumer", "topic", cfg.BookingEventsTopic, "group", cfg.BookingEventsGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	metrics.LogSnapshot(cfg.Log)
	cfg.Log.Info("Booking events consumer stopped")
}

func reportMetrics(ctx context.Context, metrics *kafka_middleware.Metrics, cfg *config.Config) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.LogSnapshot(cfg.Log)
		}
	}
}
