package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jeremyjsx/blog/internal/config"
	"github.com/jeremyjsx/blog/internal/events"
	"github.com/jeremyjsx/blog/internal/mirror"
	"github.com/jeremyjsx/blog/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	if _, err := store.Exists(ctx, mirror.Key("__health__")); err != nil {
		logger.Error("storage unreachable", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	m := mirror.New(store, logger)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	q, err := events.BindQueue(ch, events.QueueName)
	if err != nil {
		logger.Error("failed to set up queue", "error", err)
		os.Exit(1)
	}

	if err := ch.Qos(10, 0, false); err != nil {
		logger.Error("failed to set prefetch", "error", err)
		os.Exit(1)
	}

	deliveries, err := ch.Consume(q.Name, "mirror-worker", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		os.Exit(1)
	}

	logger.Info("mirror worker started", "queue", q.Name, "storage", cfg.StorageDriver)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handleDelivery(logger, m, d)
		}
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "minio":
		return storage.NewMinioStorage(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required")
		}
		client, err := storage.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Storage(client, cfg.S3Bucket), nil
	default:
		return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
	}
}

func handleDelivery(logger *slog.Logger, m *mirror.Mirror, d amqp.Delivery) {
	var e events.Event
	if err := json.Unmarshal(d.Body, &e); err != nil {
		logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := m.Apply(ctx, e)
	switch {
	case errors.Is(err, mirror.ErrUnknownEvent):
		logger.Debug("ignoring event type", "type", e.Type)
	case errors.Is(err, mirror.ErrMalformedEvent):
		logger.Error("dropping event", "error", err)
		_ = d.Nack(false, false)
		return
	case err != nil:
		logger.Error("mirror failed", "type", e.Type, "post_id", e.Payload.ID, "error", err)
		_ = d.Nack(false, true)
		return
	}

	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}
