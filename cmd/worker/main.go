package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/cuervo/adapters/event"
	"github.com/khoahotran/cuervo/adapters/media_storage"
	"github.com/khoahotran/cuervo/adapters/persistence"
	"github.com/khoahotran/cuervo/internal/application/usecase/share"
	"github.com/khoahotran/cuervo/internal/config"
	"github.com/khoahotran/cuervo/pkg/logger"
	"github.com/khoahotran/cuervo/pkg/tracing"
)

func main() {
	fmt.Println("Starting Cuervo Worker...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: cannot load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "cuervo-worker")
	if err != nil {
		appLogger.Fatal("Cannot init tracer provider", err)
	}
	defer tracing.Shutdown(context.Background(), tp, appLogger)

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Cloudinary Uploader
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("Cloudinary not configured, QR images will not be archived", zap.Error(err))
	}

	qrGenerator, err := share.NewQRGenerator(cfg.App.PublicBaseURL, cfg.QR.Endpoint, cfg.QR.Size)
	if err != nil {
		appLogger.Fatal("Invalid QR configuration", err)
	}

	// Worker Use Case
	processEventUC := share.NewProcessProfileEventUseCase(
		persistence.NewPostgresProfileRepo(dbPool, appLogger),
		persistence.NewRedisPublicCache(redisClient, cfg.Public.CacheTTL),
		qrGenerator,
		uploader,
		appLogger,
	)

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Cannot start worker", errors.New("config Kafka brokers not found"))
	}

	// Kafka Consumer
	profileConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicProfileEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer profileConsumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicProfileEvents), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := profileConsumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		msgLog := appLogger.With(zap.String("topic", msg.Topic), zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset))

		payload, err := event.DecodeProfileEvent(msg)
		if err != nil {
			msgLog.Error("Failed to decode event, skipping", err)
			commitMessage(ctx, profileConsumer, msg, msgLog)
			continue
		}

		// The offset is only committed once the event went through, so a
		// shutdown mid-retry redelivers it to the next consumer.
		if err := processEventUC.ExecuteWithRetry(ctx, payload, cfg.Kafka.RetryBackoff, cfg.Kafka.RetryMaxBackoff); err != nil {
			msgLog.Error("Profile event left uncommitted", err, zap.String("event_type", string(payload.EventType)))
			appLogger.Info("Worker stopped")
			return
		}

		commitMessage(ctx, profileConsumer, msg, msgLog)
	}
}

func commitMessage(ctx context.Context, consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(ctx, msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
