package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/cuervo/internal/application/service"
	"github.com/khoahotran/cuervo/internal/config"
	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/pkg/logger"
)

const (
	TopicProfileEvents = "profile.events"
)

type KafkaProducerClient struct {
	ProfileEventsWriter *kafka.Writer
	logger              logger.Logger
}

var _ service.ProfileEventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'profile.events', keyed by owner so one owner's events stay ordered
	profileWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicProfileEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		ProfileEventsWriter: profileWriter,
		logger:              log,
	}, nil
}

func (c *KafkaProducerClient) PublishProfileEvent(ctx context.Context, e profile.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal profile event: %w", err)
	}

	err = c.ProfileEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OwnerID.String()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write profile event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.ProfileEventsWriter != nil {
		if err := c.ProfileEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// DecodeProfileEvent parses a message read from TopicProfileEvents.
func DecodeProfileEvent(msg kafka.Message) (profile.Event, error) {
	var e profile.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return profile.Event{}, fmt.Errorf("failed to unmarshal profile event: %w", err)
	}
	if e.OwnerID == uuid.Nil {
		return profile.Event{}, fmt.Errorf("profile event without owner_id")
	}
	return e, nil
}
