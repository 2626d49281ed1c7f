package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// UserDeletedHandler applies one user deletion. Failed messages are retried
// a few times and then skipped.
type UserDeletedHandler func(ctx context.Context, msg models.UserDeletedMessage) error

const handleAttempts = 3

type Consumer struct {
	reader messageReader
	log    *logger.Logger
}

// NewConsumer creates a new Kafka consumer for the given topic and group
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log}
}

// Run consumes user deletions until ctx is cancelled. Malformed messages are
// logged and committed so they do not block the partition.
func (c *Consumer) Run(ctx context.Context, handle UserDeletedHandler) error {
	c.log.Info("KAFKA", "🔄 User deletion consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			return err
		}

		var payload models.UserDeletedMessage
		if err := json.Unmarshal(msg.Value, &payload); err != nil || payload.UserID == "" {
			c.log.Warn("KAFKA", fmt.Sprintf("Skipping malformed message at offset %d: %v", msg.Offset, err))
		} else if err := c.handleWithRetry(ctx, handle, payload); err != nil {
			c.log.Error("KAFKA", fmt.Sprintf("Giving up on deletion of user %s: %v", payload.UserID, err))
		} else {
			c.log.LogKafka("CONSUME", msg.Topic, fmt.Sprintf("user %s removed", payload.UserID))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("KAFKA", fmt.Sprintf("Failed to commit offset %d: %v", msg.Offset, err))
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handle UserDeletedHandler, msg models.UserDeletedMessage) error {
	var err error
	for attempt := 1; attempt <= handleAttempts; attempt++ {
		if err = handle(ctx, msg); err == nil {
			return nil
		}
		c.log.Warn("KAFKA", fmt.Sprintf("Deletion of user %s failed (attempt %d/%d): %v", msg.UserID, attempt, handleAttempts, err))
	}
	return err
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
