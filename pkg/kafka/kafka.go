// Package kafka publishes and consumes shop events over Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"autoshop/pkg/events"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// readRetryDelay is how long Consume waits after a failed read.
const readRetryDelay = 2 * time.Second

// Broker publishes events to, and consumes them from, a Kafka cluster.
type Broker struct {
	brokers []string
	writer  *kafkago.Writer
	logger  zerolog.Logger
}

// NewBroker creates a Broker. The writer is shared; the topic is set per message.
func NewBroker(brokers []string, logger zerolog.Logger) *Broker {
	return &Broker{
		brokers: brokers,
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		logger: logger.With().Str("component", "kafka").Logger(),
	}
}

var _ events.Publisher = (*Broker)(nil)

// PublishEvent marshals event to JSON and writes it to topic keyed by key.
func (b *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = b.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to write to topic %s: %w", topic, err)
	}
	return nil
}

// Consume reads topic as part of groupID until ctx is done.
// Handler errors are logged and the message is committed anyway.
func (b *Broker) Consume(ctx context.Context, topic string, groupID string, handler events.Handler) {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: b.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info().Str("topic", topic).Msg("consumer shutting down")
				return
			}
			b.logger.Error().Err(err).Str("topic", topic).Dur("retry_in", readRetryDelay).Msg("error reading message")
			if !wait(ctx, readRetryDelay) {
				b.logger.Info().Str("topic", topic).Msg("consumer shutting down")
				return
			}
			continue
		}
		if err := handler(ctx, msg.Value); err != nil {
			b.logger.Error().Err(err).Str("topic", topic).Int64("offset", msg.Offset).Msg("error handling message")
		}
	}
}

// wait sleeps for d and reports false if ctx ends first.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close flushes and closes the writer.
func (b *Broker) Close() error {
	return b.writer.Close()
}
