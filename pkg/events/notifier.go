package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// LogNotifier consumes order events and logs the notifications they carry.
// It stands in for a mail sender.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

// Handle decodes an OrderEvent and logs its email, if any.
func (n *LogNotifier) Handle(_ context.Context, payload []byte) error {
	var event OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	if event.Email == nil {
		n.logger.Debug().Str("order_id", event.OrderID).Str("status", event.Status).Msg("order event without email")
		return nil
	}
	n.logger.Info().
		Str("order_id", event.OrderID).
		Str("to", event.Email.To).
		Str("subject", event.Email.Subject).
		Msg("order notification")
	return nil
}
