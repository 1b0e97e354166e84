// Package events defines the messages the shop emits and the transports that carry them.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Topics, also used as AMQP routing keys.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

// Publisher sends an event to topic. key identifies the aggregate the event belongs to.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Handler processes one raw message body.
type Handler func(ctx context.Context, payload []byte) error

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// PublishEvent does nothing.
func (NopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

// OrderItem is one line of an order as carried in events.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Email is a rendered notification ready for delivery.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// OrderEvent is published when an order is placed or changes status.
type OrderEvent struct {
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Items          []OrderItem     `json:"items,omitempty"`
	Email          *Email          `json:"email,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
