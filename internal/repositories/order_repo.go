package repositories

import (
	"context"

	"autoshop/internal/models"
)

// OrderFilter narrows an order listing. Empty fields match everything.
type OrderFilter struct {
	UserID   string
	Status   models.OrderStatus
	Page     int
	PageSize int
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// Create inserts the order together with its items.
	Create(ctx context.Context, order *models.Order) error
	// UpdateStatus moves the order from one status to another; it fails if the
	// stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	// Delete removes the order and its items. Stock movements keep their
	// history with the order reference cleared.
	Delete(ctx context.Context, id string) error
}
