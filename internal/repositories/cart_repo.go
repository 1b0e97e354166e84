package repositories

import (
	"context"

	"autoshop/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUser returns the user's cart with items and products, or nil when the user has none.
	GetByUser(ctx context.Context, userID string) (*models.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	// LockByUser locks the user's cart row until the surrounding transaction
	// ends. Items are not loaded. Returns nil when the user has no cart.
	LockByUser(ctx context.Context, userID string) (*models.Cart, error)
	// AddItem inserts a line or increments the quantity of the existing line for the product.
	AddItem(ctx context.Context, cartID, productID string, quantity int) (*models.CartItem, error)
	SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}
