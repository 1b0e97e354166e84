package services

import (
	"context"

	"autoshop/internal/models"
	"autoshop/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AddItemInput adds a product to the cart by slug or id.
type AddItemInput struct {
	ProductSlug string `json:"product_slug"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
}

// QuantityUpdate sets the quantity of one cart line; zero or less removes it.
type QuantityUpdate struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity"`
}

// CartView is a cart with its live total.
type CartView struct {
	*models.Cart
	Total decimal.Decimal `json:"total"`
}

func viewOf(cart *models.Cart) *CartView {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &CartView{Cart: cart, Total: cart.Total()}
}

// CartService manages per-user shopping carts.
type CartService struct {
	store  *repositories.Store
	uow    repositories.UnitOfWork
	logger zerolog.Logger
}

// NewCartService creates a new CartService.
func NewCartService(store *repositories.Store, uow repositories.UnitOfWork, logger zerolog.Logger) *CartService {
	return &CartService{
		store:  store,
		uow:    uow,
		logger: logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.store.Carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

// AddItem adds quantity units of a product, merging with an existing line.
// Stock is not checked here; it is settled when the order is placed.
// Writes hold the cart lock so they never interleave with a checkout.
func (s *CartService) AddItem(ctx context.Context, userID string, in AddItemInput) (*models.CartItem, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	var (
		product *models.Product
		err     error
	)
	switch {
	case in.ProductSlug != "":
		product, err = s.store.Products.GetBySlug(ctx, in.ProductSlug)
	case in.ProductID != "":
		product, err = s.store.Products.GetByID(ctx, in.ProductID)
	default:
		return nil, models.FieldError("product_slug", "Either product_slug or product_id is required.")
	}
	if err != nil {
		return nil, err
	}
	if !product.IsPublished {
		return nil, models.ErrProductNotFound
	}

	if _, err := s.store.Carts.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	var item *models.CartItem
	err = s.uow.Do(ctx, func(tx *repositories.Store) error {
		cart, err := tx.Carts.LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return models.ErrUserNotFound
		}
		item, err = tx.Carts.AddItem(ctx, cart.ID, product.ID, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("user_id", userID).Str("product", product.Slug).Int("quantity", item.Quantity).Msg("cart item added")
	return item, nil
}

// RemoveItem deletes one line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if itemID == "" {
		return models.FieldError("item_id", "This field is required.")
	}
	return s.uow.Do(ctx, func(tx *repositories.Store) error {
		cart, err := tx.Carts.LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return models.ErrCartItemNotFound
		}
		return tx.Carts.RemoveItem(ctx, cart.ID, itemID)
	})
}

// SetQuantities updates several lines at once, atomically.
func (s *CartService) SetQuantities(ctx context.Context, userID string, updates []QuantityUpdate) (*CartView, error) {
	for _, u := range updates {
		if err := validateInput(u); err != nil {
			return nil, err
		}
	}
	if _, err := s.store.Carts.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	err := s.uow.Do(ctx, func(tx *repositories.Store) error {
		cart, err := tx.Carts.LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return models.ErrUserNotFound
		}
		for _, u := range updates {
			var err error
			if u.Quantity <= 0 {
				err = tx.Carts.RemoveItem(ctx, cart.ID, u.ID)
			} else {
				err = tx.Carts.SetItemQuantity(ctx, cart.ID, u.ID, u.Quantity)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.uow.Do(ctx, func(tx *repositories.Store) error {
		cart, err := tx.Carts.LockByUser(ctx, userID)
		if err != nil || cart == nil {
			return err
		}
		return tx.Carts.Clear(ctx, cart.ID)
	})
}
