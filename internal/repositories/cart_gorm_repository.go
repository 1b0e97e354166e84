package repositories

import (
	"context"
	"errors"
	"time"

	"autoshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) load(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetByUser returns the user's cart, or nil when none exists yet.
func (r *GORMCartRepository) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := r.load(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, nil, "get cart of user %s", userID)
	}
	return cart, nil
}

// LockByUser takes a row lock on the user's cart. SQLite has no row locks;
// its single connection serializes transactions instead.
func (r *GORMCartRepository) LockByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, nil, "lock cart of user %s", userID)
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating an empty one on first use.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := r.GetByUser(ctx, userID)
	if err != nil || cart != nil {
		return cart, err
	}

	cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	err = r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another request created it first.
		return r.GetByUser(ctx, userID)
	}
	if err != nil {
		return nil, translate(err, nil, "create cart for user %s", userID)
	}
	return cart, nil
}

// AddItem upserts the (cart, product) line, adding quantity to an existing line.
func (r *GORMCartRepository) AddItem(ctx context.Context, cartID, productID string, quantity int) (*models.CartItem, error) {
	db := r.db.WithContext(ctx)
	item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, translate(err, nil, "add product %s to cart %s", productID, cartID)
	}

	var stored models.CartItem
	err = db.Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&stored).Error
	if err != nil {
		return nil, translate(err, models.ErrCartItemNotFound, "reload cart item for product %s", productID)
	}
	return &stored, nil
}

// SetItemQuantity overwrites the quantity of one line of the cart.
func (r *GORMCartRepository) SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if res.Error != nil {
		return translate(res.Error, nil, "update cart item %s", itemID)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, models.ErrCartItemNotFound, "update cart item %s", itemID)
	}
	return nil
}

// RemoveItem deletes one line of the cart.
func (r *GORMCartRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return translate(res.Error, nil, "remove cart item %s", itemID)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, models.ErrCartItemNotFound, "remove cart item %s", itemID)
	}
	return nil
}

// Clear deletes every line of the cart; the cart itself stays.
func (r *GORMCartRepository) Clear(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return translate(err, nil, "clear cart %s", cartID)
	}
	return nil
}
