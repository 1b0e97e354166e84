package repositories

import (
	"context"

	"autoshop/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func orderFilter(f OrderFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		return db
	}
}

// List returns one page of orders, newest first, with their items.
func (r *GORMOrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Order{}).Scopes(orderFilter(f)).Count(&total).Error; err != nil {
		return nil, 0, translate(err, nil, "count orders")
	}

	var orders []models.Order
	err := db.Scopes(orderFilter(f), paginate(f.Page, f.PageSize)).
		Preload("Items.Product").
		Order("created_at DESC, id").
		Find(&orders).Error
	if err != nil {
		return nil, 0, translate(err, nil, "list orders")
	}
	return orders, total, nil
}

// GetByID retrieves an order with its items and their products.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, models.ErrOrderNotFound, "get order %s", id)
	}
	return &order, nil
}

// Create inserts the order and its items. Item products must be left nil.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(order).Error; err != nil {
		return translate(err, nil, "create order for user %s", order.UserID)
	}
	return nil
}

// UpdateStatus performs a compare-and-set on the order status.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return translate(res.Error, nil, "update status of order %s", id)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, models.ErrInvalidTransition, "update status of order %s from %s", id, from)
	}
	return nil
}

// Delete deletes an order and its items and detaches its stock movements.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.StockMovement{}).Where("order_id = ?", id).Update("order_id", nil).Error
		if err != nil {
			return translate(err, nil, "detach stock movements of order %s", id)
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return translate(err, nil, "delete items of order %s", id)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, nil, "delete order %s", id)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, models.ErrOrderNotFound, "delete order %s", id)
		}
		return nil
	})
}
