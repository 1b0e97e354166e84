package repositories

import (
	"context"
	"errors"

	"autoshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMStockMovementRepository is a GORM implementation of StockMovementRepository.
type GORMStockMovementRepository struct {
	db *gorm.DB
}

// NewGORMStockMovementRepository creates a new instance of GORMStockMovementRepository.
func NewGORMStockMovementRepository(db *gorm.DB) *GORMStockMovementRepository {
	return &GORMStockMovementRepository{db: db}
}

// Create records a movement. The model's AfterCreate hook applies it to the
// product's stock and fills StockAfter.
func (r *GORMStockMovementRepository) Create(ctx context.Context, movement *models.StockMovement) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(movement).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			err = gorm.ErrRecordNotFound
		}
		return translate(err, models.ErrProductNotFound, "record %s movement for product %s", movement.Kind, movement.ProductID)
	}
	return nil
}

// ListByProduct returns a product's movements, newest first.
func (r *GORMStockMovementRepository) ListByProduct(ctx context.Context, productID string) ([]models.StockMovement, error) {
	return r.list(ctx, "product_id = ?", productID)
}

// ListByOrder returns the movements an order produced.
func (r *GORMStockMovementRepository) ListByOrder(ctx context.Context, orderID string) ([]models.StockMovement, error) {
	return r.list(ctx, "order_id = ?", orderID)
}

func (r *GORMStockMovementRepository) list(ctx context.Context, query string, arg string) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC, id").
		Find(&movements).Error
	if err != nil {
		return nil, translate(err, nil, "list stock movements")
	}
	return movements, nil
}
