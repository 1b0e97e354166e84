package repositories

import (
	"context"

	"autoshop/internal/models"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle.
type Store struct {
	Users      UserRepository
	Products   ProductRepository
	Categories TaxonomyRepository[models.Category]
	Brands     TaxonomyRepository[models.Brand]
	Stock      StockMovementRepository
	Carts      CartRepository
	Orders     OrderRepository
	Promotions PromotionRepository
	Settings   SettingsRepository
}

// NewGORMStore builds a Store backed by db.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:      NewGORMUserRepository(db),
		Products:   NewGORMProductRepository(db),
		Categories: NewGORMCategoryRepository(db),
		Brands:     NewGORMBrandRepository(db),
		Stock:      NewGORMStockMovementRepository(db),
		Carts:      NewGORMCartRepository(db),
		Orders:     NewGORMOrderRepository(db),
		Promotions: NewGORMPromotionRepository(db),
		Settings:   NewGORMSettingsRepository(db),
	}
}

// UnitOfWork runs fn against a Store whose repositories share one transaction.
// A non-nil error from fn rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(store *Store) error) error
}

// GORMUnitOfWork is a UnitOfWork backed by gorm transactions.
type GORMUnitOfWork struct {
	db *gorm.DB
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{db: db}
}

// Do runs fn inside a database transaction.
func (u *GORMUnitOfWork) Do(ctx context.Context, fn func(store *Store) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
