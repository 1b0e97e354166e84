package repositories

import (
	"context"

	"autoshop/internal/models"

	"gorm.io/gorm"
)

// GORMTaxonomyRepository is a GORM implementation of TaxonomyRepository.
type GORMTaxonomyRepository[T any] struct {
	db       *gorm.DB
	name     string
	notFound error
}

// NewGORMCategoryRepository creates a category repository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMTaxonomyRepository[models.Category] {
	return &GORMTaxonomyRepository[models.Category]{db: db, name: "category", notFound: models.ErrCategoryNotFound}
}

// NewGORMBrandRepository creates a brand repository.
func NewGORMBrandRepository(db *gorm.DB) *GORMTaxonomyRepository[models.Brand] {
	return &GORMTaxonomyRepository[models.Brand]{db: db, name: "brand", notFound: models.ErrBrandNotFound}
}

// List returns all items ordered by name.
func (r *GORMTaxonomyRepository[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.db.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, translate(err, nil, "list %s", r.name)
	}
	return items, nil
}

// GetBySlug retrieves one item by slug.
func (r *GORMTaxonomyRepository[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, translate(err, r.notFound, "get %s %s", r.name, slug)
	}
	return &item, nil
}

// Create inserts a new item.
func (r *GORMTaxonomyRepository[T]) Create(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return translate(err, nil, "create %s", r.name)
	}
	return nil
}

// Update saves all fields of item.
func (r *GORMTaxonomyRepository[T]) Update(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return translate(err, nil, "update %s", r.name)
	}
	return nil
}

// Delete removes the item with slug. Items still referenced by products are kept.
func (r *GORMTaxonomyRepository[T]) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error, nil, "delete %s %s", r.name, slug)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, r.notFound, "delete %s %s", r.name, slug)
	}
	return nil
}
