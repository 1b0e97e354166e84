package repositories

import (
	"context"

	"autoshop/internal/models"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategorySlug  string
	BrandSlug     string
	Search        string
	PublishedOnly bool
	Page          int
	PageSize      int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, slug string) error
	SetPublished(ctx context.Context, slugs []string, published bool) (int64, error)
	SetCategory(ctx context.Context, slugs []string, categoryID string) (int64, error)
	ListLowStock(ctx context.Context, defaultThreshold int) ([]models.Product, error)
	AddImage(ctx context.Context, image *models.ProductImage) error
	ListImages(ctx context.Context, productID string) ([]models.ProductImage, error)
	AddReview(ctx context.Context, review *models.Review) error
	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
}

// TaxonomyRepository stores slug-addressed classifiers such as categories and brands.
type TaxonomyRepository[T any] interface {
	List(ctx context.Context) ([]T, error)
	GetBySlug(ctx context.Context, slug string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, slug string) error
}

// StockMovementRepository appends and lists stock movements.
// Movements are never updated or deleted.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *models.StockMovement) error
	ListByProduct(ctx context.Context, productID string) ([]models.StockMovement, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.StockMovement, error)
}
