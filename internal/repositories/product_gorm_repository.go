package repositories

import (
	"context"
	"strings"

	"autoshop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) filter(f ProductFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.PublishedOnly {
			db = db.Where("products.is_published = ?", true)
		}
		if f.CategorySlug != "" {
			db = db.Where("products.category_id IN (?)",
				r.db.Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
		}
		if f.BrandSlug != "" {
			db = db.Where("products.brand_id IN (?)",
				r.db.Model(&models.Brand{}).Select("id").Where("slug = ?", f.BrandSlug))
		}
		if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
			like := "%" + term + "%"
			db = db.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
		}
		return db
	}
}

// List returns one page of products matching filter and the total match count.
func (r *GORMProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Product{}).Scopes(r.filter(f)).Count(&total).Error; err != nil {
		return nil, 0, translate(err, nil, "count products")
	}

	var products []models.Product
	err := db.Scopes(r.filter(f), paginate(f.Page, f.PageSize)).
		Preload("Category").
		Preload("Brand").
		Order("products.created_at DESC, products.id").
		Find(&products).Error
	if err != nil {
		return nil, 0, translate(err, nil, "list products")
	}
	return products, total, nil
}

// GetBySlug retrieves a product with its category, brand and images.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMProductRepository) first(ctx context.Context, query string, arg interface{}) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position, created_at") }).
		Where(query, arg).
		First(&product).Error
	if err != nil {
		return nil, translate(err, models.ErrProductNotFound, "get product %v", arg)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return translate(err, nil, "create product %s", product.Slug)
	}
	return nil
}

// Update saves the product's own columns; associations are left untouched.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).Save(product)
	if res.Error != nil {
		return translate(res.Error, nil, "update product %s", product.Slug)
	}
	return nil
}

// Delete deletes a product by its slug.
func (r *GORMProductRepository) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Product{})
	if res.Error != nil {
		return translate(res.Error, nil, "delete product %s", slug)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, models.ErrProductNotFound, "delete product %s", slug)
	}
	return nil
}

// SetPublished flips the published flag of every product in slugs.
func (r *GORMProductRepository) SetPublished(ctx context.Context, slugs []string, published bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("slug IN ?", slugs).
		Update("is_published", published)
	if res.Error != nil {
		return 0, translate(res.Error, nil, "set published on %d products", len(slugs))
	}
	return res.RowsAffected, nil
}

// SetCategory moves every product in slugs to categoryID.
func (r *GORMProductRepository) SetCategory(ctx context.Context, slugs []string, categoryID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("slug IN ?", slugs).
		Update("category_id", categoryID)
	if res.Error != nil {
		return 0, translate(res.Error, nil, "set category on %d products", len(slugs))
	}
	return res.RowsAffected, nil
}

// ListLowStock returns products whose stock is below their own threshold,
// or below defaultThreshold when they have none.
func (r *GORMProductRepository) ListLowStock(ctx context.Context, defaultThreshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("stock < COALESCE(low_stock_threshold, ?)", defaultThreshold).
		Order("stock, name").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, nil, "list low stock products")
	}
	return products, nil
}

// AddImage attaches an image to a product.
func (r *GORMProductRepository) AddImage(ctx context.Context, image *models.ProductImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return translate(err, nil, "add image to product %s", image.ProductID)
	}
	return nil
}

// ListImages returns a product's images in display order.
func (r *GORMProductRepository) ListImages(ctx context.Context, productID string) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position, created_at").
		Find(&images).Error
	if err != nil {
		return nil, translate(err, nil, "list images of product %s", productID)
	}
	return images, nil
}

// AddReview stores a review and recomputes the product's rating and review count
// in the same transaction.
func (r *GORMProductRepository) AddReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			return translate(err, nil, "create review for product %s", review.ProductID)
		}

		var agg struct {
			Avg float64
			Cnt int
		}
		err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt").
			Where("product_id = ?", review.ProductID).
			Scan(&agg).Error
		if err != nil {
			return translate(err, nil, "aggregate reviews of product %s", review.ProductID)
		}

		res := tx.Model(&models.Product{}).
			Where("id = ?", review.ProductID).
			UpdateColumns(map[string]interface{}{
				"rating":        decimal.NewFromFloat(agg.Avg).Round(2),
				"reviews_count": agg.Cnt,
			})
		if res.Error != nil {
			return translate(res.Error, nil, "update rating of product %s", review.ProductID)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, models.ErrProductNotFound, "update rating of product %s", review.ProductID)
		}
		return nil
	})
}

// ListReviews returns a product's reviews, newest first.
func (r *GORMProductRepository) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username") }).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, translate(err, nil, "list reviews of product %s", productID)
	}
	return reviews, nil
}
