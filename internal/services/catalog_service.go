package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"autoshop/internal/models"
	"autoshop/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductQuery filters the product listing.
type ProductQuery struct {
	Category string
	Brand    string
	Search   string
	Page     int
	PageSize int
	// IncludeUnpublished is set for admins.
	IncludeUnpublished bool
}

// ProductInput creates or fully replaces a product. Category and Brand are slugs.
type ProductInput struct {
	Name              string          `json:"name" validate:"required,max=200"`
	Slug              string          `json:"slug" validate:"max=200"`
	Category          string          `json:"category" validate:"required"`
	Brand             string          `json:"brand" validate:"required"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock" validate:"gte=0"`
	LowStockThreshold *int            `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsPublished       *bool           `json:"is_published"`
	Image             string          `json:"image" validate:"omitempty,url,max=500"`
}

// ProductPatch changes only the non-nil fields of a product.
type ProductPatch struct {
	Name              *string          `json:"name" validate:"omitempty,max=200"`
	Category          *string          `json:"category"`
	Brand             *string          `json:"brand"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	Stock             *int             `json:"stock" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsPublished       *bool            `json:"is_published"`
	Image             *string          `json:"image" validate:"omitempty,url,max=500"`
}

// TaxonomyInput creates or renames a category or brand.
type TaxonomyInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"max=100"`
}

// Bulk actions on products.
const (
	BulkPublish     = "publish"
	BulkUnpublish   = "unpublish"
	BulkSetCategory = "set_category"
)

// BulkInput applies one action to many products.
type BulkInput struct {
	Action   string   `json:"action" validate:"required,oneof=publish unpublish set_category"`
	Slugs    []string `json:"slugs" validate:"required,min=1"`
	Category string   `json:"category"`
}

// MovementInput records a manual stock movement.
type MovementInput struct {
	Quantity int                      `json:"quantity"`
	Kind     models.StockMovementKind `json:"kind" validate:"required,oneof=receipt write_off adjustment"`
	Note     string                   `json:"note" validate:"max=255"`
}

// ImageInput attaches an image to a product.
type ImageInput struct {
	URL      string `json:"url" validate:"required,url,max=500"`
	Alt      string `json:"alt" validate:"max=200"`
	Position int    `json:"position" validate:"gte=0"`
}

// ReviewInput is a customer review.
type ReviewInput struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text   string `json:"text" validate:"max=5000"`
}

// CatalogService handles products, categories, brands and their stock.
type CatalogService struct {
	store    *repositories.Store
	pageSize int
	logger   zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store *repositories.Store, pageSize int, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		pageSize: pageSize,
		logger:   logger.With().Str("service", "catalog").Logger(),
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its ASCII alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func slugFor(explicit, name string) (string, error) {
	slug := strings.TrimSpace(explicit)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return "", models.FieldError("slug", "This field is required.")
	}
	return slug, nil
}

// ListProducts returns one page of products matching q.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*Page[models.Product], error) {
	page, size := normalizePaging(q.Page, q.PageSize, s.pageSize)
	products, total, err := s.store.Products.List(ctx, repositories.ProductFilter{
		CategorySlug:  q.Category,
		BrandSlug:     q.Brand,
		Search:        q.Search,
		PublishedOnly: !q.IncludeUnpublished,
		Page:          page,
		PageSize:      size,
	})
	if err != nil {
		return nil, err
	}
	return newPage(products, total, page, size), nil
}

// GetProduct returns a product by slug. Unpublished products are hidden
// unless includeUnpublished is set.
func (s *CatalogService) GetProduct(ctx context.Context, slug string, includeUnpublished bool) (*models.Product, error) {
	product, err := s.store.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsPublished && !includeUnpublished {
		return nil, models.ErrProductNotFound
	}
	return product, nil
}

func (s *CatalogService) lookupRefs(ctx context.Context, categorySlug, brandSlug *string) (*models.Category, *models.Brand, error) {
	var (
		category         *models.Category
		brand            *models.Brand
		catErr, brandErr error
	)
	if categorySlug != nil {
		c, err := s.store.Categories.GetBySlug(ctx, *categorySlug)
		switch {
		case errors.Is(err, models.ErrCategoryNotFound):
			catErr = models.FieldError("category", "Unknown category.")
		case err != nil:
			return nil, nil, err
		}
		category = c
	}
	if brandSlug != nil {
		b, err := s.store.Brands.GetBySlug(ctx, *brandSlug)
		switch {
		case errors.Is(err, models.ErrBrandNotFound):
			brandErr = models.FieldError("brand", "Unknown brand.")
		case err != nil:
			return nil, nil, err
		}
		brand = b
	}
	if err := mergeFields(catErr, brandErr); err != nil {
		return nil, nil, err
	}
	return category, brand, nil
}

func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return models.FieldError("price", "Ensure this value is greater than or equal to 0.")
	}
	return nil
}

// CreateProduct validates in and stores a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if err := s.applyInput(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.store.Products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info().Str("slug", product.Slug).Msg("product created")
	return s.store.Products.GetByID(ctx, product.ID)
}

// UpdateProduct replaces all editable fields of the product with slug.
func (s *CatalogService) UpdateProduct(ctx context.Context, slug string, in ProductInput) (*models.Product, error) {
	product, err := s.store.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.store.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.store.Products.GetByID(ctx, product.ID)
}

func (s *CatalogService) applyInput(ctx context.Context, product *models.Product, in ProductInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	slug, slugErr := slugFor(in.Slug, in.Name)
	if err := mergeFields(slugErr, checkPrice(in.Price)); err != nil {
		return err
	}
	category, brand, err := s.lookupRefs(ctx, &in.Category, &in.Brand)
	if err != nil {
		return err
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Slug = slug
	product.CategoryID = category.ID
	product.BrandID = brand.ID
	product.Description = in.Description
	product.Price = in.Price
	product.Stock = in.Stock
	product.LowStockThreshold = in.LowStockThreshold
	product.IsPublished = in.IsPublished == nil || *in.IsPublished
	product.Image = in.Image
	return nil
}

// PatchProduct applies the non-nil fields of in to the product with slug.
func (s *CatalogService) PatchProduct(ctx context.Context, slug string, in ProductPatch) (*models.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	product, err := s.store.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if in.Price != nil {
		if err := checkPrice(*in.Price); err != nil {
			return nil, err
		}
		product.Price = *in.Price
	}
	category, brand, err := s.lookupRefs(ctx, in.Category, in.Brand)
	if err != nil {
		return nil, err
	}
	if category != nil {
		product.CategoryID = category.ID
	}
	if brand != nil {
		product.BrandID = brand.ID
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.LowStockThreshold != nil {
		product.LowStockThreshold = in.LowStockThreshold
	}
	if in.IsPublished != nil {
		product.IsPublished = *in.IsPublished
	}
	if in.Image != nil {
		product.Image = *in.Image
	}

	if err := s.store.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.store.Products.GetByID(ctx, product.ID)
}

// DeleteProduct removes the product with slug.
func (s *CatalogService) DeleteProduct(ctx context.Context, slug string) error {
	if err := s.store.Products.Delete(ctx, slug); err != nil {
		return err
	}
	s.logger.Info().Str("slug", slug).Msg("product deleted")
	return nil
}

// Bulk applies one admin action to the products named in in.Slugs and
// returns how many were changed.
func (s *CatalogService) Bulk(ctx context.Context, in BulkInput) (int64, error) {
	if err := validateInput(in); err != nil {
		return 0, err
	}
	switch in.Action {
	case BulkPublish, BulkUnpublish:
		return s.store.Products.SetPublished(ctx, in.Slugs, in.Action == BulkPublish)
	default:
		if in.Category == "" {
			return 0, models.FieldError("category", "This field is required.")
		}
		category, _, err := s.lookupRefs(ctx, &in.Category, nil)
		if err != nil {
			return 0, err
		}
		return s.store.Products.SetCategory(ctx, in.Slugs, category.ID)
	}
}

// RecordMovement applies a manual stock movement to the product with slug.
// Receipts must be positive and write-offs negative; adjustments may go either way.
func (s *CatalogService) RecordMovement(ctx context.Context, slug string, in MovementInput) (*models.StockMovement, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	switch {
	case in.Quantity == 0:
		return nil, models.FieldError("quantity", "Must not be zero.")
	case in.Kind == models.MovementReceipt && in.Quantity < 0:
		return nil, models.FieldError("quantity", "A receipt must be positive.")
	case in.Kind == models.MovementWriteOff && in.Quantity > 0:
		return nil, models.FieldError("quantity", "A write-off must be negative.")
	}

	product, err := s.store.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	movement := &models.StockMovement{
		ProductID: product.ID,
		Quantity:  in.Quantity,
		Kind:      in.Kind,
		Note:      in.Note,
	}
	if err := s.store.Stock.Create(ctx, movement); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("slug", slug).
		Str("kind", string(in.Kind)).
		Int("quantity", in.Quantity).
		Int("stock_after", movement.StockAfter).
		Msg("stock movement recorded")
	return movement, nil
}

// ListMovements returns the stock history of the product with slug.
func (s *CatalogService) ListMovements(ctx context.Context, slug string) ([]models.StockMovement, error) {
	product, err := s.store.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.store.Stock.ListByProduct(ctx, product.ID)
}

// LowStock lists products below their low-stock threshold.
func (s *CatalogService) LowStock(ctx context.Context, cfg models.SiteConfig) ([]models.Product, error) {
	return s.store.Products.ListLowStock(ctx, cfg.LowStockThreshold)
}

// AddImage attaches an image to the product with slug.
func (s *CatalogService) AddImage(ctx context.Context, slug string, in ImageInput) (*models.ProductImage, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	product, err := s.store.Products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	image := &models.ProductImage{ProductID: product.ID, URL: in.URL, Alt: in.Alt, Position: in.Position}
	if err := s.store.Products.AddImage(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

// ListImages returns the images of a visible product.
func (s *CatalogService) ListImages(ctx context.Context, slug string, includeUnpublished bool) ([]models.ProductImage, error) {
	product, err := s.GetProduct(ctx, slug, includeUnpublished)
	if err != nil {
		return nil, err
	}
	return s.store.Products.ListImages(ctx, product.ID)
}

// AddReview stores a review by userID and refreshes the product rating.
func (s *CatalogService) AddReview(ctx context.Context, userID, slug string, in ReviewInput) (*models.Review, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	product, err := s.GetProduct(ctx, slug, false)
	if err != nil {
		return nil, err
	}
	review := &models.Review{ProductID: product.ID, UserID: userID, Rating: in.Rating, Text: strings.TrimSpace(in.Text)}
	if err := s.store.Products.AddReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews returns the reviews of a visible product.
func (s *CatalogService) ListReviews(ctx context.Context, slug string, includeUnpublished bool) ([]models.Review, error) {
	product, err := s.GetProduct(ctx, slug, includeUnpublished)
	if err != nil {
		return nil, err
	}
	return s.store.Products.ListReviews(ctx, product.ID)
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories.List(ctx)
}

// GetCategory returns the category with slug.
func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	return s.store.Categories.GetBySlug(ctx, slug)
}

// CreateCategory stores a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, in TaxonomyInput) (*models.Category, error) {
	name, slug, err := taxonomyFields(in)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name, Slug: slug}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames the category with slug.
func (s *CatalogService) UpdateCategory(ctx context.Context, slug string, in TaxonomyInput) (*models.Category, error) {
	name, newSlug, err := taxonomyFields(in)
	if err != nil {
		return nil, err
	}
	category, err := s.store.Categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	category.Name, category.Slug = name, newSlug
	if err := s.store.Categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes the category with slug.
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	return s.store.Categories.Delete(ctx, slug)
}

// ListBrands returns all brands.
func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.store.Brands.List(ctx)
}

// GetBrand returns the brand with slug.
func (s *CatalogService) GetBrand(ctx context.Context, slug string) (*models.Brand, error) {
	return s.store.Brands.GetBySlug(ctx, slug)
}

// CreateBrand stores a new brand.
func (s *CatalogService) CreateBrand(ctx context.Context, in TaxonomyInput) (*models.Brand, error) {
	name, slug, err := taxonomyFields(in)
	if err != nil {
		return nil, err
	}
	brand := &models.Brand{Name: name, Slug: slug}
	if err := s.store.Brands.Create(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// UpdateBrand renames the brand with slug.
func (s *CatalogService) UpdateBrand(ctx context.Context, slug string, in TaxonomyInput) (*models.Brand, error) {
	name, newSlug, err := taxonomyFields(in)
	if err != nil {
		return nil, err
	}
	brand, err := s.store.Brands.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	brand.Name, brand.Slug = name, newSlug
	if err := s.store.Brands.Update(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// DeleteBrand removes the brand with slug.
func (s *CatalogService) DeleteBrand(ctx context.Context, slug string) error {
	return s.store.Brands.Delete(ctx, slug)
}

func taxonomyFields(in TaxonomyInput) (string, string, error) {
	if err := validateInput(in); err != nil {
		return "", "", err
	}
	slug, err := slugFor(in.Slug, in.Name)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(in.Name), slug, nil
}
