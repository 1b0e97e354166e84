package services_test

import (
	"context"
	"testing"

	"autoshop/internal/models"
	"autoshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Microfiber Cloth":      "microfiber-cloth",
		"  Wax & Polish 2000 ":  "wax-polish-2000",
		"Meguiar's Gold-Class!": "meguiar-s-gold-class",
		"---":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, services.Slugify(in), in)
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	product, err := e.catalog.CreateProduct(ctx, services.ProductInput{
		Name:     "Hard Wax",
		Category: "care",
		Brand:    "sonax",
		Price:    dec("19.99"),
		Stock:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, "hard-wax", product.Slug)
	assert.True(t, product.IsPublished)
	require.NotNil(t, product.Category)
	assert.Equal(t, "care", product.Category.Slug)
	require.NotNil(t, product.Brand)
	assert.Equal(t, "sonax", product.Brand.Slug)

	_, err = e.catalog.CreateProduct(ctx, services.ProductInput{
		Name: "Hard Wax", Category: "care", Brand: "sonax", Price: dec("1"),
	})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestCatalogService_CreateProductValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.CreateProduct(ctx, services.ProductInput{})
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "brand")

	_, err = e.catalog.CreateProduct(ctx, services.ProductInput{
		Name: "Bad", Category: "care", Brand: "sonax", Price: dec("-1"),
	})
	assert.Contains(t, fieldErrors(t, err), "price")

	_, err = e.catalog.CreateProduct(ctx, services.ProductInput{
		Name: "Bad", Category: "nope", Brand: "nada", Price: dec("1"),
	})
	fields = fieldErrors(t, err)
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "brand")
}

func TestCatalogService_ListAndGetHideUnpublished(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	hidden := false
	_, err := e.catalog.CreateProduct(ctx, services.ProductInput{
		Name: "Secret", Category: "care", Brand: "sonax", Price: dec("1"), IsPublished: &hidden,
	})
	require.NoError(t, err)

	public, err := e.catalog.ListProducts(ctx, services.ProductQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, public.Count)
	assert.Equal(t, 12, public.PageSize)

	all, err := e.catalog.ListProducts(ctx, services.ProductQuery{IncludeUnpublished: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Count)

	_, err = e.catalog.GetProduct(ctx, "secret", false)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	got, err := e.catalog.GetProduct(ctx, "secret", true)
	require.NoError(t, err)
	assert.False(t, got.IsPublished)

	found, err := e.catalog.ListProducts(ctx, services.ProductQuery{Search: "POLISH", Category: "care", Brand: "sonax"})
	require.NoError(t, err)
	require.Len(t, found.Results, 1)
	assert.Equal(t, "polish", found.Results[0].Slug)

	paged, err := e.catalog.ListProducts(ctx, services.ProductQuery{Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, paged.Count)
	assert.Len(t, paged.Results, 1)
	assert.Equal(t, 2, paged.Page)
}

func TestCatalogService_UpdateAndPatchProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	accessories, err := e.catalog.CreateCategory(ctx, services.TaxonomyInput{Name: "Accessories"})
	require.NoError(t, err)
	assert.Equal(t, "accessories", accessories.Slug)

	updated, err := e.catalog.UpdateProduct(ctx, "cloth", services.ProductInput{
		Name: "Microfiber cloth XL", Slug: "cloth", Category: "accessories", Brand: "sonax",
		Price: dec("9.50"), Stock: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, accessories.ID, updated.CategoryID)
	assert.True(t, dec("9.50").Equal(updated.Price))
	assert.Equal(t, 12, updated.Stock)

	name, threshold, published := "Polish Pro", 2, false
	patched, err := e.catalog.PatchProduct(ctx, "polish", services.ProductPatch{
		Name: &name, LowStockThreshold: &threshold, IsPublished: &published,
	})
	require.NoError(t, err)
	assert.Equal(t, "Polish Pro", patched.Name)
	assert.Equal(t, "polish", patched.Slug)
	assert.True(t, dec("45.90").Equal(patched.Price))
	require.NotNil(t, patched.LowStockThreshold)
	assert.Equal(t, 2, *patched.LowStockThreshold)
	assert.False(t, patched.IsPublished)

	negative := dec("-5")
	_, err = e.catalog.PatchProduct(ctx, "polish", services.ProductPatch{Price: &negative})
	assert.Contains(t, fieldErrors(t, err), "price")

	_, err = e.catalog.PatchProduct(ctx, "missing", services.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCatalogService_Bulk(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	n, err := e.catalog.Bulk(ctx, services.BulkInput{Action: services.BulkUnpublish, Slugs: []string{"polish", "cloth", "ghost"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = e.catalog.CreateCategory(ctx, services.TaxonomyInput{Name: "Accessories"})
	require.NoError(t, err)
	n, err = e.catalog.Bulk(ctx, services.BulkInput{Action: services.BulkSetCategory, Slugs: []string{"cloth"}, Category: "accessories"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = e.catalog.Bulk(ctx, services.BulkInput{Action: services.BulkSetCategory, Slugs: []string{"cloth"}})
	assert.Contains(t, fieldErrors(t, err), "category")

	_, err = e.catalog.Bulk(ctx, services.BulkInput{Action: "explode", Slugs: []string{"cloth"}})
	assert.Contains(t, fieldErrors(t, err), "action")

	_, err = e.catalog.Bulk(ctx, services.BulkInput{Action: services.BulkPublish})
	assert.Contains(t, fieldErrors(t, err), "slugs")
}

func TestCatalogService_RecordMovement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	m, err := e.catalog.RecordMovement(ctx, "polish", services.MovementInput{Quantity: 10, Kind: models.MovementReceipt, Note: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, 15, m.StockAfter)

	m, err = e.catalog.RecordMovement(ctx, "polish", services.MovementInput{Quantity: -3, Kind: models.MovementAdjustment})
	require.NoError(t, err)
	assert.Equal(t, 12, m.StockAfter)

	m, err = e.catalog.RecordMovement(ctx, "polish", services.MovementInput{Quantity: -100, Kind: models.MovementWriteOff})
	require.NoError(t, err)
	assert.Equal(t, 0, m.StockAfter)

	history, err := e.catalog.ListMovements(ctx, "polish")
	require.NoError(t, err)
	assert.Len(t, history, 3)

	cases := []services.MovementInput{
		{Quantity: 0, Kind: models.MovementAdjustment},
		{Quantity: -1, Kind: models.MovementReceipt},
		{Quantity: 1, Kind: models.MovementWriteOff},
	}
	for _, in := range cases {
		_, err := e.catalog.RecordMovement(ctx, "polish", in)
		assert.Contains(t, fieldErrors(t, err), "quantity")
	}
	_, err = e.catalog.RecordMovement(ctx, "polish", services.MovementInput{Quantity: 1, Kind: models.MovementOrder})
	assert.Contains(t, fieldErrors(t, err), "kind")

	_, err = e.catalog.RecordMovement(ctx, "missing", services.MovementInput{Quantity: 1, Kind: models.MovementReceipt})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCatalogService_LowStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	low, err := e.catalog.LowStock(ctx, models.SiteConfig{LowStockThreshold: 6})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "polish", low[0].Slug)

	threshold := 11
	_, err = e.catalog.PatchProduct(ctx, "cloth", services.ProductPatch{LowStockThreshold: &threshold})
	require.NoError(t, err)
	low, err = e.catalog.LowStock(ctx, models.SiteConfig{LowStockThreshold: 6})
	require.NoError(t, err)
	assert.Len(t, low, 2)
}

func TestCatalogService_ImagesAndReviews(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.AddImage(ctx, "polish", services.ImageInput{URL: "https://cdn.example.com/polish-2.jpg", Position: 2})
	require.NoError(t, err)
	_, err = e.catalog.AddImage(ctx, "polish", services.ImageInput{URL: "https://cdn.example.com/polish-1.jpg", Position: 1})
	require.NoError(t, err)
	_, err = e.catalog.AddImage(ctx, "polish", services.ImageInput{URL: "not a url"})
	assert.Contains(t, fieldErrors(t, err), "url")

	images, err := e.catalog.ListImages(ctx, "polish", false)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, 1, images[0].Position)

	_, err = e.catalog.AddReview(ctx, e.user.ID, "polish", services.ReviewInput{Rating: 5, Text: " Great "})
	require.NoError(t, err)
	_, err = e.catalog.AddReview(ctx, e.other.ID, "polish", services.ReviewInput{Rating: 4})
	require.NoError(t, err)
	_, err = e.catalog.AddReview(ctx, e.other.ID, "polish", services.ReviewInput{Rating: 6})
	assert.Contains(t, fieldErrors(t, err), "rating")

	product, err := e.catalog.GetProduct(ctx, "polish", false)
	require.NoError(t, err)
	assert.True(t, dec("4.5").Equal(product.Rating), product.Rating.String())
	assert.Equal(t, 2, product.ReviewsCount)

	reviews, err := e.catalog.ListReviews(ctx, "polish", false)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestCatalogService_Taxonomy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	brand, err := e.catalog.CreateBrand(ctx, services.TaxonomyInput{Name: "Koch Chemie"})
	require.NoError(t, err)
	assert.Equal(t, "koch-chemie", brand.Slug)
	_, err = e.catalog.CreateBrand(ctx, services.TaxonomyInput{Name: "Koch Chemie"})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	renamed, err := e.catalog.UpdateBrand(ctx, "koch-chemie", services.TaxonomyInput{Name: "Koch", Slug: "koch"})
	require.NoError(t, err)
	assert.Equal(t, brand.ID, renamed.ID)
	_, err = e.catalog.GetBrand(ctx, "koch-chemie")
	assert.ErrorIs(t, err, models.ErrBrandNotFound)

	brands, err := e.catalog.ListBrands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 2)

	require.NoError(t, e.catalog.DeleteBrand(ctx, "koch"))
	assert.ErrorIs(t, e.catalog.DeleteBrand(ctx, "koch"), models.ErrBrandNotFound)

	_, err = e.catalog.CreateCategory(ctx, services.TaxonomyInput{Name: "!!!"})
	assert.Contains(t, fieldErrors(t, err), "slug")

	category, err := e.catalog.GetCategory(ctx, "care")
	require.NoError(t, err)
	assert.Equal(t, e.category.ID, category.ID)
	_, err = e.catalog.UpdateCategory(ctx, "missing", services.TaxonomyInput{Name: "X"})
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)
	categories, err := e.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.catalog.DeleteProduct(ctx, "cloth"))
	_, err := e.catalog.GetProduct(ctx, "cloth", true)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	assert.ErrorIs(t, e.catalog.DeleteProduct(ctx, "cloth"), models.ErrProductNotFound)
}
