package handlers

import (
	"autoshop/internal/middleware"
	"autoshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for products, categories and brands.
type CatalogHandler struct {
	service  *services.CatalogService
	settings *services.SettingsService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, settings *services.SettingsService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		settings: settings,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
// Reads are public; admins also see unpublished products.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router, g Guards) {
	catalog := router.Group("/catalog")

	products := catalog.Group("/products")
	products.Get("/", g.Optional, h.HandleListProducts)
	products.Post("/", g.Auth, g.Admin, h.HandleCreateProduct)
	products.Post("/bulk", g.Auth, g.Admin, h.HandleBulk)
	products.Get("/:slug", g.Optional, h.HandleGetProduct)
	products.Put("/:slug", g.Auth, g.Admin, h.HandleUpdateProduct)
	products.Patch("/:slug", g.Auth, g.Admin, h.HandlePatchProduct)
	products.Delete("/:slug", g.Auth, g.Admin, h.HandleDeleteProduct)
	products.Get("/:slug/images", g.Optional, h.HandleListImages)
	products.Post("/:slug/images", g.Auth, g.Admin, h.HandleAddImage)
	products.Get("/:slug/reviews", g.Optional, h.HandleListReviews)
	products.Post("/:slug/reviews", g.Auth, h.HandleAddReview)
	products.Get("/:slug/stock-movements", g.Auth, g.Admin, h.HandleListMovements)
	products.Post("/:slug/stock-movements", g.Auth, g.Admin, h.HandleRecordMovement)

	catalog.Get("/low-stock", g.Auth, g.Admin, h.HandleLowStock)

	categories := catalog.Group("/categories")
	categories.Get("/", h.HandleListCategories)
	categories.Get("/:slug", h.HandleGetCategory)
	categories.Post("/", g.Auth, g.Admin, h.HandleCreateCategory)
	categories.Put("/:slug", g.Auth, g.Admin, h.HandleUpdateCategory)
	categories.Delete("/:slug", g.Auth, g.Admin, h.HandleDeleteCategory)

	brands := catalog.Group("/brands")
	brands.Get("/", h.HandleListBrands)
	brands.Get("/:slug", h.HandleGetBrand)
	brands.Post("/", g.Auth, g.Admin, h.HandleCreateBrand)
	brands.Put("/:slug", g.Auth, g.Admin, h.HandleUpdateBrand)
	brands.Delete("/:slug", g.Auth, g.Admin, h.HandleDeleteBrand)
}

// HandleListProducts returns one page of products filtered by category, brand and search text.
func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	page, size := paging(c)
	products, err := h.service.ListProducts(c.UserContext(), services.ProductQuery{
		Category:           c.Query("category"),
		Brand:              c.Query("brand"),
		Search:             c.Query("search"),
		Page:               page,
		PageSize:           size,
		IncludeUnpublished: middleware.IsAdmin(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by slug.
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("slug"), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *CatalogHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product.
func (h *CatalogHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandlePatchProduct changes some fields of a product.
func (h *CatalogHandler) HandlePatchProduct(c *fiber.Ctx) error {
	var in services.ProductPatch
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.PatchProduct(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *CatalogHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("slug")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleBulk publishes, unpublishes or recategorizes many products.
func (h *CatalogHandler) HandleBulk(c *fiber.Ctx) error {
	var in services.BulkInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	updated, err := h.service.Bulk(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": updated})
}

func (h *CatalogHandler) HandleListImages(c *fiber.Ctx) error {
	images, err := h.service.ListImages(c.UserContext(), c.Params("slug"), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(images)
}

func (h *CatalogHandler) HandleAddImage(c *fiber.Ctx) error {
	var in services.ImageInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	image, err := h.service.AddImage(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

func (h *CatalogHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.UserContext(), c.Params("slug"), middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(reviews)
}

// HandleAddReview stores a review by the current user.
func (h *CatalogHandler) HandleAddReview(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	review, err := h.service.AddReview(c.UserContext(), middleware.UserID(c), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *CatalogHandler) HandleListMovements(c *fiber.Ctx) error {
	movements, err := h.service.ListMovements(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(movements)
}

// HandleRecordMovement records a receipt, write-off or adjustment.
func (h *CatalogHandler) HandleRecordMovement(c *fiber.Ctx) error {
	var in services.MovementInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	movement, err := h.service.RecordMovement(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(movement)
}

// HandleLowStock lists products below their low-stock threshold.
func (h *CatalogHandler) HandleLowStock(c *fiber.Ctx) error {
	cfg, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}
	products, err := h.service.LowStock(c.UserContext(), cfg)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

func (h *CatalogHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var in services.TaxonomyInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	category, err := h.service.CreateCategory(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CatalogHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var in services.TaxonomyInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	category, err := h.service.UpdateCategory(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.JSON(category)
}

func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("slug")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) HandleListBrands(c *fiber.Ctx) error {
	brands, err := h.service.ListBrands(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(brands)
}

func (h *CatalogHandler) HandleGetBrand(c *fiber.Ctx) error {
	brand, err := h.service.GetBrand(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(brand)
}

func (h *CatalogHandler) HandleCreateBrand(c *fiber.Ctx) error {
	var in services.TaxonomyInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	brand, err := h.service.CreateBrand(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

func (h *CatalogHandler) HandleUpdateBrand(c *fiber.Ctx) error {
	var in services.TaxonomyInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	brand, err := h.service.UpdateBrand(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.JSON(brand)
}

func (h *CatalogHandler) HandleDeleteBrand(c *fiber.Ctx) error {
	if err := h.service.DeleteBrand(c.UserContext(), c.Params("slug")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
