package handlers

import (
	"autoshop/internal/middleware"
	"autoshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the current user's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router, g Guards) {
	cart := router.Group("/cart", g.Auth)
	cart.Get("/", h.HandleGetCart)
	cart.Post("/add_item", h.HandleAddItem)
	cart.Post("/remove_item", h.HandleRemoveItem)
	cart.Post("/clear", h.HandleClear)
	cart.Patch("/", h.HandleSetQuantities)
	cart.Delete("/", h.HandleRemoveItem)
}

type itemRef struct {
	ItemID string `json:"item_id"`
}

// HandleGetCart returns the cart with its live total.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return h.respondCart(c)
}

// HandleAddItem adds a product and returns the full cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var in services.AddItemInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if _, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), in); err != nil {
		return err
	}
	return h.respondCart(c)
}

// HandleRemoveItem deletes one line. The item id comes from the body or the
// item_id query parameter.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	ref := itemRef{ItemID: c.Query("item_id")}
	if ref.ItemID == "" && len(c.Body()) > 0 {
		if err := parseBody(c, &ref); err != nil {
			return err
		}
	}
	if err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), ref.ItemID); err != nil {
		return err
	}
	return h.respondCart(c)
}

// HandleSetQuantities updates several lines at once.
func (h *CartHandler) HandleSetQuantities(c *fiber.Ctx) error {
	var in struct {
		Items []services.QuantityUpdate `json:"items"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cart, err := h.service.SetQuantities(c.UserContext(), middleware.UserID(c), in.Items)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return h.respondCart(c)
}

func (h *CartHandler) respondCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(cart)
}
