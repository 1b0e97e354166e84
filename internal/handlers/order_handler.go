package handlers

import (
	"autoshop/internal/middleware"
	"autoshop/internal/models"
	"autoshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	settings *services.SettingsService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, settings *services.SettingsService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		settings: settings,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g Guards) {
	orderRoutes := router.Group("/orders", g.Auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/create_order", h.HandleCreateOrder)
	orderRoutes.Post("/preview", h.HandlePreview)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", g.Admin, h.HandleUpdateOrderStatus)

	admin := router.Group("/admin/orders", g.Auth, g.Admin)
	admin.Get("/", h.HandleListAllOrders)
	admin.Delete("/:id", h.HandleDeleteOrder)
}

// HandleGetOrders lists the current user's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	page, size := paging(c)
	orders, err := h.service.ListOrders(c.UserContext(), middleware.UserID(c), page, size)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order. Users only see their own orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.UserID(c), middleware.IsAdmin(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleCreateOrder turns the current user's cart into an order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cfg, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}
	order, err := h.service.CreateOrder(c.UserContext(), middleware.UserID(c), in, cfg)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandlePreview prices the cart with an optional promo code.
func (h *OrderHandler) HandlePreview(c *fiber.Ctx) error {
	var in struct {
		PromoCode string `json:"promo_code"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	cfg, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}
	quote, err := h.service.Preview(c.UserContext(), middleware.UserID(c), in.PromoCode, cfg)
	if err != nil {
		return err
	}
	return c.JSON(quote)
}

// HandleUpdateOrderStatus moves an order along its lifecycle.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var in services.StatusInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cfg, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}
	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), in, cfg)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleListAllOrders lists every order, optionally filtered by status and user.
func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	page, size := paging(c)
	orders, err := h.service.ListAllOrders(c.UserContext(), services.AdminOrderQuery{
		Status:   models.OrderStatus(c.Query("status")),
		UserID:   c.Query("user_id"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// HandleDeleteOrder removes an order for good.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
