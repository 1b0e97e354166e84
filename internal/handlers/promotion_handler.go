package handlers

import (
	"autoshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PromotionHandler handles admin HTTP requests for promo codes and campaigns.
type PromotionHandler struct {
	service *services.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(service *services.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// RegisterRoutes registers the promotion routes with the Fiber app.
func (h *PromotionHandler) RegisterRoutes(router fiber.Router, g Guards) {
	promotions := router.Group("/promotions", g.Auth, g.Admin)
	promotions.Get("/codes", h.HandleListCodes)
	promotions.Post("/codes", h.HandleCreateCode)
	promotions.Delete("/codes/:id", h.HandleDeleteCode)
	promotions.Get("/campaigns", h.HandleListCampaigns)
	promotions.Post("/campaigns", h.HandleCreateCampaign)
	promotions.Delete("/campaigns/:id", h.HandleDeleteCampaign)
}

func (h *PromotionHandler) HandleListCodes(c *fiber.Ctx) error {
	codes, err := h.service.ListCodes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(codes)
}

func (h *PromotionHandler) HandleCreateCode(c *fiber.Ctx) error {
	var in services.PromoCodeInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	promo, err := h.service.CreateCode(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(promo)
}

func (h *PromotionHandler) HandleDeleteCode(c *fiber.Ctx) error {
	if err := h.service.DeleteCode(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PromotionHandler) HandleListCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.service.ListCampaigns(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(campaigns)
}

func (h *PromotionHandler) HandleCreateCampaign(c *fiber.Ctx) error {
	var in services.CampaignInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	campaign, err := h.service.CreateCampaign(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

func (h *PromotionHandler) HandleDeleteCampaign(c *fiber.Ctx) error {
	if err := h.service.DeleteCampaign(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
