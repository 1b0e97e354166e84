package handlers

import (
	"autoshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler handles HTTP requests for site settings and email templates.
type SettingsHandler struct {
	service *services.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// RegisterRoutes registers the settings routes with the Fiber app.
func (h *SettingsHandler) RegisterRoutes(router fiber.Router, g Guards) {
	settings := router.Group("/settings")
	settings.Get("/", h.HandleGetSettings)
	settings.Put("/", g.Auth, g.Admin, h.HandleUpdateSettings)

	templates := settings.Group("/email-templates", g.Auth, g.Admin)
	templates.Get("/", h.HandleListTemplates)
	templates.Get("/:slug", h.HandleGetTemplate)
	templates.Put("/:slug", h.HandleUpdateTemplate)
}

// HandleGetSettings returns the public store settings.
func (h *SettingsHandler) HandleGetSettings(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) HandleUpdateSettings(c *fiber.Ctx) error {
	var in services.SettingsInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	settings, err := h.service.Update(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) HandleListTemplates(c *fiber.Ctx) error {
	templates, err := h.service.ListTemplates(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(templates)
}

func (h *SettingsHandler) HandleGetTemplate(c *fiber.Ctx) error {
	tpl, err := h.service.Template(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(tpl)
}

// HandleUpdateTemplate edits a template, creating it when the slug is new.
func (h *SettingsHandler) HandleUpdateTemplate(c *fiber.Ctx) error {
	var in services.TemplateInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	tpl, err := h.service.UpdateTemplate(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return err
	}
	return c.JSON(tpl)
}
