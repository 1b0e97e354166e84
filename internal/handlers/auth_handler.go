package handlers

import (
	"autoshop/internal/middleware"
	"autoshop/internal/models"
	"autoshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for accounts and authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the account routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, g Guards) {
	accounts := router.Group("/accounts")
	accounts.Post("/register", h.HandleRegister)
	accounts.Post("/login", h.HandleLogin)
	accounts.Post("/token/refresh", h.HandleRefresh)
	accounts.Get("/profile", g.Auth, h.HandleGetProfile)
	accounts.Patch("/profile", g.Auth, h.HandleUpdateProfile)
	accounts.Post("/change-password", g.Auth, h.HandleChangePassword)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := h.authService.RegisterUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"phone":    user.Phone,
	})
}

// HandleLogin handles user login and issues an access and a refresh token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	result, err := h.authService.LoginUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"auth_token":    result.AuthToken,
		"refresh_token": result.RefreshToken,
		"user_id":       result.User.ID,
		"username":      result.User.Username,
		"email":         result.User.Email,
		"phone":         result.User.Phone,
		"is_admin":      result.User.IsAdmin,
	})
}

// HandleRefresh exchanges a refresh token for a new access token.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.RefreshToken == "" {
		return models.FieldError("refresh_token", "This field is required.")
	}
	token, err := h.authService.RefreshToken(c.UserContext(), in.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"auth_token": token})
}

// HandleGetProfile returns the current user's account.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleUpdateProfile changes the current user's contact details.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := h.authService.UpdateProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleChangePassword replaces the current user's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var in services.ChangePasswordInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.authService.ChangePassword(c.UserContext(), middleware.UserID(c), in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
