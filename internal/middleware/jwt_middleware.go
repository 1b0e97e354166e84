package middleware

import (
	"strings"

	"autoshop/internal/models"
	"autoshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Keys of the request locals set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalIsAdmin  = "is_admin"
)

// AuthRequired is a Fiber middleware to check for a valid JWT access token.
func AuthRequired(authService *services.AuthService, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("JWT validation failed")
			return unauthorized(c, models.ErrInvalidToken.Message)
		}
		if claims.Type != services.TokenAccess {
			return unauthorized(c, "An access token is required")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalIsAdmin, claims.IsAdmin)
		return c.Next()
	}
}

// OptionalAuth sets the user locals when a valid access token is sent and
// lets anonymous requests through otherwise.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Next()
		}
		claims, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err == nil && claims.Type == services.TokenAccess {
			c.Locals(LocalUserID, claims.UserID)
			c.Locals(LocalUsername, claims.Username)
			c.Locals(LocalIsAdmin, claims.IsAdmin)
		}
		return c.Next()
	}
}

// AdminRequired rejects authenticated users without admin rights.
// It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": models.ErrForbidden.Message,
				"code":    models.ErrForbidden.Code,
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// IsAdmin reports whether the authenticated user is an admin.
func IsAdmin(c *fiber.Ctx) bool {
	admin, _ := c.Locals(LocalIsAdmin).(bool)
	return admin
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"code":    models.ErrCodeInvalidToken,
	})
}
