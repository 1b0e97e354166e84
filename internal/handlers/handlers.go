// Package handlers exposes the shop services over HTTP.
package handlers

import (
	"errors"

	"autoshop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Guards are the auth middlewares routes are wrapped with.
type Guards struct {
	Auth     fiber.Handler // requires a valid access token
	Optional fiber.Handler // reads the token when one is sent
	Admin    fiber.Handler // requires an admin; runs after Auth
}

// ErrorHandler renders errors returned by handlers. Domain errors become
// 4xx responses with a field-keyed error map; anything else is logged and
// answered with a bare 500.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var derr *models.DomainError
		if errors.As(err, &derr) {
			body := fiber.Map{
				"message": derr.Message,
				"code":    derr.Code,
			}
			if len(derr.Fields) > 0 {
				body["errors"] = derr.Fields
			}
			return c.Status(derr.Kind.HTTPStatus()).JSON(body)
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return c.Status(ferr.Code).JSON(fiber.Map{"message": ferr.Message})
		}

		logger.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}

// parseBody decodes the JSON request body into out.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func paging(c *fiber.Ctx) (page, pageSize int) {
	return c.QueryInt("page", 1), c.QueryInt("page_size", 0)
}
