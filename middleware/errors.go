package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"projecthub/utils"
)

// ErrorHandler renders every error returned by a handler as the JSON
// envelope. Unknown errors become a 500; their text is exposed only outside
// production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if apiErr, ok := utils.AsAPIError(err); ok {
			return utils.ErrorResponse(c, apiErr.Status, apiErr.Message, apiErr.Errors)
		}

		// unique index hit after the handler's own existence check
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Resource already exists", nil)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return utils.ErrorResponse(c, fiberErr.Code, fiberErr.Message, nil)
		}

		utils.LogError("http", "unhandled_error", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
		})

		resp := utils.Response{
			Success: false,
			Message: "Internal server error",
		}
		if !production {
			resp.Error = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}

// NotFound answers every request no route matched.
func NotFound() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.NewNotFound("Route not found")
	}
}
