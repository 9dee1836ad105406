package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the standard envelope for successful payloads.
func SuccessResponse(message string, data interface{}) fiber.Map {
	return fiber.Map{
		"message": message,
		"data":    data,
	}
}

// ErrorHandlerMiddleware converts errors escaping a handler into JSON
// responses. Typed fiber errors keep their status code; everything else is
// a generic 500 so internal details never leak to the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong. Please try again.",
		})
	}
}
