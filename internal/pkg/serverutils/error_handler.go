package serverutils

import (
	"errors"

	"blocknote-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates service errors into JSON envelopes.
// NotFound folds cross-owner access in, so the response never reveals
// whether another user's resource exists.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var reqErr *RequestValidationError
		if errors.As(err, &reqErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(reqErr.Message))
		}

		if errors.Is(err, service.ErrValidation) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		}

		if errors.Is(err, service.ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}
