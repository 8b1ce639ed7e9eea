package serverutils

import (
	"errors"
	"strings"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates service errors into HTTP responses.
// Controllers just return errors; the mapping lives here.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse("Validation failed", validationErr.Fields))
		}

		var limitErr *dto.LimitExceededError
		if errors.As(err, &limitErr) {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(ErrorResponse(limitErr.Error(), limitErr))
		}

		if errors.Is(err, retrieval.ErrDimensionMismatch) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(err.Error(), nil))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Message, nil))
		}

		if strings.Contains(err.Error(), "not found") {
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(err.Error(), nil))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse("Internal server error", nil))
	}
}
