package serverutils

import (
	"errors"

	"jobmatch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by handlers as the standard
// error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusFor maps service sentinels to HTTP statuses. Internal errors are not
// echoed to the client.
func StatusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, service.ErrAccessDenied):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidDocumentType):
		return fiber.StatusBadRequest, err.Error()
	}
	return fiber.StatusInternalServerError, "internal server error"
}
