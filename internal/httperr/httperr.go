// Package httperr maps domain errors onto HTTP responses.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
)

// Status returns the HTTP status code for err.
func Status(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrProductUnavailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountSuspended):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest wraps a request decoding failure.
func BadRequest(msg string) error {
	return fiber.NewError(http.StatusBadRequest, msg)
}

// Handler renders every error returned by a route as {"error": reason}.
// Internal failures are logged and their detail withheld from the client.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := Status(err)
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			reqID, _ := c.Locals("X-Request-ID").(string)
			logger.Error("request failed",
				"request_id", reqID,
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
			msg = http.StatusText(status)
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
}
