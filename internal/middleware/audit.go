package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/httperr"
)

// Audit emits one structured log line per request. Errors have not been
// rendered yet when it runs, so their status comes from httperr.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = httperr.Status(err)
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if id := RequestIDFrom(c); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if p, ok := PrincipalFrom(c); ok {
			attrs = append(attrs, slog.String("principal_id", p.ID), slog.String("role", string(p.Role)))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request completed", append(attrs, slog.Any("error", err))...)
		case err != nil:
			logger.Warn("request completed", append(attrs, slog.String("reason", err.Error()))...)
		default:
			logger.Info("request completed", attrs...)
		}
		return err
	}
}
