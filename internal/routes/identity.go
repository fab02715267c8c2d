package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/identity"
)

// RegisterIdentityRoutes wires sign-up.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler) {
	r.Post("/identity/register", h.Register)
}
