package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/auth"
	"github.com/swiftpay/swiftpay/internal/identity"
)

// RegisterAuthRoutes wires the public authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
}

// RegisterSessionRoutes wires endpoints about the signed-in account.
func RegisterSessionRoutes(secure SecureGroup, h *auth.Handler, ids *identity.Handler) {
	secure("/auth/logout").Post("", h.Logout)

	me := secure("/me")
	me.Get("", ids.Me)
	me.Put("/password", ids.ChangePassword)
	me.Put("/pin", ids.SetPIN)
}
