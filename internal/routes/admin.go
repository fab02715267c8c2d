package routes

import (
	"github.com/swiftpay/swiftpay/internal/directory"
	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// RegisterAdminRoutes wires the directory and moderation endpoints.
func RegisterAdminRoutes(secure SecureGroup, h *directory.Handler) {
	group := secure("/admin")
	group.Use(middleware.RequireRole(domain.RoleAdmin))
	group.Get("/accounts", h.Accounts)
	group.Get("/transactions", h.Transactions)
	group.Get("/stats", h.Stats)
	group.Post("/accounts/:accountId/verify", h.Verify)
	group.Post("/accounts/:accountId/suspend", h.ToggleSuspended)
}
