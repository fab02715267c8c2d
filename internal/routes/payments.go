package routes

import (
	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/middleware"
	"github.com/swiftpay/swiftpay/internal/payments"
)

// RegisterPaymentRoutes wires client money transfers.
func RegisterPaymentRoutes(secure SecureGroup, h *payments.Handler) {
	group := secure("/payments")
	group.Use(middleware.RequireRole(domain.RoleClient))
	group.Post("/send", h.Send)
	group.Post("/send-to-account", h.SendToAccount)
}

// RegisterUtilityRoutes wires airtime and electricity purchases.
func RegisterUtilityRoutes(secure SecureGroup, h *payments.Handler) {
	group := secure("/utilities")
	group.Post("/airtime", h.Airtime)
	group.Post("/electricity", h.Electricity)
}
