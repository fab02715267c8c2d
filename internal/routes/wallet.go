package routes

import (
	"github.com/swiftpay/swiftpay/internal/wallet"
)

// RegisterWalletRoutes wires the dashboard and history endpoints.
func RegisterWalletRoutes(secure SecureGroup, h *wallet.Handler) {
	secure("/wallet").Get("", h.Summary)
	secure("/transactions").Get("", h.History)
}
