package routes

import (
	"github.com/swiftpay/swiftpay/internal/funding"
)

// RegisterFundingRoutes wires wallet top-ups.
func RegisterFundingRoutes(secure SecureGroup, h *funding.Handler) {
	secure("/wallet").Post("/fund", h.Fund)
}
