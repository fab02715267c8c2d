package routes

import (
	"github.com/swiftpay/swiftpay/internal/catalog"
	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/middleware"
	"github.com/swiftpay/swiftpay/internal/payments"
)

// RegisterMarketplaceRoutes wires the shopper side of the catalog.
func RegisterMarketplaceRoutes(secure SecureGroup, h *catalog.Handler, purchases *payments.Handler) {
	group := secure("/marketplace")
	group.Use(middleware.RequireRole(domain.RoleClient))
	group.Get("/products", h.Browse)
	group.Post("/products/:productId/purchase", purchases.Purchase)
}

// RegisterVendorRoutes wires product management for vendors.
func RegisterVendorRoutes(secure SecureGroup, h *catalog.Handler) {
	group := secure("/vendor")
	group.Use(middleware.RequireRole(domain.RoleVendor))
	group.Get("/products", h.ListOwn)
	group.Post("/products", h.Create)
	group.Put("/products/:productId", h.Update)
	group.Delete("/products/:productId", h.Delete)
	group.Put("/products/:productId/active", h.SetActive)
	group.Get("/stats", h.Stats)
}
