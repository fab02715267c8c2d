package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a vendor listing. Only active products are shown to shoppers.
type Product struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendorId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}
