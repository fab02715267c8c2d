package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Role is the capability class of an account.
type Role string

const (
	RoleClient Role = "client"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// VendorInfo describes the business behind a vendor account.
type VendorInfo struct {
	BusinessName string `json:"businessName"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	IsVerified   bool   `json:"isVerified"`
}

// Account is a wallet holder. Balance never goes below zero and VendorInfo is
// set exactly when Role is RoleVendor.
type Account struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Role       Role            `json:"role"`
	Balance    decimal.Decimal `json:"balance"`
	Suspended  bool            `json:"suspended"`
	VendorInfo *VendorInfo     `json:"vendorInfo,omitempty"`
}

// DisplayName is the name shown to counterparties: the business name for
// vendors, the personal name otherwise.
func (a Account) DisplayName() string {
	if a.VendorInfo != nil && strings.TrimSpace(a.VendorInfo.BusinessName) != "" {
		return a.VendorInfo.BusinessName
	}
	return a.Name
}

// IsVerifiedVendor reports whether the account is a vendor approved by an admin.
func (a Account) IsVerifiedVendor() bool {
	return a.Role == RoleVendor && a.VendorInfo != nil && a.VendorInfo.IsVerified
}

// Principal is the authenticated caller handed to services by the session layer.
type Principal struct {
	ID   string
	Role Role
}

// NormalizeEmail canonicalises an email for uniqueness checks and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
