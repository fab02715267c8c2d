package identity

import (
	"time"

	"github.com/swiftpay/swiftpay/internal/domain"
)

// Credential holds the secrets bound to one account. It lives in its own
// collection so account snapshots never carry password material.
type Credential struct {
	AccountID    string     `json:"accountId"`
	Email        string     `json:"email"`
	PasswordHash []byte     `json:"passwordHash"`
	PINHash      []byte     `json:"pinHash,omitempty"`
	TokenVersion int        `json:"tokenVersion"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// HasPIN reports whether a transaction PIN has been set.
func (c Credential) HasPIN() bool { return len(c.PINHash) > 0 }

// Registration is the sign-up request.
type Registration struct {
	Email      string
	Password   string
	Name       string
	Role       domain.Role
	VendorInfo *domain.VendorInfo
}
