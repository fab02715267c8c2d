package funding

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const statusApproved = "approved"

// Acquirer represents a connector to the external processor that collects
// the funds before the wallet is credited.
type Acquirer interface {
	Authorize(ctx context.Context, input Authorization) (AuthorizationDecision, error)
}

// AuthorizationDecision captures the processor's response.
type AuthorizationDecision struct {
	Reference string
	Status    string
}

// Approved reports whether the processor accepted the charge.
func (d AuthorizationDecision) Approved() bool { return d.Status == statusApproved }

// Authorization is the charge submitted to the acquirer. CardNumber is empty
// for bank transfers.
type Authorization struct {
	AccountID  string
	Method     Method
	CardNumber string
	Expiry     string
	CVV        string
	Amount     decimal.Decimal
}

// StaticAcquirer simulates a processor that approves everything.
type StaticAcquirer struct{}

// Authorize approves the request with a synthetic reference.
func (StaticAcquirer) Authorize(_ context.Context, _ Authorization) (AuthorizationDecision, error) {
	return AuthorizationDecision{Reference: uuid.NewString(), Status: statusApproved}, nil
}
