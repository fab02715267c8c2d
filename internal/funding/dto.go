package funding

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FundRequest captures user-provided data to fund a wallet.
type FundRequest struct {
	Amount     json.RawMessage `json:"amount"`
	Method     Method          `json:"method"`
	CardNumber string          `json:"card_number"`
	Expiry     string          `json:"expiry"`
	CVV        string          `json:"cvv"`
}

// FundResponse is returned after a successful top-up.
type FundResponse struct {
	TransactionID     string          `json:"transaction_id"`
	Status            string          `json:"status"`
	Method            Method          `json:"method"`
	Card              string          `json:"card,omitempty"`
	Balance           decimal.Decimal `json:"balance"`
	AcquirerReference string          `json:"acquirer_reference"`
}
