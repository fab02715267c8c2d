package wallet

import (
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
)

const recentLimit = 5

// Summary is the dashboard view of one account.
type Summary struct {
	Account          domain.Account       `json:"account"`
	Balance          decimal.Decimal      `json:"balance"`
	Recent           []domain.Transaction `json:"recentTransactions"`
	TotalIn          decimal.Decimal      `json:"totalIn"`
	TotalOut         decimal.Decimal      `json:"totalOut"`
	TransactionCount int                  `json:"transactionCount"`
}
