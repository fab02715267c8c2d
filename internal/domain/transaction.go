package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business reason of a transaction record. The sign of
// the record's effect on the owner's balance is derived from it.
type TransactionType string

const (
	TxSent     TransactionType = "sent"
	TxReceived TransactionType = "received"
	TxUtility  TransactionType = "utility"
	TxFund     TransactionType = "fund"
	TxPurchase TransactionType = "purchase"
	TxSale     TransactionType = "sale"
)

// StatusCompleted is the only status a transaction record can carry.
const StatusCompleted = "completed"

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxSent, TxReceived, TxUtility, TxFund, TxPurchase, TxSale:
		return true
	}
	return false
}

// Credits reports whether records of this type increase the owner's balance.
func (t TransactionType) Credits() bool {
	switch t {
	case TxReceived, TxFund, TxSale:
		return true
	}
	return false
}

// Signed returns amount with the sign of its effect on the owner's balance.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t.Credits() {
		return amount
	}
	return amount.Neg()
}

// Transaction is an append-only ledger record owned by UserID.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	Status      string          `json:"status"`
}

// Signed returns the record amount signed by its direction.
func (t Transaction) Signed() decimal.Decimal {
	return t.Type.Signed(t.Amount)
}
