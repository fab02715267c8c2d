package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxAmountPlaces is the finest fraction an amount may carry.
	MaxAmountPlaces = 8
	maxAmountExp    = 12
)

// MaxAmount is the largest amount a single operation accepts.
var MaxAmount = decimal.New(1, maxAmountExp)

// ParseAmount decodes a money amount sent either as a JSON number or a JSON
// string. Anything that is not a finite positive decimal is ErrInvalidAmount.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, raw)
		}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, text)
	}
	if err := CheckAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// CheckAmount reports ErrInvalidAmount unless amount is positive, carries at
// most MaxAmountPlaces decimals and does not exceed MaxAmount.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	// Exponent is checked first so that out-of-range values are never rescaled.
	exp := amount.Exponent()
	if exp < -MaxAmountPlaces {
		return fmt.Errorf("%w: at most %d decimal places are allowed", ErrInvalidAmount, MaxAmountPlaces)
	}
	if exp > maxAmountExp || amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: amount exceeds %s", ErrInvalidAmount, MaxAmount)
	}
	return nil
}
