package domain

import "errors"

var (
	// ErrInvalidAmount is returned when an amount is zero, negative or not a number.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when a debit exceeds the payer balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound is returned when a referenced account or product does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when registering an email that is already in use.
	ErrDuplicate = errors.New("duplicate account")

	// ErrValidationFailed covers missing required fields and password/PIN policy violations.
	ErrValidationFailed = errors.New("validation failed")

	// ErrProductUnavailable is returned when purchasing a product that is not active.
	ErrProductUnavailable = errors.New("product unavailable")

	ErrUnauthorized     = errors.New("unauthorized")
	ErrAccountSuspended = errors.New("account suspended")
)
