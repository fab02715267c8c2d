package funding

import (
	"fmt"
	"strings"

	"github.com/swiftpay/swiftpay/internal/domain"
)

// Method is a funding source.
type Method string

const (
	MethodCreditCard   Method = "credit-card"
	MethodDebitCard    Method = "debit-card"
	MethodBankTransfer Method = "bank-transfer"
)

// Valid reports whether m is an accepted funding method.
func (m Method) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodBankTransfer:
		return true
	}
	return false
}

// IsCard reports whether m draws on a payment card.
func (m Method) IsCard() bool {
	return m == MethodCreditCard || m == MethodDebitCard
}

func cleanCardNumber(card string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(card)
}

func validateCardNumber(card string) error {
	digits := cleanCardNumber(card)
	if len(digits) < 12 || len(digits) > 19 {
		return fmt.Errorf("%w: card number must be between 12 and 19 digits", domain.ErrValidationFailed)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: card number must be numeric", domain.ErrValidationFailed)
		}
	}
	if !passesLuhn(digits) {
		return fmt.Errorf("%w: card number failed checksum", domain.ErrValidationFailed)
	}
	return nil
}

// passesLuhn runs the mod 10 check. number must be all digits.
func passesLuhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		n := int(number[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

func maskCard(card string) string {
	digits := cleanCardNumber(card)
	if len(digits) < 4 {
		return ""
	}
	return "**** " + digits[len(digits)-4:]
}
