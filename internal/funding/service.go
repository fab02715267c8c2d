package funding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/ledger"
)

// Service authorizes top-ups with the acquirer and credits the wallet.
type Service struct {
	ledger   *ledger.Engine
	acquirer Acquirer
	logger   *slog.Logger
}

// NewService prepares a funding service. A nil acquirer approves everything.
func NewService(engine *ledger.Engine, acquirer Acquirer, logger *slog.Logger) *Service {
	if acquirer == nil {
		acquirer = StaticAcquirer{}
	}
	return &Service{ledger: engine, acquirer: acquirer, logger: logger}
}

// FundInput captures the data required for a top-up.
type FundInput struct {
	AccountID  string
	Amount     decimal.Decimal
	Method     Method
	CardNumber string
	Expiry     string
	CVV        string
}

// Result is the outcome of a successful top-up.
type Result struct {
	Transaction       domain.Transaction
	Balance           decimal.Decimal
	Method            Method
	Card              string
	AcquirerReference string
}

// Fund validates the request, obtains an authorization and credits the
// account. The card number is optional for card methods, but checked when given.
func (s *Service) Fund(ctx context.Context, in FundInput) (Result, error) {
	method := Method(strings.ToLower(strings.TrimSpace(string(in.Method))))
	if !method.Valid() {
		return Result{}, fmt.Errorf("%w: unsupported funding method %q", domain.ErrValidationFailed, in.Method)
	}
	if err := domain.CheckAmount(in.Amount); err != nil {
		return Result{}, err
	}
	card := ""
	if method.IsCard() && strings.TrimSpace(in.CardNumber) != "" {
		if err := validateCardNumber(in.CardNumber); err != nil {
			return Result{}, err
		}
		card = cleanCardNumber(in.CardNumber)
	}

	decision, err := s.acquirer.Authorize(ctx, Authorization{
		AccountID:  in.AccountID,
		Method:     method,
		CardNumber: card,
		Expiry:     in.Expiry,
		CVV:        in.CVV,
		Amount:     in.Amount,
	})
	if err != nil {
		return Result{}, fmt.Errorf("authorize funding: %w", err)
	}
	if !decision.Approved() {
		s.logger.WarnContext(ctx, "funding declined", "account_id", in.AccountID, "method", method, "status", decision.Status)
		return Result{}, fmt.Errorf("%w: payment was declined", domain.ErrValidationFailed)
	}

	receipt, err := s.ledger.Fund(ctx, ledger.FundInput{AccountID: in.AccountID, Amount: in.Amount, Method: string(method)})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Transaction:       receipt.Transactions[0],
		Balance:           receipt.Balance(in.AccountID),
		Method:            method,
		Card:              maskCard(card),
		AcquirerReference: decision.Reference,
	}, nil
}
