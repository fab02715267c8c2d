package payments

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/ledger"
	"github.com/swiftpay/swiftpay/internal/notification"
)

var airtimeProviders = []string{"verizon", "att", "tmobile", "sprint"}

// Service turns client payment requests into ledger operations and tells
// counterparties about money they receive.
type Service struct {
	ledger   *ledger.Engine
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a payment service. notifier may be nil.
func NewService(engine *ledger.Engine, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{ledger: engine, notifier: notifier, logger: logger}
}

// Outcome is the caller's side of a completed payment.
type Outcome struct {
	Transaction domain.Transaction
	Balance     decimal.Decimal
}

// SendInput is a transfer to a free-text recipient.
type SendInput struct {
	SenderID    string
	Recipient   string
	Amount      decimal.Decimal
	Description string
}

// Send debits the sender for a transfer to a recipient label. The label is
// recorded for display only; no account is credited.
func (s *Service) Send(ctx context.Context, in SendInput) (Outcome, error) {
	receipt, err := s.ledger.Transfer(ctx, ledger.TransferInput{
		SenderID:       in.SenderID,
		RecipientLabel: in.Recipient,
		Amount:         in.Amount,
		Description:    in.Description,
	})
	if err != nil {
		return Outcome{}, err
	}
	return outcomeFor(receipt, in.SenderID), nil
}

// AccountSendInput is a transfer to a registered account.
type AccountSendInput struct {
	SenderID       string
	RecipientEmail string
	Amount         decimal.Decimal
	Description    string
}

// SendToAccount moves money to the account registered under RecipientEmail.
func (s *Service) SendToAccount(ctx context.Context, in AccountSendInput) (Outcome, error) {
	receipt, err := s.ledger.TransferToAccount(ctx, ledger.AccountTransferInput{
		SenderID:       in.SenderID,
		RecipientEmail: in.RecipientEmail,
		Amount:         in.Amount,
		Description:    in.Description,
	})
	if err != nil {
		return Outcome{}, err
	}

	out := outcomeFor(receipt, in.SenderID)
	for _, t := range receipt.Transactions {
		if t.Type == domain.TxReceived {
			s.notify(ctx, notification.Message{
				Kind:        notification.KindTransferReceived,
				Destination: t.UserID,
				Body:        fmt.Sprintf("You received $%s from %s", t.Amount.StringFixed(2), t.Recipient),
			})
		}
	}
	return out, nil
}

// AirtimeInput is a mobile airtime top-up.
type AirtimeInput struct {
	AccountID string
	Provider  string
	Phone     string
	Amount    decimal.Decimal
}

// BuyAirtime debits the account for airtime on Phone.
func (s *Service) BuyAirtime(ctx context.Context, in AirtimeInput) (Outcome, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	phone := strings.TrimSpace(in.Phone)
	if !slices.Contains(airtimeProviders, provider) {
		return Outcome{}, fmt.Errorf("%w: unknown network provider %q", domain.ErrValidationFailed, in.Provider)
	}
	if phone == "" {
		return Outcome{}, fmt.Errorf("%w: phone number is required", domain.ErrValidationFailed)
	}
	return s.utility(ctx, in.AccountID, in.Amount, fmt.Sprintf("Airtime - %s (%s)", provider, phone))
}

// ElectricityInput is a prepaid electricity purchase.
type ElectricityInput struct {
	AccountID string
	Meter     string
	Amount    decimal.Decimal
}

// BuyElectricity debits the account for units on Meter.
func (s *Service) BuyElectricity(ctx context.Context, in ElectricityInput) (Outcome, error) {
	meter := strings.TrimSpace(in.Meter)
	if meter == "" {
		return Outcome{}, fmt.Errorf("%w: meter number is required", domain.ErrValidationFailed)
	}
	return s.utility(ctx, in.AccountID, in.Amount, "Electricity - Meter "+meter)
}

// Purchase buys a marketplace product for buyerID and tells the vendor.
func (s *Service) Purchase(ctx context.Context, buyerID, productID string) (Outcome, error) {
	receipt, err := s.ledger.MarketplacePurchase(ctx, ledger.PurchaseInput{BuyerID: buyerID, ProductID: productID})
	if err != nil {
		return Outcome{}, err
	}

	for _, t := range receipt.Transactions {
		if t.Type == domain.TxSale {
			s.notify(ctx, notification.Message{
				Kind:        notification.KindSale,
				Destination: t.UserID,
				Body:        fmt.Sprintf("%s bought %s for $%s", t.Recipient, strings.TrimPrefix(t.Description, "Sale: "), t.Amount.StringFixed(2)),
			})
		}
	}
	return outcomeFor(receipt, buyerID), nil
}

func (s *Service) utility(ctx context.Context, accountID string, amount decimal.Decimal, description string) (Outcome, error) {
	receipt, err := s.ledger.UtilityPurchase(ctx, ledger.UtilityInput{AccountID: accountID, Amount: amount, Description: description})
	if err != nil {
		return Outcome{}, err
	}
	return outcomeFor(receipt, accountID), nil
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "notification failed", "kind", msg.Kind, "destination", msg.Destination, "error", err)
	}
}

func outcomeFor(receipt ledger.Receipt, accountID string) Outcome {
	out := Outcome{Balance: receipt.Balance(accountID)}
	for _, t := range receipt.Transactions {
		if t.UserID == accountID {
			out.Transaction = t
			break
		}
	}
	return out
}
