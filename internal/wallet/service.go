package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/ledger"
)

// Service builds read views of an account's wallet from the ledger.
type Service struct {
	ledger *ledger.Engine
}

// NewService builds a wallet service instance.
func NewService(engine *ledger.Engine) *Service {
	return &Service{ledger: engine}
}

// Summary returns the balance, the most recent transactions and the
// credit and debit totals of accountID.
func (s *Service) Summary(ctx context.Context, accountID string) (Summary, error) {
	account, err := s.ledger.Account(ctx, accountID)
	if err != nil {
		return Summary{}, err
	}
	history, err := s.ledger.History(ctx, accountID, ledger.HistoryFilter{})
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Account:          account,
		Balance:          account.Balance,
		TotalIn:          decimal.Zero,
		TotalOut:         decimal.Zero,
		TransactionCount: len(history),
	}
	for _, t := range history {
		if t.Type.Credits() {
			sum.TotalIn = sum.TotalIn.Add(t.Amount)
		} else {
			sum.TotalOut = sum.TotalOut.Add(t.Amount)
		}
	}
	sum.Recent = history[:min(recentLimit, len(history))]
	return sum, nil
}

// History returns accountID's transactions, newest first.
func (s *Service) History(ctx context.Context, accountID string, f ledger.HistoryFilter) ([]domain.Transaction, error) {
	return s.ledger.History(ctx, accountID, f)
}
