// Package directory is the administrative view over all accounts and
// transactions. Callers must have established that the principal is an admin.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/store"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers        int             `json:"totalUsers"`
	TotalTransactions int             `json:"totalTransactions"`
	TotalVolume       decimal.Decimal `json:"totalVolume"`
	PendingVendors    int             `json:"pendingVendors"`
}

// AccountFilter narrows Accounts. Search matches name, email or business name.
type AccountFilter struct {
	Role   domain.Role
	Search string
}

// TransactionFilter narrows Transactions.
type TransactionFilter struct {
	UserID string
	Type   domain.TransactionType
	Limit  int
}

// Service reads and moderates the account directory.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService builds a directory service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Accounts lists accounts in registration order.
func (s *Service) Accounts(ctx context.Context, f AccountFilter) ([]domain.Account, error) {
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if search != "" && !matchesAccount(a, search) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Transactions lists transaction records across all accounts, newest first.
func (s *Service) Transactions(ctx context.Context, f TransactionFilter) ([]domain.Transaction, error) {
	records, err := store.Load[domain.Transaction](ctx, s.store, store.Transactions)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		t := records[i]
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		out = append(out, t)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// Stats aggregates the directory. Volume sums every record, so a marketplace
// sale counts once for the purchase and once for the sale.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return Stats{}, err
	}
	records, err := store.Load[domain.Transaction](ctx, s.store, store.Transactions)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalUsers: len(accounts), TotalTransactions: len(records), TotalVolume: decimal.Zero}
	for _, t := range records {
		stats.TotalVolume = stats.TotalVolume.Add(t.Amount)
	}
	for _, a := range accounts {
		if a.Role == domain.RoleVendor && a.VendorInfo != nil && !a.VendorInfo.IsVerified {
			stats.PendingVendors++
		}
	}
	return stats, nil
}

// SetVendorVerified sets the verification flag of a vendor account.
func (s *Service) SetVendorVerified(ctx context.Context, accountID string, verified bool) (domain.Account, error) {
	account, err := s.mutate(ctx, accountID, func(a *domain.Account) error {
		if a.Role != domain.RoleVendor || a.VendorInfo == nil {
			return fmt.Errorf("%w: %s is not a vendor account", domain.ErrValidationFailed, a.ID)
		}
		a.VendorInfo.IsVerified = verified
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	s.logger.InfoContext(ctx, "vendor verification changed", "account_id", accountID, "verified", verified)
	return account, nil
}

// ToggleSuspended flips the suspension flag of an account.
func (s *Service) ToggleSuspended(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.mutate(ctx, accountID, func(a *domain.Account) error {
		a.Suspended = !a.Suspended
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	s.logger.InfoContext(ctx, "account suspension changed", "account_id", accountID, "suspended", account.Suspended)
	return account, nil
}

func (s *Service) mutate(ctx context.Context, accountID string, fn func(*domain.Account) error) (domain.Account, error) {
	var updated domain.Account
	err := s.store.Update(ctx, func(tx store.Tx) error {
		accounts, err := store.Load[domain.Account](ctx, tx, store.Accounts)
		if err != nil {
			return err
		}
		for i := range accounts {
			if accounts[i].ID != accountID {
				continue
			}
			if err := fn(&accounts[i]); err != nil {
				return err
			}
			updated = accounts[i]
			return store.Save(ctx, tx, store.Accounts, accounts)
		}
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	})
	return updated, err
}

func matchesAccount(a domain.Account, search string) bool {
	if strings.Contains(strings.ToLower(a.Name), search) || strings.Contains(strings.ToLower(a.Email), search) {
		return true
	}
	return a.VendorInfo != nil && strings.Contains(strings.ToLower(a.VendorInfo.BusinessName), search)
}
