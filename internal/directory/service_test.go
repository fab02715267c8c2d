package directory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/logging"
	"github.com/swiftpay/swiftpay/internal/store"
)

func seed(t *testing.T) *Service {
	t.Helper()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	accounts := []domain.Account{
		{ID: "a1", Email: "admin@example.com", Name: "Ada", Role: domain.RoleAdmin},
		{ID: "c1", Email: "cal@example.com", Name: "Cal", Role: domain.RoleClient, Balance: decimal.NewFromInt(50)},
		{ID: "v1", Email: "vic@example.com", Name: "Vic", Role: domain.RoleVendor,
			VendorInfo: &domain.VendorInfo{BusinessName: "Vic's Bakery", Category: "food"}},
		{ID: "v2", Email: "val@example.com", Name: "Val", Role: domain.RoleVendor,
			VendorInfo: &domain.VendorInfo{BusinessName: "Val Books", Category: "retail", IsVerified: true}},
	}
	txs := []domain.Transaction{
		{ID: "t1", UserID: "c1", Type: domain.TxFund, Amount: decimal.NewFromInt(100), Date: now, Status: domain.StatusCompleted},
		{ID: "t2", UserID: "c1", Type: domain.TxPurchase, Amount: decimal.RequireFromString("12.5"), Date: now.Add(time.Minute), Status: domain.StatusCompleted},
		{ID: "t3", UserID: "v2", Type: domain.TxSale, Amount: decimal.RequireFromString("12.5"), Date: now.Add(time.Minute), Status: domain.StatusCompleted},
	}
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.Update(ctx, func(tx store.Tx) error {
		if err := store.Save(ctx, tx, store.Accounts, accounts); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.Transactions, txs)
	}))
	return NewService(st, logging.Discard())
}

func TestDirectoryReads(t *testing.T) {
	ctx := context.Background()
	svc := seed(t)

	t.Run("Stats", func(t *testing.T) {
		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		require.Equal(t, 4, stats.TotalUsers)
		require.Equal(t, 3, stats.TotalTransactions)
		require.True(t, stats.TotalVolume.Equal(decimal.NewFromInt(125)), "volume %s", stats.TotalVolume)
		require.Equal(t, 1, stats.PendingVendors)
	})

	t.Run("AccountsFilter", func(t *testing.T) {
		all, err := svc.Accounts(ctx, AccountFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)

		vendors, err := svc.Accounts(ctx, AccountFilter{Role: domain.RoleVendor})
		require.NoError(t, err)
		require.Len(t, vendors, 2)

		books, err := svc.Accounts(ctx, AccountFilter{Search: "books"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		require.Equal(t, "v2", books[0].ID)
	})

	t.Run("TransactionsNewestFirst", func(t *testing.T) {
		records, err := svc.Transactions(ctx, TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, "t3", records[0].ID)

		mine, err := svc.Transactions(ctx, TransactionFilter{UserID: "c1", Type: domain.TxFund})
		require.NoError(t, err)
		require.Len(t, mine, 1)

		limited, err := svc.Transactions(ctx, TransactionFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, limited, 2)
	})
}

func TestDirectoryModeration(t *testing.T) {
	ctx := context.Background()

	t.Run("VerifyVendor", func(t *testing.T) {
		svc := seed(t)
		account, err := svc.SetVendorVerified(ctx, "v1", true)
		require.NoError(t, err)
		require.True(t, account.VendorInfo.IsVerified)

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		require.Zero(t, stats.PendingVendors)
	})

	t.Run("VerifyRejectsNonVendor", func(t *testing.T) {
		svc := seed(t)
		_, err := svc.SetVendorVerified(ctx, "c1", true)
		require.ErrorIs(t, err, domain.ErrValidationFailed)
		_, err = svc.SetVendorVerified(ctx, "ghost", true)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ToggleSuspended", func(t *testing.T) {
		svc := seed(t)
		account, err := svc.ToggleSuspended(ctx, "c1")
		require.NoError(t, err)
		require.True(t, account.Suspended)
		require.True(t, account.Balance.Equal(decimal.NewFromInt(50)))

		account, err = svc.ToggleSuspended(ctx, "c1")
		require.NoError(t, err)
		require.False(t, account.Suspended)

		_, err = svc.ToggleSuspended(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
