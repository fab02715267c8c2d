package catalog

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

func seed(t *testing.T, accounts []domain.Account, txs []domain.Transaction) *Service {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.Update(ctx, func(tx store.Tx) error {
		if err := store.Save(ctx, tx, store.Accounts, accounts); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.Transactions, txs)
	}))
	svc := NewService(st, logging.Discard())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func vendors() []domain.Account {
	return []domain.Account{
		{ID: "v1", Email: "v1@example.com", Name: "Vic", Role: domain.RoleVendor,
			VendorInfo: &domain.VendorInfo{BusinessName: "Vic's Bakery", Category: "food", IsVerified: true}},
		{ID: "v2", Email: "v2@example.com", Name: "Val", Role: domain.RoleVendor,
			VendorInfo: &domain.VendorInfo{BusinessName: "Val Books", Category: "retail"}},
		{ID: "c1", Email: "c1@example.com", Name: "Cal", Role: domain.RoleClient},
	}
}

func input(name, price, category string) ProductInput {
	return ProductInput{Name: name, Description: name + " description", Price: decimal.RequireFromString(price), Category: category}
}

func TestCatalogLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateStartsActive", func(t *testing.T) {
		svc := seed(t, vendors(), nil)

		p, err := svc.Create(ctx, "v1", input(" Sourdough ", "4.50", "Food"))
		require.NoError(t, err)
		require.Equal(t, "Sourdough", p.Name)
		require.Equal(t, "food", p.Category)
		require.Equal(t, "v1", p.VendorID)
		require.True(t, p.IsActive)
		require.NotEmpty(t, p.ID)

		got, err := svc.Get(ctx, p.ID)
		require.NoError(t, err)
		require.True(t, got.Price.Equal(decimal.RequireFromString("4.5")))
	})

	t.Run("CreateValidates", func(t *testing.T) {
		svc := seed(t, vendors(), nil)

		_, err := svc.Create(ctx, "v1", input("", "4", "food"))
		require.ErrorIs(t, err, domain.ErrValidationFailed)
		_, err = svc.Create(ctx, "v1", input("Bread", "0", "food"))
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
		_, err = svc.Create(ctx, "v1", input("Bread", "-2", "food"))
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
		_, err = svc.Create(ctx, "v1", input("Bread", "1e2000000", "food"))
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
		_, err = svc.Create(ctx, "v1", input("Bread", "2", "weapons"))
		require.ErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("CreateRequiresVendorAccount", func(t *testing.T) {
		svc := seed(t, vendors(), nil)

		_, err := svc.Create(ctx, "c1", input("Bread", "2", "food"))
		require.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.Create(ctx, "ghost", input("Bread", "2", "food"))
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("MutationsAreScopedToOwner", func(t *testing.T) {
		svc := seed(t, vendors(), nil)
		p, err := svc.Create(ctx, "v1", input("Bagel", "1.25", "food"))
		require.NoError(t, err)

		_, err = svc.Update(ctx, "v2", p.ID, input("Stolen", "1", "food"))
		require.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.SetActive(ctx, "v2", p.ID, false)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.ErrorIs(t, svc.Delete(ctx, "v2", p.ID), domain.ErrNotFound)

		updated, err := svc.Update(ctx, "v1", p.ID, input("Sesame Bagel", "1.50", "food"))
		require.NoError(t, err)
		require.Equal(t, "Sesame Bagel", updated.Name)
		require.True(t, updated.CreatedAt.Equal(p.CreatedAt))

		off, err := svc.SetActive(ctx, "v1", p.ID, false)
		require.NoError(t, err)
		require.False(t, off.IsActive)

		require.NoError(t, svc.Delete(ctx, "v1", p.ID))
		_, err = svc.Get(ctx, p.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBrowse(t *testing.T) {
	ctx := context.Background()
	svc := seed(t, vendors(), nil)

	rye, err := svc.Create(ctx, "v1", input("Rye Loaf", "5", "food"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "v2", input("Cookbook", "20", "retail"))
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, "v1", input("Secret Loaf", "9", "food"))
	require.NoError(t, err)
	_, err = svc.SetActive(ctx, "v1", hidden.ID, false)
	require.NoError(t, err)

	t.Run("OnlyActive", func(t *testing.T) {
		listings, err := svc.Browse(ctx, BrowseFilter{})
		require.NoError(t, err)
		require.Len(t, listings, 2)
	})

	t.Run("SearchMatchesNameOrDescription", func(t *testing.T) {
		listings, err := svc.Browse(ctx, BrowseFilter{Search: "LOAF"})
		require.NoError(t, err)
		require.Len(t, listings, 1)
		require.Equal(t, rye.ID, listings[0].ID)

		listings, err = svc.Browse(ctx, BrowseFilter{Search: "cookbook desc"})
		require.NoError(t, err)
		require.Len(t, listings, 1)
	})

	t.Run("CategoryFilter", func(t *testing.T) {
		listings, err := svc.Browse(ctx, BrowseFilter{Category: "retail"})
		require.NoError(t, err)
		require.Len(t, listings, 1)
		require.Equal(t, "Cookbook", listings[0].Name)

		listings, err = svc.Browse(ctx, BrowseFilter{Category: "all"})
		require.NoError(t, err)
		require.Len(t, listings, 2)
	})

	t.Run("UnverifiedVendorsAreUnnamed", func(t *testing.T) {
		listings, err := svc.Browse(ctx, BrowseFilter{})
		require.NoError(t, err)
		names := map[string]string{}
		for _, l := range listings {
			names[l.Name] = l.VendorName
		}
		require.Equal(t, "Vic's Bakery", names["Rye Loaf"])
		require.Equal(t, unknownVendor, names["Cookbook"])
	})
}

func TestVendorStatsCountsSales(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	svc := seed(t, vendors(), []domain.Transaction{
		{ID: "t1", UserID: "v1", Type: domain.TxSale, Amount: decimal.NewFromInt(5), Date: now, Status: domain.StatusCompleted},
		{ID: "t2", UserID: "v1", Type: domain.TxSale, Amount: decimal.RequireFromString("2.50"), Date: now, Status: domain.StatusCompleted},
		{ID: "t3", UserID: "v1", Type: domain.TxReceived, Amount: decimal.NewFromInt(100), Date: now, Status: domain.StatusCompleted},
		{ID: "t4", UserID: "v2", Type: domain.TxSale, Amount: decimal.NewFromInt(7), Date: now, Status: domain.StatusCompleted},
	})
	_, err := svc.Create(ctx, "v1", input("Rye Loaf", "5", "food"))
	require.NoError(t, err)
	off, err := svc.Create(ctx, "v1", input("Stale Loaf", "1", "food"))
	require.NoError(t, err)
	_, err = svc.SetActive(ctx, "v1", off.ID, false)
	require.NoError(t, err)

	stats, err := svc.VendorStats(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalProducts)
	require.Equal(t, 1, stats.ActiveProducts)
	require.Equal(t, 2, stats.SalesCount)
	require.True(t, stats.Revenue.Equal(decimal.RequireFromString("7.5")), "revenue %s", stats.Revenue)
}
