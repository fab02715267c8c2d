package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/logging"
	"github.com/swiftpay/swiftpay/internal/store"
)

func newService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st := store.NewMemory()
	return NewService(NewStoreRepository(st), decimal.NewFromInt(1000), logging.Discard()), st
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, Registration{Email: "  Ada@Example.com ", Password: "secret1", Name: "Ada", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Email != "ada@example.com" {
		t.Fatalf("expected normalised email, got %q", account.Email)
	}
	if !account.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected starting balance 1000, got %s", account.Balance)
	}
	if account.VendorInfo != nil {
		t.Fatalf("client must not carry vendor info")
	}

	authed, cred, err := svc.Authenticate(ctx, "ADA@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != account.ID || cred.LastLogin == nil {
		t.Fatalf("unexpected login result: %+v %+v", authed, cred)
	}

	if _, _, err := svc.Authenticate(ctx, "ada@example.com", "wrong-pass"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, Registration{Email: "ada@example.com", Password: "secret1", Name: "Ada", Role: domain.RoleClient}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, Registration{Email: "ADA@example.com", Password: "secret2", Name: "Other", Role: domain.RoleClient})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	accounts, err := store.Load[domain.Account](ctx, st, store.Accounts)
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts))
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	bad := []Registration{
		{Email: "not-an-email", Password: "secret1", Name: "Ada", Role: domain.RoleClient},
		{Email: "a@example.com", Password: "short", Name: "Ada", Role: domain.RoleClient},
		{Email: "a@example.com", Password: strings.Repeat("p", 80), Name: "Ada", Role: domain.RoleClient},
		{Email: "a@example.com", Password: "secret1", Name: " ", Role: domain.RoleClient},
		{Email: "a@example.com", Password: "secret1", Name: "Ada", Role: "superuser"},
		{Email: "a@example.com", Password: "secret1", Name: "Ada", Role: domain.RoleVendor},
		{Email: "a@example.com", Password: "secret1", Name: "Ada", Role: domain.RoleVendor, VendorInfo: &domain.VendorInfo{BusinessName: "Shop"}},
	}
	for i, reg := range bad {
		if _, err := svc.Register(ctx, reg); !errors.Is(err, domain.ErrValidationFailed) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestRegisterVendorStartsUnverified(t *testing.T) {
	svc, _ := newService(t)

	account, err := svc.Register(context.Background(), Registration{
		Email:      "shop@example.com",
		Password:   "secret1",
		Name:       "Sam",
		Role:       domain.RoleVendor,
		VendorInfo: &domain.VendorInfo{BusinessName: " Sam's Shop ", Category: "food", IsVerified: true},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.VendorInfo == nil || account.VendorInfo.BusinessName != "Sam's Shop" {
		t.Fatalf("unexpected vendor info: %+v", account.VendorInfo)
	}
	if account.VendorInfo.IsVerified {
		t.Fatalf("vendors must start unverified")
	}
}

func TestPrincipalTracksTokenVersionAndSuspension(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, Registration{Email: "ada@example.com", Password: "secret1", Name: "Ada", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	p, err := svc.Principal(ctx, account.ID, 0)
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	if p.ID != account.ID || p.Role != domain.RoleAdmin {
		t.Fatalf("unexpected principal %+v", p)
	}

	version, err := svc.BumpTokenVersion(ctx, account.ID)
	if err != nil || version != 1 {
		t.Fatalf("bump: %d %v", version, err)
	}
	if _, err := svc.Principal(ctx, account.ID, 0); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected stale token rejection, got %v", err)
	}

	err = st.Update(ctx, func(tx store.Tx) error {
		accounts, err := store.Load[domain.Account](ctx, tx, store.Accounts)
		if err != nil {
			return err
		}
		accounts[0].Suspended = true
		return store.Save(ctx, tx, store.Accounts, accounts)
	})
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := svc.Principal(ctx, account.ID, 1); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected suspended, got %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, "ada@example.com", "secret1"); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected suspended login to fail, got %v", err)
	}
}

func TestChangePasswordAndPIN(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, Registration{Email: "ada@example.com", Password: "secret1", Name: "Ada", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(ctx, account.ID, "secret1", strings.Repeat("p", 73)); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected overlong password to be rejected, got %v", err)
	}
	if err := svc.ChangePassword(ctx, account.ID, "wrong", "secret2"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := svc.ChangePassword(ctx, account.ID, "secret1", "secret2"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, "ada@example.com", "secret2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if err := svc.VerifyPIN(ctx, account.ID, "1234"); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected missing PIN error, got %v", err)
	}
	for _, pin := range []string{"123", "12345", "12a4"} {
		if err := svc.SetPIN(ctx, account.ID, pin); !errors.Is(err, domain.ErrValidationFailed) {
			t.Fatalf("pin %q: expected validation error, got %v", pin, err)
		}
	}
	if err := svc.SetPIN(ctx, account.ID, "4321"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	if err := svc.VerifyPIN(ctx, account.ID, "4321"); err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if err := svc.VerifyPIN(ctx, account.ID, "0000"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected wrong PIN rejection, got %v", err)
	}
}
