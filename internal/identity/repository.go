package identity

import (
	"context"
	"fmt"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/store"
)

// Repository persists accounts together with their credentials.
type Repository interface {
	Create(ctx context.Context, account domain.Account, cred Credential) error
	FindByEmail(ctx context.Context, email string) (domain.Account, Credential, error)
	FindByID(ctx context.Context, id string) (domain.Account, Credential, error)
	UpdateCredential(ctx context.Context, id string, fn func(*Credential) error) error
}

// StoreRepository implements Repository on the record store.
type StoreRepository struct {
	store store.Store
}

// NewStoreRepository builds a store-backed identity repository.
func NewStoreRepository(st store.Store) *StoreRepository {
	return &StoreRepository{store: st}
}

// Create appends the account and its credential, rejecting a reused email.
func (r *StoreRepository) Create(ctx context.Context, account domain.Account, cred Credential) error {
	return r.store.Update(ctx, func(tx store.Tx) error {
		accounts, err := store.Load[domain.Account](ctx, tx, store.Accounts)
		if err != nil {
			return err
		}
		email := domain.NormalizeEmail(account.Email)
		for _, existing := range accounts {
			if domain.NormalizeEmail(existing.Email) == email {
				return fmt.Errorf("%w: %s is already registered", domain.ErrDuplicate, email)
			}
		}
		creds, err := store.Load[Credential](ctx, tx, store.Credentials)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, tx, store.Accounts, append(accounts, account)); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.Credentials, append(creds, cred))
	})
}

// FindByEmail fetches an account and credential by normalised email.
func (r *StoreRepository) FindByEmail(ctx context.Context, email string) (domain.Account, Credential, error) {
	email = domain.NormalizeEmail(email)
	return r.find(ctx, func(a domain.Account) bool { return domain.NormalizeEmail(a.Email) == email })
}

// FindByID fetches an account and credential by account id.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (domain.Account, Credential, error) {
	return r.find(ctx, func(a domain.Account) bool { return a.ID == id })
}

func (r *StoreRepository) find(ctx context.Context, match func(domain.Account) bool) (domain.Account, Credential, error) {
	accounts, err := store.Load[domain.Account](ctx, r.store, store.Accounts)
	if err != nil {
		return domain.Account{}, Credential{}, err
	}
	for _, acc := range accounts {
		if !match(acc) {
			continue
		}
		creds, err := store.Load[Credential](ctx, r.store, store.Credentials)
		if err != nil {
			return domain.Account{}, Credential{}, err
		}
		for _, c := range creds {
			if c.AccountID == acc.ID {
				return acc, c, nil
			}
		}
		return acc, Credential{}, fmt.Errorf("%w: credential for %s", domain.ErrNotFound, acc.ID)
	}
	return domain.Account{}, Credential{}, fmt.Errorf("%w: account", domain.ErrNotFound)
}

// UpdateCredential applies fn to the stored credential of account id.
func (r *StoreRepository) UpdateCredential(ctx context.Context, id string, fn func(*Credential) error) error {
	return r.store.Update(ctx, func(tx store.Tx) error {
		creds, err := store.Load[Credential](ctx, tx, store.Credentials)
		if err != nil {
			return err
		}
		for i := range creds {
			if creds[i].AccountID != id {
				continue
			}
			if err := fn(&creds[i]); err != nil {
				return err
			}
			return store.Save(ctx, tx, store.Credentials, creds)
		}
		return fmt.Errorf("%w: credential for %s", domain.ErrNotFound, id)
	})
}
