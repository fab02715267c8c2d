package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/swiftpay/swiftpay/internal/domain"
)

const (
	minPasswordLength = 6
	// bcrypt only hashes the first 72 bytes.
	maxPasswordLength = 72
	pinLength         = 4
)

func checkPassword(password string) error {
	switch {
	case len(password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidationFailed, minPasswordLength)
	case len(password) > maxPasswordLength:
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidationFailed, maxPasswordLength)
	}
	return nil
}

// Service manages registration, credentials and the current principal.
type Service struct {
	repo            Repository
	startingBalance decimal.Decimal
	logger          *slog.Logger
	now             func() time.Time
}

// NewService creates a new identity service. New accounts are opened with
// startingBalance.
func NewService(repo Repository, startingBalance decimal.Decimal, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, startingBalance: startingBalance, logger: logger, now: time.Now}
}

// Register opens an account and stores a hashed password.
func (s *Service) Register(ctx context.Context, reg Registration) (domain.Account, error) {
	email := domain.NormalizeEmail(reg.Email)
	name := strings.TrimSpace(reg.Name)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return domain.Account{}, fmt.Errorf("%w: a valid email is required", domain.ErrValidationFailed)
	case name == "":
		return domain.Account{}, fmt.Errorf("%w: name is required", domain.ErrValidationFailed)
	case !reg.Role.Valid():
		return domain.Account{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidationFailed, reg.Role)
	}
	if err := checkPassword(reg.Password); err != nil {
		return domain.Account{}, err
	}

	var vendor *domain.VendorInfo
	if reg.Role == domain.RoleVendor {
		if reg.VendorInfo == nil ||
			strings.TrimSpace(reg.VendorInfo.BusinessName) == "" ||
			strings.TrimSpace(reg.VendorInfo.Category) == "" {
			return domain.Account{}, fmt.Errorf("%w: vendors need a business name and category", domain.ErrValidationFailed)
		}
		vendor = &domain.VendorInfo{
			BusinessName: strings.TrimSpace(reg.VendorInfo.BusinessName),
			Category:     strings.TrimSpace(reg.VendorInfo.Category),
			Description:  strings.TrimSpace(reg.VendorInfo.Description),
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, err
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       name,
		Role:       reg.Role,
		Balance:    s.startingBalance,
		VendorInfo: vendor,
	}
	cred := Credential{
		AccountID:    account.ID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, account, cred); err != nil {
		return domain.Account{}, err
	}

	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID, "role", account.Role)
	return account, nil
}

// Authenticate verifies an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.Account, Credential, error) {
	account, cred, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, Credential{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return domain.Account{}, Credential{}, err
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return domain.Account{}, Credential{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	if account.Suspended {
		return domain.Account{}, Credential{}, fmt.Errorf("%w: contact support", domain.ErrAccountSuspended)
	}

	now := s.now().UTC()
	err = s.repo.UpdateCredential(ctx, account.ID, func(c *Credential) error {
		c.LastLogin = &now
		return nil
	})
	if err != nil {
		return domain.Account{}, Credential{}, err
	}
	cred.LastLogin = &now
	return account, cred, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, accountID, current, next string) error {
	if err := checkPassword(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdateCredential(ctx, accountID, func(c *Credential) error {
		if err := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(current)); err != nil {
			return fmt.Errorf("%w: current password is incorrect", domain.ErrUnauthorized)
		}
		c.PasswordHash = hash
		c.TokenVersion++
		return nil
	})
}

// SetPIN stores a 4-digit transaction PIN.
func (s *Service) SetPIN(ctx context.Context, accountID, pin string) error {
	if !validPIN(pin) {
		return fmt.Errorf("%w: PIN must be exactly %d digits", domain.ErrValidationFailed, pinLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdateCredential(ctx, accountID, func(c *Credential) error {
		c.PINHash = hash
		return nil
	})
}

// VerifyPIN checks pin against the stored PIN hash.
func (s *Service) VerifyPIN(ctx context.Context, accountID, pin string) error {
	_, cred, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !cred.HasPIN() {
		return fmt.Errorf("%w: no PIN has been set", domain.ErrValidationFailed)
	}
	if err := bcrypt.CompareHashAndPassword(cred.PINHash, []byte(pin)); err != nil {
		return fmt.Errorf("%w: incorrect PIN", domain.ErrUnauthorized)
	}
	return nil
}

// Principal resolves the authenticated caller. tokenVersion must match the
// stored version so logout and password changes revoke older tokens.
func (s *Service) Principal(ctx context.Context, accountID string, tokenVersion int) (domain.Principal, error) {
	account, cred, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, fmt.Errorf("%w: unknown account", domain.ErrUnauthorized)
		}
		return domain.Principal{}, err
	}
	if cred.TokenVersion != tokenVersion {
		return domain.Principal{}, fmt.Errorf("%w: token revoked", domain.ErrUnauthorized)
	}
	if account.Suspended {
		return domain.Principal{}, fmt.Errorf("%w: contact support", domain.ErrAccountSuspended)
	}
	return domain.Principal{ID: account.ID, Role: account.Role}, nil
}

// Profile returns the account and credential metadata for accountID.
func (s *Service) Profile(ctx context.Context, accountID string) (domain.Account, Credential, error) {
	return s.repo.FindByID(ctx, accountID)
}

// BumpTokenVersion invalidates every token issued so far for accountID.
func (s *Service) BumpTokenVersion(ctx context.Context, accountID string) (int, error) {
	var version int
	err := s.repo.UpdateCredential(ctx, accountID, func(c *Credential) error {
		c.TokenVersion++
		version = c.TokenVersion
		return nil
	})
	return version, err
}

func validPIN(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
