package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/store"
)

const (
	opTransfer            = "transfer"
	opAccountTransfer     = "account_transfer"
	opFund                = "fund"
	opUtility             = "utility"
	opMarketplacePurchase = "marketplace_purchase"
)

// Engine applies balance-affecting operations against the record store. Each
// operation reads the current snapshot, validates it, and persists updated
// balances together with the new transaction records in one store Update.
type Engine struct {
	store   store.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
	newID   func() string
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics records operation outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New builds a ledger engine. Transaction ids are UUIDv7 so they sort by creation.
func New(st store.Store, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Receipt captures the outcome of a ledger operation.
type Receipt struct {
	Transactions []domain.Transaction
	Balances     map[string]decimal.Decimal
}

// Balance returns the post-operation balance of the given account.
func (r Receipt) Balance(accountID string) decimal.Decimal {
	return r.Balances[accountID]
}

// TransferInput describes a one-sided peer transfer. RecipientLabel is a free
// text display string: no account is resolved or credited.
type TransferInput struct {
	SenderID       string
	RecipientLabel string
	Amount         decimal.Decimal
	Description    string
}

// AccountTransferInput describes a transfer to an account resolved by email.
type AccountTransferInput struct {
	SenderID       string
	RecipientEmail string
	Amount         decimal.Decimal
	Description    string
}

// FundInput describes a wallet top-up.
type FundInput struct {
	AccountID string
	Amount    decimal.Decimal
	Method    string
}

// UtilityInput describes a purchase of an external, non-reversible service.
type UtilityInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// PurchaseInput describes a marketplace purchase.
type PurchaseInput struct {
	BuyerID   string
	ProductID string
}

// Transfer debits the sender and appends one sent record.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (Receipt, error) {
	if err := validAmount(in.Amount); err != nil {
		return Receipt{}, err
	}
	if strings.TrimSpace(in.RecipientLabel) == "" {
		return Receipt{}, fmt.Errorf("%w: recipient is required", domain.ErrValidationFailed)
	}
	return e.post(ctx, opTransfer, func(p *posting) error {
		sender, err := p.account(in.SenderID)
		if err != nil {
			return err
		}
		if err := p.debit(sender, in.Amount); err != nil {
			return err
		}
		p.record(sender.ID, domain.TxSent, in.Amount, strings.TrimSpace(in.RecipientLabel), in.Description)
		return nil
	})
}

// TransferToAccount debits the sender and credits the account registered
// under RecipientEmail, appending a sent and a received record.
func (e *Engine) TransferToAccount(ctx context.Context, in AccountTransferInput) (Receipt, error) {
	if err := validAmount(in.Amount); err != nil {
		return Receipt{}, err
	}
	email := domain.NormalizeEmail(in.RecipientEmail)
	if email == "" {
		return Receipt{}, fmt.Errorf("%w: recipient email is required", domain.ErrValidationFailed)
	}
	return e.post(ctx, opAccountTransfer, func(p *posting) error {
		sender, err := p.account(in.SenderID)
		if err != nil {
			return err
		}
		recipient, err := p.accountByEmail(email)
		if err != nil {
			return err
		}
		if recipient.ID == sender.ID {
			return fmt.Errorf("%w: cannot send money to yourself", domain.ErrValidationFailed)
		}
		if err := p.debit(sender, in.Amount); err != nil {
			return err
		}
		p.credit(recipient, in.Amount)
		p.record(sender.ID, domain.TxSent, in.Amount, recipient.DisplayName(), in.Description)
		p.record(recipient.ID, domain.TxReceived, in.Amount, sender.DisplayName(), in.Description)
		return nil
	})
}

// Fund credits the account and appends one fund record.
func (e *Engine) Fund(ctx context.Context, in FundInput) (Receipt, error) {
	if err := validAmount(in.Amount); err != nil {
		return Receipt{}, err
	}
	description := "Wallet funding"
	if m := strings.TrimSpace(in.Method); m != "" {
		description = "Wallet funding via " + m
	}
	return e.post(ctx, opFund, func(p *posting) error {
		acc, err := p.account(in.AccountID)
		if err != nil {
			return err
		}
		p.credit(acc, in.Amount)
		p.record(acc.ID, domain.TxFund, in.Amount, "", description)
		return nil
	})
}

// UtilityPurchase debits the account and appends one utility record.
func (e *Engine) UtilityPurchase(ctx context.Context, in UtilityInput) (Receipt, error) {
	if err := validAmount(in.Amount); err != nil {
		return Receipt{}, err
	}
	return e.post(ctx, opUtility, func(p *posting) error {
		acc, err := p.account(in.AccountID)
		if err != nil {
			return err
		}
		if err := p.debit(acc, in.Amount); err != nil {
			return err
		}
		p.record(acc.ID, domain.TxUtility, in.Amount, "", in.Description)
		return nil
	})
}

// MarketplacePurchase moves the product price from the buyer to the owning
// vendor and appends a purchase record for the buyer and a sale record for
// the vendor. Either all of it happens or nothing does.
func (e *Engine) MarketplacePurchase(ctx context.Context, in PurchaseInput) (Receipt, error) {
	return e.post(ctx, opMarketplacePurchase, func(p *posting) error {
		products, err := store.Load[domain.Product](p.ctx, p.tx, store.Products)
		if err != nil {
			return err
		}
		var product *domain.Product
		for i := range products {
			if products[i].ID == in.ProductID {
				product = &products[i]
				break
			}
		}
		if product == nil {
			return fmt.Errorf("%w: product %s", domain.ErrNotFound, in.ProductID)
		}
		if !product.IsActive {
			return fmt.Errorf("%w: %s is not available for purchase", domain.ErrProductUnavailable, product.Name)
		}
		if err := validAmount(product.Price); err != nil {
			return err
		}

		buyer, err := p.account(in.BuyerID)
		if err != nil {
			return err
		}
		vendor, err := p.account(product.VendorID)
		if err != nil {
			return err
		}
		if vendor.Role != domain.RoleVendor {
			return fmt.Errorf("%w: vendor %s", domain.ErrNotFound, product.VendorID)
		}
		if vendor.ID == buyer.ID {
			return fmt.Errorf("%w: vendors cannot buy their own products", domain.ErrValidationFailed)
		}

		if err := p.debit(buyer, product.Price); err != nil {
			return err
		}
		p.credit(vendor, product.Price)
		p.record(buyer.ID, domain.TxPurchase, product.Price, vendor.DisplayName(), "Purchase: "+product.Name)
		p.record(vendor.ID, domain.TxSale, product.Price, buyer.DisplayName(), "Sale: "+product.Name)
		return nil
	})
}

// Account returns the current snapshot of one account.
func (e *Engine) Account(ctx context.Context, accountID string) (domain.Account, error) {
	accounts, err := store.Load[domain.Account](ctx, e.store, store.Accounts)
	if err != nil {
		return domain.Account{}, err
	}
	for _, acc := range accounts {
		if acc.ID == accountID {
			return acc, nil
		}
	}
	return domain.Account{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
}

// Balance returns the current balance of an account.
func (e *Engine) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	acc, err := e.Account(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// HistoryFilter narrows an account's transaction history. Search matches
// recipient or description case-insensitively.
type HistoryFilter struct {
	Type   domain.TransactionType
	Search string
	Limit  int
}

// History returns the account's transactions, newest first.
func (e *Engine) History(ctx context.Context, accountID string, f HistoryFilter) ([]domain.Transaction, error) {
	if _, err := e.Account(ctx, accountID); err != nil {
		return nil, err
	}
	records, err := store.Load[domain.Transaction](ctx, e.store, store.Transactions)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.Transaction, 0)
	for i := len(records) - 1; i >= 0; i-- {
		t := records[i]
		if t.UserID != accountID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Recipient), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func validAmount(amount decimal.Decimal) error {
	return domain.CheckAmount(amount)
}

func (e *Engine) post(ctx context.Context, op string, fn func(p *posting) error) (Receipt, error) {
	start := time.Now()
	var receipt Receipt

	err := e.store.Update(ctx, func(tx store.Tx) error {
		accounts, err := store.Load[domain.Account](ctx, tx, store.Accounts)
		if err != nil {
			return err
		}
		p := &posting{
			ctx:      ctx,
			tx:       tx,
			accounts: accounts,
			at:       e.now().UTC(),
			newID:    e.newID,
			touched:  make(map[string]struct{}),
		}
		if err := fn(p); err != nil {
			return err
		}
		for _, acc := range p.accounts {
			if acc.Balance.IsNegative() {
				return fmt.Errorf("ledger: account %s would go negative", acc.ID)
			}
		}

		records, err := store.Load[domain.Transaction](ctx, tx, store.Transactions)
		if err != nil {
			return err
		}
		records = append(records, p.records...)

		if err := store.Save(ctx, tx, store.Accounts, p.accounts); err != nil {
			return err
		}
		if err := store.Save(ctx, tx, store.Transactions, records); err != nil {
			return err
		}
		receipt = p.receipt()
		return nil
	})

	e.observe(ctx, op, time.Since(start), receipt, err)
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func (e *Engine) observe(ctx context.Context, op string, elapsed time.Duration, receipt Receipt, err error) {
	outcome := outcomeOf(err)
	if e.metrics != nil {
		e.metrics.observe(op, outcome, elapsed, receipt.Transactions)
	}

	attrs := []any{
		slog.String("operation", op),
		slog.String("outcome", outcome),
		slog.Duration("duration", elapsed),
	}
	for _, t := range receipt.Transactions {
		attrs = append(attrs, slog.Group(string(t.Type),
			slog.String("account_id", t.UserID),
			slog.String("amount", t.Amount.String()),
		))
	}
	switch {
	case err == nil:
		e.logger.InfoContext(ctx, "ledger operation", attrs...)
	case outcome == outcomeError:
		e.logger.ErrorContext(ctx, "ledger operation", append(attrs, slog.Any("error", err))...)
	default:
		e.logger.WarnContext(ctx, "ledger operation rejected", append(attrs, slog.String("reason", err.Error()))...)
	}
}

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrProductUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrValidationFailed):
		return "validation_failed"
	default:
		return outcomeError
	}
}

// posting is the working state of one operation inside a store Update.
type posting struct {
	ctx      context.Context
	tx       store.Tx
	accounts []domain.Account
	at       time.Time
	newID    func() string
	records  []domain.Transaction
	touched  map[string]struct{}
}

func (p *posting) account(id string) (*domain.Account, error) {
	for i := range p.accounts {
		if p.accounts[i].ID == id {
			return &p.accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
}

func (p *posting) accountByEmail(email string) (*domain.Account, error) {
	for i := range p.accounts {
		if domain.NormalizeEmail(p.accounts[i].Email) == email {
			return &p.accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no account registered for %s", domain.ErrNotFound, email)
}

func (p *posting) debit(acc *domain.Account, amount decimal.Decimal) error {
	if acc.Balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s is below %s", domain.ErrInsufficientFunds, acc.Balance.StringFixed(2), amount.StringFixed(2))
	}
	acc.Balance = acc.Balance.Sub(amount)
	p.touched[acc.ID] = struct{}{}
	return nil
}

func (p *posting) credit(acc *domain.Account, amount decimal.Decimal) {
	acc.Balance = acc.Balance.Add(amount)
	p.touched[acc.ID] = struct{}{}
}

func (p *posting) record(userID string, typ domain.TransactionType, amount decimal.Decimal, recipient, description string) {
	p.records = append(p.records, domain.Transaction{
		ID:          p.newID(),
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Recipient:   recipient,
		Description: strings.TrimSpace(description),
		Date:        p.at,
		Status:      domain.StatusCompleted,
	})
}

func (p *posting) receipt() Receipt {
	balances := make(map[string]decimal.Decimal, len(p.touched))
	for _, acc := range p.accounts {
		if _, ok := p.touched[acc.ID]; ok {
			balances[acc.ID] = acc.Balance
		}
	}
	records := make([]domain.Transaction, len(p.records))
	copy(records, p.records)
	return Receipt{Transactions: records, Balances: balances}
}
