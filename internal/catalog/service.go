// Package catalog manages vendor-owned products and the shopper-facing
// marketplace listing.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/store"
)

const unknownVendor = "Unknown Vendor"

var categories = []string{"retail", "food", "services", "utilities", "entertainment"}

// Categories lists the product categories vendors may choose from.
func Categories() []string {
	return slices.Clone(categories)
}

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// BrowseFilter narrows the marketplace listing. Empty fields match all.
type BrowseFilter struct {
	Search   string
	Category string
}

// Listing is an active product as shown to shoppers.
type Listing struct {
	domain.Product
	VendorName     string `json:"vendorName"`
	VendorVerified bool   `json:"vendorVerified"`
}

// Stats summarises a vendor's catalog and sales.
type Stats struct {
	TotalProducts  int             `json:"totalProducts"`
	ActiveProducts int             `json:"activeProducts"`
	SalesCount     int             `json:"salesCount"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// Service implements the product lifecycle on the record store.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a catalog service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger, now: time.Now}
}

// Create adds an active product owned by vendorID.
func (s *Service) Create(ctx context.Context, vendorID string, in ProductInput) (domain.Product, error) {
	in, err := normalize(in)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:          uuid.New().String(),
		VendorID:    vendorID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}

	err = s.store.Update(ctx, func(tx store.Tx) error {
		if err := requireVendor(ctx, tx, vendorID); err != nil {
			return err
		}
		products, err := store.Load[domain.Product](ctx, tx, store.Products)
		if err != nil {
			return err
		}
		return store.Save(ctx, tx, store.Products, append(products, product))
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "vendor_id", vendorID)
	return product, nil
}

// Update replaces the editable fields of a product owned by vendorID.
func (s *Service) Update(ctx context.Context, vendorID, productID string, in ProductInput) (domain.Product, error) {
	in, err := normalize(in)
	if err != nil {
		return domain.Product{}, err
	}
	return s.mutate(ctx, vendorID, productID, func(p *domain.Product) {
		p.Name = in.Name
		p.Description = in.Description
		p.Price = in.Price
		p.Category = in.Category
	})
}

// SetActive lists or unlists a product owned by vendorID.
func (s *Service) SetActive(ctx context.Context, vendorID, productID string, active bool) (domain.Product, error) {
	return s.mutate(ctx, vendorID, productID, func(p *domain.Product) {
		p.IsActive = active
	})
}

// Delete removes a product owned by vendorID. Past transactions keep their
// descriptions.
func (s *Service) Delete(ctx context.Context, vendorID, productID string) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		products, err := store.Load[domain.Product](ctx, tx, store.Products)
		if err != nil {
			return err
		}
		i := indexOwned(products, vendorID, productID)
		if i < 0 {
			return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return store.Save(ctx, tx, store.Products, slices.Delete(products, i, i+1))
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "product deleted", "product_id", productID, "vendor_id", vendorID)
	return nil
}

// ListByVendor returns every product of vendorID, active or not.
func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]domain.Product, error) {
	products, err := store.Load[domain.Product](ctx, s.store, store.Products)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.VendorID == vendorID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns one product regardless of its state.
func (s *Service) Get(ctx context.Context, productID string) (domain.Product, error) {
	products, err := store.Load[domain.Product](ctx, s.store, store.Products)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
}

// Browse lists active products matching f. Search is a case-insensitive
// substring match on name or description; category must match exactly.
func (s *Service) Browse(ctx context.Context, f BrowseFilter) ([]Listing, error) {
	products, err := store.Load[domain.Product](ctx, s.store, store.Products)
	if err != nil {
		return nil, err
	}
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return nil, err
	}
	vendors := make(map[string]domain.Account)
	for _, a := range accounts {
		if a.Role == domain.RoleVendor {
			vendors[a.ID] = a
		}
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	category := strings.TrimSpace(f.Category)
	if category == "all" {
		category = ""
	}

	out := make([]Listing, 0)
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		listing := Listing{Product: p, VendorName: unknownVendor}
		if v, ok := vendors[p.VendorID]; ok && v.IsVerifiedVendor() {
			listing.VendorName = v.DisplayName()
			listing.VendorVerified = true
		}
		out = append(out, listing)
	}
	return out, nil
}

// VendorStats summarises the catalog and sale records of vendorID.
func (s *Service) VendorStats(ctx context.Context, vendorID string) (Stats, error) {
	products, err := s.ListByVendor(ctx, vendorID)
	if err != nil {
		return Stats{}, err
	}
	records, err := store.Load[domain.Transaction](ctx, s.store, store.Transactions)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalProducts: len(products), Revenue: decimal.Zero}
	for _, p := range products {
		if p.IsActive {
			stats.ActiveProducts++
		}
	}
	for _, t := range records {
		if t.UserID == vendorID && t.Type == domain.TxSale {
			stats.SalesCount++
			stats.Revenue = stats.Revenue.Add(t.Amount)
		}
	}
	return stats, nil
}

func (s *Service) mutate(ctx context.Context, vendorID, productID string, fn func(*domain.Product)) (domain.Product, error) {
	var updated domain.Product
	err := s.store.Update(ctx, func(tx store.Tx) error {
		products, err := store.Load[domain.Product](ctx, tx, store.Products)
		if err != nil {
			return err
		}
		i := indexOwned(products, vendorID, productID)
		if i < 0 {
			return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		fn(&products[i])
		updated = products[i]
		return store.Save(ctx, tx, store.Products, products)
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.InfoContext(ctx, "product updated", "product_id", productID, "vendor_id", vendorID, "active", updated.IsActive)
	return updated, nil
}

func indexOwned(products []domain.Product, vendorID, productID string) int {
	return slices.IndexFunc(products, func(p domain.Product) bool {
		return p.ID == productID && p.VendorID == vendorID
	})
}

func requireVendor(ctx context.Context, tx store.Tx, vendorID string) error {
	accounts, err := store.Load[domain.Account](ctx, tx, store.Accounts)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.ID == vendorID && a.Role == domain.RoleVendor {
			return nil
		}
	}
	return fmt.Errorf("%w: vendor %s", domain.ErrNotFound, vendorID)
}

func normalize(in ProductInput) (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	switch {
	case in.Name == "":
		return in, fmt.Errorf("%w: product name is required", domain.ErrValidationFailed)
	case !slices.Contains(categories, in.Category):
		return in, fmt.Errorf("%w: unknown category %q", domain.ErrValidationFailed, in.Category)
	}
	if err := domain.CheckAmount(in.Price); err != nil {
		return in, fmt.Errorf("price: %w", err)
	}
	return in, nil
}
