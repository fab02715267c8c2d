package directory

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// Handler exposes the admin endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the directory HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Accounts handles GET /admin/accounts?role=&search=.
func (h *Handler) Accounts(c *fiber.Ctx) error {
	accounts, err := h.svc.Accounts(c.UserContext(), AccountFilter{
		Role:   domain.Role(c.Query("role")),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"accounts": accounts})
}

// Transactions handles GET /admin/transactions?userId=&type=&limit=.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	typ := domain.TransactionType(c.Query("type"))
	if typ != "" && typ != "all" && !typ.Valid() {
		return httperr.BadRequest(fmt.Sprintf("unknown transaction type %q", typ))
	}
	if typ == "all" {
		typ = ""
	}
	records, err := h.svc.Transactions(c.UserContext(), TransactionFilter{
		UserID: c.Query("userId"),
		Type:   typ,
		Limit:  c.QueryInt("limit"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transactions": records})
}

// Stats handles GET /admin/stats.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Verify marks a vendor as verified.
func (h *Handler) Verify(c *fiber.Ctx) error {
	account, err := h.svc.SetVendorVerified(c.UserContext(), c.Params("accountId"), true)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

// ToggleSuspended suspends or reinstates an account. Admins cannot suspend
// themselves.
func (h *Handler) ToggleSuspended(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	id := c.Params("accountId")
	if id == p.ID {
		return fmt.Errorf("%w: you cannot suspend your own account", domain.ErrValidationFailed)
	}
	account, err := h.svc.ToggleSuspended(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(account)
}
