package wallet

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/ledger"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Summary returns the caller's dashboard.
func (h *Handler) Summary(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	sum, err := h.service.Summary(c.UserContext(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(sum)
}

// History lists the caller's transactions, filtered by ?type=, ?search= and ?limit=.
func (h *Handler) History(c *fiber.Ctx) error {
	typ := domain.TransactionType(c.Query("type"))
	switch {
	case typ == "all":
		typ = ""
	case typ != "" && !typ.Valid():
		return httperr.BadRequest(fmt.Sprintf("unknown transaction type %q", typ))
	}

	p, _ := middleware.PrincipalFrom(c)
	records, err := h.service.History(c.UserContext(), p.ID, ledger.HistoryFilter{
		Type:   typ,
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transactions": records})
}
