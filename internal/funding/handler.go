package funding

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// Handler exposes the wallet funding endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Fund tops up the caller's wallet.
func (h *Handler) Fund(c *fiber.Ctx) error {
	var req FundRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return err
	}

	p, _ := middleware.PrincipalFrom(c)
	result, err := h.service.Fund(c.UserContext(), FundInput{
		AccountID:  p.ID,
		Amount:     amount,
		Method:     req.Method,
		CardNumber: req.CardNumber,
		Expiry:     req.Expiry,
		CVV:        req.CVV,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(FundResponse{
		TransactionID:     result.Transaction.ID,
		Status:            result.Transaction.Status,
		Method:            result.Method,
		Card:              result.Card,
		Balance:           result.Balance,
		AcquirerReference: result.AcquirerReference,
	})
}
