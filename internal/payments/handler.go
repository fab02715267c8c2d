package payments

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// Handler exposes payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type paymentResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	Balance     decimal.Decimal    `json:"balance"`
}

func respond(c *fiber.Ctx, out Outcome) error {
	return c.Status(http.StatusCreated).JSON(paymentResponse{Transaction: out.Transaction, Balance: out.Balance})
}

type sendRequest struct {
	Recipient   string          `json:"recipient"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
}

// Send handles POST /payments/send.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	p, _ := middleware.PrincipalFrom(c)
	out, err := h.service.Send(c.UserContext(), SendInput{SenderID: p.ID, Recipient: req.Recipient, Amount: amount, Description: req.Description})
	if err != nil {
		return err
	}
	return respond(c, out)
}

type sendToAccountRequest struct {
	Email       string          `json:"email"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
}

// SendToAccount handles POST /payments/send-to-account.
func (h *Handler) SendToAccount(c *fiber.Ctx) error {
	var req sendToAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	p, _ := middleware.PrincipalFrom(c)
	out, err := h.service.SendToAccount(c.UserContext(), AccountSendInput{SenderID: p.ID, RecipientEmail: req.Email, Amount: amount, Description: req.Description})
	if err != nil {
		return err
	}
	return respond(c, out)
}

type airtimeRequest struct {
	Provider string          `json:"provider"`
	Phone    string          `json:"phone"`
	Amount   json.RawMessage `json:"amount"`
}

// Airtime handles POST /utilities/airtime.
func (h *Handler) Airtime(c *fiber.Ctx) error {
	var req airtimeRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	p, _ := middleware.PrincipalFrom(c)
	out, err := h.service.BuyAirtime(c.UserContext(), AirtimeInput{AccountID: p.ID, Provider: req.Provider, Phone: req.Phone, Amount: amount})
	if err != nil {
		return err
	}
	return respond(c, out)
}

type electricityRequest struct {
	Meter  string          `json:"meter"`
	Amount json.RawMessage `json:"amount"`
}

// Electricity handles POST /utilities/electricity.
func (h *Handler) Electricity(c *fiber.Ctx) error {
	var req electricityRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	p, _ := middleware.PrincipalFrom(c)
	out, err := h.service.BuyElectricity(c.UserContext(), ElectricityInput{AccountID: p.ID, Meter: req.Meter, Amount: amount})
	if err != nil {
		return err
	}
	return respond(c, out)
}

// Purchase handles POST /marketplace/products/:productId/purchase.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	out, err := h.service.Purchase(c.UserContext(), p.ID, c.Params("productId"))
	if err != nil {
		return err
	}
	return respond(c, out)
}
