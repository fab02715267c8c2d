package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// Handler exposes login, refresh and logout.
type Handler struct {
	svc *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	TokenPair
	Account      domain.Account `json:"account"`
	TokenVersion int            `json:"token_version"`
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	account, cred, pair, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{TokenPair: pair, Account: account, TokenVersion: cred.TokenVersion})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	pair, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(pair)
}

// Logout invalidates the caller's existing tokens.
func (h *Handler) Logout(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	if err := h.svc.Logout(c.UserContext(), p.ID); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
