package identity

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Email      string             `json:"email"`
	Password   string             `json:"password"`
	Name       string             `json:"name"`
	Role       domain.Role        `json:"role"`
	VendorInfo *domain.VendorInfo `json:"vendorInfo"`
}

type profileResponse struct {
	domain.Account
	HasPIN       bool       `json:"hasPin"`
	TokenVersion int        `json:"tokenVersion"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// Register handles sign-up. Role defaults to client.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	if req.Role == "" {
		req.Role = domain.RoleClient
	}
	account, err := h.service.Register(c.UserContext(), Registration{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Role:       req.Role,
		VendorInfo: req.VendorInfo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(account)
}

// Me returns the caller's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	account, cred, err := h.service.Profile(c.UserContext(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(profileResponse{
		Account:      account,
		HasPIN:       cred.HasPIN(),
		TokenVersion: cred.TokenVersion,
		CreatedAt:    cred.CreatedAt,
		LastLogin:    cred.LastLogin,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the caller's password and revokes older tokens.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	p, _ := middleware.PrincipalFrom(c)
	if err := h.service.ChangePassword(c.UserContext(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "password_changed"})
}

type setPINRequest struct {
	PIN string `json:"pin"`
}

// SetPIN stores the caller's transaction PIN.
func (h *Handler) SetPIN(c *fiber.Ctx) error {
	var req setPINRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	p, _ := middleware.PrincipalFrom(c)
	if err := h.service.SetPIN(c.UserContext(), p.ID, req.PIN); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "pin_set"})
}
