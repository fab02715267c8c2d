package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
	"github.com/swiftpay/swiftpay/internal/httperr"
	"github.com/swiftpay/swiftpay/internal/middleware"
)

// Handler exposes the marketplace listing and vendor product management.
type Handler struct {
	svc *Service
}

// NewHandler builds the catalog HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Category    string          `json:"category"`
}

func (r productRequest) input() (ProductInput, error) {
	price, err := domain.ParseAmount(r.Price)
	if err != nil {
		return ProductInput{}, err
	}
	return ProductInput{Name: r.Name, Description: r.Description, Price: price, Category: r.Category}, nil
}

// Browse lists active products, filtered by ?search= and ?category=.
func (h *Handler) Browse(c *fiber.Ctx) error {
	listings, err := h.svc.Browse(c.UserContext(), BrowseFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": listings, "categories": Categories()})
}

// ListOwn lists the calling vendor's products.
func (h *Handler) ListOwn(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	products, err := h.svc.ListByVendor(c.UserContext(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

// Create adds a product for the calling vendor.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	p, _ := middleware.PrincipalFrom(c)
	product, err := h.svc.Create(c.UserContext(), p.ID, in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(product)
}

// Update edits one of the calling vendor's products.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	p, _ := middleware.PrincipalFrom(c)
	product, err := h.svc.Update(c.UserContext(), p.ID, c.Params("productId"), in)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

type activeRequest struct {
	Active *bool `json:"active"`
}

// SetActive lists or unlists one of the calling vendor's products.
func (h *Handler) SetActive(c *fiber.Ctx) error {
	var req activeRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.BadRequest(err.Error())
	}
	if req.Active == nil {
		return httperr.BadRequest("active is required")
	}
	p, _ := middleware.PrincipalFrom(c)
	product, err := h.svc.SetActive(c.UserContext(), p.ID, c.Params("productId"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// Delete removes one of the calling vendor's products.
func (h *Handler) Delete(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	if err := h.svc.Delete(c.UserContext(), p.ID, c.Params("productId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Stats returns the calling vendor's catalog and sales summary.
func (h *Handler) Stats(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	stats, err := h.svc.VendorStats(c.UserContext(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
