package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftpay/swiftpay/internal/domain"
)

const principalKey = "principal"

// PrincipalResolver turns a bearer token into the authenticated principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}

// Session authenticates the bearer token and stores the principal in locals.
func Session(resolver PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		principal, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return err
		}
		SetPrincipal(c, principal)
		return c.Next()
	}
}

// RequireRole admits only principals holding one of roles.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return fmt.Errorf("%w: not signed in", domain.ErrUnauthorized)
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, fmt.Sprintf("%s accounts cannot access this resource", p.Role))
	}
}

// PrincipalFrom returns the principal stored by Session.
func PrincipalFrom(c *fiber.Ctx) (domain.Principal, bool) {
	p, ok := c.Locals(principalKey).(domain.Principal)
	return p, ok && p.ID != ""
}

// SetPrincipal stores p as the authenticated principal of the request.
func SetPrincipal(c *fiber.Ctx, p domain.Principal) {
	c.Locals(principalKey, p)
}
