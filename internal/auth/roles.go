package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/society-waste-service/internal/domain"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

// RequireUser ensures a society user is authenticated.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Session.SubjectType != domain.SubjectTypeUser || principal.Account == nil {
			return apperrors.NewForbidden("society account required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures an administrator is authenticated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.IsAdmin() {
			return apperrors.NewForbidden("administrator required")
		}
		return c.Next()
	}
}

// RequireOwner ensures the caller is the society named by the route parameter.
func RequireOwner(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil || principal.Account.ID != c.Params(param) {
			return apperrors.NewForbidden("access limited to the owning society")
		}
		return c.Next()
	}
}

// RequireOwnerOrAdmin lets administrators through and otherwise behaves like RequireOwner.
func RequireOwnerOrAdmin(param string) fiber.Handler {
	owner := RequireOwner(param)
	return func(c *fiber.Ctx) error {
		if principal, ok := PrincipalFromContext(c); ok && principal.IsAdmin() {
			return c.Next()
		}
		return owner(c)
	}
}

// RequireAnyRole ensures caller is authenticated (user or admin).
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
