package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Role is the permission level carried in a token.
type Role string

const (
	// RoleOperator may change tickets and trigger intake and sweeps.
	RoleOperator Role = "operator"
	// RoleAnonymous is assigned when authentication is disabled.
	RoleAnonymous Role = "anonymous"
)

// RequireRole ensures the principal holds one of the allowed roles. When
// authentication is disabled every caller passes; an anonymous role carried
// in a token never does.
func RequireRole(allowed ...Role) fiber.Handler {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if principal.unauthenticated || len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
