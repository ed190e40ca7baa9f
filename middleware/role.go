package middleware

import (
	"github.com/gofiber/fiber/v2"

	"projecthub/utils"
)

// RequireRoles admits only identities whose role is in roles. An empty set
// admits nobody.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return utils.NewUnauthorized("Authentication required")
		}
		if identity.Role == "" {
			return utils.NewForbidden("Access denied: No role assigned")
		}
		if _, ok := allowed[identity.Role]; !ok {
			return utils.NewForbidden("Access denied: Insufficient permissions")
		}
		return c.Next()
	}
}
