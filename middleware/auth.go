package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"projecthub/utils"
)

// TokenCookie is the cookie login sets and the auth middleware falls back to.
const TokenCookie = "token"

const identityKey = "identity"

// Identity is the authenticated caller attached to the request by Protected.
type Identity struct {
	ID   string
	Role string
}

// GetIdentity returns the caller stored by Protected, if any.
func GetIdentity(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok
}

// Protected verifies the bearer token (or the token cookie) and stores the
// caller's Identity in the request locals.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			// Fall back to cookie if header not present
			token = c.Cookies(TokenCookie)
		}
		if token == "" {
			return utils.NewUnauthorized("Access token required")
		}

		if secret == "" {
			utils.LogEvent("auth", "jwt_secret_missing", map[string]interface{}{"path": c.Path()})
			return utils.NewError(fiber.StatusInternalServerError, "Server configuration error")
		}

		claims, err := utils.ParseJWTToken(secret, token)
		if err != nil {
			return utils.NewUnauthorized("Invalid or expired token")
		}

		c.Locals(identityKey, Identity{ID: claims.UserID, Role: claims.Role})
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
