package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/skilins-platform/skilins-competition-api/internal/utils"
)

// RequireRole gates a route group to the listed platform roles. It
// trusts JWTProtected to have stored the role string in locals; an
// absent role reads as unauthenticated traffic and is refused.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		role = strings.ToLower(strings.TrimSpace(role))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
