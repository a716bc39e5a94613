package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/utils"
)

// platformClaims is the token payload issued by the Skilins account
// service. The subject carries the numeric user ID and role is one of
// the platform's three fixed roles.
type platformClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTProtected validates bearer tokens and exposes the caller's user ID
// and role to downstream handlers.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims := &platformClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		role := strings.ToLower(strings.TrimSpace(claims.Role))
		switch role {
		case models.RoleStaff, models.RoleStudent, models.RoleJudge:
		default:
			return utils.SendError(c, fiber.StatusUnauthorized, "unrecognised role")
		}

		c.Locals("user_id", uint(userID))
		c.Locals("user_role", role)

		return c.Next()
	}
}
