package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"rentnest/auth"
)

const claimsLocal = "claims"

// BearerAuth guards the REST surface. A missing token is 401, a token that
// fails verification is 403; valid claims land in the request locals.
func BearerAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "you are not authenticated")
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "token is not valid")
		}

		c.Locals(claimsLocal, claims)
		return c.Next()
	}
}

func claimsFrom(c *fiber.Ctx) *auth.CustomClaims {
	claims, _ := c.Locals(claimsLocal).(*auth.CustomClaims)
	return claims
}
