package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/utils"
)

const identityContextKey = "currentIdentity"

// AuthMiddleware validates JWT tokens and loads the authenticated identity
// into context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.ErrUnauthenticated
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.ErrUnauthenticated
		}

		identity, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return apperrors.ErrUnauthenticated
		}

		c.Locals(identityContextKey, &identity)
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return apperrors.ErrUnauthenticated
		}
		if !identity.IsAdmin() {
			return apperrors.ErrForbidden
		}
		return c.Next()
	}
}

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *fiber.Ctx) (*models.Identity, bool) {
	identity, ok := c.Locals(identityContextKey).(*models.Identity)
	return identity, ok && identity != nil
}
