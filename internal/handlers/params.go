package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/middleware"
	"github.com/example/etailor/internal/models"
)

// paramID parses a uuid path parameter. Malformed ids cannot name anything,
// so they report NotFound.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.ErrNotFound
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func currentIdentity(c *fiber.Ctx) (*models.Identity, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return identity, nil
}
