package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/store"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	store store.Store
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(s store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// GetProfile returns authenticated user profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.store.GetProfile(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2"`
	Phone    *string `json:"phone" validate:"omitempty,min=10"`
	Address  *string `json:"address" validate:"omitempty,min=10"`
}

// UpdateProfile updates the contact fields used as checkout defaults.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	for _, field := range []*string{req.FullName, req.Phone, req.Address} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	if err := models.Validate(req); err != nil {
		return err
	}

	ctx := c.UserContext()
	profile, err := h.store.GetProfile(ctx, identity.ID)
	if err != nil {
		return err
	}
	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}

	if err := h.store.UpdateProfile(ctx, &profile); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}
