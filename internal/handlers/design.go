package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/services"
)

// DesignHandler accepts design uploads.
type DesignHandler struct {
	designs *services.DesignService
}

// NewDesignHandler constructs DesignHandler.
func NewDesignHandler(designs *services.DesignService) *DesignHandler {
	return &DesignHandler{designs: designs}
}

// Upload stores the multipart "design" file and returns the reference a
// customization may attach.
func (h *DesignHandler) Upload(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("design")
	if err != nil {
		return apperrors.NewValidationError(nil, apperrors.FieldError{Field: "design", Message: "is required"})
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	upload, err := h.designs.Upload(c.UserContext(), identity.ID, header.Filename, file)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, upload)
}
