package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/services"
)

// MeasurementHandler manages the caller's measurement profiles.
type MeasurementHandler struct {
	measurements *services.MeasurementService
}

// NewMeasurementHandler constructs MeasurementHandler.
func NewMeasurementHandler(measurements *services.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{measurements: measurements}
}

// List returns the caller's profiles, newest first.
func (h *MeasurementHandler) List(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	profiles, err := h.measurements.List(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profiles)
}

// Create stores a new profile for the caller.
func (h *MeasurementHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var input models.MeasurementProfile
	if err := parseBody(c, &input); err != nil {
		return err
	}

	profile, err := h.measurements.Create(c.UserContext(), identity.ID, input)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, profile)
}

// Update applies a partial update to one of the caller's profiles.
func (h *MeasurementHandler) Update(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var patch services.MeasurementPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	profile, err := h.measurements.Update(c.UserContext(), identity.ID, id, patch)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}

// Delete removes one of the caller's profiles.
func (h *MeasurementHandler) Delete(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.measurements.Delete(c.UserContext(), identity.ID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
