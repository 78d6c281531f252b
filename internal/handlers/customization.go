package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/customization"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/services"
)

// CustomizationHandler drives customization sessions held in the registry.
type CustomizationHandler struct {
	registry     *customization.Registry
	measurements *services.MeasurementService
	designs      *services.DesignService
	orders       *services.OrderService
}

// NewCustomizationHandler constructs CustomizationHandler.
func NewCustomizationHandler(
	registry *customization.Registry,
	measurements *services.MeasurementService,
	designs *services.DesignService,
	orders *services.OrderService,
) *CustomizationHandler {
	return &CustomizationHandler{
		registry:     registry,
		measurements: measurements,
		designs:      designs,
		orders:       orders,
	}
}

type sessionResponse struct {
	ID uuid.UUID `json:"id"`
	customization.State
}

type openRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
}

// Open starts a session, optionally preselecting a product.
func (h *CustomizationHandler) Open(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req openRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}

	id := h.registry.Open(identity.ID)
	var state customization.State
	err = h.registry.With(id, identity.ID, func(s *customization.Session) error {
		if req.ProductID != nil {
			if err := s.SelectProduct(*req.ProductID); err != nil {
				return err
			}
		}
		state = s.State()
		return nil
	})
	if err != nil {
		_ = h.registry.Close(id, identity.ID)
		return err
	}
	return respond(c, fiber.StatusCreated, sessionResponse{ID: id, State: state})
}

// Get returns the session state with its live price.
func (h *CustomizationHandler) Get(c *fiber.Ctx) error {
	return h.mutate(c, func(context.Context, *models.Identity, *customization.Session) error { return nil })
}

type productRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

// SelectProduct sets the garment.
func (h *CustomizationHandler) SelectProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(_ context.Context, _ *models.Identity, s *customization.Session) error {
		return s.SelectProduct(req.ProductID)
	})
}

type fabricRequest struct {
	FabricID uuid.UUID `json:"fabric_id"`
}

// SelectFabric sets the fabric for the selected product.
func (h *CustomizationHandler) SelectFabric(c *fiber.Ctx) error {
	var req fabricRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(_ context.Context, _ *models.Identity, s *customization.Session) error {
		return s.SelectFabric(req.FabricID)
	})
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity changes the number of garments.
func (h *CustomizationHandler) SetQuantity(c *fiber.Ctx) error {
	var req quantityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(_ context.Context, _ *models.Identity, s *customization.Session) error {
		return s.SetQuantity(req.Quantity)
	})
}

type measurementRequest struct {
	MeasurementID uuid.UUID `json:"measurement_id"`
}

// SelectMeasurement attaches one of the caller's stored measurement profiles.
func (h *CustomizationHandler) SelectMeasurement(c *fiber.Ctx) error {
	var req measurementRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(ctx context.Context, identity *models.Identity, s *customization.Session) error {
		profile, err := h.measurements.Get(ctx, identity.ID, req.MeasurementID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationError(apperrors.ErrInvalidMeasurements, apperrors.FieldError{
					Field: "measurement_id", Message: "is not one of your measurement profiles",
				})
			}
			return err
		}
		return s.SelectMeasurementProfile(profile)
	})
}

type optionRequest struct {
	Value string `json:"value"`
}

// SetOption records a style choice for the category in the path.
func (h *CustomizationHandler) SetOption(c *fiber.Ctx) error {
	var req optionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	category := models.StyleCategory(c.Params("category"))
	return h.mutate(c, func(_ context.Context, _ *models.Identity, s *customization.Session) error {
		return s.SetStyleOption(category, req.Value)
	})
}

// ClearOption reverts a style category to the tailor's standard.
func (h *CustomizationHandler) ClearOption(c *fiber.Ctx) error {
	category := models.StyleCategory(c.Params("category"))
	return h.mutate(c, func(_ context.Context, _ *models.Identity, s *customization.Session) error {
		s.ClearStyleOption(category)
		return nil
	})
}

type designRequest struct {
	DesignRef string `json:"design_ref"`
}

// AttachDesign references a design the caller has already uploaded.
func (h *CustomizationHandler) AttachDesign(c *fiber.Ctx) error {
	var req designRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(ctx context.Context, identity *models.Identity, s *customization.Session) error {
		if req.DesignRef == "" {
			return s.AttachDesign("")
		}
		upload, err := h.designs.Resolve(ctx, identity.ID, req.DesignRef)
		if err != nil {
			return err
		}
		return s.AttachDesign(upload.URL)
	})
}

// DetachDesign drops the design reference.
func (h *CustomizationHandler) DetachDesign(c *fiber.Ctx) error {
	return h.mutate(c, func(_ context.Context, _ *models.Identity, s *customization.Session) error {
		s.DetachDesign()
		return nil
	})
}

// Cancel discards the session.
func (h *CustomizationHandler) Cancel(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.registry.Close(id, identity.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Submit places the order. The session is reset on success and kept as is
// on failure so the customer can correct it.
func (h *CustomizationHandler) Submit(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var details models.CustomerDetails
	if len(c.Body()) > 0 {
		if err := parseBody(c, &details); err != nil {
			return err
		}
	}

	var order models.Order
	err = h.registry.With(id, identity.ID, func(s *customization.Session) error {
		placed, err := h.orders.Submit(c.UserContext(), identity, s, details)
		order = placed
		return err
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, order)
}

// mutate runs fn against the caller's session and responds with the
// resulting state. A failed fn leaves the session as it was.
func (h *CustomizationHandler) mutate(c *fiber.Ctx, fn func(context.Context, *models.Identity, *customization.Session) error) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var state customization.State
	err = h.registry.With(id, identity.ID, func(s *customization.Session) error {
		if err := fn(c.UserContext(), identity, s); err != nil {
			return err
		}
		state = s.State()
		return nil
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, sessionResponse{ID: id, State: state})
}
