// Package customization accumulates the selections of one prospective order
// and quotes it as it changes.
package customization

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/pricing"
)

// Catalog is the part of the catalog store a session reads.
type Catalog interface {
	GetProduct(id uuid.UUID) (models.Product, error)
	ListFabricsFor(productID uuid.UUID) ([]models.Fabric, error)
}

// Step is the next thing a wizard has to collect.
type Step string

const (
	StepProduct     Step = "product"
	StepFabric      Step = "fabric"
	StepMeasurement Step = "measurement"
	StepReview      Step = "review"
)

// Session is owned by exactly one wizard instance. It is not safe for
// concurrent use; the Registry serialises access when sessions are shared
// across requests.
//
// Product and fabric are kept as ids and resolved against the catalog on
// every quote, so a reload of the catalog is reflected immediately.
type Session struct {
	catalog Catalog

	productID   *uuid.UUID
	fabricID    *uuid.UUID
	options     models.StyleOptions
	designRef   *string
	measurement *models.MeasurementProfile
	quantity    int
}

// NewSession returns an empty session quoting against catalog.
func NewSession(catalog Catalog) *Session {
	s := &Session{catalog: catalog}
	s.Reset()
	return s
}

// Reset discards every selection.
func (s *Session) Reset() {
	s.productID = nil
	s.fabricID = nil
	s.options = models.StyleOptions{}
	s.designRef = nil
	s.measurement = nil
	s.quantity = 1
}

// SelectProduct chooses the garment. A previously selected fabric is kept
// only while it stays eligible for the new product.
func (s *Session) SelectProduct(id uuid.UUID) error {
	if _, err := s.catalog.GetProduct(id); err != nil {
		return invalid(apperrors.ErrInvalidProduct, "product_id", "is not an available product", err)
	}

	s.productID = &id
	if s.fabricID != nil {
		if _, err := s.eligibleFabric(id, *s.fabricID); err != nil {
			s.fabricID = nil
		}
	}
	return nil
}

// SelectFabric chooses a fabric from the current product's eligible set.
func (s *Session) SelectFabric(id uuid.UUID) error {
	if s.productID == nil {
		return apperrors.NewValidationError(apperrors.ErrIneligibleFabric,
			apperrors.FieldError{Field: "fabric_id", Message: "select a product first"})
	}
	if _, err := s.eligibleFabric(*s.productID, id); err != nil {
		return err
	}
	s.fabricID = &id
	return nil
}

// SetStyleOption records value for category.
func (s *Session) SetStyleOption(category models.StyleCategory, value string) error {
	if !models.ValidStyleOption(category, value) {
		return apperrors.NewValidationError(apperrors.ErrInvalidOption, apperrors.FieldError{
			Field:   string(category),
			Message: fmt.Sprintf("%q is not one of %s", value, strings.Join(models.StyleChoices[category], ", ")),
		})
	}
	s.options[category] = value
	return nil
}

// ClearStyleOption returns category to the standard choice.
func (s *Session) ClearStyleOption(category models.StyleCategory) {
	delete(s.options, category)
}

// AttachDesign records an opaque reference to an uploaded design.
func (s *Session) AttachDesign(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return apperrors.NewValidationError(nil, apperrors.FieldError{Field: "design_ref", Message: "is required"})
	}
	s.designRef = &ref
	return nil
}

// DetachDesign drops the design reference.
func (s *Session) DetachDesign() {
	s.designRef = nil
}

// SelectMeasurementProfile attaches a copy of profile after checking every
// range invariant.
func (s *Session) SelectMeasurementProfile(profile models.MeasurementProfile) error {
	if err := profile.Validate(); err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			return apperrors.NewValidationError(apperrors.ErrInvalidMeasurements, verr.Fields...)
		}
		return err
	}
	s.measurement = &profile
	return nil
}

// SetQuantity sets how many garments are ordered.
func (s *Session) SetQuantity(n int) error {
	if n < 1 {
		return apperrors.NewValidationError(nil, apperrors.FieldError{Field: "quantity", Message: "must be at least 1"})
	}
	s.quantity = n
	return nil
}

// CurrentPrice is the unit price of the current product and fabric. It is
// recomputed on every call and reports false while either is missing.
func (s *Session) CurrentPrice() (int64, bool) {
	product, fabric, err := s.resolve()
	if err != nil {
		return 0, false
	}
	return pricing.Quote(product, fabric), true
}

// CanSubmit reports whether product, fabric and measurements are all set.
func (s *Session) CanSubmit() bool {
	return s.productID != nil && s.fabricID != nil && s.measurement != nil
}

// Step returns the first selection still missing.
func (s *Session) Step() Step {
	switch {
	case s.productID == nil:
		return StepProduct
	case s.fabricID == nil:
		return StepFabric
	case s.measurement == nil:
		return StepMeasurement
	default:
		return StepReview
	}
}

// Snapshot freezes the session for order creation.
func (s *Session) Snapshot() (Snapshot, error) {
	if !s.CanSubmit() {
		return Snapshot{}, apperrors.NewValidationError(apperrors.ErrIncompleteSession, s.missing()...)
	}

	product, fabric, err := s.resolve()
	if err != nil {
		return Snapshot{}, err
	}

	unit := pricing.Quote(product, fabric)
	snap := Snapshot{
		Product:     product,
		Fabric:      fabric,
		Measurement: *s.measurement,
		Options:     s.options.Clone(),
		Quantity:    s.quantity,
		UnitPrice:   unit,
		TotalPrice:  pricing.LineTotal(unit, s.quantity),
	}
	if s.designRef != nil {
		ref := *s.designRef
		snap.DesignRef = &ref
	}
	return snap, nil
}

// State is a read-only view of the session for clients.
func (s *Session) State() State {
	st := State{
		Options:   s.options.Clone(),
		Quantity:  s.quantity,
		CanSubmit: s.CanSubmit(),
		Step:      s.Step(),
	}
	if s.productID != nil {
		id := *s.productID
		st.ProductID = &id
	}
	if s.fabricID != nil {
		id := *s.fabricID
		st.FabricID = &id
	}
	if s.measurement != nil {
		id := s.measurement.ID
		st.MeasurementID = &id
	}
	if s.designRef != nil {
		ref := *s.designRef
		st.DesignRef = &ref
	}
	if unit, ok := s.CurrentPrice(); ok {
		total := pricing.LineTotal(unit, s.quantity)
		st.UnitPrice = &unit
		st.TotalPrice = &total
	}
	return st
}

func (s *Session) resolve() (models.Product, models.Fabric, error) {
	if s.productID == nil || s.fabricID == nil {
		return models.Product{}, models.Fabric{}, apperrors.NewValidationError(apperrors.ErrIncompleteSession, s.missing()...)
	}

	product, err := s.catalog.GetProduct(*s.productID)
	if err != nil {
		return models.Product{}, models.Fabric{}, invalid(apperrors.ErrInvalidProduct, "product_id", "is no longer available", err)
	}
	fabric, err := s.eligibleFabric(product.ID, *s.fabricID)
	if err != nil {
		return models.Product{}, models.Fabric{}, err
	}
	return product, fabric, nil
}

func (s *Session) eligibleFabric(productID, fabricID uuid.UUID) (models.Fabric, error) {
	fabrics, err := s.catalog.ListFabricsFor(productID)
	if err != nil {
		return models.Fabric{}, invalid(apperrors.ErrInvalidProduct, "product_id", "is not an available product", err)
	}
	for _, f := range fabrics {
		if f.ID == fabricID {
			return f, nil
		}
	}
	return models.Fabric{}, apperrors.NewValidationError(apperrors.ErrIneligibleFabric,
		apperrors.FieldError{Field: "fabric_id", Message: "is not offered for this product"})
}

func (s *Session) missing() []apperrors.FieldError {
	var fields []apperrors.FieldError
	if s.productID == nil {
		fields = append(fields, apperrors.FieldError{Field: "product_id", Message: "is required"})
	}
	if s.fabricID == nil {
		fields = append(fields, apperrors.FieldError{Field: "fabric_id", Message: "is required"})
	}
	if s.measurement == nil {
		fields = append(fields, apperrors.FieldError{Field: "measurement_id", Message: "is required"})
	}
	return fields
}

// invalid reports a session contract violation. Lookup failures other than
// NotFound are passed through so outages stay retryable.
func invalid(kind error, field, message string, cause error) error {
	if cause != nil && !errors.Is(cause, apperrors.ErrNotFound) {
		return cause
	}
	return apperrors.NewValidationError(kind, apperrors.FieldError{Field: field, Message: message})
}

// Snapshot is the frozen, fully validated content of a submittable session.
type Snapshot struct {
	Product     models.Product
	Fabric      models.Fabric
	Measurement models.MeasurementProfile
	Options     models.StyleOptions
	DesignRef   *string
	Quantity    int
	UnitPrice   int64
	TotalPrice  int64
}

// State describes a session to API clients.
type State struct {
	ProductID     *uuid.UUID          `json:"product_id"`
	FabricID      *uuid.UUID          `json:"fabric_id"`
	MeasurementID *uuid.UUID          `json:"measurement_id"`
	Options       models.StyleOptions `json:"options"`
	DesignRef     *string             `json:"design_ref"`
	Quantity      int                 `json:"quantity"`
	UnitPrice     *int64              `json:"unit_price"`
	TotalPrice    *int64              `json:"total_price"`
	CanSubmit     bool                `json:"can_submit"`
	Step          Step                `json:"step"`
}
