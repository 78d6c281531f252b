package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/store"
)

// MeasurementService manages a customer's saved measurement profiles.
type MeasurementService struct {
	store store.Store
}

// NewMeasurementService constructs MeasurementService.
func NewMeasurementService(s store.Store) *MeasurementService {
	return &MeasurementService{store: s}
}

// MeasurementPatch carries the fields an update changes. Nil fields keep
// their stored value.
type MeasurementPatch struct {
	Nickname  *string  `json:"nickname"`
	Neck      *float64 `json:"neck"`
	Chest     *float64 `json:"chest"`
	Waist     *float64 `json:"waist"`
	Hips      *float64 `json:"hips"`
	ArmLength *float64 `json:"arm_length"`
	Height    *float64 `json:"height"`
	Shoulder  *float64 `json:"shoulder"`
}

func (p MeasurementPatch) apply(m *models.MeasurementProfile) {
	if p.Nickname != nil {
		m.Nickname = *p.Nickname
	}
	fields := []struct {
		src *float64
		dst *float64
	}{
		{p.Neck, &m.Neck},
		{p.Chest, &m.Chest},
		{p.Waist, &m.Waist},
		{p.Hips, &m.Hips},
		{p.ArmLength, &m.ArmLength},
		{p.Height, &m.Height},
		{p.Shoulder, &m.Shoulder},
	}
	for _, f := range fields {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
}

// List returns the user's profiles, newest first.
func (s *MeasurementService) List(ctx context.Context, userID uuid.UUID) ([]models.MeasurementProfile, error) {
	return s.store.ListMeasurements(ctx, userID)
}

// Get returns one of the user's profiles.
func (s *MeasurementService) Get(ctx context.Context, userID, id uuid.UUID) (models.MeasurementProfile, error) {
	return s.store.GetMeasurement(ctx, userID, id)
}

// Create validates and stores a new profile. The server assigns the id.
func (s *MeasurementService) Create(ctx context.Context, userID uuid.UUID, input models.MeasurementProfile) (models.MeasurementProfile, error) {
	m := input
	m.BaseModel = models.BaseModel{}
	m.UserID = userID
	m.Nickname = strings.TrimSpace(m.Nickname)

	if err := m.Validate(); err != nil {
		return models.MeasurementProfile{}, err
	}
	if err := s.store.CreateMeasurement(ctx, &m); err != nil {
		return models.MeasurementProfile{}, err
	}
	return m, nil
}

// Update merges patch over the stored profile and validates the result as a
// whole before saving.
func (s *MeasurementService) Update(ctx context.Context, userID, id uuid.UUID, patch MeasurementPatch) (models.MeasurementProfile, error) {
	m, err := s.store.GetMeasurement(ctx, userID, id)
	if err != nil {
		return models.MeasurementProfile{}, err
	}

	patch.apply(&m)
	m.Nickname = strings.TrimSpace(m.Nickname)
	if err := m.Validate(); err != nil {
		return models.MeasurementProfile{}, err
	}
	if err := s.store.SaveMeasurement(ctx, &m); err != nil {
		return models.MeasurementProfile{}, err
	}
	return m, nil
}

// Delete removes a profile. Deleting an absent profile reports NotFound.
func (s *MeasurementService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteMeasurement(ctx, userID, id)
}
