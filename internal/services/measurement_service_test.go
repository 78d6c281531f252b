package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/store"
)

func measurementInput(nickname string) models.MeasurementProfile {
	return models.MeasurementProfile{
		Nickname: nickname, Neck: 40, Chest: 100, Waist: 85, Hips: 100,
		ArmLength: 64, Height: 180, Shoulder: 46,
	}
}

func TestMeasurementCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewMeasurementService(store.NewMemoryStore())
	owner := uuid.New()

	input := measurementInput("  Wedding  ")
	input.ID = uuid.New()
	first, err := svc.Create(ctx, owner, input)
	require.NoError(t, err)
	assert.NotEqual(t, input.ID, first.ID, "server assigns the id")
	assert.Equal(t, "Wedding", first.Nickname)
	assert.Equal(t, owner, first.UserID)

	second, err := svc.Create(ctx, owner, measurementInput("Casual"))
	require.NoError(t, err)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	others, err := svc.List(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestMeasurementCreateRejectsOutOfRange(t *testing.T) {
	svc := NewMeasurementService(store.NewMemoryStore())

	input := measurementInput("Gym")
	input.Chest = 45
	_, err := svc.Create(context.Background(), uuid.New(), input)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("chest"))
}

func TestMeasurementUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewMeasurementService(store.NewMemoryStore())
	owner := uuid.New()
	created, err := svc.Create(ctx, owner, measurementInput("Office"))
	require.NoError(t, err)

	waist := 90.5
	updated, err := svc.Update(ctx, owner, created.ID, MeasurementPatch{Waist: &waist})
	require.NoError(t, err)
	assert.Equal(t, 90.5, updated.Waist)
	assert.Equal(t, created.Chest, updated.Chest)
	assert.Equal(t, "Office", updated.Nickname)

	chest := 45.0
	_, err = svc.Update(ctx, owner, created.ID, MeasurementPatch{Chest: &chest})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("chest"))

	stored, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Chest, stored.Chest, "rejected patch is not persisted")

	_, err = svc.Update(ctx, uuid.New(), created.ID, MeasurementPatch{Waist: &waist})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMeasurementDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewMeasurementService(store.NewMemoryStore())
	owner := uuid.New()
	created, err := svc.Create(ctx, owner, measurementInput("Office"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), created.ID), apperrors.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, created.ID), apperrors.ErrNotFound)
}
