package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/storage"
	"github.com/example/etailor/internal/store"
)

func newDesignService(t *testing.T, maxBytes int64) *DesignService {
	t.Helper()
	backend, err := storage.NewLocalBackend(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return NewDesignService(store.NewMemoryStore(), backend, maxBytes)
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 16))))
	return buf.Bytes()
}

func TestDesignUploadThenResolve(t *testing.T) {
	ctx := context.Background()
	svc := newDesignService(t, 0)
	owner := uuid.New()

	upload, err := svc.Upload(ctx, owner, "../../sketch.png", bytes.NewReader(samplePNG(t)))
	require.NoError(t, err)
	assert.Equal(t, "sketch.png", upload.Filename)
	assert.Equal(t, "image/png", upload.ContentType)
	assert.True(t, strings.HasPrefix(upload.URL, "/uploads/"+owner.String()+"/"))

	got, err := svc.Resolve(ctx, owner, upload.URL)
	require.NoError(t, err)
	assert.Equal(t, upload.ID, got.ID)

	_, err = svc.Resolve(ctx, uuid.New(), upload.URL)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "another user cannot reference the design")
}

func TestDesignUploadRejects(t *testing.T) {
	ctx := context.Background()
	svc := newDesignService(t, 64)

	_, err := svc.Upload(ctx, uuid.New(), "notes.txt", strings.NewReader("plain text"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(ctx, uuid.New(), "empty.png", strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(ctx, uuid.New(), "big.png", bytes.NewReader(make([]byte, 65)))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
