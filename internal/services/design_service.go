package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/storage"
	"github.com/example/etailor/internal/store"
)

// DefaultMaxDesignBytes caps a single design upload.
const DefaultMaxDesignBytes = 10 << 20

var designTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
}

// DesignService stores design uploads durably and issues the references a
// customization may attach.
type DesignService struct {
	store    store.Store
	backend  storage.Backend
	maxBytes int64
}

// NewDesignService constructs DesignService.
func NewDesignService(s store.Store, backend storage.Backend, maxBytes int64) *DesignService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDesignBytes
	}
	return &DesignService{store: s, backend: backend, maxBytes: maxBytes}
}

// Upload stores the design and records it for owner.
func (s *DesignService) Upload(ctx context.Context, owner uuid.UUID, filename string, r io.Reader) (models.DesignUpload, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return models.DesignUpload{}, fmt.Errorf("read design: %w", err)
	}
	if len(data) == 0 {
		return models.DesignUpload{}, apperrors.NewValidationError(nil, apperrors.FieldError{Field: "design", Message: "is required"})
	}
	if int64(len(data)) > s.maxBytes {
		return models.DesignUpload{}, apperrors.NewValidationError(nil, apperrors.FieldError{
			Field: "design", Message: fmt.Sprintf("must be at most %d MB", s.maxBytes>>20),
		})
	}

	contentType := http.DetectContentType(data)
	if !designTypes[contentType] {
		return models.DesignUpload{}, apperrors.NewValidationError(nil, apperrors.FieldError{
			Field: "design", Message: "must be a PNG, JPEG, GIF or BMP image",
		})
	}

	filename = filepath.Base(filename)
	url, err := s.backend.Save(ctx, owner, filename, bytes.NewReader(data))
	if err != nil {
		return models.DesignUpload{}, err
	}

	upload := models.DesignUpload{
		UserID:      owner,
		URL:         url,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}
	if err := s.store.CreateDesignUpload(ctx, &upload); err != nil {
		return models.DesignUpload{}, err
	}

	log.Printf("[Design] stored %s for %s via %s", filename, owner, s.backend.Name())
	return upload, nil
}

// Resolve checks that ref is a design owner uploaded.
func (s *DesignService) Resolve(ctx context.Context, owner uuid.UUID, ref string) (models.DesignUpload, error) {
	upload, err := s.store.GetDesignUpload(ctx, owner, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.DesignUpload{}, apperrors.NewValidationError(nil, apperrors.FieldError{
				Field: "design_ref", Message: "is not an uploaded design",
			})
		}
		return models.DesignUpload{}, err
	}
	return upload, nil
}
