package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
)

// MaxDesignEdge bounds the longest side of a stored design, in pixels.
const MaxDesignEdge = 2048

// MaxDesignPixels bounds the decoded size of an upload. The header is checked
// before decoding, since a small compressed file can expand enormously.
const MaxDesignPixels = 40_000_000

// LocalBackend writes designs below a directory served by the API.
type LocalBackend struct {
	dir       string
	publicURL string
}

// NewLocalBackend stores files under dir and links them as publicURL/<path>.
func NewLocalBackend(dir, publicURL string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalBackend{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (b *LocalBackend) Name() string { return "local" }

// Save decodes the image, shrinks it to MaxDesignEdge and stores it as PNG
// so that every stored design is a well-formed image.
func (b *LocalBackend) Save(ctx context.Context, owner uuid.UUID, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read design: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", notAnImage()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxDesignPixels {
		return "", apperrors.NewValidationError(nil, apperrors.FieldError{
			Field:   "design",
			Message: fmt.Sprintf("must be at most %d megapixels", MaxDesignPixels/1_000_000),
		})
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", notAnImage()
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDesignEdge || bounds.Dy() > MaxDesignEdge {
		img = imaging.Fit(img, MaxDesignEdge, MaxDesignEdge, imaging.Lanczos)
	}

	rel := filepath.Join(owner.String(), uuid.NewString()+".png")
	path := filepath.Join(b.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create design directory: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save design: %w", err)
	}

	return b.publicURL + "/" + filepath.ToSlash(rel), nil
}

func notAnImage() error {
	return apperrors.NewValidationError(nil, apperrors.FieldError{
		Field: "design", Message: "must be a PNG, JPEG, GIF, BMP or TIFF image",
	})
}
