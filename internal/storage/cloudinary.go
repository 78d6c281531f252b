package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
)

// CloudinaryBackend uploads designs to a Cloudinary folder.
type CloudinaryBackend struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryBackend builds a backend for the given account.
func NewCloudinaryBackend(cloudName, apiKey, apiSecret, folder string) (*CloudinaryBackend, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		folder = "etailor/designs"
	}
	return &CloudinaryBackend{cld: cld, folder: folder}, nil
}

func (b *CloudinaryBackend) Name() string { return "cloudinary" }

func (b *CloudinaryBackend) Save(ctx context.Context, owner uuid.UUID, filename string, r io.Reader) (string, error) {
	res, err := b.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   path.Join(b.folder, owner.String()),
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, apperrors.Unavailable(err))
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", filename, res.Error.Message)
	}
	return res.SecureURL, nil
}
