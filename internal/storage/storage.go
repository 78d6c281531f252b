// Package storage keeps uploaded design artifacts durable before they can be
// referenced by a customization.
package storage

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Backend stores one upload and returns the public URL it is served from.
type Backend interface {
	Save(ctx context.Context, owner uuid.UUID, filename string, r io.Reader) (string, error)
	Name() string
}
