// Package storage provides the binary content gateway: the boundary to
// the external object store that holds raw file bytes. Item metadata
// never lives here; the gateway only stores, serves and destroys blobs
// addressed by an opaque handle.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/clouddrive/backend/internal/config"
	"github.com/clouddrive/backend/internal/models"
)

// ErrGatewayFailure wraps any error from the external object store.
var ErrGatewayFailure = errors.New("content gateway failure")

// Object is the result of a successful store: an opaque handle for later
// destruction and a URL clients can fetch the bytes from.
type Object struct {
	Handle string
	URL    string
}

// Gateway stores and destroys raw file bytes in an external object
// store. Store returns a handle the caller must keep to destroy the
// content later. Destroy is best-effort from the caller's perspective:
// a failure is reported but must not block metadata deletion.
type Gateway interface {
	Store(ctx context.Context, data []byte, kind models.ItemKind) (Object, error)
	Destroy(ctx context.Context, handle string) error
}

// New builds the gateway selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Gateway, error) {
	switch cfg.StorageBackend {
	case "s3":
		return NewS3Gateway(ctx, cfg)
	case "ftp":
		return NewFTPGateway(cfg), nil
	case "memory":
		return NewMemoryGateway(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
