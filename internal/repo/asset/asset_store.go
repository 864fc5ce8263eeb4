package asset

import (
	"context"

	"github.com/mkrupp/clickcard/internal/domain"
)

// Store defines the operations on the directory of transcoded image files.
// Filenames are opaque single path segments generated by the caller; every
// method taking a filename rejects unsafe names with domain.ErrInvalidName
// before touching the backing storage.
type Store interface {
	// EnsureReady idempotently creates the backing directory.
	EnsureReady(ctx context.Context) error

	// Write stores the asset under its filename. The last write wins.
	Write(ctx context.Context, asset *domain.Asset) error

	// Read returns the asset or domain.ErrAssetNotFound.
	Read(ctx context.Context, filename string) (*domain.Asset, error)

	// Exists reports whether an asset with the given filename is stored.
	// Unsafe names never exist.
	Exists(ctx context.Context, filename string) bool

	// Delete removes the asset. Missing assets yield domain.ErrAssetNotFound.
	Delete(ctx context.Context, filename string) error
}

// StoreFactory creates a Store.
type StoreFactory func(ctx context.Context) (Store, error)
