package asset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mkrupp/clickcard/internal/domain"
	"github.com/mkrupp/clickcard/internal/infra/logging"
)

var ErrBytesWrittenMismatch = errors.New("bytes written mismatch")

// FileSystemStoreConfig holds configuration for the filesystem asset store.
type FileSystemStoreConfig struct {
	// Basedir is the directory holding the asset files.
	Basedir string `env:"BASEDIR" default:"var/storage/assets"`
}

// Validate implements config.Validator.
func (cfg FileSystemStoreConfig) Validate() error {
	//nolint:wrapcheck
	return validation.ValidateStruct(&cfg, validation.Field(&cfg.Basedir, validation.Required))
}

// FileSystemStoreFactory returns a StoreFactory creating FileSystemStores.
func FileSystemStoreFactory(cfg FileSystemStoreConfig) StoreFactory {
	return func(ctx context.Context) (Store, error) {
		return NewFileSystemStore(ctx, cfg)
	}
}

// NewFileSystemStore creates a FileSystemStore and prepares its directory.
func NewFileSystemStore(ctx context.Context, cfg FileSystemStoreConfig) (*FileSystemStore, error) {
	store := &FileSystemStore{
		cfg: cfg,
		log: logging.GetLogger("repo.asset.filesystem_store").With(
			logging.Group("store", "basedir", cfg.Basedir),
		),
	}

	if err := store.EnsureReady(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	return store, nil
}

// FileSystemStore implements Store with one flat directory of files.
// No in-process locking is used: filenames are unique per write and the
// rename in Write is atomic, so concurrent readers never see partial files.
type FileSystemStore struct {
	cfg FileSystemStoreConfig
	log logging.Logger
}

var _ Store = (*FileSystemStore)(nil)

func (fsStore *FileSystemStore) EnsureReady(ctx context.Context) error {
	if err := os.MkdirAll(fsStore.cfg.Basedir, 0o755); err != nil {
		fsStore.log.ErrorContext(ctx, "ensure ready failed", "error", err)

		return fmt.Errorf("mkdir all: %w", err)
	}

	return nil
}

// GetPath returns the full filesystem path of an asset.
func (fsStore *FileSystemStore) GetPath(filename string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}

	return filepath.Join(fsStore.cfg.Basedir, filename), nil
}

func (fsStore *FileSystemStore) Exists(ctx context.Context, filename string) bool {
	path, err := fsStore.GetPath(filename)
	if err != nil {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func (fsStore *FileSystemStore) Write(ctx context.Context, asset *domain.Asset) (err error) {
	log := fsStore.log.With(logging.Group("asset", "filename", asset.Filename, "size", asset.Size()))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "asset write failed", "error", err)
		} else {
			log.DebugContext(ctx, "asset written")
		}
	}()

	path, err := fsStore.GetPath(asset.Filename)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fsStore.cfg.Basedir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if n, err := asset.WriteTo(tmp); err != nil {
		return fmt.Errorf("write: %w", err)
	} else if n != asset.Size() {
		return fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, asset.Size(), n)
	}

	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	committed = true

	return nil
}

func (fsStore *FileSystemStore) Read(ctx context.Context, filename string) (asset *domain.Asset, err error) {
	log := fsStore.log.With(logging.Group("asset", "filename", filename))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "asset read failed", "error", err)
		} else {
			log.DebugContext(ctx, "asset read", "size", asset.Size())
		}
	}()

	path, err := fsStore.GetPath(filename)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Join(domain.ErrAssetNotFound, err)
		}

		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	asset = &domain.Asset{Filename: filename} //nolint:exhaustruct
	if _, err := asset.ReadFrom(file); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return asset, nil
}

func (fsStore *FileSystemStore) Delete(ctx context.Context, filename string) (err error) {
	log := fsStore.log.With(logging.Group("asset", "filename", filename))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "asset delete failed", "error", err)
		} else {
			log.DebugContext(ctx, "asset deleted")
		}
	}()

	path, err := fsStore.GetPath(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.Join(domain.ErrAssetNotFound, err)
		}

		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
