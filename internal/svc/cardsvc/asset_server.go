package cardsvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/clickcard/internal/domain"
	"github.com/mkrupp/clickcard/internal/infra/logging"
	"github.com/mkrupp/clickcard/internal/repo/asset"
)

// AssetServer resolves public asset requests against the asset store.
type AssetServer struct {
	assetStore asset.Store
	log        logging.Logger
}

// NewAssetServer creates a new AssetServer from an asset store factory.
func NewAssetServer(ctx context.Context, storeFactory asset.StoreFactory) (*AssetServer, error) {
	assetStore, err := storeFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new asset store: %w", err)
	}

	return &AssetServer{
		assetStore: assetStore,
		log:        logging.GetLogger("svc.cardsvc.asset_server"),
	}, nil
}

// Serve returns the asset stored under filename and its content type.
// Unsafe names yield domain.ErrInvalidName, missing files domain.ErrAssetNotFound.
func (srv *AssetServer) Serve(ctx context.Context, filename string) (domain.Asset, string, error) {
	if err := asset.ValidateFilename(filename); err != nil {
		srv.log.WarnContext(ctx, "unsafe asset name rejected", "filename", filename)

		return domain.Asset{}, "", err //nolint:wrapcheck
	}

	stored, err := srv.assetStore.Read(ctx, filename)
	if err != nil {
		return domain.Asset{}, "", wrapRepoError("read asset", err)
	}

	return *stored, ContentTypeForFilename(filename), nil
}
