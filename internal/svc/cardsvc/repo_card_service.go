package cardsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/clickcard/internal/domain"
	context_ "github.com/mkrupp/clickcard/internal/infra/context"
	"github.com/mkrupp/clickcard/internal/infra/logging"
	"github.com/mkrupp/clickcard/internal/repo/asset"
	"github.com/mkrupp/clickcard/internal/repo/card"
	"github.com/mkrupp/clickcard/internal/util/ident"
)

// RepoCardService implements CardService on top of a card repository and an asset store.
// It holds no mutable state of its own; concurrent calls only meet in the repository
// and the store.
type RepoCardService struct {
	cardRepo   card.Repository
	assetStore asset.Store
	transcoder Transcoder
	cfg        CardConfig
	log        logging.Logger

	now func() time.Time
}

var _ CardService = (*RepoCardService)(nil)

// RepoCardServiceOption customizes a RepoCardService.
type RepoCardServiceOption func(*RepoCardService)

// WithClock replaces the clock used for card creation timestamps.
func WithClock(now func() time.Time) RepoCardServiceOption {
	return func(svc *RepoCardService) {
		svc.now = now
	}
}

// NewRepoCardService creates a new RepoCardService. The asset store is prepared
// eagerly so that a misconfigured storage directory fails at startup.
func NewRepoCardService(
	ctx context.Context,
	repoFactory card.RepositoryFactory,
	storeFactory asset.StoreFactory,
	transcoder Transcoder,
	cfg CardConfig,
	opts ...RepoCardServiceOption,
) (*RepoCardService, error) {
	cardRepo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new card repository: %w", err)
	}

	assetStore, err := storeFactory(ctx)
	if err != nil {
		_ = cardRepo.Close()

		return nil, fmt.Errorf("new asset store: %w", err)
	}

	svc := &RepoCardService{
		cardRepo:   cardRepo,
		assetStore: assetStore,
		transcoder: transcoder,
		cfg:        cfg,
		log:        logging.GetLogger("svc.cardsvc.repo_card_service"),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Close releases the card repository.
func (cardSvc *RepoCardService) Close() error {
	//nolint:wrapcheck
	return cardSvc.cardRepo.Close()
}

// CreateCard implements CardService.CreateCard.
//
//nolint:funlen,cyclop
func (cardSvc *RepoCardService) CreateCard(
	ctx context.Context,
	input domain.CreateCardInput,
) (created domain.Card, err error) {
	log := cardSvc.log.With(logging.Group("input",
		"size", input.CardSize.String(),
		"bytes", len(input.Image),
		"type", input.ImageMIMEType,
		"filename", input.ImageFilename,
	))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "card create failed", "error", err)
		} else {
			log.InfoContext(ctx, "card created")
		}
	}()

	input.Normalize()

	if err := input.Validate(); err != nil {
		return domain.Card{}, err //nolint:wrapcheck
	}

	// precheck and transcode messages are shown to the uploader as is
	if err := cardSvc.transcoder.Precheck(input.ImageMIMEType, int64(len(input.Image))); err != nil {
		return domain.Card{}, err //nolint:wrapcheck
	}

	transcoded, err := cardSvc.transcoder.Transcode(ctx, input.Image, input.CardSize)
	if err != nil {
		return domain.Card{}, err //nolint:wrapcheck
	}

	cardID, err := ident.NewCardID()
	if err != nil {
		return domain.Card{}, errors.Join(domain.ErrStorage, fmt.Errorf("new card id: %w", err))
	}

	filename, err := ident.NewAssetFilename()
	if err != nil {
		return domain.Card{}, errors.Join(domain.ErrStorage, fmt.Errorf("new asset filename: %w", err))
	}

	ctx = context_.WithCardID(ctx, cardID.String())
	log = log.With(logging.Group("card", "id", cardID, "filename", filename))

	if err := cardSvc.assetStore.EnsureReady(ctx); err != nil {
		return domain.Card{}, errors.Join(domain.ErrStorage, fmt.Errorf("ensure asset store: %w", err))
	}

	if err := cardSvc.assetStore.Write(ctx, domain.NewAsset(filename, transcoded)); err != nil {
		return domain.Card{}, errors.Join(domain.ErrStorage, fmt.Errorf("write asset: %w", err))
	}

	created = domain.Card{
		ID:             cardID,
		Title:          input.Title,
		Description:    domain.OptionalString(input.Description),
		DestinationURL: input.DestinationURL,
		ImageFilename:  &filename,
		CardSize:       input.CardSize,
		CreatedAt:      cardSvc.now().UTC().Truncate(time.Millisecond),
	}

	if err := cardSvc.cardRepo.Create(ctx, created); err != nil {
		if cardSvc.cfg.CleanupOrphans {
			if cleanupErr := cardSvc.assetStore.Delete(ctx, filename); cleanupErr != nil {
				log.ErrorContext(ctx, "orphan asset cleanup failed", "error", cleanupErr)
			}
		}

		return domain.Card{}, errors.Join(domain.ErrStorage, fmt.Errorf("create card record: %w", err))
	}

	return created, nil
}

// GetCard implements CardService.GetCard.
func (cardSvc *RepoCardService) GetCard(ctx context.Context, id domain.CardID) (domain.Card, error) {
	found, err := cardSvc.cardRepo.FindByID(context_.WithCardID(ctx, id.String()), id)
	if err != nil {
		return domain.Card{}, wrapRepoError("find card", err)
	}

	return found, nil
}

// ListCards implements CardService.ListCards.
func (cardSvc *RepoCardService) ListCards(ctx context.Context, limit int) ([]domain.Card, error) {
	if limit <= 0 || limit > cardSvc.cfg.ListLimit {
		limit = cardSvc.cfg.ListLimit
	}

	cards, err := cardSvc.cardRepo.FindMany(ctx, limit)
	if err != nil {
		return nil, wrapRepoError("find cards", err)
	}

	return cards, nil
}

// DeleteCard implements CardService.DeleteCard. The asset is removed only if it
// exists; a failure to remove it is logged and does not prevent the record deletion.
func (cardSvc *RepoCardService) DeleteCard(ctx context.Context, id domain.CardID) (err error) {
	ctx = context_.WithCardID(ctx, id.String())
	log := cardSvc.log.With(logging.Group("card", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "card delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "card deleted")
		}
	}()

	found, err := cardSvc.cardRepo.FindByID(ctx, id)
	if err != nil {
		return wrapRepoError("find card", err)
	}

	if found.HasImage() && cardSvc.assetStore.Exists(ctx, *found.ImageFilename) {
		if err := cardSvc.assetStore.Delete(ctx, *found.ImageFilename); err != nil {
			log.WarnContext(ctx, "asset delete failed", "filename", *found.ImageFilename, "error", err)
		}
	}

	if err := cardSvc.cardRepo.Delete(ctx, id); err != nil {
		return wrapRepoError("delete card", err)
	}

	return nil
}

// DownloadCard implements CardService.DownloadCard.
func (cardSvc *RepoCardService) DownloadCard(ctx context.Context, id domain.CardID) (domain.Asset, string, error) {
	ctx = context_.WithCardID(ctx, id.String())

	found, err := cardSvc.cardRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Asset{}, "", wrapRepoError("find card", err)
	}

	if !found.HasImage() {
		return domain.Asset{}, "", fmt.Errorf("card has no image: %w", domain.ErrAssetNotFound)
	}

	stored, err := cardSvc.assetStore.Read(ctx, *found.ImageFilename)
	if err != nil {
		return domain.Asset{}, "", wrapRepoError("read asset", err)
	}

	return *stored, DownloadFilename(found.ID), nil
}

// wrapRepoError passes lookup failures through and marks everything else as a storage failure.
func wrapRepoError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidName) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return errors.Join(domain.ErrStorage, fmt.Errorf("%s: %w", op, err))
}
