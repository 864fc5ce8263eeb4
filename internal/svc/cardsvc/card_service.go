package cardsvc

import (
	"context"

	"github.com/mkrupp/clickcard/internal/domain"
)

// CardService defines the card lifecycle operations.
type CardService interface {
	// CreateCard validates the input, transcodes the image, stores the asset and
	// persists the card record.
	CreateCard(ctx context.Context, input domain.CreateCardInput) (domain.Card, error)

	// GetCard returns the card with the given id or domain.ErrCardNotFound.
	GetCard(ctx context.Context, id domain.CardID) (domain.Card, error)

	// ListCards returns at most limit cards, newest first. Out of range limits
	// are clamped to the configured list limit.
	ListCards(ctx context.Context, limit int) ([]domain.Card, error)

	// DeleteCard removes the card record and, best effort, its asset.
	DeleteCard(ctx context.Context, id domain.CardID) error

	// DownloadCard returns the stored image of a card together with the
	// suggested download filename.
	DownloadCard(ctx context.Context, id domain.CardID) (domain.Asset, string, error)
}

// DownloadFilename returns the attachment filename offered for a card's image.
func DownloadFilename(id domain.CardID) string {
	return "social-card-" + id.String() + ".jpg"
}
