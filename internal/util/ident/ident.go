// Package ident generates the identifiers handed out by the card service.
package ident

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrupp/clickcard/internal/domain"
)

const (
	// AssetNameLength is the number of Crockford symbols in a generated asset name (80 bits).
	AssetNameLength = 16

	// AssetExt is the extension of every transcoded asset.
	AssetExt = ".jpg"
)

// NewCardID returns a new time-ordered card id.
func NewCardID() (domain.CardID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("new uuid v7: %w", err)
	}

	return domain.CardID(EncodeCrockford(id[:])), nil
}

// NormalizeCardID normalizes a user supplied card id for lookup.
func NormalizeCardID(raw string) domain.CardID {
	return domain.CardID(NormalizeCrockford(raw))
}

// NewAssetFilename returns a fresh random asset filename with the AssetExt extension.
// Names are never derived from content and never reused.
func NewAssetFilename() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("new uuid v4: %w", err)
	}

	return EncodeCrockford(id[:])[:AssetNameLength] + AssetExt, nil
}

// NewTraceID returns a new request trace id.
func NewTraceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return ""
	}

	return EncodeCrockford(id[:])
}
