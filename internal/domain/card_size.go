package domain

import (
	"fmt"
	"strings"
)

// CardSize selects the fixed pixel dimensions of a card image.
type CardSize string

const (
	CardSizeLarge CardSize = "large"
	CardSizeSmall CardSize = "small"
)

// Both sizes share the 1200:628 aspect ratio.
const (
	largeWidth  = 1200
	largeHeight = 628
	smallWidth  = 600
	smallHeight = 314
)

// ParseCardSize parses a card size. An empty string yields CardSizeLarge.
func ParseCardSize(s string) (CardSize, error) {
	switch size := CardSize(strings.ToLower(strings.TrimSpace(s))); size {
	case "":
		return CardSizeLarge, nil
	case CardSizeLarge, CardSizeSmall:
		return size, nil
	default:
		return "", fmt.Errorf("%w: unknown card size %q", ErrValidation, s)
	}
}

// Valid reports whether the size is one of the known card sizes.
func (s CardSize) Valid() bool {
	return s == CardSizeLarge || s == CardSizeSmall
}

// Dimensions returns the target width and height in pixels.
func (s CardSize) Dimensions() (width, height int) {
	if s == CardSizeSmall {
		return smallWidth, smallHeight
	}

	return largeWidth, largeHeight
}

func (s CardSize) String() string {
	return string(s)
}
