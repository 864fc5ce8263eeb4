package domain

import "strings"

// Preview is the social-preview metadata document derived from a Card.
type Preview struct {
	Title          string
	Description    string
	SiteName       string
	CanonicalURL   string
	ImageURL       string
	ImageType      string
	ImageWidth     int
	ImageHeight    int
	DestinationURL string
	CardID         CardID
}

// PreviewPlaceholderPath is used as image path for cards without a stored asset.
const PreviewPlaceholderPath = "/placeholder-image.svg"

// NewPreview builds the preview document of a card. It is a pure function of its inputs.
func NewPreview(card Card, baseURL, siteName, defaultDescription string) Preview {
	baseURL = strings.TrimRight(baseURL, "/")

	description := defaultDescription
	if card.Description != nil && *card.Description != "" {
		description = *card.Description
	}

	imageURL := baseURL + PreviewPlaceholderPath
	if card.HasImage() {
		imageURL = baseURL + "/assets/" + *card.ImageFilename
	}

	width, height := card.CardSize.Dimensions()

	return Preview{
		Title:          card.Title,
		Description:    description,
		SiteName:       siteName,
		CanonicalURL:   baseURL + "/card/" + card.ID.String(),
		ImageURL:       imageURL,
		ImageType:      "image/jpeg",
		ImageWidth:     width,
		ImageHeight:    height,
		DestinationURL: card.DestinationURL,
		CardID:         card.ID,
	}
}
