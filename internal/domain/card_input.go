package domain

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateCardInput is the typed, boundary-validated request to create a card.
// The json tags name the multipart form fields and are used in validation messages.
type CreateCardInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	DestinationURL string   `json:"destination_url"`
	CardSize       CardSize `json:"card_size"`

	Image         []byte `json:"image"`
	ImageMIMEType string `json:"-"`
	ImageFilename string `json:"-"`
}

// Normalize trims text fields and applies the default card size.
func (in *CreateCardInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DestinationURL = strings.TrimSpace(in.DestinationURL)

	// unknown sizes are left as-is for Validate to report
	if size, err := ParseCardSize(string(in.CardSize)); err == nil {
		in.CardSize = size
	}
}

// Validate checks required fields. Failures wrap ErrValidation.
func (in CreateCardInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Image, validation.Required.Error("image is required")),
		validation.Field(&in.Title, validation.Required.Error("title is required")),
		validation.Field(&in.DestinationURL, validation.Required.Error("destination url is required")),
		validation.Field(&in.CardSize, validation.By(func(any) error {
			if !in.CardSize.Valid() {
				return errors.New("must be either large or small")
			}

			return nil
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}
