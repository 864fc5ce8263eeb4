package domain

import (
	"encoding/json"
	"time"
)

// CardID is the opaque public identifier of a card.
// It is a lowercase Crockford Base32 encoded UUIDv7.
type CardID string

// String returns the string representation of the CardID.
func (id CardID) String() string {
	return string(id)
}

// Card is the durable unit pairing user supplied metadata with a transcoded image asset.
type Card struct {
	ID             CardID
	Title          string
	Description    *string
	DestinationURL string
	ImageFilename  *string
	CardSize       CardSize
	CreatedAt      time.Time
}

// CardResponse is the JSON representation of a Card.
type CardResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	DestinationURL string  `json:"destinationUrl"`
	ImageFilename  *string `json:"imageFilename"`
	CardSize       string  `json:"cardSize"`
	CreatedAt      string  `json:"createdAt"`
}

// CreatedAtISO formats CreatedAt as ISO-8601 in UTC with millisecond precision.
func (c Card) CreatedAtISO() string {
	return c.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// HasImage reports whether the card references a stored asset.
func (c Card) HasImage() bool {
	return c.ImageFilename != nil && *c.ImageFilename != ""
}

// Response converts the card into its JSON representation.
func (c Card) Response() CardResponse {
	return CardResponse{
		ID:             c.ID.String(),
		Title:          c.Title,
		Description:    c.Description,
		DestinationURL: c.DestinationURL,
		ImageFilename:  c.ImageFilename,
		CardSize:       c.CardSize.String(),
		CreatedAt:      c.CreatedAtISO(),
	}
}

// MarshalJSON implements json.Marshaler using the CardResponse shape.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Response()) //nolint:wrapcheck
}

// OptionalString returns nil for an empty string and a pointer to s otherwise.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
