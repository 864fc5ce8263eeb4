package domain

import (
	"fmt"
	"io"
)

// Asset is a stored, immutable transcoded image file referenced by a Card.
type Asset struct {
	Filename string
	Body     []byte
}

// NewAsset creates a new Asset with the given filename and content.
func NewAsset(filename string, body []byte) *Asset {
	return &Asset{
		Filename: filename,
		Body:     body,
	}
}

// Size returns the size of the asset in bytes.
func (a *Asset) Size() int64 {
	return int64(len(a.Body))
}

// WriteTo writes the asset content to the given writer.
func (a *Asset) WriteTo(writer io.Writer) (int64, error) {
	n, err := writer.Write(a.Body)
	if err != nil {
		return int64(n), fmt.Errorf("write: %w", err)
	}

	return int64(n), nil
}

// ReadFrom replaces the asset content with everything read from reader.
func (a *Asset) ReadFrom(reader io.Reader) (int64, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return 0, fmt.Errorf("read all: %w", err)
	}

	a.Body = body

	return int64(len(body)), nil
}
