package cardsvc

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/mkrupp/clickcard/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeGIF  = "image/gif"
	MIMETypeWebP = "image/webp"
	MIMETypeBMP  = "image/bmp"
	MIMETypeTIFF = "image/tiff"
	MIMETypeSVG  = "image/svg+xml"
)

//nolint:gochecknoglobals
var (
	// assetExtTypes maps served asset extensions to their content type.
	assetExtTypes = map[string]string{
		".jpg":  MIMETypeJPEG,
		".jpeg": MIMETypeJPEG,
		".png":  MIMETypePNG,
		".gif":  MIMETypeGIF,
		".webp": MIMETypeWebP,
		".svg":  MIMETypeSVG,
	}

	// imageDecoders lists the raster formats accepted as upload input.
	imageDecoders = map[string]imageDecoder{
		MIMETypeJPEG: {jpeg.Decode, jpeg.DecodeConfig},
		MIMETypePNG:  {png.Decode, png.DecodeConfig},
		MIMETypeGIF:  {gif.Decode, gif.DecodeConfig},
		MIMETypeWebP: {webp.Decode, webp.DecodeConfig},
		MIMETypeBMP:  {bmp.Decode, bmp.DecodeConfig},
		MIMETypeTIFF: {tiff.Decode, tiff.DecodeConfig},
	}
)

type imageDecoder struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// ContentTypeForFilename derives the served content type from the filename extension.
// Unknown extensions are served as JPEG, the only format the service writes.
func ContentTypeForFilename(filename string) string {
	if ctype, ok := assetExtTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ctype
	}

	return MIMETypeJPEG
}

// sniffImageType detects the raster format of data from its content.
func sniffImageType(data []byte) (string, error) {
	mtype := mimetype.Detect(data)

	for candidate := mtype; candidate != nil; candidate = candidate.Parent() {
		if _, ok := imageDecoders[candidate.String()]; ok {
			return candidate.String(), nil
		}
	}

	return "", fmt.Errorf("%w: content is %s", domain.ErrInvalidImage, mtype.String())
}

func getDecoderByType(mimeType string) (imageDecoder, error) {
	decoder, ok := imageDecoders[mimeType]
	if !ok {
		return imageDecoder{}, fmt.Errorf("%w: %q", domain.ErrInvalidImage, mimeType)
	}

	return decoder, nil
}
