package cardsvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"

	"github.com/mkrupp/clickcard/internal/domain"
	"github.com/mkrupp/clickcard/internal/infra/logging"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// Transcoder turns an uploaded image into a cover-cropped JPEG of a fixed card size.
type Transcoder interface {
	// Precheck validates the declared MIME type and byte length before any decoding.
	Precheck(mimeType string, size int64) error

	// Transcode decodes raw, cover-crops it to the dimensions of size and encodes it as JPEG.
	Transcode(ctx context.Context, raw []byte, size domain.CardSize) ([]byte, error)
}

// ImageTranscoder implements Transcoder with golang.org/x/image/draw.
// The number of concurrent transcodes is bounded since each holds a full
// decoded bitmap in memory.
type ImageTranscoder struct {
	maxSize   int64
	maxPixels int64
	quality  int
	interpol draw.Interpolator
	sem      *semaphore.Weighted
	log      logging.Logger
}

var _ Transcoder = (*ImageTranscoder)(nil)

// NewImageTranscoder creates an ImageTranscoder from the card configuration.
func NewImageTranscoder(cfg CardConfig) (*ImageTranscoder, error) {
	interpol, err := getInterpolatorByName(cfg.Interpolator)
	if err != nil {
		return nil, err
	}

	maxConcurrent := cfg.MaxConcurrentTranscodes
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &ImageTranscoder{
		maxSize:   cfg.MaxUploadSize,
		maxPixels: cfg.MaxInputPixels,
		quality:  cfg.JPEGQuality,
		interpol: interpol,
		sem:      semaphore.NewWeighted(maxConcurrent),
		log:      logging.GetLogger("svc.cardsvc.image_transcoder"),
	}, nil
}

// Precheck implements Transcoder.Precheck. The declared type is checked first,
// then the size.
func (t *ImageTranscoder) Precheck(mimeType string, size int64) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/") {
		return fmt.Errorf("%w: %q, only images are allowed", domain.ErrUnsupportedType, mimeType)
	}

	if size > t.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds the limit of %d bytes", domain.ErrOversized, size, t.maxSize)
	}

	return nil
}

// Transcode implements Transcoder.Transcode.
func (t *ImageTranscoder) Transcode(ctx context.Context, raw []byte, size domain.CardSize) (out []byte, err error) {
	width, height := size.Dimensions()
	log := t.log.With(logging.Group("transcode", "size", size.String(), "width", width, "height", height))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "transcode failed", "error", err)
		} else {
			log.DebugContext(ctx, "image transcoded", "bytes_in", len(raw), "bytes_out", len(out))
		}
	}()

	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire transcode slot: %w", err)
	}
	defer t.sem.Release(1)

	mimeType, err := sniffImageType(raw)
	if err != nil {
		return nil, err
	}

	decoder, err := getDecoderByType(mimeType)
	if err != nil {
		return nil, err
	}

	imgCfg, err := decoder.decodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s header: %w", domain.ErrInvalidImage, mimeType, err)
	}

	if pixels := int64(imgCfg.Width) * int64(imgCfg.Height); t.maxPixels > 0 && pixels > t.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels exceeds the limit of %d pixels",
			domain.ErrOversized, imgCfg.Width, imgCfg.Height, t.maxPixels)
	}

	original, err := decoder.decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrInvalidImage, mimeType, err)
	}

	if original.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}

	bitmap := coverCrop(original, width, height, t.interpol)

	var buffer bytes.Buffer
	if err := jpeg.Encode(&buffer, bitmap, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buffer.Bytes(), nil
}

// coverCrop scales src so that it fully covers a width x height canvas and
// crops the overflow evenly on both sides. Transparent areas become white.
func coverCrop(src image.Image, width, height int, interpol draw.Interpolator) *image.RGBA {
	srcBounds := src.Bounds()
	srcW, srcH := float64(srcBounds.Dx()), float64(srcBounds.Dy())

	scale := max(float64(width)/srcW, float64(height)/srcH)

	cropW := min(float64(width)/scale, srcW)
	cropH := min(float64(height)/scale, srcH)

	offX := int((srcW - cropW) / 2)
	offY := int((srcH - cropH) / 2)

	crop := image.Rect(0, 0, max(int(cropW+0.5), 1), max(int(cropH+0.5), 1)).
		Add(srcBounds.Min).
		Add(image.Pt(offX, offY)).
		Intersect(srcBounds)

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(bitmap, bitmap.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	interpol.Scale(bitmap, bitmap.Bounds(), src, crop, draw.Over, nil)

	return bitmap
}
