package cardsvc

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DefaultListLimit is the maximum number of cards returned by ListCards.
	DefaultListLimit = 50

	// DefaultMaxUploadSize is the maximum accepted size of an uploaded image (5 MiB).
	DefaultMaxUploadSize = 5 * 1024 * 1024

	// DefaultMaxInputPixels is the largest accepted input, 16383 x 16383 pixels.
	DefaultMaxInputPixels = 0x3FFF * 0x3FFF
)

// CardConfig holds configuration parameters for the card service.
type CardConfig struct {
	// MaxUploadSize is the maximum accepted byte length of an uploaded image.
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" default:"5242880"`

	// MaxInputPixels caps width x height of an upload before it is fully decoded.
	MaxInputPixels int64 `env:"MAX_INPUT_PIXELS" default:"268402689"`

	// JPEGQuality is the quality of the transcoded JPEG, 1 to 100.
	JPEGQuality int `env:"JPEG_QUALITY" default:"90"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`

	// MaxConcurrentTranscodes bounds the number of images decoded at once.
	MaxConcurrentTranscodes int64 `env:"MAX_CONCURRENT_TRANSCODES" default:"4"`

	// ListLimit caps the number of cards returned by a listing.
	ListLimit int `env:"LIST_LIMIT" default:"50"`

	// CleanupOrphans removes a freshly written asset when its card record cannot be created.
	CleanupOrphans bool `env:"CLEANUP_ORPHANS" default:"true"`
}

// Validate implements config.Validator.
func (cfg CardConfig) Validate() error {
	//nolint:wrapcheck
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.MaxUploadSize, validation.Required, validation.Min(int64(1))),
		validation.Field(&cfg.MaxInputPixels, validation.Required, validation.Min(int64(1))),
		validation.Field(&cfg.JPEGQuality, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&cfg.Interpolator, validation.Required,
			validation.By(func(any) error {
				_, err := getInterpolatorByName(strings.ToLower(cfg.Interpolator))

				return err
			})),
		validation.Field(&cfg.MaxConcurrentTranscodes, validation.Required, validation.Min(int64(1))),
		validation.Field(&cfg.ListLimit, validation.Required, validation.Min(1), validation.Max(DefaultListLimit)),
	)
}

// PreviewConfig holds the values rendered into card preview pages.
type PreviewConfig struct {
	// BaseURL is the public origin the service is reachable at.
	BaseURL string `env:"BASE_URL" default:"http://localhost:8080"`

	SiteName           string `env:"SITE_NAME" default:"ClickablePhoto"`
	DefaultDescription string `env:"DEFAULT_DESCRIPTION" default:"Social media card created with ClickablePhoto"`
}

// Validate implements config.Validator.
func (cfg PreviewConfig) Validate() error {
	//nolint:wrapcheck
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.BaseURL, validation.Required),
		validation.Field(&cfg.SiteName, validation.Required),
	)
}
