package cardsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mkrupp/clickcard/internal/domain"
	context_ "github.com/mkrupp/clickcard/internal/infra/context"
	"github.com/mkrupp/clickcard/internal/infra/logging"
	http_ "github.com/mkrupp/clickcard/internal/infra/transport/http"
	"github.com/mkrupp/clickcard/internal/util/ident"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// MultipartFileName is the form field name of the uploaded image.
	// Default is "image".
	MultipartFileName string `env:"MULTIPART_FILE_NAME" default:"image"`

	// MultipartFormMaxMemory caps the size of a whole upload request body.
	// Default is 10MB.
	MultipartFormMaxMemory int64 `env:"MULTIPART_FORM_MAX_SIZE" default:"10485760"`

	// AssetCacheControl is sent with every served asset. Asset names are never reused.
	AssetCacheControl string `env:"ASSET_CACHE_CONTROL" default:"public, max-age=31536000, immutable"`

	// PreviewCacheControl is sent with every card preview page.
	PreviewCacheControl string `env:"PREVIEW_CACHE_CONTROL" default:"public, max-age=3600"`
}

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the JSON body of API requests without a resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}

// HTTPTransport handles HTTP requests for the card service.
// It provides the card API, public asset delivery and card preview pages.
type HTTPTransport struct {
	cardSvc     CardService
	assetServer *AssetServer
	renderer    *PreviewRenderer
	log         logging.Logger
	cfg         HTTPTransportConfig
	mux         *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
func NewHTTPTransport(
	cardSvc CardService,
	assetServer *AssetServer,
	renderer *PreviewRenderer,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		cardSvc:     cardSvc,
		assetServer: assetServer,
		renderer:    renderer,
		log:         logging.GetLogger("svc.cardsvc.http_transport"),
		cfg:         cfg,
		mux:         http.NewServeMux(),
	}

	assets := http_.CORSMiddleware(http.HandlerFunc(ht.HandleAsset), http.MethodGet, http.MethodHead)

	ht.mux.HandleFunc("POST /cards", ht.HandleCreate)
	ht.mux.HandleFunc("GET /cards", ht.HandleList)
	ht.mux.HandleFunc("GET /cards/{id}", ht.HandleGet)
	ht.mux.HandleFunc("DELETE /cards/{id}", ht.HandleDelete)
	ht.mux.HandleFunc("GET /cards/{id}/download", ht.HandleDownload)
	ht.mux.Handle("GET /assets/{filename}", assets)
	ht.mux.Handle("OPTIONS /assets/{filename}", assets)
	ht.mux.HandleFunc("GET /card/{id}", ht.HandlePreview)
	ht.mux.HandleFunc("GET /healthz", ht.HandleHealth)

	return ht
}

// ServeHTTP implements http.Handler and routes to the card service endpoints:
// - POST /cards: Create card from multipart upload
// - GET /cards: List newest cards
// - GET /cards/{id}: Get card by ID
// - DELETE /cards/{id}: Delete card by ID
// - GET /cards/{id}/download: Download card image as attachment
// - GET /assets/{filename}: Serve stored card image
// - GET /card/{id}: Card preview page with social metadata
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

func (ht *HTTPTransport) requestLogger(r *http.Request) logging.Logger {
	return ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))
}

// HandleCreate processes card creation requests.
// Expects a multipart form with the image file and the card fields.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "card upload failed", "error", err)
		} else {
			log.DebugContext(ctx, "card uploaded")
		}
	}(r.Context())

	input, err := ht.parseCreateForm(w, r)
	if err != nil {
		ht.writeError(w, r, err)

		return err
	}

	created, err := ht.cardSvc.CreateCard(r.Context(), input)
	if err != nil {
		ht.writeError(w, r, err)

		return fmt.Errorf("create card: %w", err)
	}

	return ht.writeJSON(w, http.StatusCreated, created)
}

func (ht *HTTPTransport) parseCreateForm(w http.ResponseWriter, r *http.Request) (domain.CreateCardInput, error) {
	var input domain.CreateCardInput

	r.Body = http.MaxBytesReader(w, r.Body, ht.cfg.MultipartFormMaxMemory)

	if err := r.ParseMultipartForm(ht.cfg.MultipartFormMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return input, fmt.Errorf("%w: request exceeds %d bytes", domain.ErrOversized, maxBytesErr.Limit)
		}

		return input, fmt.Errorf("%w: parse multipart form: %w", domain.ErrValidation, err)
	}

	input.Title = r.FormValue("title")
	input.Description = r.FormValue("description")
	input.DestinationURL = r.FormValue("destination_url")
	input.CardSize = domain.CardSize(r.FormValue("card_size"))

	file, header, err := r.FormFile(ht.cfg.MultipartFileName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil
		}

		return input, fmt.Errorf("%w: read %s: %w", domain.ErrValidation, ht.cfg.MultipartFileName, err)
	}
	defer file.Close()

	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, file); err != nil {
		return input, fmt.Errorf("read %s: %w", header.Filename, err)
	}

	input.Image = buffer.Bytes()
	input.ImageFilename = header.Filename
	input.ImageMIMEType = header.Header.Get("Content-Type")

	return input, nil
}

// HandleList returns the newest cards. An optional limit query parameter is clamped by the service.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "card list failed", "error", err)
		}
	}(r.Context())

	var limit int

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			ht.writeError(w, r, fmt.Errorf("%w: invalid limit", domain.ErrValidation))

			return fmt.Errorf("parse limit: %w", err)
		}
	}

	cards, err := ht.cardSvc.ListCards(r.Context(), limit)
	if err != nil {
		ht.writeError(w, r, err)

		return fmt.Errorf("list cards: %w", err)
	}

	return ht.writeJSON(w, http.StatusOK, cards)
}

// HandleGet returns a single card.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	cardID := ident.NormalizeCardID(r.PathValue("id"))
	ctx := context_.WithCardID(r.Context(), cardID.String())
	log := ht.requestLogger(r)

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "card get failed", "error", err)
		}
	}()

	found, err := ht.cardSvc.GetCard(ctx, cardID)
	if err != nil {
		ht.writeError(w, r, err)

		return fmt.Errorf("get card: %w", err)
	}

	return ht.writeJSON(w, http.StatusOK, found)
}

// HandleDelete processes card deletion requests.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	cardID := ident.NormalizeCardID(r.PathValue("id"))
	ctx := context_.WithCardID(r.Context(), cardID.String())
	log := ht.requestLogger(r)

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "card delete failed", "error", err)
		} else {
			log.DebugContext(ctx, "card deleted")
		}
	}()

	if err := ht.cardSvc.DeleteCard(ctx, cardID); err != nil {
		ht.writeError(w, r, err)

		return fmt.Errorf("delete card: %w", err)
	}

	return ht.writeJSON(w, http.StatusOK, MessageResponse{Message: "card deleted"})
}

// HandleDownload sends the card image as an attachment.
func (ht *HTTPTransport) HandleDownload(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDownload(w, r)
}

func (ht *HTTPTransport) handleDownload(w http.ResponseWriter, r *http.Request) (err error) {
	cardID := ident.NormalizeCardID(r.PathValue("id"))
	ctx := context_.WithCardID(r.Context(), cardID.String())
	log := ht.requestLogger(r)

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "card download failed", "error", err)
		} else {
			log.DebugContext(ctx, "card downloaded")
		}
	}()

	image, filename, err := ht.cardSvc.DownloadCard(ctx, cardID)
	if err != nil {
		ht.writeError(w, r, err)

		return fmt.Errorf("download card: %w", err)
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	return writeAsset(w, image, MIMETypeJPEG)
}

// HandleAsset serves a stored card image by filename.
func (ht *HTTPTransport) HandleAsset(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAsset(w, r)
}

func (ht *HTTPTransport) handleAsset(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLogger(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "asset serve failed", "error", err)
		}
	}(r.Context())

	image, ctype, err := ht.assetServer.Serve(r.Context(), r.PathValue("filename"))
	if err != nil {
		ht.writeError(w, r, err)

		return fmt.Errorf("serve asset: %w", err)
	}

	w.Header().Set("Cache-Control", ht.cfg.AssetCacheControl)

	return writeAsset(w, image, ctype)
}

// HandlePreview renders the public preview page of a card.
func (ht *HTTPTransport) HandlePreview(w http.ResponseWriter, r *http.Request) {
	_ = ht.handlePreview(w, r)
}

func (ht *HTTPTransport) handlePreview(w http.ResponseWriter, r *http.Request) (err error) {
	cardID := ident.NormalizeCardID(r.PathValue("id"))
	ctx := context_.WithCardID(r.Context(), cardID.String())
	log := ht.requestLogger(r)

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "card preview failed", "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	found, err := ht.cardSvc.GetCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return ht.renderer.RenderNotFound(w)
		}

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("get card: %w", err)
	}

	var page bytes.Buffer
	if err := ht.renderer.Render(&page, found); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return err
	}

	w.Header().Set("Cache-Control", ht.cfg.PreviewCacheControl)
	w.Header().Set("X-Robots-Tag", "index, follow")

	if _, err := page.WriteTo(w); err != nil {
		return fmt.Errorf("write page: %w", err)
	}

	return nil
}

// HandleHealth reports liveness.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func writeAsset(w http.ResponseWriter, image domain.Asset, ctype string) error {
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.FormatInt(image.Size(), 10))

	if _, err := image.WriteTo(w); err != nil {
		return fmt.Errorf("write to: %w", err)
	}

	return nil
}

func (ht *HTTPTransport) writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// writeError maps the domain error taxonomy onto HTTP status codes.
// Storage failures are reported with a generic message only.
func (ht *HTTPTransport) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)

	if status == http.StatusInternalServerError {
		ht.requestLogger(r).ErrorContext(r.Context(), "request failed", "error", err)
	}

	_ = ht.writeJSON(w, status, ErrorResponse{Error: message})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest, domain.ErrInvalidName.Error()
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrOversized),
		errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrCardNotFound):
		return http.StatusNotFound, domain.ErrCardNotFound.Error()
	case errors.Is(err, domain.ErrAssetNotFound):
		return http.StatusNotFound, "image not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
