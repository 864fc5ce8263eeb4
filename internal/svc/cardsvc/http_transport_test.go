package cardsvc_test

import (
	"bytes"
	"encoding/json"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/clickcard/internal/domain"
	"github.com/mkrupp/clickcard/internal/infra/logging"
	http_ "github.com/mkrupp/clickcard/internal/infra/transport/http"

	. "github.com/mkrupp/clickcard/internal/svc/cardsvc"
)

func newTestTransport(t *testing.T) (*HTTPTransport, *testEnv) {
	t.Helper()

	env := newTestEnv(t, testCardConfig(), nil)

	//nolint:exhaustruct
	cfg := HTTPTransportConfig{
		MultipartFileName:      "image",
		MultipartFormMaxMemory: 10 << 20,
		AssetCacheControl:      "public, max-age=31536000, immutable",
		PreviewCacheControl:    "public, max-age=3600",
	}

	renderer := NewPreviewRenderer(PreviewConfig{
		BaseURL:            "https://cards.example.com/",
		SiteName:           "ClickablePhoto",
		DefaultDescription: "Social media card created with ClickablePhoto",
	})

	return NewHTTPTransport(env.svc, env.assetServer, renderer, cfg), env
}

func do(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func createRequest(t *testing.T, fields map[string]string, files ...multipartFile) *http.Request {
	t.Helper()

	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/cards", body)
	req.Header.Set("Content-Type", contentType)

	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func TestHTTPTransport_CardLifecycle(t *testing.T) {
	t.Parallel()

	ht, _ := newTestTransport(t)
	handler := http_.Handler(ht, logging.NewNopLogger())

	rec := do(t, handler, createRequest(t, map[string]string{
		"title":           "Sale",
		"destination_url": "https://x.com",
		"card_size":       "small",
	}, multipartFile{
		field: "image", filename: "photo.jpg", contentType: "image/jpeg",
		body: jpegBytes(t, bandedPNG(t, 1024, 1024, 0, 1024)),
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	created := decodeBody[domain.CardResponse](t, rec)
	assert.Equal(t, "small", created.CardSize)
	assert.Equal(t, "Sale", created.Title)
	assert.Nil(t, created.Description)
	require.NotNil(t, created.ImageFilename)

	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/cards/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sale", decodeBody[domain.CardResponse](t, rec).Title)

	// lookups are case insensitive
	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/cards/"+strings.ToUpper(created.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/cards", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.CardResponse](t, rec), 1)

	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/assets/"+*created.ImageFilename, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	img, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Width)
	assert.Equal(t, 314, img.Height)

	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/cards/"+created.ID+"/download", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="social-card-`+created.ID+`.jpg"`, rec.Header().Get("Content-Disposition"))

	rec = do(t, handler, httptest.NewRequest(http.MethodDelete, "/cards/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "card deleted", decodeBody[MessageResponse](t, rec).Message)

	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/cards/"+created.ID, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "card not found", decodeBody[ErrorResponse](t, rec).Error)

	rec = do(t, handler, httptest.NewRequest(http.MethodDelete, "/cards/"+created.ID, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/assets/"+*created.ImageFilename, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, handler, httptest.NewRequest(http.MethodGet, "/cards/"+created.ID+"/download", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPTransport_CreateRejects(t *testing.T) {
	t.Parallel()

	ht, _ := newTestTransport(t)

	fields := map[string]string{"title": "Sale", "destination_url": "https://x.com"}

	tests := []struct {
		name    string
		files   []multipartFile
		fields  map[string]string
		wantErr string
	}{
		{
			name:    "no image",
			fields:  fields,
			wantErr: "image is required",
		},
		{
			name:   "oversized image",
			fields: fields,
			files: []multipartFile{{
				field: "image", filename: "big.jpg", contentType: "image/jpeg", body: make([]byte, 6<<20),
			}},
			wantErr: domain.ErrOversized.Error(),
		},
		{
			name:   "text relabeled as image",
			fields: fields,
			files: []multipartFile{{
				field: "image", filename: "notes.jpg", contentType: "image/jpeg", body: []byte("just some notes"),
			}},
			wantErr: domain.ErrInvalidImage.Error(),
		},
		{
			name:   "text declared as text",
			fields: fields,
			files: []multipartFile{{
				field: "image", filename: "notes.txt", contentType: "text/plain", body: []byte("just some notes"),
			}},
			wantErr: domain.ErrUnsupportedType.Error(),
		},
		{
			name:   "missing title",
			fields: map[string]string{"destination_url": "https://x.com"},
			files: []multipartFile{{
				field: "image", filename: "photo.png", contentType: "image/png", body: solidPNG(t, 10, 10, red),
			}},
			wantErr: "title is required",
		},
		{
			name:   "unknown size",
			fields: map[string]string{"title": "Sale", "destination_url": "https://x.com", "card_size": "huge"},
			files: []multipartFile{{
				field: "image", filename: "photo.png", contentType: "image/png", body: solidPNG(t, 10, 10, red),
			}},
			wantErr: "must be either large or small",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, ht, createRequest(t, tt.fields, tt.files...))
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, tt.wantErr)
		})
	}
}

func TestHTTPTransport_CreateBodyTooLarge(t *testing.T) {
	t.Parallel()

	ht, _ := newTestTransport(t)

	rec := do(t, ht, createRequest(t, map[string]string{"title": "Sale", "destination_url": "https://x.com"},
		multipartFile{field: "image", filename: "huge.jpg", contentType: "image/jpeg", body: make([]byte, 11<<20)}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, domain.ErrOversized.Error())
}

func TestHTTPTransport_AssetRejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	ht, _ := newTestTransport(t)

	for _, path := range []string{`/assets/a%5Cb`, "/assets/..%5C..%5Cetc", "/assets/x..jpg"} {
		rec := do(t, ht, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, domain.ErrInvalidName.Error(), decodeBody[ErrorResponse](t, rec).Error, path)
	}

	// parent segments are cleaned by the router before they reach the handler
	rec := do(t, ht, httptest.NewRequest(http.MethodGet, "/assets/..%2Fsecret", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = do(t, ht, httptest.NewRequest(http.MethodGet, "/assets/missing.jpg", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, ht, httptest.NewRequest(http.MethodOptions, "/assets/missing.jpg", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPTransport_Preview(t *testing.T) {
	t.Parallel()

	ht, env := newTestTransport(t)

	input := newCreateInput(t, "large")
	input.Title = `Big <b>Sale</b> & "more"`

	created, err := env.svc.CreateCard(t.Context(), input)
	require.NoError(t, err)

	rec := do(t, ht, httptest.NewRequest(http.MethodGet, "/card/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "index, follow", rec.Header().Get("X-Robots-Tag"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	page := rec.Body.String()
	assert.Contains(t, page, `<meta property="og:image" content="https://cards.example.com/assets/`+*created.ImageFilename+`">`)
	assert.Contains(t, page, `<meta property="og:url" content="https://cards.example.com/card/`+created.ID.String()+`">`)
	assert.Contains(t, page, `<meta property="og:image:width" content="1200">`)
	assert.Contains(t, page, `<meta property="og:image:height" content="628">`)
	assert.Contains(t, page, `<meta name="twitter:card" content="summary_large_image">`)
	assert.Contains(t, page, `<meta property="og:title" content="Big Sale &amp; &#34;more&#34;">`)
	assert.NotContains(t, page, "<b>")

	rec = do(t, ht, httptest.NewRequest(http.MethodGet, "/card/unknown", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Card Not Found")
}

func TestHTTPTransport_Health(t *testing.T) {
	t.Parallel()

	ht, _ := newTestTransport(t)

	rec := do(t, ht, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
