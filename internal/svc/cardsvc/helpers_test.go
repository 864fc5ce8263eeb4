package cardsvc_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkrupp/clickcard/internal/repo/asset"
	"github.com/mkrupp/clickcard/internal/repo/card"

	. "github.com/mkrupp/clickcard/internal/svc/cardsvc"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

func testCardConfig() CardConfig {
	return CardConfig{
		MaxUploadSize:           DefaultMaxUploadSize,
		MaxInputPixels:          DefaultMaxInputPixels,
		JPEGQuality:             90,
		Interpolator:            "catmullrom",
		MaxConcurrentTranscodes: 2,
		ListLimit:               DefaultListLimit,
		CleanupOrphans:          true,
	}
}

// bandedPNG returns a PNG whose rows are red above top, blue from bottom on and green in between.
func bandedPNG(t *testing.T, width, height, top, bottom int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := range height {
		c := green

		switch {
		case y < top:
			c = red
		case y >= bottom:
			c = blue
		}

		for x := range width {
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func solidPNG(t *testing.T, width, height int, c color.NRGBA) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk for a grayscale image of the given
// dimensions, without any pixel data.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, width)
	ihdr = binary.BigEndian.AppendUint32(ihdr, height)
	ihdr = append(ihdr, 8, 0, 0, 0, 0)

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, uint32(len(ihdr)-4))
	out = append(out, ihdr...)
	out = binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(ihdr))

	return out
}

func jpegBytes(t *testing.T, pngData []byte) []byte {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(pngData))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}

type testEnv struct {
	svc         *RepoCardService
	assetServer *AssetServer
	assetDir    string
	cardRepo    card.Repository
}

func newTestEnv(t *testing.T, cfg CardConfig, repoFactory card.RepositoryFactory, opts ...RepoCardServiceOption) *testEnv {
	t.Helper()

	ctx := context.TODO()
	dir := t.TempDir()
	assetDir := filepath.Join(dir, "assets")

	if repoFactory == nil {
		repoFactory = card.SQLiteRepositoryFactory(card.SQLiteRepositoryConfig{
			DatabasePath: filepath.Join(dir, "cards.db"),
			BusyTimeout:  5 * time.Second,
		})
	}

	var cardRepo card.Repository

	capturingFactory := func(ctx context.Context) (card.Repository, error) {
		repo, err := repoFactory(ctx)
		cardRepo = repo

		return repo, err
	}

	storeFactory := asset.FileSystemStoreFactory(asset.FileSystemStoreConfig{Basedir: assetDir})

	transcoder, err := NewImageTranscoder(cfg)
	require.NoError(t, err)

	svc, err := NewRepoCardService(ctx, capturingFactory, storeFactory, transcoder, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assetServer, err := NewAssetServer(ctx, storeFactory)
	require.NoError(t, err)

	return &testEnv{
		svc:         svc,
		assetServer: assetServer,
		assetDir:    assetDir,
		cardRepo:    cardRepo,
	}
}

type multipartFile struct {
	field, filename, contentType string
	body                         []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...multipartFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}

	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		header.Set("Content-Type", file.contentType)

		part, err := mw.CreatePart(header)
		require.NoError(t, err)

		_, err = part.Write(file.body)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}
