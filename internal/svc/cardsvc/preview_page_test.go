package cardsvc_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/clickcard/internal/domain"

	. "github.com/mkrupp/clickcard/internal/svc/cardsvc"
)

func TestPreviewRenderer_Preview(t *testing.T) {
	t.Parallel()

	renderer := NewPreviewRenderer(PreviewConfig{
		BaseURL:            "https://cards.example.com",
		SiteName:           "ClickablePhoto",
		DefaultDescription: "Social media card created with ClickablePhoto",
	})

	card := domain.Card{
		ID:             "01hx",
		Title:          "<script>alert(1)</script>Hello",
		DestinationURL: "https://example.com",
		CardSize:       domain.CardSizeSmall,
		CreatedAt:      time.Now(),
	}

	preview := renderer.Preview(card)
	assert.Equal(t, "Hello", preview.Title)
	assert.Equal(t, "Social media card created with ClickablePhoto", preview.Description)
	assert.Equal(t, "https://cards.example.com/placeholder-image.svg", preview.ImageURL)
	assert.Equal(t, 600, preview.ImageWidth)
	assert.Equal(t, 314, preview.ImageHeight)

	var page strings.Builder
	require.NoError(t, renderer.Render(&page, card))
	assert.NotContains(t, page.String(), "<script>")
	assert.Contains(t, page.String(), `<link rel="canonical" href="https://cards.example.com/card/01hx">`)
}

func TestPreviewRenderer_UnsafeDestination(t *testing.T) {
	t.Parallel()

	renderer := NewPreviewRenderer(PreviewConfig{BaseURL: "https://cards.example.com", SiteName: "ClickablePhoto"})

	var page strings.Builder
	require.NoError(t, renderer.Render(&page, domain.Card{
		ID:             "01hx",
		Title:          "Click",
		DestinationURL: "javascript:alert(1)",
		CardSize:       domain.CardSizeLarge,
	}))
	assert.NotContains(t, page.String(), "javascript:")
}
