package cardsvc

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mkrupp/clickcard/internal/domain"
)

//nolint:gochecknoglobals
var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<meta name="robots" content="index, follow">
<link rel="canonical" href="{{.CanonicalURL}}">
<meta property="og:type" content="website">
<meta property="og:locale" content="en_US">
<meta property="og:site_name" content="{{.SiteName}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.CanonicalURL}}">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="og:image:type" content="{{.ImageType}}">
<meta property="og:image:width" content="{{.ImageWidth}}">
<meta property="og:image:height" content="{{.ImageHeight}}">
<meta property="og:image:alt" content="{{.Title}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
<meta name="twitter:image" content="{{.ImageURL}}">
<meta name="twitter:image:alt" content="{{.Title}}">
</head>
<body>
<main>
<a href="{{.DestinationURL}}" rel="noopener" target="_blank">
<img src="{{.ImageURL}}" alt="{{.Title}}" width="{{.ImageWidth}}" height="{{.ImageHeight}}">
</a>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<p><a href="/cards/{{.CardID}}/download">Download</a></p>
</main>
</body>
</html>
`))

//nolint:gochecknoglobals
var notFoundTemplate = template.Must(template.New("not_found").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Card Not Found</title>
<meta name="description" content="The requested card could not be found.">
<meta name="robots" content="noindex">
</head>
<body>
<main><h1>Card Not Found</h1><p>The requested card could not be found.</p></main>
</body>
</html>
`))

// PreviewRenderer renders card preview pages.
type PreviewRenderer struct {
	cfg    PreviewConfig
	policy *bluemonday.Policy
}

// NewPreviewRenderer creates a new PreviewRenderer.
func NewPreviewRenderer(cfg PreviewConfig) *PreviewRenderer {
	return &PreviewRenderer{
		cfg:    cfg,
		policy: bluemonday.StrictPolicy(),
	}
}

// Preview builds the preview document of a card with user text reduced to plain text.
func (pr *PreviewRenderer) Preview(card domain.Card) domain.Preview {
	preview := domain.NewPreview(card, pr.cfg.BaseURL, pr.cfg.SiteName, pr.cfg.DefaultDescription)
	preview.Title = pr.plainText(preview.Title)
	preview.Description = pr.plainText(preview.Description)

	return preview
}

// Render writes the preview page of a card.
func (pr *PreviewRenderer) Render(w io.Writer, card domain.Card) error {
	if err := previewTemplate.Execute(w, pr.Preview(card)); err != nil {
		return fmt.Errorf("execute preview template: %w", err)
	}

	return nil
}

// RenderNotFound writes the page shown for unknown cards.
func (pr *PreviewRenderer) RenderNotFound(w io.Writer) error {
	if err := notFoundTemplate.Execute(w, nil); err != nil {
		return fmt.Errorf("execute not found template: %w", err)
	}

	return nil
}

// plainText strips markup. The policy escapes what it keeps; html/template escapes again on output.
func (pr *PreviewRenderer) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(pr.policy.Sanitize(s)))
}
