// Package markdown renders user-written ticket descriptions and messages.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer builds a Renderer with GFM and hard line breaks, so a plain
// multi-line description keeps its line breaks.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{md: md, policy: policy}
}

// ToHTMLSanitized converts markdown and strips anything outside the UGC policy.
func (r *Renderer) ToHTMLSanitized(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// HTML is the template func. On conversion failure it falls back to the
// escaped text.
func (r *Renderer) HTML(markdown string) template.HTML {
	out, err := r.ToHTMLSanitized(markdown)
	if err != nil {
		slog.Warn("markdown render failed", "error", err)
		return template.HTML(html.EscapeString(markdown))
	}
	return template.HTML(out)
}
