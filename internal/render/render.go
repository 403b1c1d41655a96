// Package render converts markdown bodies to HTML. The engine is opaque to
// the rest of the system: the indexer and page generator only depend on the
// Renderer interface.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts a markdown body to HTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Goldmark is a Renderer backed by the goldmark engine. It is stateless,
// so a single instance can be shared across requests without locking.
type Goldmark struct {
	engine goldmark.Markdown
}

// NewGoldmark constructs the renderer with GFM extensions and raw HTML
// passthrough. Posts are trusted authored content, so inline HTML is kept.
func NewGoldmark() *Goldmark {
	return &Goldmark{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts markdown to HTML.
func (g *Goldmark) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := g.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
