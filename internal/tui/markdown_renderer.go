package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWrap keeps glamour from wrapping into unreadable slivers.
const minMarkdownWrap = 24

// markdownRenderer renders story bodies and recreates the glamour renderer only when the wrap width changes.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// newMarkdownRenderer constructs a renderer for one glamour standard style.
func newMarkdownRenderer(style string) *markdownRenderer {
	style = strings.TrimSpace(style)
	if style == "" {
		style = "dark"
	}
	return &markdownRenderer{style: style}
}

// render converts markdown into styled terminal text wrapped at width.
// Renderer failures fall back to the raw markdown.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, minMarkdownWrap)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}
