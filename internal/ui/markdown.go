package ui

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders assistant markdown for terminal display.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour's terminal styles. The
// underlying TermRenderer is rebuilt when the wrap width changes.
type GlamourRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewGlamourRenderer creates a renderer with auto-detected styling.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{}
}

func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	if g.renderer == nil || g.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		g.renderer = renderer
		g.width = width
	}
	return g.renderer.Render(content)
}

// PlainRenderer passes content through unstyled. Used when stdout is not
// a terminal and in tests.
type PlainRenderer struct{}

func (PlainRenderer) Render(content string, width int) (string, error) {
	return content, nil
}
