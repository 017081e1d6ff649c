package app

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders assistant prose for the transcript. It is rebuilt
// on resize; callers fall back to plain text when rendering fails.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	palette  ColorPalette
	width    int
}

// NewMarkdownRenderer builds a renderer word-wrapped to width, styled by the
// palette's glamour style.
func NewMarkdownRenderer(width int, palette ColorPalette) (*MarkdownRenderer, error) {
	r, err := newTermRenderer(width, palette)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{renderer: r, palette: palette, width: width}, nil
}

// Render renders markdown for terminal display, trimming the trailing blank
// lines glamour appends so transcript spacing stays even.
func (m *MarkdownRenderer) Render(text string) (string, error) {
	out, err := m.renderer.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// SetWidth rebuilds the renderer for a new wrap width.
func (m *MarkdownRenderer) SetWidth(width int) error {
	if width == m.width {
		return nil
	}
	r, err := newTermRenderer(width, m.palette)
	if err != nil {
		return err
	}
	m.renderer = r
	m.width = width
	return nil
}

func newTermRenderer(width int, palette ColorPalette) (*glamour.TermRenderer, error) {
	style := glamour.WithAutoStyle()
	switch palette.GlamourStyle {
	case "dark", "light":
		style = glamour.WithStandardStyle(palette.GlamourStyle)
	}
	return glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
}
