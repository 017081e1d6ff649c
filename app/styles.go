package app

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ColorPalette holds the semantic color values for a theme.
// Each field is a string accepted by lipgloss (ANSI 256 number or hex).
type ColorPalette struct {
	Name string

	Accent   string // titles, user prefix
	Dim      string // muted/secondary text
	Border   string // input box border
	Error    string // error banner
	Pending  string // pending tool calls
	Running  string // executing tool calls
	Done     string // completed tool calls
	BudgetOK string // budget gauge, normal
	BudgetHi string // budget gauge, near limit

	// Glamour markdown style: "dark", "light", or "auto"
	GlamourStyle string
}

// DarkPalette is the default theme.
var DarkPalette = ColorPalette{
	Name:         "dark",
	Accent:       "39",
	Dim:          "243",
	Border:       "238",
	Error:        "203",
	Pending:      "179",
	Running:      "75",
	Done:         "114",
	BudgetOK:     "114",
	BudgetHi:     "203",
	GlamourStyle: "dark",
}

// LightPalette is the light theme.
var LightPalette = ColorPalette{
	Name:         "light",
	Accent:       "26",
	Dim:          "245",
	Border:       "250",
	Error:        "160",
	Pending:      "130",
	Running:      "26",
	Done:         "28",
	BudgetOK:     "28",
	BudgetHi:     "160",
	GlamourStyle: "light",
}

// PaletteForTheme resolves a theme name to a palette, defaulting to dark.
func PaletteForTheme(name string) ColorPalette {
	if name == "light" {
		return LightPalette
	}
	return DarkPalette
}

// Styles holds pre-computed lipgloss styles derived from a ColorPalette.
type Styles struct {
	Title    lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
	Pending  lipgloss.Style
	Running  lipgloss.Style
	Done     lipgloss.Style
	BudgetOK lipgloss.Style
	BudgetHi lipgloss.Style
	InputBox lipgloss.Style

	// The palette that produced these styles, for reference.
	Palette ColorPalette
}

// NewStyles builds all styles from a ColorPalette.
func NewStyles(p ColorPalette) *Styles {
	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Accent)),

		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Dim)),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Error)),

		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Pending)),

		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Running)),

		Done: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Done)),

		BudgetOK: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.BudgetOK)),

		BudgetHi: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.BudgetHi)),

		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
	}
}

// formatKeyHints renders a "[key] label" hint fragment.
func formatKeyHints(key, label string) string {
	return "[" + key + "] " + label
}

// truncateVisual truncates a string to the given display width, accounting
// for wide runes.
func truncateVisual(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}
