package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"cowork/chatmodel"
)

// ConfirmOption is a single-keypress choice in the confirmation prompt.
type ConfirmOption struct {
	Key   string // single character key (e.g. "r", "a")
	Label string // human-readable label (e.g. "reject", "allow once")
}

// confirmOptions are the five resolution choices for a tool confirmation.
var confirmOptions = []ConfirmOption{
	{Key: "r", Label: "reject"},
	{Key: "a", Label: "allow once"},
	{Key: "s", Label: "allow for session"},
	{Key: "A", Label: "always allow"},
	{Key: "e", Label: "edit arguments"},
}

// ConfirmPrompt renders a pending tool confirmation and maps single
// keypresses to resolution choices.
type ConfirmPrompt struct {
	request chatmodel.ConfirmationRequest
}

// NewConfirmPrompt creates a prompt for a pending request.
func NewConfirmPrompt(request chatmodel.ConfirmationRequest) *ConfirmPrompt {
	return &ConfirmPrompt{request: request}
}

// Request returns the request being confirmed.
func (c *ConfirmPrompt) Request() chatmodel.ConfirmationRequest {
	return c.request
}

// ConfirmResult represents the outcome of a key press in the confirm prompt.
type ConfirmResult struct {
	// Matched is the option key that was pressed, or "" if unhandled.
	Matched string
	// Quit is true when Ctrl+C was pressed.
	Quit bool
}

// HandleKey processes a single key press and returns the result. There is no
// Esc cancel: a pending confirmation must be resolved explicitly.
func (c *ConfirmPrompt) HandleKey(msg tea.KeyMsg) ConfirmResult {
	if msg.String() == "ctrl+c" {
		return ConfirmResult{Quit: true}
	}
	keyStr := msg.String()
	for _, opt := range confirmOptions {
		if keyStr == opt.Key {
			return ConfirmResult{Matched: opt.Key}
		}
	}
	// Unrecognized key — ignore
	return ConfirmResult{}
}

// ResponseForKey maps a matched option key to the confirmation response.
// The "e" (edit) key has no direct response; the caller switches into
// argument-edit mode instead.
func ResponseForKey(key string) (chatmodel.ConfirmationResponse, bool) {
	switch key {
	case "r":
		return chatmodel.Rejected(), true
	case "a":
		return chatmodel.AllowOnce(), true
	case "s":
		return chatmodel.AllowForSession(), true
	case "A":
		return chatmodel.AllowAlways(), true
	}
	return chatmodel.ConfirmationResponse{}, false
}

// View renders the confirmation prompt with its keybinding hints.
func (c *ConfirmPrompt) View(s *Styles) string {
	var b strings.Builder

	header := "Tool " + c.request.ToolName + " wants to run"
	if c.request.IsDestructive {
		header = s.Error.Render("⚠ destructive: ") + header
	}
	b.WriteString(s.Title.Render(header))
	b.WriteString("\n")

	if c.request.Preview != "" {
		b.WriteString(c.request.Preview)
		b.WriteString("\n")
	}
	if c.request.UndoSupported {
		b.WriteString(s.Dim.Render("(can be undone)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	hints := make([]string, 0, len(confirmOptions))
	for _, opt := range confirmOptions {
		hints = append(hints, formatKeyHints(opt.Key, opt.Label))
	}
	b.WriteString(s.Dim.Render(strings.Join(hints, "  ")))

	return s.InputBox.Render(b.String())
}
