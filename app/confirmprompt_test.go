package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cowork/chatmodel"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmPrompt_MatchesOptionKeys(t *testing.T) {
	prompt := NewConfirmPrompt(chatmodel.ConfirmationRequest{RequestID: "rq1", ToolName: "fs.delete"})

	for _, key := range []string{"r", "a", "s", "A", "e"} {
		result := prompt.HandleKey(keyMsg(key))
		assert.Equal(t, key, result.Matched, "key %q", key)
	}
}

func TestConfirmPrompt_IgnoresUnknownKeys(t *testing.T) {
	prompt := NewConfirmPrompt(chatmodel.ConfirmationRequest{RequestID: "rq1"})

	result := prompt.HandleKey(keyMsg("z"))
	assert.Equal(t, "", result.Matched)
	assert.False(t, result.Quit)
}

func TestConfirmPrompt_CtrlCQuits(t *testing.T) {
	prompt := NewConfirmPrompt(chatmodel.ConfirmationRequest{RequestID: "rq1"})
	result := prompt.HandleKey(keyMsg("ctrl+c"))
	assert.True(t, result.Quit)
}

func TestResponseForKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"r", chatmodel.ConfirmRejected},
		{"a", chatmodel.ConfirmAllowOnce},
		{"s", chatmodel.ConfirmAllowForSession},
		{"A", chatmodel.ConfirmAllowAlways},
	}
	for _, tt := range tests {
		response, ok := ResponseForKey(tt.key)
		require.True(t, ok, "key %q", tt.key)
		assert.Equal(t, tt.want, response.Type)
	}

	// Edit has no direct response; the caller opens the editor instead.
	_, ok := ResponseForKey("e")
	assert.False(t, ok)
}

func TestConfirmPrompt_ViewShowsDestructiveWarning(t *testing.T) {
	styles := NewStyles(DarkPalette)
	prompt := NewConfirmPrompt(chatmodel.ConfirmationRequest{
		RequestID:     "rq1",
		ToolName:      "fs.delete",
		Preview:       "delete /tmp/x",
		IsDestructive: true,
	})

	view := prompt.View(styles)
	assert.Contains(t, view, "fs.delete")
	assert.Contains(t, view, "delete /tmp/x")
	assert.Contains(t, view, "destructive")
}
