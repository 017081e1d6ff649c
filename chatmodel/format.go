package chatmodel

import (
	"fmt"
	"strings"
)

const previewMaxLen = 80

// EstimateTokens gives a rough token count for locally appended messages
// before the engine reports a real figure. Four characters per token is the
// same heuristic the engine uses for budget accounting.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// PreviewText shortens a message for session-list display, appending an
// ellipsis when truncated. Truncation is rune-safe.
func PreviewText(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewMaxLen {
		return text
	}
	return TruncateForDisplay(text, previewMaxLen-3) + "…"
}

// TruncateForDisplay cuts a string to at most max bytes without splitting a
// rune. Newlines are flattened to spaces first.
func TruncateForDisplay(text string, max int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// FormatToolPreview creates a short display string for a tool invocation,
// pulling the most recognizable argument for common tools.
func FormatToolPreview(name string, args map[string]interface{}) string {
	if args == nil {
		return name
	}
	for _, key := range []string{"path", "file_path", "query", "command", "url"} {
		if v, ok := args[key].(string); ok && v != "" {
			return fmt.Sprintf("%s: %s", name, TruncateForDisplay(v, 50))
		}
	}
	return name
}
