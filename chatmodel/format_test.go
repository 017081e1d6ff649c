package chatmodel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("hi"))
	assert.Equal(t, 2, EstimateTokens("hello!!"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
}

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "short", PreviewText("  short  "))

	long := strings.Repeat("x", 200)
	preview := PreviewText(long)
	assert.True(t, strings.HasSuffix(preview, "…"))
	assert.LessOrEqual(t, len(preview), previewMaxLen+len("…"))
}

func TestTruncateForDisplay_RuneSafe(t *testing.T) {
	// "héllo" — cutting inside the two-byte é must not split it.
	s := "héllo"
	out := TruncateForDisplay(s, 2)
	assert.Equal(t, "h", out)
}

func TestTruncateForDisplay_FlattensNewlines(t *testing.T) {
	assert.Equal(t, "a b", TruncateForDisplay("a\nb", 10))
}

func TestFormatToolPreview(t *testing.T) {
	assert.Equal(t, "fs.read: /etc/hosts",
		FormatToolPreview("fs.read", map[string]interface{}{"path": "/etc/hosts"}))
	assert.Equal(t, "shell.run: ls -la",
		FormatToolPreview("shell.run", map[string]interface{}{"command": "ls -la"}))
	assert.Equal(t, "fs.list", FormatToolPreview("fs.list", map[string]interface{}{"depth": 2}))
	assert.Equal(t, "fs.list", FormatToolPreview("fs.list", nil))
}
