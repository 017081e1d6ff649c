package chatmodel

import (
	"strings"
	"sync"
)

// StreamBuffer accumulates token fragments for the in-flight assistant turn.
// It is ephemeral: cleared on turn completion, on an explicit stream-clear
// signal (the engine may abandon speculative prose in favour of tool calls),
// and on session switch. Never part of the persisted message log.
type StreamBuffer struct {
	text strings.Builder
	mu   sync.RWMutex
}

// NewStreamBuffer creates an empty buffer.
func NewStreamBuffer() *StreamBuffer {
	return &StreamBuffer{}
}

// Append adds a token fragment. There is no upper bound on fragment count
// per turn.
func (b *StreamBuffer) Append(delta string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text.WriteString(delta)
}

// Clear resets the buffer to empty.
func (b *StreamBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text.Reset()
}

// String returns the accumulated text so far.
func (b *StreamBuffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text.String()
}

// Len returns the accumulated byte length.
func (b *StreamBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text.Len()
}
