package chatmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageLog_AppendAssignsLocalIDs(t *testing.T) {
	log := NewMessageLog()

	first := log.Append(Message{Role: RoleUser, Content: "hello"})
	second := log.Append(Message{Role: RoleAssistant, Content: "hi"})

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 2, log.Len())
}

func TestMessageLog_AppendKeepsEngineIDs(t *testing.T) {
	log := NewMessageLog()

	msg := log.Append(Message{ID: 42, Role: RoleAssistant})
	assert.Equal(t, int64(42), msg.ID)

	// The local counter moves past the engine-assigned id.
	next := log.Append(Message{Role: RoleUser})
	assert.Equal(t, int64(43), next.ID)
}

func TestMessageLog_ReplaceReseedsCounter(t *testing.T) {
	log := NewMessageLog()
	log.Append(Message{Role: RoleUser, Content: "old"})

	log.Replace([]Message{
		{ID: 10, Role: RoleUser, Content: "a"},
		{ID: 11, Role: RoleAssistant, Content: "b"},
	})

	require.Equal(t, 2, log.Len())
	appended := log.Append(Message{Role: RoleUser, Content: "c"})
	assert.Equal(t, int64(12), appended.ID)
}

func TestMessageLog_SnapshotIsDeepCopy(t *testing.T) {
	log := NewMessageLog()
	log.Append(Message{
		Role: RoleAssistant,
		ToolCalls: []ToolCall{
			{ID: "c1", Name: "fs.read", Arguments: map[string]interface{}{"path": "/a"}},
		},
	})

	snap := log.Snapshot()
	snap[0].ToolCalls[0].Arguments["path"] = "/mutated"

	fresh := log.Snapshot()
	assert.Equal(t, "/a", fresh[0].ToolCalls[0].Arguments["path"])
}

func TestMessageLog_Clear(t *testing.T) {
	log := NewMessageLog()
	log.Append(Message{ID: 5, Role: RoleUser})
	log.Clear()

	assert.Equal(t, 0, log.Len())
	appended := log.Append(Message{Role: RoleUser})
	assert.Equal(t, int64(1), appended.ID)
}
