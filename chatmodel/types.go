// Package chatmodel provides the core data model for cowork conversations.
// The engine emits wire-format messages and events; chatmodel holds the
// canonical Go representations plus the append-only MessageLog, the
// transient StreamBuffer, and the derived tool trace. The write API on the
// log is called only by the chat.Store; everything else reads snapshots.
package chatmodel

import "time"

// --- Roles ------------------------------------------------------------------

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// --- Messages ---------------------------------------------------------------

// ToolCall is a single tool invocation declared by an assistant message.
// Immutable once emitted by the engine.
type ToolCall struct {
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
}

// ToolResult is the outcome payload carried by a tool-role message.
type ToolResult struct {
	Result     interface{} `json:"result,omitempty"`
	ToolCallID string      `json:"toolCallId,omitempty"`
	Error      string      `json:"error,omitempty"`
	DurationMs int64       `json:"durationMs,omitempty"`
	Success    bool        `json:"success"`
}

// Message is one ordered unit of conversation history. Field names mirror
// the engine's wire format (camelCase, as produced by load_session).
type Message struct {
	Timestamp  time.Time   `json:"timestamp"`
	ToolResult *ToolResult `json:"toolResult,omitempty"`
	SessionID  string      `json:"sessionId"`
	Content    string      `json:"content,omitempty"`
	ToolCallID string      `json:"toolCallId,omitempty"`
	Role       Role        `json:"role"`
	ToolCalls  []ToolCall  `json:"toolCalls,omitempty"`
	ID         int64       `json:"id"`
	TokenCount int         `json:"tokenCount,omitempty"`
	InProgress bool        `json:"inProgress,omitempty"`
}

// DeepCopyMessage returns a deep copy of a Message, cloning mutable fields
// (tool call argument maps, result payloads) so the caller's copy is
// independent of the log.
func DeepCopyMessage(msg Message) Message {
	if msg.ToolCalls != nil {
		calls := make([]ToolCall, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			calls[i] = tc
			if tc.Arguments != nil {
				args := make(map[string]interface{}, len(tc.Arguments))
				for k, v := range tc.Arguments {
					args[k] = deepCopyValue(v)
				}
				calls[i].Arguments = args
			}
		}
		msg.ToolCalls = calls
	}
	if msg.ToolResult != nil {
		result := *msg.ToolResult
		result.Result = deepCopyValue(result.Result)
		msg.ToolResult = &result
	}
	return msg
}

// deepCopyValue clones the mutable container types that JSON unmarshalling
// produces (map[string]interface{}, []interface{}). Strings, numbers, bools,
// and nil are immutable and returned as-is.
func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		cp := make(map[string]interface{}, len(val))
		for k, v := range val {
			cp[k] = deepCopyValue(v)
		}
		return cp
	case []interface{}:
		cp := make([]interface{}, len(val))
		for i, v := range val {
			cp[i] = deepCopyValue(v)
		}
		return cp
	default:
		return v
	}
}

// --- Sessions ---------------------------------------------------------------

// SessionListItem is the summary the engine returns for the session list.
type SessionListItem struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity"`
	Preview      string `json:"preview,omitempty"`
	MessageCount int    `json:"message_count"`
}

// --- Confirmation handshake -------------------------------------------------

// ConfirmationRequest asks the user to approve a tool before it executes.
// At most one may be outstanding at a time.
type ConfirmationRequest struct {
	Arguments            map[string]interface{} `json:"arguments,omitempty"`
	RequestID            string                 `json:"request_id"`
	ToolName             string                 `json:"tool_name"`
	Preview              string                 `json:"preview"`
	ConfirmationRequired bool                   `json:"confirmation_required"`
	UndoSupported        bool                   `json:"undo_supported"`
	IsDestructive        bool                   `json:"is_destructive"`
}

// Confirmation response variants. Serialized as a tagged union matching the
// engine's enum encoding.
const (
	ConfirmRejected           = "rejected"
	ConfirmAllowOnce          = "confirmed"
	ConfirmAllowForSession    = "confirmedForSession"
	ConfirmAllowAlways        = "confirmedAlways"
	ConfirmEditedAndConfirmed = "edited"
)

// ConfirmationResponse is the user's decision on a ConfirmationRequest.
// NewArguments is set only for the edited variant.
type ConfirmationResponse struct {
	NewArguments map[string]interface{} `json:"new_arguments,omitempty"`
	Type         string                 `json:"type"`
}

// Rejected returns a rejection response.
func Rejected() ConfirmationResponse {
	return ConfirmationResponse{Type: ConfirmRejected}
}

// AllowOnce returns an allow-once response.
func AllowOnce() ConfirmationResponse {
	return ConfirmationResponse{Type: ConfirmAllowOnce}
}

// AllowForSession returns an allow-for-the-rest-of-this-session response.
func AllowForSession() ConfirmationResponse {
	return ConfirmationResponse{Type: ConfirmAllowForSession}
}

// AllowAlways returns a never-ask-again response.
func AllowAlways() ConfirmationResponse {
	return ConfirmationResponse{Type: ConfirmAllowAlways}
}

// EditedAndConfirmed returns a response carrying user-modified arguments.
func EditedAndConfirmed(args map[string]interface{}) ConfirmationResponse {
	return ConfirmationResponse{Type: ConfirmEditedAndConfirmed, NewArguments: args}
}

// --- Context budget ---------------------------------------------------------

// ContextBudget is a token-budget snapshot for the active session.
// Replaced wholesale on each update; never merged.
type ContextBudget struct {
	Total               int `json:"total"`
	SystemPrompt        int `json:"system_prompt"`
	ToolDefinitions     int `json:"tool_definitions"`
	ConversationHistory int `json:"conversation_history"`
	OutputReservation   int `json:"output_reservation"`
	Remaining           int `json:"remaining"`
}

// UsedFraction returns the used portion of the budget in [0, 1].
func (b ContextBudget) UsedFraction() float64 {
	if b.Total <= 0 {
		return 0
	}
	used := b.Total - b.Remaining
	if used < 0 {
		used = 0
	}
	return float64(used) / float64(b.Total)
}
