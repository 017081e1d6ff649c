package agentrpc

import "cowork/chatmodel"

// EventType discriminates between event kinds.
type EventType int

const (
	// EventTypeStreamToken fires for streaming text fragments.
	EventTypeStreamToken EventType = iota

	// EventTypeStreamClear fires when speculative streaming text must be discarded.
	EventTypeStreamClear

	// EventTypeStreamComplete fires with the final assistant message of a turn.
	EventTypeStreamComplete

	// EventTypeToolCall fires with an assistant message declaring tool calls.
	EventTypeToolCall

	// EventTypeToolResult fires with a tool-role result message.
	EventTypeToolResult

	// EventTypeConfirmationRequest fires when a tool needs user approval.
	EventTypeConfirmationRequest

	// EventTypeContextBudget fires with a token-budget snapshot.
	EventTypeContextBudget

	// EventTypeAgentError fires when the engine cannot continue the turn.
	EventTypeAgentError

	// EventTypeError fires for client-side failures (protocol, process).
	EventTypeError
)

// Event is the interface for all engine events. Every event carries the id
// of the session it originated from so consumers can discard stragglers
// from a superseded session.
type Event interface {
	Type() EventType
	EventSessionID() string
}

// StreamTokenEvent is a streaming text fragment for the in-flight turn.
type StreamTokenEvent struct {
	SessionID string
	Token     string
}

func (e StreamTokenEvent) Type() EventType        { return EventTypeStreamToken }
func (e StreamTokenEvent) EventSessionID() string { return e.SessionID }

// StreamClearEvent discards the speculative streaming text accumulated so
// far, without touching committed history.
type StreamClearEvent struct {
	SessionID string
}

func (e StreamClearEvent) Type() EventType        { return EventTypeStreamClear }
func (e StreamClearEvent) EventSessionID() string { return e.SessionID }

// StreamCompleteEvent carries the final assistant message of a turn.
type StreamCompleteEvent struct {
	SessionID string
	Message   chatmodel.Message
}

func (e StreamCompleteEvent) Type() EventType        { return EventTypeStreamComplete }
func (e StreamCompleteEvent) EventSessionID() string { return e.SessionID }

// ToolCallEvent carries a fully-formed assistant message declaring one or
// more tool calls.
type ToolCallEvent struct {
	SessionID string
	Message   chatmodel.Message
}

func (e ToolCallEvent) Type() EventType        { return EventTypeToolCall }
func (e ToolCallEvent) EventSessionID() string { return e.SessionID }

// ToolResultEvent carries a tool-role message with the result payload for a
// previously declared call.
type ToolResultEvent struct {
	SessionID string
	Message   chatmodel.Message
}

func (e ToolResultEvent) Type() EventType        { return EventTypeToolResult }
func (e ToolResultEvent) EventSessionID() string { return e.SessionID }

// ConfirmationRequestEvent asks the user to approve a tool execution.
type ConfirmationRequestEvent struct {
	SessionID string
	Request   chatmodel.ConfirmationRequest
}

func (e ConfirmationRequestEvent) Type() EventType        { return EventTypeConfirmationRequest }
func (e ConfirmationRequestEvent) EventSessionID() string { return e.SessionID }

// ContextBudgetEvent carries a token-budget snapshot pushed mid-turn.
type ContextBudgetEvent struct {
	SessionID string
	Budget    chatmodel.ContextBudget
}

func (e ContextBudgetEvent) Type() EventType        { return EventTypeContextBudget }
func (e ContextBudgetEvent) EventSessionID() string { return e.SessionID }

// AgentErrorEvent signals the engine cannot continue the current turn.
type AgentErrorEvent struct {
	SessionID string
	Err       string
}

func (e AgentErrorEvent) Type() EventType        { return EventTypeAgentError }
func (e AgentErrorEvent) EventSessionID() string { return e.SessionID }

// ErrorEvent signals a client-side failure such as a malformed line from the
// engine. Context describes where the failure occurred.
type ErrorEvent struct {
	Error     error
	SessionID string
	Context   string
}

func (e ErrorEvent) Type() EventType        { return EventTypeError }
func (e ErrorEvent) EventSessionID() string { return e.SessionID }
