package agentrpc

import "cowork/chatmodel"

// --- Request/response payloads ----------------------------------------------

// StartSessionRequest asks the engine to resume the most recent session or,
// with ForceNew, to create a fresh one.
type StartSessionRequest struct {
	ForceNew bool `json:"forceNew"`
}

// StartSessionResponse identifies the now-active backend session.
type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
	Resumed   bool   `json:"resumed"`
}

// LoadSessionRequest fetches a session's full message history.
type LoadSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// DeleteSessionRequest removes a session from the engine's listing.
type DeleteSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// SendMessageRequest submits a user message to start a turn.
type SendMessageRequest struct {
	SessionID        string `json:"sessionId"`
	Content          string `json:"content"`
	WorkingDirectory string `json:"workingDirectory,omitempty"`
}

// RespondToConfirmationRequest forwards the user's decision on a pending
// confirmation request.
type RespondToConfirmationRequest struct {
	RequestID string                         `json:"requestId"`
	Response  chatmodel.ConfirmationResponse `json:"response"`
}

// GetContextBudgetRequest fetches the current budget snapshot for a session.
type GetContextBudgetRequest struct {
	SessionID string `json:"sessionId"`
}

// CleanupEmptySessionsResponse reports how many orphan sessions were removed.
type CleanupEmptySessionsResponse struct {
	Cleaned int `json:"cleaned"`
}

// --- Notification payloads ---------------------------------------------------

// streamTokenParams is the wire payload of a stream-token notification.
type streamTokenParams struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// sessionScopedParams is the wire payload of notifications that carry only a
// session id (stream-clear).
type sessionScopedParams struct {
	SessionID string `json:"sessionId"`
}

// messageParams is the wire payload of notifications that carry a full
// message (stream-complete, tool-call, tool-result).
type messageParams struct {
	SessionID string            `json:"sessionId"`
	Message   chatmodel.Message `json:"message"`
}

// confirmationParams is the wire payload of a confirmation-request
// notification.
type confirmationParams struct {
	SessionID string                        `json:"sessionId"`
	Request   chatmodel.ConfirmationRequest `json:"request"`
}

// budgetParams is the wire payload of a context-budget notification.
type budgetParams struct {
	SessionID string                  `json:"sessionId"`
	Budget    chatmodel.ContextBudget `json:"budget"`
}

// agentErrorParams is the wire payload of an agent-error notification.
type agentErrorParams struct {
	SessionID string `json:"sessionId"`
	Error     string `json:"error"`
}
