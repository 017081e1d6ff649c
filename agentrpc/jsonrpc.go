package agentrpc

import (
	"encoding/json"
	"sync/atomic"
)

// Engine request/response methods (client sends, engine responds).
const (
	MethodCleanupEmptySessions  = "cleanup_empty_sessions"
	MethodStartSession          = "start_session"
	MethodLoadSession           = "load_session"
	MethodListSessions          = "list_sessions"
	MethodDeleteSession         = "delete_session"
	MethodSendMessage           = "send_message"
	MethodRespondToConfirmation = "respond_to_confirmation"
	MethodGetContextBudget      = "get_context_budget"
)

// Engine-sent notification methods, one per event channel.
const (
	EventMethodStreamToken         = "stream-token"
	EventMethodStreamClear         = "stream-clear"
	EventMethodStreamComplete      = "stream-complete"
	EventMethodToolCall            = "tool-call"
	EventMethodToolResult          = "tool-result"
	EventMethodConfirmationRequest = "confirmation-request"
	EventMethodContextBudget       = "context-budget"
	EventMethodAgentError          = "agent-error"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      int64           `json:"id"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	Error   *JSONRPCError   `json:"error,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	ID      int64           `json:"id"`
}

// JSONRPCNotification represents a JSON-RPC 2.0 notification (no id).
type JSONRPCNotification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error.
type JSONRPCError struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// Standard JSON-RPC error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// idGenerator generates unique request IDs.
type idGenerator struct {
	next atomic.Int64
}

func (g *idGenerator) Next() int64 {
	return g.next.Add(1)
}

// newRequest creates a new JSON-RPC 2.0 request.
func newRequest(id int64, method string, params interface{}) (*JSONRPCRequest, error) {
	paramsData, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}, nil
}

// newErrorResponse creates a new JSON-RPC 2.0 error response.
func newErrorResponse(id int64, code int, message string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
		},
	}
}
