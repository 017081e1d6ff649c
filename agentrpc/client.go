package agentrpc

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"

	"cowork/chatmodel"
)

// Client manages the engine subprocess and provides a high-level API for
// session management, messaging, and the confirmation handshake. Engine
// notifications are surfaced as typed events on the Events channel.
type Client struct {
	pending  map[int64]chan *rpcResult
	process  *processManager
	state    *clientStateManager
	idGen    *idGenerator
	events   chan Event
	done     chan struct{}
	config   ClientConfig
	mu       sync.RWMutex
	readWg   sync.WaitGroup // tracks readLoop goroutine
	started  bool
	stopping bool
}

// rpcResult holds the result of a JSON-RPC request.
type rpcResult struct {
	Response *JSONRPCResponse
	Error    error
}

// NewClient creates a new engine client with options.
func NewClient(opts ...ClientOption) *Client {
	config := defaultClientConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Client{
		config:  config,
		state:   newClientStateManager(),
		idGen:   &idGenerator{},
		pending: make(map[int64]chan *rpcResult),
		events:  make(chan Event, config.EventBufferSize),
		done:    make(chan struct{}),
	}
}

// Start spawns the engine process and begins reading its output.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}

	if err := c.state.SetStarting(); err != nil {
		return err
	}

	c.process = newProcessManager(c.config)
	if err := c.process.Start(ctx); err != nil {
		return err
	}

	if c.config.StderrHandler != nil {
		c.process.startStderrReader(c.config.StderrHandler)
	}

	c.readWg.Add(1)
	go c.readLoop(ctx)

	c.started = true
	_ = c.state.SetReady()

	return nil
}

// Stop gracefully shuts down the client and the engine subprocess.
func (c *Client) Stop() error {
	c.mu.Lock()
	if !c.started || c.stopping {
		c.mu.Unlock()
		return nil
	}
	c.stopping = true
	c.mu.Unlock()

	close(c.done)

	if c.process != nil {
		c.process.Stop()
	}

	c.state.SetClosed()

	// Wait for readLoop to exit before closing events channel.
	// This prevents panic from sending on closed channel.
	c.readWg.Wait()

	close(c.events)

	return nil
}

// Events returns a read-only channel for receiving engine events.
func (c *Client) Events() <-chan Event {
	return c.events
}

// State returns the current client state.
func (c *Client) State() ClientState {
	return c.state.Current()
}

// --- Engine RPC methods ------------------------------------------------------

// StartSession resumes the most recent session or creates a fresh one.
func (c *Client) StartSession(ctx context.Context, forceNew bool) (*StartSessionResponse, error) {
	resp, err := c.sendRequestAndWait(ctx, MethodStartSession, StartSessionRequest{ForceNew: forceNew})
	if err != nil {
		return nil, err
	}

	var result StartSessionResponse
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, &ProtocolError{Message: "failed to parse start_session response", Cause: err}
	}
	return &result, nil
}

// LoadSession fetches the full message history of a session.
func (c *Client) LoadSession(ctx context.Context, sessionID string) ([]chatmodel.Message, error) {
	resp, err := c.sendRequestAndWait(ctx, MethodLoadSession, LoadSessionRequest{SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	var messages []chatmodel.Message
	if err := json.Unmarshal(resp.Result, &messages); err != nil {
		return nil, &ProtocolError{Message: "failed to parse load_session response", Cause: err}
	}
	return messages, nil
}

// ListSessions returns summaries of all persisted sessions.
func (c *Client) ListSessions(ctx context.Context) ([]chatmodel.SessionListItem, error) {
	resp, err := c.sendRequestAndWait(ctx, MethodListSessions, struct{}{})
	if err != nil {
		return nil, err
	}

	var sessions []chatmodel.SessionListItem
	if err := json.Unmarshal(resp.Result, &sessions); err != nil {
		return nil, &ProtocolError{Message: "failed to parse list_sessions response", Cause: err}
	}
	return sessions, nil
}

// DeleteSession removes a session from the engine's storage.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := c.sendRequestAndWait(ctx, MethodDeleteSession, DeleteSessionRequest{SessionID: sessionID})
	return err
}

// CleanupEmptySessions removes sessions with no messages and reports how
// many were deleted.
func (c *Client) CleanupEmptySessions(ctx context.Context) (int, error) {
	resp, err := c.sendRequestAndWait(ctx, MethodCleanupEmptySessions, struct{}{})
	if err != nil {
		return 0, err
	}

	var result CleanupEmptySessionsResponse
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return 0, &ProtocolError{Message: "failed to parse cleanup_empty_sessions response", Cause: err}
	}
	return result.Cleaned, nil
}

// SendMessage submits a user message to start a turn. The resulting
// assistant output arrives as events.
func (c *Client) SendMessage(ctx context.Context, sessionID, content, workingDirectory string) error {
	_, err := c.sendRequestAndWait(ctx, MethodSendMessage, SendMessageRequest{
		SessionID:        sessionID,
		Content:          content,
		WorkingDirectory: workingDirectory,
	})
	return err
}

// RespondToConfirmation forwards the user's decision on a pending
// confirmation request.
func (c *Client) RespondToConfirmation(ctx context.Context, requestID string, response chatmodel.ConfirmationResponse) error {
	_, err := c.sendRequestAndWait(ctx, MethodRespondToConfirmation, RespondToConfirmationRequest{
		RequestID: requestID,
		Response:  response,
	})
	return err
}

// GetContextBudget fetches the current token-budget snapshot for a session.
func (c *Client) GetContextBudget(ctx context.Context, sessionID string) (*chatmodel.ContextBudget, error) {
	resp, err := c.sendRequestAndWait(ctx, MethodGetContextBudget, GetContextBudgetRequest{SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	var budget chatmodel.ContextBudget
	if err := json.Unmarshal(resp.Result, &budget); err != nil {
		return nil, &ProtocolError{Message: "failed to parse get_context_budget response", Cause: err}
	}
	return &budget, nil
}

// --- Message handling --------------------------------------------------------

// readLoop reads and processes messages from the engine subprocess.
func (c *Client) readLoop(ctx context.Context) {
	defer c.readWg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
			line, err := c.process.ReadLine()
			if err != nil {
				if err == io.EOF {
					return
				}
				if !c.stopping {
					c.emitError("", err, "read_line")
				}
				return
			}

			c.handleMessage(line)
		}
	}
}

// handleMessage processes a single JSON-RPC message from the engine.
func (c *Client) handleMessage(line []byte) {
	// Peek at the message to determine its type
	var base struct {
		ID     *int64 `json:"id,omitempty"`
		Method string `json:"method,omitempty"`
	}
	if err := json.Unmarshal(line, &base); err != nil {
		c.emitError("", &ProtocolError{Message: "failed to parse message", Line: string(line), Cause: err}, "parse_message")
		return
	}

	if base.Method != "" && base.ID != nil {
		// Engine-to-client request: has both method and id. The engine
		// protocol defines none, so reject it.
		c.sendErrorResponse(*base.ID, ErrCodeMethodNotFound, "unknown method: "+base.Method)
	} else if base.ID != nil {
		// Response to our request: has id but no method
		c.handleResponse(line, *base.ID)
	} else if base.Method != "" {
		// Notification: has method but no id
		c.handleNotification(line, base.Method)
	}
}

// handleResponse routes a JSON-RPC response to its pending waiter.
func (c *Client) handleResponse(line []byte, id int64) {
	var resp JSONRPCResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		c.emitError("", &ProtocolError{Message: "failed to parse response", Line: string(line), Cause: err}, "parse_response")
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if ok {
		result := &rpcResult{Response: &resp}
		if resp.Error != nil {
			result.Error = &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
		}
		select {
		case ch <- result:
		default:
		}
	}
}

// handleNotification decodes an engine notification into a typed event and
// emits it. Unknown methods are logged and dropped.
func (c *Client) handleNotification(line []byte, method string) {
	var notif JSONRPCNotification
	if err := json.Unmarshal(line, &notif); err != nil {
		c.emitError("", &ProtocolError{Message: "failed to parse notification", Line: string(line), Cause: err}, "parse_notification")
		return
	}

	event, err := decodeEvent(method, notif.Params)
	if err != nil {
		c.emitError("", &ProtocolError{Message: "failed to decode " + method + " event", Cause: err}, "decode_event")
		return
	}
	if event == nil {
		log.Printf("WARNING: dropping unknown engine notification %q", method)
		return
	}

	c.emit(event)
}

// decodeEvent maps a notification method and params to a typed event.
// Returns (nil, nil) for unknown methods.
func decodeEvent(method string, params json.RawMessage) (Event, error) {
	switch method {
	case EventMethodStreamToken:
		var p streamTokenParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return StreamTokenEvent{SessionID: p.SessionID, Token: p.Token}, nil

	case EventMethodStreamClear:
		var p sessionScopedParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return StreamClearEvent{SessionID: p.SessionID}, nil

	case EventMethodStreamComplete:
		var p messageParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return StreamCompleteEvent{SessionID: p.SessionID, Message: p.Message}, nil

	case EventMethodToolCall:
		var p messageParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return ToolCallEvent{SessionID: p.SessionID, Message: p.Message}, nil

	case EventMethodToolResult:
		var p messageParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return ToolResultEvent{SessionID: p.SessionID, Message: p.Message}, nil

	case EventMethodConfirmationRequest:
		var p confirmationParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return ConfirmationRequestEvent{SessionID: p.SessionID, Request: p.Request}, nil

	case EventMethodContextBudget:
		var p budgetParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return ContextBudgetEvent{SessionID: p.SessionID, Budget: p.Budget}, nil

	case EventMethodAgentError:
		var p agentErrorParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return AgentErrorEvent{SessionID: p.SessionID, Err: p.Error}, nil
	}

	return nil, nil
}

// sendErrorResponse sends a JSON-RPC error response to the engine.
func (c *Client) sendErrorResponse(id int64, code int, message string) {
	if c.process == nil {
		return
	}
	resp := newErrorResponse(id, code, message)
	c.process.WriteJSON(resp)
}

// sendRequestAndWait sends a JSON-RPC request and waits for the response.
func (c *Client) sendRequestAndWait(ctx context.Context, method string, params interface{}) (*JSONRPCResponse, error) {
	c.mu.RLock()
	if !c.started {
		c.mu.RUnlock()
		return nil, ErrNotStarted
	}
	if c.stopping {
		c.mu.RUnlock()
		return nil, ErrStopping
	}
	c.mu.RUnlock()

	id := c.idGen.Next()

	req, err := newRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	// Create response channel
	ch := make(chan *rpcResult, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	// Send request
	if err := c.process.WriteJSON(req); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}

	// Wait for response
	select {
	case result := <-ch:
		if result.Error != nil {
			return nil, result.Error
		}
		return result.Response, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// emit sends an event to the events channel.
func (c *Client) emit(event Event) {
	select {
	case c.events <- event:
	default:
		// Channel full, drop event
	}
}

// emitError emits a client-side error event.
func (c *Client) emitError(sessionID string, err error, context string) {
	c.emit(ErrorEvent{
		SessionID: sessionID,
		Error:     err,
		Context:   context,
	})
}
