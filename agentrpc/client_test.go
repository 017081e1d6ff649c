package agentrpc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cowork/chatmodel"
)

func newTestClient() *Client {
	return NewClient(WithEventBufferSize(16))
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHandleMessage_StreamTokenNotification(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"jsonrpc":"2.0","method":"stream-token","params":{"sessionId":"s1","token":"Hi"}}`))

	ev := receiveEvent(t, c)
	token, ok := ev.(StreamTokenEvent)
	require.True(t, ok)
	assert.Equal(t, "s1", token.SessionID)
	assert.Equal(t, "Hi", token.Token)
	assert.Equal(t, "s1", token.EventSessionID())
}

func TestHandleMessage_StreamCompleteNotification(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"jsonrpc":"2.0","method":"stream-complete","params":{"sessionId":"s1","message":{"id":2,"sessionId":"s1","role":"assistant","content":"Hi there","timestamp":"2026-08-30T10:00:00Z"}}}`))

	ev := receiveEvent(t, c)
	complete, ok := ev.(StreamCompleteEvent)
	require.True(t, ok)
	assert.Equal(t, chatmodel.RoleAssistant, complete.Message.Role)
	assert.Equal(t, "Hi there", complete.Message.Content)
	assert.Equal(t, int64(2), complete.Message.ID)
}

func TestHandleMessage_ToolCallNotification(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"jsonrpc":"2.0","method":"tool-call","params":{"sessionId":"s1","message":{"role":"assistant","toolCalls":[{"id":"c1","name":"fs.list","arguments":{"path":"/tmp"}}],"timestamp":"2026-08-30T10:00:00Z"}}}`))

	ev := receiveEvent(t, c)
	call, ok := ev.(ToolCallEvent)
	require.True(t, ok)
	require.Len(t, call.Message.ToolCalls, 1)
	assert.Equal(t, "c1", call.Message.ToolCalls[0].ID)
	assert.Equal(t, "fs.list", call.Message.ToolCalls[0].Name)
	assert.Equal(t, "/tmp", call.Message.ToolCalls[0].Arguments["path"])
}

func TestHandleMessage_ConfirmationRequestNotification(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"jsonrpc":"2.0","method":"confirmation-request","params":{"sessionId":"s1","request":{"request_id":"rq1","tool_name":"fs.delete","preview":"delete /tmp/x","is_destructive":true,"undo_supported":false,"confirmation_required":true}}}`))

	ev := receiveEvent(t, c)
	confirm, ok := ev.(ConfirmationRequestEvent)
	require.True(t, ok)
	assert.Equal(t, "rq1", confirm.Request.RequestID)
	assert.Equal(t, "fs.delete", confirm.Request.ToolName)
	assert.True(t, confirm.Request.IsDestructive)
}

func TestHandleMessage_ContextBudgetNotification(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"jsonrpc":"2.0","method":"context-budget","params":{"sessionId":"s1","budget":{"total":200000,"system_prompt":1500,"tool_definitions":3000,"conversation_history":12000,"output_reservation":8000,"remaining":175500}}}`))

	ev := receiveEvent(t, c)
	budget, ok := ev.(ContextBudgetEvent)
	require.True(t, ok)
	assert.Equal(t, 200000, budget.Budget.Total)
	assert.Equal(t, 175500, budget.Budget.Remaining)
}

func TestHandleMessage_AgentErrorNotification(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"jsonrpc":"2.0","method":"agent-error","params":{"sessionId":"s1","error":"model overloaded"}}`))

	ev := receiveEvent(t, c)
	agentErr, ok := ev.(AgentErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "model overloaded", agentErr.Err)
}

func TestHandleMessage_UnknownNotificationDropped(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"jsonrpc":"2.0","method":"made-up-channel","params":{}}`))

	select {
	case ev := <-c.Events():
		t.Fatalf("expected no event, got %T", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleMessage_MalformedLineEmitsError(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{not json`))

	ev := receiveEvent(t, c)
	errEv, ok := ev.(ErrorEvent)
	require.True(t, ok)
	assert.Error(t, errEv.Error)
	var protoErr *ProtocolError
	assert.ErrorAs(t, errEv.Error, &protoErr)
}

func TestHandleMessage_ResponseRoutedToPendingWaiter(t *testing.T) {
	c := newTestClient()

	ch := make(chan *rpcResult, 1)
	c.mu.Lock()
	c.pending[5] = ch
	c.mu.Unlock()

	c.handleMessage([]byte(`{"jsonrpc":"2.0","id":5,"result":{"sessionId":"s1","resumed":true}}`))

	select {
	case result := <-ch:
		require.NoError(t, result.Error)
		var resp StartSessionResponse
		require.NoError(t, json.Unmarshal(result.Response.Result, &resp))
		assert.Equal(t, "s1", resp.SessionID)
		assert.True(t, resp.Resumed)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for routed response")
	}

	c.mu.RLock()
	_, stillPending := c.pending[5]
	c.mu.RUnlock()
	assert.False(t, stillPending)
}

func TestHandleMessage_ErrorResponseBecomesRPCError(t *testing.T) {
	c := newTestClient()

	ch := make(chan *rpcResult, 1)
	c.mu.Lock()
	c.pending[9] = ch
	c.mu.Unlock()

	c.handleMessage([]byte(`{"jsonrpc":"2.0","id":9,"error":{"code":-32000,"message":"no such session"}}`))

	result := <-ch
	var rpcErr *RPCError
	require.ErrorAs(t, result.Error, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "no such session", rpcErr.Message)
}

func TestHandleMessage_ResponseWithNoWaiterIgnored(t *testing.T) {
	c := newTestClient()
	// Must not panic or emit anything.
	c.handleMessage([]byte(`{"jsonrpc":"2.0","id":404,"result":{}}`))

	select {
	case ev := <-c.Events():
		t.Fatalf("expected no event, got %T", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCallsRequireStart(t *testing.T) {
	c := newTestClient()
	ctx := t.Context()

	_, err := c.StartSession(ctx, false)
	assert.ErrorIs(t, err, ErrNotStarted)

	err = c.SendMessage(ctx, "s1", "hi", "")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestClientState_Transitions(t *testing.T) {
	m := newClientStateManager()
	assert.Equal(t, ClientStateUninitialized, m.Current())

	require.NoError(t, m.SetStarting())
	assert.ErrorIs(t, m.SetStarting(), ErrInvalidState)

	require.NoError(t, m.SetReady())
	assert.Equal(t, ClientStateReady, m.Current())

	m.SetClosed()
	assert.Equal(t, "closed", m.Current().String())
}
