package agentrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGenerator_Monotonic(t *testing.T) {
	gen := &idGenerator{}
	assert.Equal(t, int64(1), gen.Next())
	assert.Equal(t, int64(2), gen.Next())
	assert.Equal(t, int64(3), gen.Next())
}

func TestNewRequest(t *testing.T) {
	req, err := newRequest(7, MethodSendMessage, SendMessageRequest{
		SessionID: "s1", Content: "hello", WorkingDirectory: "/work",
	})
	require.NoError(t, err)

	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, int64(7), req.ID)
	assert.Equal(t, MethodSendMessage, req.Method)

	var params map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Params, &params))
	assert.Equal(t, "s1", params["sessionId"])
	assert.Equal(t, "hello", params["content"])
	assert.Equal(t, "/work", params["workingDirectory"])
}

func TestNewErrorResponse(t *testing.T) {
	resp := newErrorResponse(3, ErrCodeMethodNotFound, "unknown method")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
	assert.Equal(t, "unknown method", resp.Error.Message)
	assert.Equal(t, int64(3), resp.ID)
}

func TestRPCErrorFormatting(t *testing.T) {
	err := &RPCError{Code: -32000, Message: "boom"}
	assert.Equal(t, "rpc error -32000: boom", err.Error())
}
