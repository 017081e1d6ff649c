package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"cowork/agentrpc"
	"cowork/chat"
	"cowork/chatmodel"
)

// stubBackend is a minimal chat.Backend for command tests.
type stubBackend struct {
	deleteErr error
	listErr   error
}

func (s *stubBackend) StartSession(ctx context.Context, forceNew bool) (*agentrpc.StartSessionResponse, error) {
	return &agentrpc.StartSessionResponse{SessionID: "s1"}, nil
}

func (s *stubBackend) LoadSession(ctx context.Context, sessionID string) ([]chatmodel.Message, error) {
	return nil, nil
}

func (s *stubBackend) ListSessions(ctx context.Context) ([]chatmodel.SessionListItem, error) {
	return nil, s.listErr
}

func (s *stubBackend) DeleteSession(ctx context.Context, sessionID string) error {
	return s.deleteErr
}

func (s *stubBackend) CleanupEmptySessions(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *stubBackend) SendMessage(ctx context.Context, sessionID, content, workingDirectory string) error {
	return nil
}

func (s *stubBackend) RespondToConfirmation(ctx context.Context, requestID string, response chatmodel.ConfirmationResponse) error {
	return nil
}

func (s *stubBackend) GetContextBudget(ctx context.Context, sessionID string) (*chatmodel.ContextBudget, error) {
	return nil, errors.New("budget unavailable")
}

func TestDeleteSessionCmd_FailureSurfacesThroughStore(t *testing.T) {
	store := chat.NewStore(&stubBackend{deleteErr: errors.New("engine hiccup")}, "")
	m := NewModel(context.Background(), store, nil, "dark")

	msg := m.deleteSession("s1")()
	assert.Nil(t, msg, "failed commands yield no message")
	assert.Equal(t, "engine hiccup", store.LastError())
}

func TestFetchSessionsCmd_FailureSurfacesThroughStore(t *testing.T) {
	store := chat.NewStore(&stubBackend{listErr: errors.New("engine unreachable")}, "")
	m := NewModel(context.Background(), store, nil, "dark")

	msg := m.fetchSessions()()
	assert.Nil(t, msg)
	assert.Equal(t, "engine unreachable", store.LastError())
}
