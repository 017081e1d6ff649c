package agentrpc

import "sync"

// ClientState represents the state of the engine client.
type ClientState int

const (
	ClientStateUninitialized ClientState = iota
	ClientStateStarting
	ClientStateReady
	ClientStateClosed
)

func (s ClientState) String() string {
	switch s {
	case ClientStateUninitialized:
		return "uninitialized"
	case ClientStateStarting:
		return "starting"
	case ClientStateReady:
		return "ready"
	case ClientStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// clientStateManager manages thread-safe client state transitions.
type clientStateManager struct {
	mu    sync.RWMutex
	state ClientState
}

func newClientStateManager() *clientStateManager {
	return &clientStateManager{state: ClientStateUninitialized}
}

func (m *clientStateManager) Current() ClientState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *clientStateManager) SetStarting() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ClientStateUninitialized {
		return ErrInvalidState
	}
	m.state = ClientStateStarting
	return nil
}

func (m *clientStateManager) SetReady() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ClientStateStarting {
		return ErrInvalidState
	}
	m.state = ClientStateReady
	return nil
}

func (m *clientStateManager) SetClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = ClientStateClosed
}
