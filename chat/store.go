// Package chat holds the client-side conversation state: the active session,
// its ordered message log, the transient streaming buffer, the confirmation
// gate, and the context-budget snapshot. The Store is the single source of
// truth read by the views; engine events are folded in through Apply.
package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"cowork/agentrpc"
	"cowork/chatmodel"
)

// ErrNoActiveSession is returned when an operation requires an active session.
var ErrNoActiveSession = errors.New("no active session")

// Backend is the engine surface the store depends on. *agentrpc.Client
// satisfies it; tests substitute a fake.
type Backend interface {
	StartSession(ctx context.Context, forceNew bool) (*agentrpc.StartSessionResponse, error)
	LoadSession(ctx context.Context, sessionID string) ([]chatmodel.Message, error)
	ListSessions(ctx context.Context) ([]chatmodel.SessionListItem, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupEmptySessions(ctx context.Context) (int, error)
	SendMessage(ctx context.Context, sessionID, content, workingDirectory string) error
	RespondToConfirmation(ctx context.Context, requestID string, response chatmodel.ConfirmationResponse) error
	GetContextBudget(ctx context.Context, sessionID string) (*chatmodel.ContextBudget, error)
}

var _ Backend = (*agentrpc.Client)(nil)

// Store is the reconciliation state machine for the active session. The
// write API is called by the UI layer and by Apply; the read API returns
// snapshots safe to use without further locking.
type Store struct {
	backend      Backend
	log          *chatmodel.MessageLog
	stream       *chatmodel.StreamBuffer
	pending      *chatmodel.ConfirmationRequest
	budget       *chatmodel.ContextBudget
	sessionID    string
	workDir      string
	lastError    string
	observers    []Observer
	mu           sync.RWMutex
	generating   bool
	initializing bool
}

// NewStore creates a store backed by the given engine client.
func NewStore(backend Backend, workDir string) *Store {
	return &Store{
		backend: backend,
		workDir: workDir,
		log:     chatmodel.NewMessageLog(),
		stream:  chatmodel.NewStreamBuffer(),
	}
}

// --- Session lifecycle -------------------------------------------------------

// StartSession resumes the most recent session, or creates a fresh one when
// forceNew is set. On failure the prior session state is left untouched.
func (s *Store) StartSession(ctx context.Context, forceNew bool) error {
	s.mu.Lock()
	s.initializing = true
	s.mu.Unlock()

	resp, err := s.backend.StartSession(ctx, forceNew)
	if err != nil {
		s.mu.Lock()
		s.initializing = false
		s.lastError = err.Error()
		s.mu.Unlock()
		s.notify(ErrorChanged{})
		return err
	}

	var messages []chatmodel.Message
	if resp.Resumed {
		messages, err = s.backend.LoadSession(ctx, resp.SessionID)
		if err != nil {
			s.mu.Lock()
			s.initializing = false
			s.lastError = err.Error()
			s.mu.Unlock()
			s.notify(ErrorChanged{})
			return err
		}
	}

	s.SwitchSession(resp.SessionID, messages)

	s.mu.Lock()
	s.initializing = false
	s.mu.Unlock()
	return nil
}

// SwitchSession atomically replaces the active session id and message log,
// and clears all turn-scoped state. A budget refresh is kicked off in the
// background; its failure is non-fatal.
func (s *Store) SwitchSession(sessionID string, messages []chatmodel.Message) {
	s.mu.Lock()
	old := s.sessionID
	s.sessionID = sessionID
	s.log.Replace(messages)
	s.stream.Clear()
	s.pending = nil
	s.budget = nil
	s.generating = false
	s.lastError = ""
	s.mu.Unlock()

	s.notify(SessionChanged{Old: old, New: sessionID})
	s.notify(LogUpdated{})

	go s.RefreshBudget(context.Background(), sessionID)
}

// LoadAndSwitch fetches a session's history from the engine and switches to
// it. On a load failure the current session is left untouched.
func (s *Store) LoadAndSwitch(ctx context.Context, sessionID string) error {
	messages, err := s.backend.LoadSession(ctx, sessionID)
	if err != nil {
		s.setError(err.Error())
		return err
	}
	s.SwitchSession(sessionID, messages)
	return nil
}

// DeleteSession removes a session from the engine's listing. Active session
// state is not touched; callers switch or start afterward if they deleted
// the active session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.backend.DeleteSession(ctx, sessionID); err != nil {
		s.setError(err.Error())
		return err
	}
	return nil
}

// ListSessions returns summaries of all persisted sessions.
func (s *Store) ListSessions(ctx context.Context) ([]chatmodel.SessionListItem, error) {
	sessions, err := s.backend.ListSessions(ctx)
	if err != nil {
		s.setError(err.Error())
		return nil, err
	}
	return sessions, nil
}

// CleanupEmptySessions asks the engine to remove sessions with no messages.
func (s *Store) CleanupEmptySessions(ctx context.Context) (int, error) {
	n, err := s.backend.CleanupEmptySessions(ctx)
	if err != nil {
		s.setError(err.Error())
		return 0, err
	}
	return n, nil
}

// --- Turn lifecycle ----------------------------------------------------------

// SendMessage optimistically appends the user's message to the log, marks a
// turn in flight, and submits it to the engine. On a synchronous send
// failure the optimistic message is retained and the turn flag cleared.
func (s *Store) SendMessage(ctx context.Context, content string) error {
	s.mu.Lock()
	if s.sessionID == "" {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	sessionID := s.sessionID
	workDir := s.workDir
	s.log.Append(chatmodel.Message{
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC(),
		Role:       chatmodel.RoleUser,
		Content:    content,
		TokenCount: chatmodel.EstimateTokens(content),
	})
	s.generating = true
	s.mu.Unlock()

	s.notify(LogUpdated{})
	s.notify(GeneratingChanged{Generating: true})

	if err := s.backend.SendMessage(ctx, sessionID, content, workDir); err != nil {
		s.mu.Lock()
		s.generating = false
		s.lastError = err.Error()
		s.mu.Unlock()
		s.notify(GeneratingChanged{Generating: false})
		s.notify(ErrorChanged{})
		return err
	}
	return nil
}

// RespondToConfirmation resolves the pending confirmation request with the
// user's decision. A call with no pending request, or with a request id that
// does not match the pending one, is a no-op. The gate is cleared even when
// the engine call fails; the engine remains the source of truth for whether
// the tool actually ran.
func (s *Store) RespondToConfirmation(ctx context.Context, requestID string, response chatmodel.ConfirmationResponse) error {
	s.mu.Lock()
	if s.pending == nil || s.pending.RequestID != requestID {
		s.mu.Unlock()
		return nil
	}
	s.pending = nil
	s.mu.Unlock()

	s.notify(ConfirmationUpdated{})

	if err := s.backend.RespondToConfirmation(ctx, requestID, response); err != nil {
		s.setError(err.Error())
		return err
	}
	return nil
}

// RefreshBudget fetches the budget snapshot for a session. Failures are
// non-fatal and leave the prior value in place.
func (s *Store) RefreshBudget(ctx context.Context, sessionID string) {
	budget, err := s.backend.GetContextBudget(ctx, sessionID)
	if err != nil {
		return
	}

	s.mu.Lock()
	if s.sessionID != sessionID {
		// Session changed while the fetch was in flight.
		s.mu.Unlock()
		return
	}
	s.budget = budget
	s.mu.Unlock()

	s.notify(BudgetUpdated{})
}

// --- Event reconciliation ----------------------------------------------------

// Apply folds a single engine event into the store. Events originating from
// a session other than the active one are dropped. The scope check and the
// mutation share one critical section so a concurrent SwitchSession cannot
// let a stale event land in the new session's state; observers are notified
// after the lock is released.
func (s *Store) Apply(ev agentrpc.Event) {
	s.mu.Lock()
	if sid := ev.EventSessionID(); sid != "" && sid != s.sessionID {
		active := s.sessionID
		s.mu.Unlock()
		log.Printf("WARNING: dropping event for superseded session %s (active %s)", sid, active)
		return
	}

	var notifications []StoreEvent
	switch ev := ev.(type) {
	case agentrpc.StreamTokenEvent:
		s.stream.Append(ev.Token)
		notifications = append(notifications, StreamUpdated{})

	case agentrpc.StreamClearEvent:
		s.stream.Clear()
		notifications = append(notifications, StreamUpdated{})

	case agentrpc.StreamCompleteEvent:
		s.log.Append(ev.Message)
		s.stream.Clear()
		s.generating = false
		notifications = append(notifications, LogUpdated{}, StreamUpdated{}, GeneratingChanged{Generating: false})

	case agentrpc.ToolCallEvent:
		if chatmodel.HasDuplicateCallIDs(ev.Message.ToolCalls) {
			log.Printf("WARNING: duplicate tool call ids in message %d", ev.Message.ID)
		}
		s.log.Append(ev.Message)
		s.stream.Clear()
		notifications = append(notifications, LogUpdated{}, StreamUpdated{})

	case agentrpc.ToolResultEvent:
		s.log.Append(ev.Message)
		notifications = append(notifications, LogUpdated{})

	case agentrpc.ConfirmationRequestEvent:
		superseded := s.pending
		req := ev.Request
		s.pending = &req

		if superseded != nil {
			// The engine should never issue a second request while one is
			// outstanding. Auto-reject the stranded one so it cannot block
			// the engine side forever.
			log.Printf("WARNING: confirmation request %s superseded by %s, auto-rejecting", superseded.RequestID, req.RequestID)
			go func(requestID string) {
				_ = s.backend.RespondToConfirmation(context.Background(), requestID, chatmodel.Rejected())
			}(superseded.RequestID)
		}
		notifications = append(notifications, ConfirmationUpdated{})

	case agentrpc.ContextBudgetEvent:
		budget := ev.Budget
		s.budget = &budget
		notifications = append(notifications, BudgetUpdated{})

	case agentrpc.AgentErrorEvent:
		s.lastError = ev.Err
		s.generating = false
		notifications = append(notifications, ErrorChanged{}, GeneratingChanged{Generating: false})

	case agentrpc.ErrorEvent:
		s.lastError = ev.Error.Error()
		notifications = append(notifications, ErrorChanged{})
	}
	s.mu.Unlock()

	for _, n := range notifications {
		s.notify(n)
	}
}

// --- Errors ------------------------------------------------------------------

// ClearError acknowledges the current error.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
	s.notify(ErrorChanged{})
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
	s.notify(ErrorChanged{})
}

// --- Read API ----------------------------------------------------------------

// SessionID returns the active session id, or "" when no session is active.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Messages returns a deep-copied snapshot of the message log.
func (s *Store) Messages() []chatmodel.Message {
	return s.log.Snapshot()
}

// StreamText returns the accumulated streaming text of the in-flight turn.
func (s *Store) StreamText() string {
	return s.stream.String()
}

// Generating reports whether a turn is in flight.
func (s *Store) Generating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generating
}

// Initializing reports whether a session start is in progress.
func (s *Store) Initializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initializing
}

// PendingConfirmation returns a copy of the outstanding confirmation
// request, or nil when the gate is clear.
func (s *Store) PendingConfirmation() *chatmodel.ConfirmationRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return nil
	}
	req := *s.pending
	if req.Arguments != nil {
		args := make(map[string]interface{}, len(req.Arguments))
		for k, v := range req.Arguments {
			args[k] = v
		}
		req.Arguments = args
	}
	return &req
}

// Budget returns a copy of the latest context-budget snapshot, or nil when
// none has been received.
func (s *Store) Budget() *chatmodel.ContextBudget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.budget == nil {
		return nil
	}
	budget := *s.budget
	return &budget
}

// LastError returns the current unacknowledged error, or "".
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// --- Observer management ----------------------------------------------------

// AddObserver registers an observer notified on store mutations.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// notify sends an event to all registered observers.
// Observers are called synchronously; keep handlers fast.
func (s *Store) notify(event StoreEvent) {
	s.mu.RLock()
	obs := s.observers
	s.mu.RUnlock()
	for _, o := range obs {
		o.OnStoreEvent(event)
	}
}
