package chat

// Observer receives notifications when the store mutates.
type Observer interface {
	OnStoreEvent(event StoreEvent)
}

// StoreEvent is the interface for store mutation notifications.
type StoreEvent interface {
	storeEvent() // sealed marker
}

// SessionChanged fires when the active session is replaced.
type SessionChanged struct {
	Old, New string
}

func (SessionChanged) storeEvent() {}

// LogUpdated fires when a message is appended to or the log is replaced.
type LogUpdated struct{}

func (LogUpdated) storeEvent() {}

// StreamUpdated fires when the streaming buffer changes.
type StreamUpdated struct{}

func (StreamUpdated) storeEvent() {}

// GeneratingChanged fires when the turn-in-flight flag flips.
type GeneratingChanged struct {
	Generating bool
}

func (GeneratingChanged) storeEvent() {}

// ConfirmationUpdated fires when a confirmation request arrives or resolves.
type ConfirmationUpdated struct{}

func (ConfirmationUpdated) storeEvent() {}

// BudgetUpdated fires when the context budget snapshot is replaced.
type BudgetUpdated struct{}

func (BudgetUpdated) storeEvent() {}

// ErrorChanged fires when the current error is set or cleared.
type ErrorChanged struct{}

func (ErrorChanged) storeEvent() {}
