package app

import (
	"cowork/chat"
	"cowork/chatmodel"
)

// storeEventMsg wraps a store notification for the update loop.
type storeEventMsg struct {
	event chat.StoreEvent
}

// sessionsMsg carries the fetched session list for the picker.
type sessionsMsg struct {
	sessions []chatmodel.SessionListItem
}

// sessionDeletedMsg reports a completed session delete.
type sessionDeletedMsg struct {
	id string
}

// sessionSwitchedMsg reports a completed session switch.
type sessionSwitchedMsg struct {
	id string
}
