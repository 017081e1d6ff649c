package app

import "cowork/chat"

// StoreNotifier bridges synchronous store notifications onto a channel the
// TUI can consume as tea messages. Notifications are coalesced by dropping
// when the channel is full; the TUI re-reads full snapshots on each event,
// so a dropped notification only delays a redraw until the next one.
type StoreNotifier struct {
	ch chan chat.StoreEvent
}

// NewStoreNotifier creates a notifier with a small buffer.
func NewStoreNotifier() *StoreNotifier {
	return &StoreNotifier{ch: make(chan chat.StoreEvent, 64)}
}

// OnStoreEvent implements chat.Observer.
func (n *StoreNotifier) OnStoreEvent(event chat.StoreEvent) {
	select {
	case n.ch <- event:
	default:
	}
}

// C returns the notification channel.
func (n *StoreNotifier) C() <-chan chat.StoreEvent {
	return n.ch
}
