package chatmodel

import "sync"

// MessageLog is the thread-safe, append-only message history for the active
// session. The chat.Store is the only writer; all other components read
// deep-copied snapshots. Messages are totally ordered by append order.
type MessageLog struct {
	messages []Message
	nextID   int64
	mu       sync.RWMutex
}

// NewMessageLog creates an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{nextID: 1}
}

// Append adds a message to the log. A message with a zero ID is assigned the
// next locally monotonic ID (optimistic appends before the engine confirms).
// The stored message (with its assigned ID) is returned.
func (l *MessageLog) Append(msg Message) Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	if msg.ID == 0 {
		msg.ID = l.nextID
	}
	if msg.ID >= l.nextID {
		l.nextID = msg.ID + 1
	}
	l.messages = append(l.messages, msg)
	return msg
}

// Replace swaps the entire history, reseeding the local ID counter past the
// highest engine-assigned ID so later optimistic appends never collide.
func (l *MessageLog) Replace(messages []Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = make([]Message, len(messages))
	copy(l.messages, messages)
	l.nextID = 1
	for _, m := range messages {
		if m.ID >= l.nextID {
			l.nextID = m.ID + 1
		}
	}
}

// Clear empties the log and resets the local ID counter.
func (l *MessageLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
	l.nextID = 1
}

// Snapshot returns a deep-copied slice of all messages.
func (l *MessageLog) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]Message, len(l.messages))
	for i := range l.messages {
		result[i] = DeepCopyMessage(l.messages[i])
	}
	return result
}

// Len returns the current number of messages.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
