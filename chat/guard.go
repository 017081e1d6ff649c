package chat

import (
	"sync"

	"cowork/agentrpc"
)

// Applier consumes engine events. *Store satisfies it.
type Applier interface {
	Apply(ev agentrpc.Event)
}

// Teardown stops the dispatch started by the Arm call that returned it.
type Teardown func()

// SubscriptionGuard makes event-feed subscription idempotent under repeated
// setup calls. Exactly one dispatch goroutine is live between an effective
// Arm and its teardown; duplicate Arm calls get a no-op teardown, and only
// the teardown returned by the arming call disarms the guard. The guard is
// owned by the process lifetime layer, not by any view, and can be re-armed
// after a teardown.
type SubscriptionGuard struct {
	done  chan struct{}
	mu    sync.Mutex
	armed bool
}

// NewSubscriptionGuard creates a disarmed guard.
func NewSubscriptionGuard() *SubscriptionGuard {
	return &SubscriptionGuard{}
}

// Arm starts dispatching events to the applier. If the guard is already
// armed the call is a duplicate mount: no second dispatch is started and the
// returned teardown does nothing.
func (g *SubscriptionGuard) Arm(events <-chan agentrpc.Event, applier Applier) Teardown {
	g.mu.Lock()
	if g.armed {
		g.mu.Unlock()
		return func() {}
	}
	g.armed = true
	done := make(chan struct{})
	g.done = done
	var wg sync.WaitGroup
	wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				applier.Apply(ev)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			// Only the arming call's teardown is effective; a stale
			// teardown from before a re-arm must not disarm the new one.
			if g.done != done {
				g.mu.Unlock()
				return
			}
			close(done)
			g.done = nil
			g.armed = false
			g.mu.Unlock()
			wg.Wait()
		})
	}
}

// Armed reports whether a dispatch is currently live.
func (g *SubscriptionGuard) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}
