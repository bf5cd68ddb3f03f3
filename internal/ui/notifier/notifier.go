// Package notifier broadcasts change pings to the SSE streams of one session.
package notifier

import "sync"

// Notifier delivers pings to listeners grouped by session id. Listeners
// receive an empty struct and should re-read the session.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[string]map[chan struct{}]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives pings for sessionID.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(sessionID string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	set, ok := n.listeners[sessionID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		n.listeners[sessionID] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(sessionID string, ch chan struct{}) {
	n.mu.Lock()
	if set, ok := n.listeners[sessionID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(n.listeners, sessionID)
		}
	}
	n.mu.Unlock()
	close(ch)
}

// Broadcast pings every listener of sessionID.
// Non-blocking: if a listener's channel is full, the ping is skipped.
func (n *Notifier) Broadcast(sessionID string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners[sessionID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Listeners returns the number of listeners for sessionID.
func (n *Notifier) Listeners(sessionID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners[sessionID])
}
