// Package record provides the status-change notifier that fans engine events
// out to dashboard subscribers.
package record

import (
	"sync"

	"github.com/applyforge/applyforge/internal/domain/model"
)

// Notifier fans out status-change events to subscribers.
type Notifier interface {
	Publish(change model.StatusChange)
	Subscribe(buffer int) (func(), <-chan model.StatusChange)
	StopAll()
}

// DefaultNotifier is the in-process implementation of Notifier.
// Publish never blocks: a subscriber that falls behind loses events rather
// than stalling the state machine.
type DefaultNotifier struct {
	mu     sync.Mutex
	subs   map[chan model.StatusChange]struct{}
	closed bool
}

// NewNotifier constructs the default notifier implementation.
func NewNotifier() *DefaultNotifier {
	return &DefaultNotifier{
		subs: make(map[chan model.StatusChange]struct{}),
	}
}

// Publish delivers the change to every live subscriber, dropping it for
// subscribers whose buffers are full.
func (n *DefaultNotifier) Publish(change model.StatusChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for ch := range n.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its unsubscribe function
// and event channel.
func (n *DefaultNotifier) Subscribe(buffer int) (func(), <-chan model.StatusChange) {
	if buffer <= 0 {
		buffer = 16
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan model.StatusChange, buffer)
	if n.closed {
		close(ch)
		return func() {}, ch
	}
	n.subs[ch] = struct{}{}

	unsub := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[ch]; !ok {
			return
		}
		delete(n.subs, ch)
		close(ch)
	}
	return unsub, ch
}

// StopAll closes every subscriber channel. Used during graceful shutdown.
func (n *DefaultNotifier) StopAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for ch := range n.subs {
		close(ch)
		delete(n.subs, ch)
	}
}
