// Package events allows goroutines to subscribe to the stream of ledger
// events and receive a copy of each one.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer is the number of events held for a subscriber that is
// not ready to receive. Events beyond that are dropped for that subscriber.
const subscriberBuffer = 100

// Events fans out every event it is sent to the registered subscribers.
type Events struct {
	mu   sync.RWMutex
	subs map[string]chan string
	shut bool
}

// New constructs an events value for registering and receiving events.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Shutdown closes and removes every subscriber channel. No new subscribers
// are accepted after this call.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
	evt.shut = true
}

// Acquire registers a subscriber under the unique id and returns the channel
// it receives events on. Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) (<-chan string, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if evt.shut {
		return nil, fmt.Errorf("events shutdown, can't acquire %q", id)
	}

	if ch, exists := evt.subs[id]; exists {
		return ch, nil
	}

	ch := make(chan string, subscriberBuffer)
	evt.subs[id] = ch

	return ch, nil
}

// Release closes and removes the channel that was provided by the call
// to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)

	return nil
}

// Count returns the number of subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Send delivers the event to every subscriber. Send never blocks on a slow
// subscriber, the event is dropped for it instead.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
