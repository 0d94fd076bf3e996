// Package tdjsontest provides a scripted in-memory TDLib transport.
package tdjsontest

import (
	"sync"
	"time"

	"github.com/danhigham/autotele/internal/tdjson"
)

// Handler reacts to a request sent to the fake. The returned JSON events
// are queued for Receive in order.
type Handler func(req tdjson.Object) []string

// Transport is a fake tdjson.Transport. Receive never blocks: it returns
// nil as soon as the queue is empty.
type Transport struct {
	// Handle, when set, scripts the responses to Send.
	Handle Handler
	// Exec answers Execute calls.
	Exec func(req tdjson.Object) string

	mu       sync.Mutex
	queue    []string
	requests []tdjson.Object
}

// Push queues raw events for Receive.
func (t *Transport) Push(events ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, events...)
}

func (t *Transport) Send(req []byte) {
	obj, err := tdjson.Decode(req)
	if err != nil {
		panic(err)
	}
	t.mu.Lock()
	t.requests = append(t.requests, obj)
	handle := t.Handle
	t.mu.Unlock()

	if handle != nil {
		t.Push(handle(obj)...)
	}
}

func (t *Transport) Receive(time.Duration) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return nil
	}
	ev := t.queue[0]
	t.queue = t.queue[1:]
	return []byte(ev)
}

func (t *Transport) Execute(req []byte) []byte {
	obj, err := tdjson.Decode(req)
	if err != nil {
		panic(err)
	}
	t.mu.Lock()
	t.requests = append(t.requests, obj)
	t.mu.Unlock()
	if t.Exec == nil {
		return nil
	}
	return []byte(t.Exec(obj))
}

// Requests returns every request seen so far, in order.
func (t *Transport) Requests() []tdjson.Object {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]tdjson.Object, len(t.requests))
	copy(out, t.requests)
	return out
}

// RequestTypes returns the @type of every request seen so far.
func (t *Transport) RequestTypes() []string {
	reqs := t.Requests()
	types := make([]string, len(reqs))
	for i, r := range reqs {
		types[i] = r.Type
	}
	return types
}

// Pending returns the number of queued, not yet received events.
func (t *Transport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}
