package spacetraders

import (
	"slices"
	"sync"
	"time"
)

// EventName identifies a client notification
type EventName string

const (
	// EventReady is emitted once bootstrap completes
	EventReady EventName = "ready"
	// EventError is emitted for every classified error, alongside the return value
	EventError EventName = "error"
	// EventRequest is emitted after every successful exchange
	EventRequest EventName = "request"
	// EventStopped is emitted when the client shuts down
	EventStopped EventName = "stopped"
)

// Event is a notification delivered to subscribers.
type Event struct {
	Name       EventName
	Method     string
	Path       string
	StatusCode int
	Err        error
	At         time.Time
}

// Handler receives events. Handlers run synchronously on the goroutine that
// produced the event and must not block.
type Handler func(Event)

type subscriber struct {
	id int
	h  Handler
}

// observers delivers events to handlers in subscription order
type observers struct {
	mu       sync.RWMutex
	next     int
	handlers []subscriber
}

func (o *observers) subscribe(h Handler) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.next
	o.next++
	o.handlers = append(o.handlers, subscriber{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			o.handlers = slices.DeleteFunc(o.handlers, func(s subscriber) bool { return s.id == id })
			o.mu.Unlock()
		})
	}
}

func (o *observers) emit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	o.mu.RLock()
	handlers := slices.Clone(o.handlers)
	o.mu.RUnlock()

	for _, s := range handlers {
		s.h(e)
	}
}
