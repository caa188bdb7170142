// Package event is a synchronous in-process dispatcher for gameplay events.
// Handlers run on the publishing goroutine, which is always the ticking one.
package event

import (
	"github.com/google/uuid"
)

type Type string

const (
	Spawned       Type = "spawned"
	Despawned     Type = "despawned"
	Hit           Type = "hit"
	Killed        Type = "killed"
	Collected     Type = "collected"
	Fired         Type = "fired"
	Crafted       Type = "crafted"
	PlayerDamaged Type = "player_damaged"
	TaskFailed    Type = "task_failed"
)

// Event is one notification. Only the fields relevant to the type are set.
type Event struct {
	Type   Type
	Time   float64
	Entity uint64
	Kind   string
	// Name carries an element symbol, a compound formula or a task name.
	Name   string
	Amount int
}

type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	ID   string
	Type Type
}

type listener struct {
	id      string
	handler Handler
}

type Dispatcher struct {
	listeners map[Type][]listener
	counts    map[Type]int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[Type][]listener),
		counts:    make(map[Type]int),
	}
}

// Subscribe registers handler for t. Handlers run in subscription order.
func (d *Dispatcher) Subscribe(t Type, handler Handler) Subscription {
	id := uuid.NewString()
	d.listeners[t] = append(d.listeners[t], listener{id: id, handler: handler})
	return Subscription{ID: id, Type: t}
}

// Unsubscribe removes the handler; unknown subscriptions are ignored.
func (d *Dispatcher) Unsubscribe(sub Subscription) {
	listeners := d.listeners[sub.Type]
	for i, l := range listeners {
		if l.id == sub.ID {
			d.listeners[sub.Type] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

// Dispatch delivers e to every handler subscribed to its type.
func (d *Dispatcher) Dispatch(e Event) {
	d.counts[e.Type]++
	for _, l := range d.listeners[e.Type] {
		l.handler(e)
	}
}

// Count is how many events of type t have been dispatched.
func (d *Dispatcher) Count(t Type) int {
	return d.counts[t]
}

// Recorder keeps every event it receives, for tests and replays.
type Recorder struct {
	Events []Event
}

// Record subscribes the recorder to each of the given types.
func (r *Recorder) Record(d *Dispatcher, types ...Type) {
	for _, t := range types {
		d.Subscribe(t, func(e Event) { r.Events = append(r.Events, e) })
	}
}

// Of returns the recorded events of type t.
func (r *Recorder) Of(t Type) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
