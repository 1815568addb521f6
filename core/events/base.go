package events

import "time"

// Kind is the dot-namespaced identifier of an event type, e.g. "call.ended".
// The first segment groups related events; consumers that only care about a
// family can match on the prefix.
type Kind string

// Event is implemented by every event in this package. Concrete types carry
// their payload as exported fields.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base supplies the Event implementation; every concrete event embeds it and
// gets its kind and creation time stamped by its constructor.
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps a new base with the given kind and the current time.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind { return b.kind }

func (b Base) Timestamp() time.Time { return b.timestamp }
