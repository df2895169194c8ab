package events

import "time"

// Kind identifies an event variant, namespaced as "turn.*" or "session.*".
type Kind string

func (k Kind) String() string { return string(k) }

// Event is implemented by every response event relayed from the streaming
// session. Events for one turn arrive strictly between that turn's start
// and completion.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind { return b.kind }

func (b Base) Timestamp() time.Time { return b.timestamp }
