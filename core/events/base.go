package events

import "time"

type Kind string

type Event interface {
	Kind() Kind
	CallID() string
	Timestamp() time.Time
}

// Handler receives events in the order they are emitted. Handlers run on
// the goroutine that emits the event and must not block.
type Handler func(Event)

type Base struct {
	kind      Kind
	callID    string
	timestamp time.Time
}

func NewBase(kind Kind, callID string) Base {
	return Base{kind: kind, callID: callID, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) CallID() string {
	return b.callID
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
