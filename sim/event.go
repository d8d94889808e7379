package sim

// An Event is something going to happen in the future.
type Event interface {
	// Return the time that the event should happen
	Time() SimTime

	// Returns the handler that can should handle the event
	Handler() Handler
}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID      string
	time    SimTime
	handler Handler
}

// NewEventBase creates a new EventBase
func NewEventBase(t SimTime, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler

	return e
}

// Time return the time that the event is going to happen
func (e EventBase) Time() SimTime {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
// The only exception is a synchronized delivery, which the model container
// schedules on the receiving side of a declared dependency.
type Handler interface {
	Handle(e Event) error
}
