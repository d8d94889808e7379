package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() SimTime
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now SimTime)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run will process all the events until the simulation finishes
	Run() error

	// RunUntil processes the events that happen strictly before the horizon
	// and leaves later events in the queue.
	RunUntil(horizon SimTime) error

	// NextEventTime returns the time of the earliest pending event. The
	// boolean is false if no event is pending.
	NextEventTime() (SimTime, bool)

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}
