package sim

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	Logger *logrus.Logger
	Domain string
}

// NewEventLogger returns a new EventLogger which will write in to the logger.
// The domain is usually the name of the simulator that owns the engine.
func NewEventLogger(logger *logrus.Logger, domain string) *EventLogger {
	return &EventLogger{Logger: logger, Domain: domain}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	if !h.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	fields := logrus.Fields{
		"domain":   h.Domain,
		"sim_time": uint64(evt.Time()),
		"event":    reflect.TypeOf(evt).String(),
	}

	if comp, ok := evt.Handler().(Named); ok {
		fields["handler"] = comp.Name()
	}

	h.Logger.WithFields(fields).Debug("event")
}
