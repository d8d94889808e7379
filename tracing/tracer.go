// Package tracing turns the activity of a conveyor model into records.
package tracing

import (
	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/sim"
)

// A Tracer observes a conveyor model.
type Tracer interface {
	// ToteDelivered is called when a line hands a tote over to the sink.
	ToteDelivered(line *conveyor.Line, tote conveyor.Tote)

	// BatchReleased is called when the sink releases a batch.
	BatchReleased(release conveyor.BatchRelease)
}

// CollectTrace attaches the tracer to every line and to the sink of the
// model.
func CollectTrace(m *conveyor.Model, tracer Tracer) {
	for _, l := range m.Lines() {
		l.AcceptHook(&traceHook{t: tracer})
	}

	m.Sink().AcceptHook(&traceHook{t: tracer})
}

// A traceHook forwards hook invocations to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case conveyor.HookPosToteDelivered:
		h.t.ToteDelivered(ctx.Domain.(*conveyor.Line), ctx.Item.(conveyor.Tote))
	case conveyor.HookPosBatchReleased:
		h.t.BatchReleased(ctx.Item.(conveyor.BatchRelease))
	}
}
