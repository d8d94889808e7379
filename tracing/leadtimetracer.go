package tracing

import (
	"sync"

	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/sim"
)

// LeadTimeTracer measures how long totes take from their generation at the
// source to their hand-over to the sink. Lines may report concurrently.
type LeadTimeTracer struct {
	precision sim.Precision

	lock     sync.Mutex
	inflight map[conveyor.Tote]sim.SimTime
	total    float64
	count    uint64
	min      sim.SimTime
	max      sim.SimTime
}

// NewLeadTimeTracer creates a LeadTimeTracer and attaches it to every line of
// the model.
func NewLeadTimeTracer(m *conveyor.Model) *LeadTimeTracer {
	t := &LeadTimeTracer{
		precision: m.Precision(),
		inflight:  make(map[conveyor.Tote]sim.SimTime),
	}

	for _, l := range m.Lines() {
		l.AcceptHook(t)
	}

	return t
}

// Func records the generation and the delivery of totes.
func (t *LeadTimeTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case conveyor.HookPosToteGenerated:
		line := ctx.Domain.(*conveyor.Line)
		t.start(ctx.Item.(conveyor.Tote), line.Simulator().Now())
	case conveyor.HookPosToteDelivered:
		line := ctx.Domain.(*conveyor.Line)
		t.end(ctx.Item.(conveyor.Tote), line.Simulator().Now())
	}
}

func (t *LeadTimeTracer) start(tote conveyor.Tote, now sim.SimTime) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.inflight[tote] = now
}

func (t *LeadTimeTracer) end(tote conveyor.Tote, now sim.SimTime) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflight[tote]
	if !ok {
		return
	}

	delete(t.inflight, tote)

	lead := now - start
	if t.count == 0 || lead < t.min {
		t.min = lead
	}

	if lead > t.max {
		t.max = lead
	}

	t.total += float64(lead)
	t.count++
}

// Count returns the number of totes that have been handed over.
func (t *LeadTimeTracer) Count() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// InFlight returns the number of totes that are still on their line.
func (t *LeadTimeTracer) InFlight() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.inflight)
}

// AverageLeadTime returns the average lead time in model time units, or 0
// if no tote has been handed over.
func (t *LeadTimeTracer) AverageLeadTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.count == 0 {
		return 0
	}

	return t.total / float64(t.count) / float64(t.precision)
}

// MinLeadTime returns the shortest lead time in model time units.
func (t *LeadTimeTracer) MinLeadTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.min.InUnits(t.precision)
}

// MaxLeadTime returns the longest lead time in model time units.
func (t *LeadTimeTracer) MaxLeadTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.max.InUnits(t.precision)
}
