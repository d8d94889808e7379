package conveyor

import (
	"github.com/sarchlab/conveyorsim/model"
	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/sim/queueing"
)

// A Model is a set of lines feeding one sink.
type Model struct {
	container *model.Container
	lines     []*Line
	sink      *Sink
	started   bool
}

// Container returns the container that runs the simulators of the model.
func (m *Model) Container() *model.Container {
	return m.container
}

// Lines returns the lines of the model.
func (m *Model) Lines() []*Line {
	return m.lines
}

// Line returns the line at the given index.
func (m *Model) Line(i int) *Line {
	return m.lines[i]
}

// Sink returns the sink of the model.
func (m *Model) Sink() *Sink {
	return m.sink
}

// Precision returns the number of ticks per model time unit.
func (m *Model) Precision() sim.Precision {
	return m.container.Precision()
}

// Components returns every component of the model, lines first.
func (m *Model) Components() []sim.Component {
	comps := make([]sim.Component, 0, len(m.lines)+1)
	for _, l := range m.lines {
		comps = append(comps, l)
	}

	return append(comps, m.sink)
}

// Buffers returns the segment occupancies and the sink queues.
func (m *Model) Buffers() []queueing.Buffer {
	var bufs []queueing.Buffer

	for _, l := range m.lines {
		for _, s := range l.segments {
			bufs = append(bufs, s.occupancy)
		}
	}

	return append(bufs, m.sink.queues...)
}

// Run runs the model until no event at or before end remains. Running again
// with a later end time continues from where the previous run stopped.
func (m *Model) Run(end sim.SimTime) error {
	if !m.started {
		for _, l := range m.lines {
			l.Start()
		}

		m.started = true
	}

	return m.container.Run(end)
}

// RunFor runs the model until the given number of model time units.
func (m *Model) RunFor(units uint64) error {
	return m.Run(sim.Units(units, m.Precision()))
}

// LineResult holds the counters of one line.
type LineResult struct {
	Line      int    `json:"line"`
	Name      string `json:"name"`
	Generated uint64 `json:"generated"`
	Moved     uint64 `json:"moved"`
	Delivered uint64 `json:"delivered"`
}

// Results holds the counters of a model.
type Results struct {
	Time            sim.SimTime  `json:"time"`
	Lines           []LineResult `json:"lines"`
	ReceivedBatches uint64       `json:"received_batches"`
	ReceivedTotes   uint64       `json:"received_totes"`
	Backlog         []int        `json:"backlog"`
}

// Results collects the counters of the model. It must not be called while
// the model runs, except through the container's Inspect.
func (m *Model) Results() Results {
	r := Results{
		Time:            m.container.CurrentTime(),
		ReceivedBatches: m.sink.receivedBatches,
		ReceivedTotes:   m.sink.receivedTotes,
		Backlog:         m.sink.Backlog(),
	}

	for _, l := range m.lines {
		r.Lines = append(r.Lines, LineResult{
			Line:      l.index,
			Name:      l.Name(),
			Generated: l.generatedCount,
			Moved:     l.movedCount,
			Delivered: l.deliveredCount,
		})
	}

	return r
}

// SafeResults collects the counters between two windows, so it can be called
// while the model runs.
func (m *Model) SafeResults() Results {
	var r Results
	m.container.Inspect(func() { r = m.Results() })

	return r
}
