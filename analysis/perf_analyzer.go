// Package analysis measures how full the buffers of a conveyor model are, so
// that the segments holding back the flow of totes can be found.
package analysis

import (
	"sort"
	"sync"

	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/datarecording"
	"github.com/sarchlab/conveyorsim/model"
	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/sim/queueing"
)

// PerfAnalyzerTable is the table the entries are recorded into.
const PerfAnalyzerTable = "perf_analyzer"

// PerfAnalyzerEntry is a single entry in the performance database. Times are
// in model time units.
type PerfAnalyzerEntry struct {
	StartTime float64
	EndTime   float64
	Location  string
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provide the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

// BufferLevel is the average level of a buffer over a run.
type BufferLevel struct {
	Buffer   string
	Capacity int
	Average  float64
}

// PerfAnalyzer attaches a BufferAnalyzer to every buffer of a model. Entries
// are held until a simulator finishes, when no simulator runs.
type PerfAnalyzer struct {
	precision sim.Precision
	usePeriod bool
	period    sim.SimTime
	recorder  datarecording.DataRecorder

	lock      sync.Mutex
	entries   []PerfAnalyzerEntry
	analyzers []*BufferAnalyzer
	bySim     map[*model.Simulator][]*BufferAnalyzer
}

// RegisterModel analyzes the segment occupancies of every line and the
// queues of the sink.
func (p *PerfAnalyzer) RegisterModel(m *conveyor.Model) {
	for _, l := range m.Lines() {
		for i := 0; i < l.NumSegments(); i++ {
			p.RegisterBuffer(l.Segment(i).Occupancy(), l.Simulator())
		}
	}

	sink := m.Sink()
	for i := 0; i < sink.NumQueues(); i++ {
		p.RegisterBuffer(sink.Queue(i), sink.Simulator())
	}
}

// RegisterBuffer analyzes a buffer that only the given simulator touches.
func (p *PerfAnalyzer) RegisterBuffer(
	buf queueing.Buffer,
	owner *model.Simulator,
) {
	builder := MakeBufferAnalyzerBuilder().
		WithTimeTeller(owner).
		WithPerfLogger(p).
		WithPrecision(p.precision).
		WithBuffer(buf)

	if p.usePeriod {
		builder = builder.WithPeriod(p.period)
	}

	analyzer := builder.Build()
	buf.AcceptHook(analyzer)

	p.analyzers = append(p.analyzers, analyzer)

	if _, ok := p.bySim[owner]; !ok {
		owner.Engine().RegisterSimulationEndHandler(&simulationEnd{
			analyzer: p,
			owner:    owner,
		})
	}

	p.bySim[owner] = append(p.bySim[owner], analyzer)
}

// AddDataEntry keeps an entry until the next flush. Simulators running in
// parallel may add entries concurrently.
func (p *PerfAnalyzer) AddDataEntry(entry PerfAnalyzerEntry) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.entries = append(p.entries, entry)
}

// Entries returns the entries that have not been flushed.
func (p *PerfAnalyzer) Entries() []PerfAnalyzerEntry {
	p.lock.Lock()
	defer p.lock.Unlock()

	out := make([]PerfAnalyzerEntry, len(p.entries))
	copy(out, p.entries)

	return out
}

// Flush writes the pending entries into the recorder. Without a recorder, the
// entries are kept.
func (p *PerfAnalyzer) Flush() {
	if p.recorder == nil {
		return
	}

	p.lock.Lock()
	entries := p.entries
	p.entries = nil
	p.lock.Unlock()

	for _, e := range entries {
		p.recorder.InsertData(PerfAnalyzerTable, e)
	}
}

// Levels returns the average level of every buffer, fullest first. Buffers
// with the same level keep their registration order.
func (p *PerfAnalyzer) Levels() []BufferLevel {
	levels := make([]BufferLevel, 0, len(p.analyzers))
	for _, a := range p.analyzers {
		levels = append(levels, BufferLevel{
			Buffer:   a.Buffer().Name(),
			Capacity: a.Buffer().Capacity(),
			Average:  a.AverageLevel(),
		})
	}

	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Average > levels[j].Average
	})

	return levels
}

type simulationEnd struct {
	analyzer *PerfAnalyzer
	owner    *model.Simulator
}

func (h *simulationEnd) Handle(now sim.SimTime) {
	for _, a := range h.analyzer.bySim[h.owner] {
		a.Finish(now)
	}

	h.analyzer.Flush()
}

// PerfAnalyzerBuilder is a builder that can build a PerfAnalyzer.
type PerfAnalyzerBuilder struct {
	precision sim.Precision
	usePeriod bool
	period    sim.SimTime
	recorder  datarecording.DataRecorder
}

// MakePerfAnalyzerBuilder creates a new PerfAnalyzerBuilder.
func MakePerfAnalyzerBuilder() PerfAnalyzerBuilder {
	return PerfAnalyzerBuilder{
		precision: sim.DefaultPrecision,
	}
}

// WithPrecision sets the precision of the analyzed model.
func (b PerfAnalyzerBuilder) WithPrecision(
	p sim.Precision,
) PerfAnalyzerBuilder {
	b.precision = p
	return b
}

// WithPeriod reports the buffer levels every period, in ticks.
func (b PerfAnalyzerBuilder) WithPeriod(
	period sim.SimTime,
) PerfAnalyzerBuilder {
	b.usePeriod = true
	b.period = period

	return b
}

// WithRecorder writes the entries into the perf_analyzer table of the
// recorder.
func (b PerfAnalyzerBuilder) WithRecorder(
	recorder datarecording.DataRecorder,
) PerfAnalyzerBuilder {
	b.recorder = recorder
	return b
}

// Build creates a PerfAnalyzer.
func (b PerfAnalyzerBuilder) Build() *PerfAnalyzer {
	if b.recorder != nil {
		b.recorder.CreateTable(PerfAnalyzerTable, PerfAnalyzerEntry{})
	}

	return &PerfAnalyzer{
		precision: b.precision,
		usePeriod: b.usePeriod,
		period:    b.period,
		recorder:  b.recorder,
		bySim:     make(map[*model.Simulator][]*BufferAnalyzer),
	}
}
