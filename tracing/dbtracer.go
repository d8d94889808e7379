package tracing

import (
	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/datarecording"
	"github.com/sarchlab/conveyorsim/sim"
)

// Table names used by the DBTracer.
const (
	BatchReleaseTable = "batch_release"
	LineSummaryTable  = "line_summary"
)

// BatchReleaseEntry is a row of the batch_release table.
type BatchReleaseEntry struct {
	Time  float64
	Batch uint64
	Totes int
}

// LineSummaryEntry is a row of the line_summary table.
type LineSummaryEntry struct {
	Line      int
	Name      string
	Generated uint64
	Moved     uint64
	Delivered uint64
}

// DBTracer records batch releases as they happen and a summary of every line
// once the simulation is finished.
type DBTracer struct {
	recorder  datarecording.DataRecorder
	model     *conveyor.Model
	precision sim.Precision
	finished  bool
}

// NewDBTracer creates the tables and attaches the tracer to the model. The
// recorded releases are flushed whenever the sink's simulator finishes a run.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	m *conveyor.Model,
) *DBTracer {
	t := &DBTracer{
		recorder:  recorder,
		model:     m,
		precision: m.Precision(),
	}

	recorder.CreateTable(BatchReleaseTable, BatchReleaseEntry{})
	recorder.CreateTable(LineSummaryTable, LineSummaryEntry{})

	CollectTrace(m, t)
	m.Sink().Simulator().Engine().RegisterSimulationEndHandler(t)

	return t
}

// ToteDelivered does nothing.
func (t *DBTracer) ToteDelivered(_ *conveyor.Line, _ conveyor.Tote) {
	// Do nothing
}

// BatchReleased records the release.
func (t *DBTracer) BatchReleased(release conveyor.BatchRelease) {
	t.recorder.InsertData(BatchReleaseTable, BatchReleaseEntry{
		Time:  release.Time.InUnits(t.precision),
		Batch: release.Batch,
		Totes: len(release.Totes),
	})
}

// Handle flushes the releases recorded so far.
func (t *DBTracer) Handle(_ sim.SimTime) {
	t.recorder.Flush()
}

// Finish writes the line summary and flushes the recorder. A run may be
// continued several times, so the summary is only written on the first call.
func (t *DBTracer) Finish() {
	if t.finished {
		return
	}
	t.finished = true

	for _, l := range t.model.Results().Lines {
		t.recorder.InsertData(LineSummaryTable, LineSummaryEntry{
			Line:      l.Line,
			Name:      l.Name,
			Generated: l.Generated,
			Moved:     l.Moved,
			Delivered: l.Delivered,
		})
	}

	t.recorder.Flush()
}
