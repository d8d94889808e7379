package simulation

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/conveyorsim/analysis"
	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/datarecording"
	"github.com/sarchlab/conveyorsim/monitoring"
	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	modelBuilder   conveyor.ModelBuilder
	recordOn       bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	analysisOn     bool
	analysisPeriod uint64
}

// MakeBuilder creates a new builder with a default model and no recording,
// monitoring or analysis.
func MakeBuilder() Builder {
	return Builder{
		modelBuilder: conveyor.MakeModelBuilder(),
	}
}

// WithModelBuilder sets the builder of the simulated model.
func (b Builder) WithModelBuilder(mb conveyor.ModelBuilder) Builder {
	b.modelBuilder = mb
	return b
}

// WithRecording records the run into a database with a generated name.
func (b Builder) WithRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName records the run into the given database file.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordOn = true
	b.outputFileName = filename

	return b
}

// WithMonitor starts the web monitor.
func (b Builder) WithMonitor() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitor in a browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithAnalysis analyzes the buffer levels, per period of the given number
// of time units, or over the whole run if the period is 0.
func (b Builder) WithAnalysis(period uint64) Builder {
	b.analysisOn = true
	b.analysisPeriod = period

	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}
}

// Build builds the model and the services around it.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            xid.New().String(),
		model:         b.modelBuilder.Build(),
		compNameIndex: make(map[string]int),
	}

	for _, c := range s.model.Components() {
		s.registerComponent(c)
	}

	s.counter = tracing.NewDeliveryCounter()
	tracing.CollectTrace(s.model, s.counter)
	s.leadTimes = tracing.NewLeadTimeTracer(s.model)

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "conveyorsim_" + s.id
		}

		recorder, err := datarecording.New(outputPath)
		if err != nil {
			return nil, fmt.Errorf("creating recorder: %w", err)
		}

		s.dataRecorder = recorder
		s.dbTracer = tracing.NewDBTracer(recorder, s.model)
	}

	if b.analysisOn {
		s.analyzer = b.buildAnalyzer(s)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().
			WithPortNumber(b.monitorPort).
			WithBrowser(b.openBrowser)
		s.monitor.RegisterModel(s.model)
		s.monitor.StartServer()
	}

	return s, nil
}

func (b Builder) buildAnalyzer(s *Simulation) *analysis.PerfAnalyzer {
	p := s.model.Precision()
	ab := analysis.MakePerfAnalyzerBuilder().WithPrecision(p)

	if b.analysisPeriod > 0 {
		ab = ab.WithPeriod(sim.Units(b.analysisPeriod, p))
	}

	if s.dataRecorder != nil {
		ab = ab.WithRecorder(s.dataRecorder)
	}

	a := ab.Build()
	a.RegisterModel(s.model)

	return a
}
