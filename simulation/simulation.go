// Package simulation assembles a conveyor model with the services that
// observe it: recording, monitoring, tracing and analysis.
package simulation

import (
	"github.com/sarchlab/conveyorsim/analysis"
	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/datarecording"
	"github.com/sarchlab/conveyorsim/monitoring"
	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/tracing"
)

// A Simulation provides the services required to run a conveyor model.
type Simulation struct {
	id    string
	model *conveyor.Model

	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	monitor      *monitoring.Monitor
	counter      *tracing.DeliveryCounter
	leadTimes    *tracing.LeadTimeTracer
	analyzer     *analysis.PerfAnalyzer

	components    []sim.Component
	compNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Model returns the simulated model.
func (s *Simulation) Model() *conveyor.Model {
	return s.model
}

// GetDataRecorder returns the data recorder, or nil if the run is not
// recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetDeliveryCounter returns the counter of deliveries and batches.
func (s *Simulation) GetDeliveryCounter() *tracing.DeliveryCounter {
	return s.counter
}

// GetLeadTimeTracer returns the tracer of tote lead times.
func (s *Simulation) GetLeadTimeTracer() *tracing.LeadTimeTracer {
	return s.leadTimes
}

// GetAnalyzer returns the buffer analyzer, or nil if analysis is off.
func (s *Simulation) GetAnalyzer() *analysis.PerfAnalyzer {
	return s.analyzer
}

func (s *Simulation) registerComponent(c sim.Component) {
	compName := c.Name()
	if _, ok := s.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
}

// Components returns all components of the model.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	i, ok := s.compNameIndex[name]
	if !ok {
		return nil
	}

	return s.components[i]
}

// Run runs the model until the given end time. The monitor, if any, shows
// the progress of the run.
func (s *Simulation) Run(end sim.SimTime) error {
	if s.monitor != nil {
		bar := s.monitor.TrackProgress("Simulation", end)
		defer s.monitor.CompleteProgressBar(bar)
	}

	return s.model.Run(end)
}

// Terminate writes the line summary, then flushes and closes the recorder.
// Calling it again does nothing.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	s.dbTracer.Finish()

	return s.dataRecorder.Close()
}
