// Package model runs several independently clocked simulators side by side.
// Simulators exchange state only through synchronized deliveries along
// declared dependencies, and each dependency carries a promise (lookahead)
// that bounds how far the receiving simulator may run ahead of the sender.
package model

import (
	"log"
	"math/rand"

	"github.com/sarchlab/conveyorsim/sim"
)

// SimulatorID identifies a simulator within its container.
type SimulatorID int

// A Simulator owns one engine, one random stream and the state of one
// submodel. Everything it schedules runs on its own timeline.
type Simulator struct {
	id        SimulatorID
	name      string
	engine    *sim.SerialEngine
	rng       *rand.Rand
	precision sim.Precision

	outgoing []*Dependency
	incoming []*Dependency

	receiver sim.Handler
}

// ID returns the identifier of the simulator.
func (s *Simulator) ID() SimulatorID {
	return s.id
}

// Name returns the name of the simulator.
func (s *Simulator) Name() string {
	return s.name
}

// Engine returns the engine that drives the simulator.
func (s *Simulator) Engine() *sim.SerialEngine {
	return s.engine
}

// Precision returns the number of ticks per model time unit.
func (s *Simulator) Precision() sim.Precision {
	return s.precision
}

// Now returns the local time of the simulator.
func (s *Simulator) Now() sim.SimTime {
	return s.engine.CurrentTime()
}

// After returns the local time delay ticks from now.
func (s *Simulator) After(delay sim.SimTime) sim.SimTime {
	return s.Now().Add(delay)
}

// Sample draws a uniform number in [0,1) from the simulator's own stream.
func (s *Simulator) Sample() float64 {
	return s.rng.Float64()
}

// Schedule schedules a local event on the simulator's timeline.
func (s *Simulator) Schedule(evt sim.Event) {
	s.engine.Schedule(evt)
}

// SetSyncReceiver registers the handler that receives the synchronized
// deliveries addressed to this simulator.
func (s *Simulator) SetSyncReceiver(h sim.Handler) {
	s.receiver = h
}

// OutgoingDependencies returns the dependencies in which this simulator is
// the sender.
func (s *Simulator) OutgoingDependencies() []*Dependency {
	return s.outgoing
}

// IncomingDependencies returns the dependencies in which this simulator is
// the receiver.
func (s *Simulator) IncomingDependencies() []*Dependency {
	return s.incoming
}

// FindOutgoingDependency returns the dependency towards the simulator of the
// given name, or nil if there is none.
func (s *Simulator) FindOutgoingDependency(name string) *Dependency {
	for _, d := range s.outgoing {
		if d.to.name == name {
			return d
		}
	}

	return nil
}

// ScheduleSync sends a synchronized delivery to the target simulator. The
// delivery arrives delay ticks from now on both timelines. A dependency with
// a promise no larger than delay must have been declared beforehand.
func (s *Simulator) ScheduleSync(
	delay sim.SimTime,
	target SimulatorID,
	msg SyncMsg,
) {
	dep := s.outgoingTo(target)
	if dep == nil {
		log.Panicf("simulator %s has no dependency towards simulator %d",
			s.name, target)
	}

	promise, ok := dep.Promise()
	if !ok {
		log.Panicf("dependency %s -> %s has no promise",
			s.name, dep.to.name)
	}

	if delay < promise {
		log.Panicf("sync delay %d is shorter than the promise %d of %s -> %s",
			delay, promise, s.name, dep.to.name)
	}

	dep.channel.push(SyncTransfer{
		Src:     s,
		Dst:     dep.to,
		Msg:     msg,
		Arrival: s.After(delay),
	})
}

func (s *Simulator) outgoingTo(target SimulatorID) *Dependency {
	for _, d := range s.outgoing {
		if d.to.id == target {
			return d
		}
	}

	return nil
}

func (s *Simulator) nextEventTime() sim.SimTime {
	t, ok := s.engine.NextEventTime()
	if !ok {
		return sim.MaxSimTime
	}

	return t
}
