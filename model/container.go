package model

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/conveyorsim/sim"
)

// HookPosWindowEnd triggers after every window, once all deliveries of the
// window have been handed to their receivers. The item is a Window.
var HookPosWindowEnd = &sim.HookPos{Name: "WindowEnd"}

// A Window is one round of the container. Every simulator processes the
// events that happen before its own horizon.
type Window struct {
	Start    sim.SimTime
	Horizons []sim.SimTime
}

// A Container holds the simulators of a model and advances them together
// without violating the causality between them.
type Container struct {
	sim.HookableBase

	precision   sim.Precision
	rng         *sim.PartitionedRNG
	parallel    bool
	eventLogger *logrus.Logger

	simulators   []*Simulator
	nameIndex    map[string]SimulatorID
	dependencies []*Dependency

	now     atomic.Uint64
	windows atomic.Uint64
	running atomic.Bool

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	stateLock sync.RWMutex
}

// Precision returns the number of ticks per model time unit.
func (c *Container) Precision() sim.Precision {
	return c.precision
}

// Seed returns the master seed of the random streams.
func (c *Container) Seed() int64 {
	return c.rng.Seed()
}

// IsParallel tells if simulators run concurrently within a window.
func (c *Container) IsParallel() bool {
	return c.parallel
}

// AddSimulator creates a simulator with its own engine and random stream.
func (c *Container) AddSimulator(name string) *Simulator {
	sim.NameMustBeValid(name)

	if _, exists := c.nameIndex[name]; exists {
		log.Panicf("simulator %s already exists", name)
	}

	s := &Simulator{
		id:        SimulatorID(len(c.simulators)),
		name:      name,
		engine:    sim.NewSerialEngine(),
		rng:       c.rng.ForSubsystem("Simulator." + name),
		precision: c.precision,
	}

	if c.eventLogger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(c.eventLogger, name))
	}

	c.simulators = append(c.simulators, s)
	c.nameIndex[name] = s.id

	return s
}

// Simulators returns all simulators in creation order.
func (c *Container) Simulators() []*Simulator {
	return c.simulators
}

// Simulator returns the simulator with the given ID.
func (c *Container) Simulator(id SimulatorID) *Simulator {
	if id < 0 || int(id) >= len(c.simulators) {
		log.Panicf("simulator %d does not exist", id)
	}

	return c.simulators[id]
}

// FindSimulator returns the simulator with the given name, or nil.
func (c *Container) FindSimulator(name string) *Simulator {
	id, ok := c.nameIndex[name]
	if !ok {
		return nil
	}

	return c.simulators[id]
}

// AddDependency declares that src may send synchronized deliveries to dst.
// Declaring the same edge twice returns the existing dependency.
func (c *Container) AddDependency(src, dst *Simulator) *Dependency {
	if src == dst {
		log.Panicf("simulator %s cannot depend on itself", src.name)
	}

	if d := src.outgoingTo(dst.id); d != nil {
		return d
	}

	d := &Dependency{
		from:    src,
		to:      dst,
		channel: &SyncChannel{},
	}

	src.outgoing = append(src.outgoing, d)
	dst.incoming = append(dst.incoming, d)
	c.dependencies = append(c.dependencies, d)

	return d
}

// SetPromise sets the minimal delay of the dependency from src to dst.
func (c *Container) SetPromise(src, dst *Simulator, minimalDelay sim.SimTime) {
	d := src.outgoingTo(dst.id)
	if d == nil {
		log.Panicf("no dependency %s -> %s to promise on", src.name, dst.name)
	}

	d.SetPromise(minimalDelay)
}

// Dependencies returns all dependencies in declaration order.
func (c *Container) Dependencies() []*Dependency {
	return c.dependencies
}

// CurrentTime returns the start time of the latest window.
func (c *Container) CurrentTime() sim.SimTime {
	return sim.SimTime(c.now.Load())
}

// NumWindows returns the number of windows run so far.
func (c *Container) NumWindows() uint64 {
	return c.windows.Load()
}

// IsRunning tells if Run is in progress.
func (c *Container) IsRunning() bool {
	return c.running.Load()
}

// Run advances every simulator until no event at or before end remains.
func (c *Container) Run(end sim.SimTime) error {
	if !c.running.CompareAndSwap(false, true) {
		log.Panic("container is already running")
	}
	defer c.running.Store(false)

	window := c.maxPromise()

	for {
		c.pauseLock.Lock()
		w, done, err := c.runWindow(end, window)
		c.pauseLock.Unlock()

		if err != nil {
			return err
		}

		if done {
			break
		}

		c.windows.Add(1)
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosWindowEnd,
			Item:   w,
		})
	}

	for _, s := range c.simulators {
		s.engine.Finished()
	}

	return nil
}

func (c *Container) maxPromise() sim.SimTime {
	var maxPromise sim.SimTime

	for _, d := range c.dependencies {
		if p, ok := d.Promise(); ok && p > maxPromise {
			maxPromise = p
		}
	}

	return maxPromise
}

func (c *Container) runWindow(
	end, window sim.SimTime,
) (Window, bool, error) {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()

	lowerBounds := make([]sim.SimTime, len(c.simulators))
	start := sim.MaxSimTime

	for i, s := range c.simulators {
		lowerBounds[i] = s.nextEventTime()
		start = sim.MinTime(start, lowerBounds[i])
	}

	if start == sim.MaxSimTime || start > end {
		return Window{}, true, nil
	}

	w := Window{
		Start:    start,
		Horizons: c.horizons(lowerBounds, start, end, window),
	}
	c.now.Store(uint64(start))

	if err := c.advance(lowerBounds, w.Horizons); err != nil {
		return w, false, err
	}

	c.deliver()

	return w, false, nil
}

// horizons computes how far each simulator may run. A receiver may not pass
// the earliest time at which any of its senders could still deliver to it.
// Simulators without senders are kept within one window of the earliest
// event, so that receivers can keep up.
func (c *Container) horizons(
	lowerBounds []sim.SimTime,
	start, end, window sim.SimTime,
) []sim.SimTime {
	limit := end.Add(1)
	horizons := make([]sim.SimTime, len(c.simulators))

	for i, s := range c.simulators {
		h := limit
		constrained := false

		for _, d := range s.incoming {
			promise, ok := d.Promise()
			if !ok {
				continue
			}

			constrained = true
			h = sim.MinTime(h, lowerBounds[d.from.id].Add(promise))
		}

		if !constrained && window > 0 {
			h = sim.MinTime(h, start.Add(window))
		}

		horizons[i] = h
	}

	return horizons
}

func (c *Container) advance(lowerBounds, horizons []sim.SimTime) error {
	errs := make([]error, len(c.simulators))

	if !c.parallel {
		for i, s := range c.simulators {
			if lowerBounds[i] < horizons[i] {
				errs[i] = s.engine.RunUntil(horizons[i])
			}
		}

		return firstError(c.simulators, errs)
	}

	var wg sync.WaitGroup
	for i, s := range c.simulators {
		if lowerBounds[i] >= horizons[i] {
			continue
		}

		wg.Add(1)
		go func(i int, s *Simulator) {
			defer wg.Done()
			errs[i] = s.engine.RunUntil(horizons[i])
		}(i, s)
	}
	wg.Wait()

	return firstError(c.simulators, errs)
}

func firstError(simulators []*Simulator, errs []error) error {
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("simulator %s: %w", simulators[i].name, err)
		}
	}

	return nil
}

// deliver hands every buffered delivery to its receiver. Dependencies are
// drained in declaration order and each channel in sending order, so the
// receivers see the same sequence no matter how the window was executed.
func (c *Container) deliver() {
	for _, d := range c.dependencies {
		for _, t := range d.channel.drain() {
			if t.Dst.receiver == nil {
				log.Panicf("simulator %s has no sync receiver", t.Dst.name)
			}

			t.Msg.OnSenderSide(t.Src)

			t.Dst.engine.Schedule(&SyncEvent{
				EventBase: sim.NewEventBase(t.Arrival, t.Dst.receiver),
				Src:       t.Src,
				Dst:       t.Dst,
				Msg:       t.Msg,
			})
		}
	}
}

// Pause stops the container before its next window.
func (c *Container) Pause() {
	c.isPausedLock.Lock()
	defer c.isPausedLock.Unlock()

	if c.isPaused {
		return
	}

	c.pauseLock.Lock()
	c.isPaused = true
}

// Continue lets a paused container run again.
func (c *Container) Continue() {
	c.isPausedLock.Lock()
	defer c.isPausedLock.Unlock()

	if !c.isPaused {
		return
	}

	c.pauseLock.Unlock()
	c.isPaused = false
}

// Inspect runs f while no simulator is running, so that f can read model
// state safely from another goroutine.
func (c *Container) Inspect(f func()) {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()

	f()
}
