package conveyor

import (
	"log"
	"reflect"

	"github.com/sarchlab/conveyorsim/model"
	"github.com/sarchlab/conveyorsim/sim"
)

// HookPosToteGenerated triggers when the source creates a tote.
var HookPosToteGenerated = &sim.HookPos{Name: "ToteGenerated"}

// HookPosToteDelivered triggers when the last segment hands a tote over to
// the sink.
var HookPosToteDelivered = &sim.HookPos{Name: "ToteDelivered"}

// GenerateToteEvent makes the source of a line create a tote.
type GenerateToteEvent struct {
	*sim.EventBase
}

// ServiceCompleteEvent marks that a tote has spent its transit time (and
// possibly an extra delay) on a segment.
type ServiceCompleteEvent struct {
	*sim.EventBase
	Segment int
}

// A Line is an ordered chain of segments, driven by one simulator.
type Line struct {
	*sim.ComponentBase

	index     int
	simulator *model.Simulator
	segments  []*Segment

	maxGenerationInterval float64
	syncDelay             sim.SimTime
	sink                  model.SimulatorID

	generatedCount uint64
	movedCount     uint64
	deliveredCount uint64
	detachedCount  uint64
}

// Index returns the position of the line in the model.
func (l *Line) Index() int {
	return l.index
}

// Simulator returns the simulator that drives the line.
func (l *Line) Simulator() *model.Simulator {
	return l.simulator
}

// NumSegments returns the number of segments, including the source.
func (l *Line) NumSegments() int {
	return len(l.segments)
}

// Segment returns the segment at the given index.
func (l *Line) Segment(i int) *Segment {
	if i < 0 || i >= len(l.segments) {
		log.Panicf("%s has no segment %d", l.Name(), i)
	}

	return l.segments[i]
}

// GeneratedCount returns the number of totes created by the source.
func (l *Line) GeneratedCount() uint64 {
	return l.generatedCount
}

// MovedCount returns the number of moves between segments of the line.
func (l *Line) MovedCount() uint64 {
	return l.movedCount
}

// DeliveredCount returns the number of totes handed over to the sink.
func (l *Line) DeliveredCount() uint64 {
	return l.deliveredCount
}

// DetachedCount returns the number of hand-overs that have left the line for
// the sink's timeline.
func (l *Line) DetachedCount() uint64 {
	return l.detachedCount
}

// Start schedules the first tote generation.
func (l *Line) Start() {
	l.simulator.Schedule(GenerateToteEvent{
		EventBase: sim.NewEventBase(l.simulator.Now(), l),
	})
}

// Handle processes the events of the line.
func (l *Line) Handle(e sim.Event) error {
	l.Lock()
	defer l.Unlock()

	switch e := e.(type) {
	case GenerateToteEvent:
		l.generateTote()
	case ServiceCompleteEvent:
		l.serviceComplete(e.Segment)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (l *Line) generateTote() {
	tote := Tote{Line: l.index, Serial: l.generatedCount}
	l.generatedCount++

	l.InvokeHook(sim.HookCtx{
		Domain: l,
		Pos:    HookPosToteGenerated,
		Item:   tote,
	})

	l.arrive(0, tote)

	interval := sim.FromUnits(
		l.simulator.Sample()*l.maxGenerationInterval,
		l.simulator.Precision(),
	)
	if interval == 0 {
		interval = 1
	}

	l.simulator.Schedule(GenerateToteEvent{
		EventBase: sim.NewEventBase(l.simulator.After(interval), l),
	})
}

func (l *Line) arrive(i int, tote Tote) {
	seg := l.segments[i]
	seg.occupancy.Push(tote)

	if seg.IsSource() {
		l.MoveRequest(i)
		return
	}

	transit := sim.Units(seg.MinTransitTime, l.simulator.Precision())
	l.scheduleServiceComplete(i, transit)
}

func (l *Line) scheduleServiceComplete(i int, delay sim.SimTime) {
	l.simulator.Schedule(ServiceCompleteEvent{
		EventBase: sim.NewEventBase(l.simulator.After(delay), l),
		Segment:   i,
	})
}

func (l *Line) serviceComplete(i int) {
	seg := l.Segment(i)

	if l.extraDelayHappens(seg) {
		l.scheduleServiceComplete(i, l.sampleExtraDelay(seg))
		return
	}

	seg.moveEnabled = true
	l.MoveRequest(i)
}

func (l *Line) extraDelayHappens(seg *Segment) bool {
	// A zero chance never delays, not even on a zero sample.
	if seg.ExtraDelayChance <= 0 {
		return false
	}

	return l.simulator.Sample()*100 <= seg.ExtraDelayChance
}

// sampleExtraDelay draws a delay uniformly within the extra delay range. The
// delay is at least one tick so that a delayed tote always makes progress in
// time.
func (l *Line) sampleExtraDelay(seg *Segment) sim.SimTime {
	u := l.simulator.Sample()
	span := float64(seg.ExtraDelayMax - seg.ExtraDelayMin)
	units := float64(seg.ExtraDelayMin) + u*span

	d := sim.FromUnits(units, l.simulator.Precision())
	if d == 0 {
		d = 1
	}

	return d
}

func (l *Line) detach(tote Tote) {
	l.detachedCount++
}
