package conveyor

import (
	"log"

	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/sim/queueing"
)

// SegmentConfig holds the parameters of a conveyor segment. Times are given
// in model time units.
type SegmentConfig struct {
	Capacity         int     `yaml:"capacity"`
	MinTransitTime   uint64  `yaml:"min_transit_time"`
	ExtraDelayChance float64 `yaml:"extra_delay_chance"`
	ExtraDelayMin    uint64  `yaml:"extra_delay_min"`
	ExtraDelayMax    uint64  `yaml:"extra_delay_max"`
}

// DefaultSegmentConfig returns a single-slot segment that takes two time
// units to cross and is never delayed.
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{
		Capacity:         1,
		MinTransitTime:   2,
		ExtraDelayChance: 0,
		ExtraDelayMin:    1,
		ExtraDelayMax:    10,
	}
}

func (c SegmentConfig) mustBeValid() {
	if c.Capacity < 1 {
		log.Panicf("segment capacity must be at least 1, got %d", c.Capacity)
	}

	if c.ExtraDelayChance < 0 || c.ExtraDelayChance > 100 {
		log.Panicf("extra delay chance must be within [0, 100], got %f",
			c.ExtraDelayChance)
	}

	if c.ExtraDelayMin > c.ExtraDelayMax {
		log.Panicf("extra delay range [%d, %d] is empty",
			c.ExtraDelayMin, c.ExtraDelayMax)
	}
}

// SegmentState is the observable state of a segment.
type SegmentState int

// The states of a segment.
const (
	SegmentIdle SegmentState = iota
	SegmentOccupiedHeld
	SegmentOccupiedArmed
)

func (s SegmentState) String() string {
	switch s {
	case SegmentIdle:
		return "Idle"
	case SegmentOccupiedHeld:
		return "OccupiedHeld"
	case SegmentOccupiedArmed:
		return "OccupiedArmed"
	default:
		return "Unknown"
	}
}

// A Segment is one stage of a line. Segment 0 is the source, which has no
// capacity limit, no transit time and is always allowed to move.
type Segment struct {
	SegmentConfig

	index       int
	moveEnabled bool
	occupancy   queueing.Buffer
}

func newSegment(lineName string, index int, cfg SegmentConfig) *Segment {
	name := sim.BuildNameWithIndex(lineName, "Segment", index)

	if index == 0 {
		return &Segment{
			SegmentConfig: SegmentConfig{},
			index:         0,
			moveEnabled:   true,
			occupancy:     queueing.MakeBufferBuilder().Unbounded().Build(name),
		}
	}

	cfg.mustBeValid()

	return &Segment{
		SegmentConfig: cfg,
		index:         index,
		occupancy: queueing.MakeBufferBuilder().
			WithCapacity(cfg.Capacity).
			Build(name),
	}
}

// Index returns the position of the segment in its line.
func (s *Segment) Index() int {
	return s.index
}

// Name returns the name of the segment.
func (s *Segment) Name() string {
	return s.occupancy.Name()
}

// IsSource tells if the segment generates the totes of its line.
func (s *Segment) IsSource() bool {
	return s.index == 0
}

// IsMoveEnabled tells if the segment may push its head tote forward.
func (s *Segment) IsMoveEnabled() bool {
	return s.moveEnabled
}

// Occupancy returns the queue of totes on the segment.
func (s *Segment) Occupancy() queueing.Buffer {
	return s.occupancy
}

// Size returns the number of totes on the segment.
func (s *Segment) Size() int {
	return s.occupancy.Size()
}

// State returns the state of the segment.
func (s *Segment) State() SegmentState {
	switch {
	case s.occupancy.Size() == 0:
		return SegmentIdle
	case s.moveEnabled:
		return SegmentOccupiedArmed
	default:
		return SegmentOccupiedHeld
	}
}

func (s *Segment) hasRoom() bool {
	return s.IsSource() || s.occupancy.Size() < s.Capacity
}

func (s *Segment) head() Tote {
	return s.occupancy.Peek().(Tote)
}

// depart removes the head tote. Segments with more than one slot re-arm on
// their own. Single-slot segments wait for a pull from downstream.
func (s *Segment) depart() Tote {
	t := s.occupancy.Pop().(Tote)

	if s.Capacity > 1 {
		s.moveEnabled = true
	}

	return t
}

func (s *Segment) disarm() {
	if s.IsSource() {
		return
	}

	s.moveEnabled = false
}
