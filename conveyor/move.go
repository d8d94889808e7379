package conveyor

import "github.com/sarchlab/conveyorsim/sim"

// MoveResult tells what a move request achieved.
type MoveResult int

// The results of a move request.
const (
	// NotReady means the segment is empty or not allowed to move.
	NotReady MoveResult = iota
	// Blocked means the next segment has no room.
	Blocked
	// Moved means the head tote left the segment.
	Moved
)

func (r MoveResult) String() string {
	switch r {
	case NotReady:
		return "NotReady"
	case Blocked:
		return "Blocked"
	case Moved:
		return "Moved"
	default:
		return "Unknown"
	}
}

// MoveRequest tries to push the head tote of segment i forward. On success,
// the freed slot is offered to the upstream segments one after another until
// one of them cannot move.
func (l *Line) MoveRequest(i int) MoveResult {
	result := l.moveHead(i)
	if result != Moved {
		return result
	}

	l.pull(i)

	return Moved
}

// pull walks upstream from segment i. It takes at most i steps.
func (l *Line) pull(i int) {
	for j := i - 1; j >= 0; j-- {
		if l.moveHead(j) != Moved {
			return
		}
	}
}

// moveHead clears the gate after the departure, so that a multi-slot segment
// waits for the service of its next head tote before moving again.
func (l *Line) moveHead(i int) MoveResult {
	seg := l.Segment(i)

	if !seg.moveEnabled || seg.occupancy.Size() == 0 {
		return NotReady
	}

	if i == len(l.segments)-1 {
		l.handOver(seg)
		return Moved
	}

	next := l.segments[i+1]
	if !next.hasRoom() {
		return Blocked
	}

	tote := seg.depart()
	seg.disarm()
	l.arrive(i+1, tote)
	l.movedCount++

	return Moved
}

func (l *Line) handOver(seg *Segment) {
	tote := seg.head()

	l.simulator.ScheduleSync(l.syncDelay, l.sink, &sinkDelivery{
		line: l,
		tote: tote,
	})

	seg.depart()
	seg.disarm()
	l.deliveredCount++

	l.InvokeHook(sim.HookCtx{
		Domain: l,
		Pos:    HookPosToteDelivered,
		Item:   tote,
	})
}
