package conveyor

import (
	"log"
	"reflect"

	"github.com/sarchlab/conveyorsim/model"
	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/sim/queueing"
)

// HookPosToteReceived triggers when a tote reaches its queue in the sink.
var HookPosToteReceived = &sim.HookPos{Name: "ToteReceived"}

// HookPosBatchReleased triggers when the sink releases a batch. The item is
// a BatchRelease.
var HookPosBatchReleased = &sim.HookPos{Name: "BatchReleased"}

// BatchRelease describes one released batch.
type BatchRelease struct {
	Time  sim.SimTime
	Batch uint64
	Totes []Tote
}

// A Sink keeps one queue per line and releases a batch whenever every queue
// holds at least one tote.
type Sink struct {
	*sim.ComponentBase

	simulator *model.Simulator
	queues    []queueing.Buffer
	arrived   []uint64

	receivedBatches uint64
	receivedTotes   uint64
}

func newSink(simulator *model.Simulator, numLines int) *Sink {
	s := &Sink{
		ComponentBase: sim.NewComponentBase("Sink"),
		simulator:     simulator,
		queues:        make([]queueing.Buffer, numLines),
		arrived:       make([]uint64, numLines),
	}

	for i := range s.queues {
		s.queues[i] = queueing.MakeBufferBuilder().
			Unbounded().
			Build(sim.BuildNameWithIndex(s.Name(), "Queue", i))
	}

	simulator.SetSyncReceiver(s)

	return s
}

// Simulator returns the simulator that drives the sink.
func (s *Sink) Simulator() *model.Simulator {
	return s.simulator
}

// NumQueues returns the number of per-line queues.
func (s *Sink) NumQueues() int {
	return len(s.queues)
}

// Queue returns the queue of the given line.
func (s *Sink) Queue(line int) queueing.Buffer {
	if line < 0 || line >= len(s.queues) {
		log.Panicf("sink has no queue for line %d", line)
	}

	return s.queues[line]
}

// ReceivedBatches returns the number of released batches.
func (s *Sink) ReceivedBatches() uint64 {
	return s.receivedBatches
}

// ReceivedTotes returns the number of totes consumed by released batches.
func (s *Sink) ReceivedTotes() uint64 {
	return s.receivedTotes
}

// Arrived returns the number of totes that have reached the queue of a line.
func (s *Sink) Arrived(line int) uint64 {
	s.Queue(line)
	return s.arrived[line]
}

// Handle applies the deliveries addressed to the sink.
func (s *Sink) Handle(e sim.Event) error {
	s.Lock()
	defer s.Unlock()

	evt, ok := e.(*model.SyncEvent)
	if !ok {
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	delivery, ok := evt.Msg.(*sinkDelivery)
	if !ok {
		log.Panicf("cannot handle sync message of type %s",
			reflect.TypeOf(evt.Msg))
	}

	s.receive(delivery.tote)

	return nil
}

func (s *Sink) receive(tote Tote) {
	q := s.Queue(tote.Line)

	wasEmpty := q.Size() == 0
	q.Push(tote)
	s.arrived[tote.Line]++

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosToteReceived,
		Item:   tote,
	})

	if wasEmpty {
		s.ReleaseIfReady()
	}
}

// ReleaseIfReady releases a batch if every queue holds a tote. It takes one
// tote from every queue, or none at all.
func (s *Sink) ReleaseIfReady() bool {
	for _, q := range s.queues {
		if q.Size() == 0 {
			return false
		}
	}

	s.receivedBatches++
	s.receivedTotes += uint64(len(s.queues))

	release := BatchRelease{
		Time:  s.simulator.Now(),
		Batch: s.receivedBatches,
		Totes: make([]Tote, 0, len(s.queues)),
	}

	for _, q := range s.queues {
		release.Totes = append(release.Totes, q.Pop().(Tote))
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosBatchReleased,
		Item:   release,
	})

	return true
}

// Backlog returns the number of totes waiting in every queue.
func (s *Sink) Backlog() []int {
	backlog := make([]int, len(s.queues))
	for i, q := range s.queues {
		backlog[i] = q.Size()
	}

	return backlog
}
