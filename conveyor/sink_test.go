package conveyor

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyorsim/model"
	"github.com/sarchlab/conveyorsim/sim"
)

var _ = Describe("Sink", func() {
	var (
		m        *Model
		sink     *Sink
		releases []BatchRelease
		received []Tote
	)

	BeforeEach(func() {
		m = MakeModelBuilder().WithLines(2).WithPrecision(1000).Build()
		sink = m.Sink()

		releases = nil
		received = nil
		sink.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			switch ctx.Pos {
			case HookPosBatchReleased:
				releases = append(releases, ctx.Item.(BatchRelease))
			case HookPosToteReceived:
				received = append(received, ctx.Item.(Tote))
			}
		}))
	})

	It("should keep one queue per line", func() {
		Expect(sink.NumQueues()).To(Equal(2))
		Expect(sink.Queue(1).Name()).To(Equal("Sink.Queue[1]"))
		Expect(func() { sink.Queue(2) }).To(Panic())
		Expect(func() { sink.receive(Tote{Line: 3}) }).To(Panic())
	})

	It("should release only when every queue holds a tote", func() {
		sink.receive(Tote{Line: 0, Serial: 0})
		sink.receive(Tote{Line: 0, Serial: 1})

		Expect(sink.ReceivedBatches()).To(Equal(uint64(0)))
		Expect(sink.Backlog()).To(Equal([]int{2, 0}))

		sink.receive(Tote{Line: 1, Serial: 0})

		Expect(sink.ReceivedBatches()).To(Equal(uint64(1)))
		Expect(sink.ReceivedTotes()).To(Equal(uint64(2)))
		Expect(sink.Backlog()).To(Equal([]int{1, 0}))
		Expect(releases).To(HaveLen(1))
		Expect(releases[0].Batch).To(Equal(uint64(1)))
		Expect(releases[0].Totes).To(Equal([]Tote{
			{Line: 0, Serial: 0},
			{Line: 1, Serial: 0},
		}))

		sink.receive(Tote{Line: 1, Serial: 1})

		Expect(sink.ReceivedBatches()).To(Equal(uint64(2)))
		Expect(sink.ReceivedTotes()).To(Equal(uint64(4)))
		Expect(sink.Backlog()).To(Equal([]int{0, 0}))
		Expect(received).To(HaveLen(4))
		Expect(sink.Arrived(0)).To(Equal(uint64(2)))
		Expect(sink.Arrived(1)).To(Equal(uint64(2)))
	})

	It("should only check the barrier on an empty queue's first arrival", func() {
		sink.receive(Tote{Line: 0, Serial: 0})
		sink.queues[1].Push(Tote{Line: 1, Serial: 0})

		sink.receive(Tote{Line: 0, Serial: 1})

		Expect(sink.ReceivedBatches()).To(Equal(uint64(0)))
		Expect(sink.ReleaseIfReady()).To(BeTrue())
		Expect(sink.ReceivedBatches()).To(Equal(uint64(1)))
		Expect(sink.ReleaseIfReady()).To(BeFalse())
	})

	It("should apply deliveries from its simulator", func() {
		evt := &model.SyncEvent{
			EventBase: sim.NewEventBase(0, sink),
			Src:       m.Line(0).Simulator(),
			Dst:       sink.Simulator(),
			Msg:       &sinkDelivery{line: m.Line(0), tote: Tote{Line: 0}},
		}

		Expect(sink.Handle(evt)).To(Succeed())
		Expect(sink.Backlog()).To(Equal([]int{1, 0}))
	})

	It("should panic on unknown events", func() {
		evt := GenerateToteEvent{EventBase: sim.NewEventBase(0, sink)}

		Expect(func() { _ = sink.Handle(evt) }).To(Panic())
	})
})
