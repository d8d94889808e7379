package conveyor

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyorsim/sim"
)

var _ = Describe("Line", func() {
	var (
		cfg  SegmentConfig
		line *Line
	)

	build := func() {
		line = MakeModelBuilder().
			WithSegments(3).
			WithSegmentConfig(cfg).
			WithPrecision(1000).
			Build().
			Line(0)
	}

	BeforeEach(func() {
		cfg = DefaultSegmentConfig()
	})

	It("should generate totes and schedule the next generation", func() {
		build()

		var generated []Tote
		line.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == HookPosToteGenerated {
				generated = append(generated, ctx.Item.(Tote))
			}
		}))

		Expect(line.Handle(GenerateToteEvent{
			EventBase: sim.NewEventBase(0, line),
		})).To(Succeed())

		Expect(generated).To(Equal([]Tote{{Line: 0, Serial: 0}}))
		Expect(line.GeneratedCount()).To(Equal(uint64(1)))
		Expect(line.MovedCount()).To(Equal(uint64(1)))
		Expect(line.Segment(1).Size()).To(Equal(1))

		engine := line.Simulator().Engine()
		Expect(engine.PendingEvents()).To(Equal(2))
	})

	It("should arm and move when no extra delay happens", func() {
		build()
		line.Segment(1).occupancy.Push(Tote{Serial: 1})

		Expect(line.Handle(ServiceCompleteEvent{
			EventBase: sim.NewEventBase(0, line),
			Segment:   1,
		})).To(Succeed())

		Expect(line.Segment(1).Size()).To(Equal(0))
		Expect(line.Segment(2).Size()).To(Equal(1))
	})

	It("should delay within the extra delay range", func() {
		cfg.ExtraDelayChance = 100
		cfg.ExtraDelayMin = 3
		cfg.ExtraDelayMax = 5
		build()
		line.Segment(1).occupancy.Push(Tote{Serial: 1})

		Expect(line.Handle(ServiceCompleteEvent{
			EventBase: sim.NewEventBase(0, line),
			Segment:   1,
		})).To(Succeed())

		Expect(line.Segment(1).State()).To(Equal(SegmentOccupiedHeld))

		t, ok := line.Simulator().Engine().NextEventTime()
		Expect(ok).To(BeTrue())
		Expect(t).To(BeNumerically(">=", 3000))
		Expect(t).To(BeNumerically("<=", 5000))
	})

	It("should never delay when the chance is zero", func() {
		cfg.ExtraDelayChance = 0
		build()

		for i := 0; i < 100; i++ {
			Expect(line.extraDelayHappens(line.Segment(1))).To(BeFalse())
		}
	})

	It("should keep extra delays at least one tick long", func() {
		cfg.ExtraDelayMin = 0
		cfg.ExtraDelayMax = 0
		build()

		Expect(line.sampleExtraDelay(line.Segment(1))).To(Equal(sim.SimTime(1)))
	})

	It("should panic on unknown events", func() {
		build()

		Expect(func() {
			_ = line.Handle(struct{ *sim.EventBase }{sim.NewEventBase(0, line)})
		}).To(Panic())
	})
})
