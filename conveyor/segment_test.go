package conveyor

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Segment", func() {
	It("should make the source unbounded and always armed", func() {
		s := newSegment("Line[0]", 0, DefaultSegmentConfig())

		Expect(s.IsSource()).To(BeTrue())
		Expect(s.Capacity).To(Equal(0))
		Expect(s.MinTransitTime).To(Equal(uint64(0)))
		Expect(s.ExtraDelayChance).To(Equal(0.0))
		Expect(s.IsMoveEnabled()).To(BeTrue())
		Expect(s.hasRoom()).To(BeTrue())
		Expect(s.Name()).To(Equal("Line[0].Segment[0]"))

		s.disarm()
		Expect(s.IsMoveEnabled()).To(BeTrue())
	})

	It("should move through its states", func() {
		s := newSegment("Line[0]", 1, DefaultSegmentConfig())
		Expect(s.State()).To(Equal(SegmentIdle))
		Expect(s.IsMoveEnabled()).To(BeFalse())

		s.occupancy.Push(Tote{Serial: 1})
		Expect(s.State()).To(Equal(SegmentOccupiedHeld))
		Expect(s.hasRoom()).To(BeFalse())

		s.moveEnabled = true
		Expect(s.State()).To(Equal(SegmentOccupiedArmed))
		Expect(s.State().String()).To(Equal("OccupiedArmed"))

		s.disarm()
		Expect(s.depart()).To(Equal(Tote{Serial: 1}))
		Expect(s.State()).To(Equal(SegmentIdle))
		Expect(s.IsMoveEnabled()).To(BeFalse())
	})

	It("should re-arm multi-slot segments on departure", func() {
		cfg := DefaultSegmentConfig()
		cfg.Capacity = 2
		s := newSegment("Line[0]", 1, cfg)

		s.occupancy.Push(Tote{Serial: 1})
		s.occupancy.Push(Tote{Serial: 2})
		s.disarm()
		s.depart()

		Expect(s.IsMoveEnabled()).To(BeTrue())
		Expect(s.head()).To(Equal(Tote{Serial: 2}))
	})

	DescribeTable("invalid configurations",
		func(mutate func(c *SegmentConfig)) {
			cfg := DefaultSegmentConfig()
			mutate(&cfg)

			Expect(func() { newSegment("Line[0]", 1, cfg) }).To(Panic())
		},
		Entry("zero capacity", func(c *SegmentConfig) { c.Capacity = 0 }),
		Entry("negative chance", func(c *SegmentConfig) { c.ExtraDelayChance = -1 }),
		Entry("chance over 100", func(c *SegmentConfig) { c.ExtraDelayChance = 101 }),
		Entry("empty delay range", func(c *SegmentConfig) {
			c.ExtraDelayMin = 5
			c.ExtraDelayMax = 4
		}),
	)
})
