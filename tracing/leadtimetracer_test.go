package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyorsim/conveyor"
)

var _ = Describe("LeadTimeTracer", func() {
	It("should measure the time from generation to hand-over", func() {
		m := conveyor.MakeModelBuilder().
			WithLines(2).
			WithSegments(3).
			WithPrecision(1000).
			WithParallel().
			Build()

		t := NewLeadTimeTracer(m)
		Expect(m.RunFor(300)).To(Succeed())

		r := m.Results()
		var generated, delivered uint64
		for _, l := range r.Lines {
			generated += l.Generated
			delivered += l.Delivered
		}

		Expect(t.Count()).To(Equal(delivered))
		Expect(uint64(t.InFlight())).To(Equal(generated - delivered))

		Expect(t.MinLeadTime()).To(Equal(4.0))
		Expect(t.AverageLeadTime()).To(BeNumerically(">=", t.MinLeadTime()))
		Expect(t.MaxLeadTime()).To(BeNumerically(">=", t.AverageLeadTime()))
	})

	It("should report zero before any delivery", func() {
		m := conveyor.MakeModelBuilder().Build()
		t := NewLeadTimeTracer(m)

		Expect(t.AverageLeadTime()).To(Equal(0.0))
		Expect(t.Count()).To(Equal(uint64(0)))
	})
})
