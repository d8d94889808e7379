package analysis

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/datarecording"
	"github.com/sarchlab/conveyorsim/sim"
)

var _ = Describe("PerfAnalyzer", func() {
	var m *conveyor.Model

	BeforeEach(func() {
		m = conveyor.MakeModelBuilder().
			WithLines(2).
			WithSegments(4).
			WithPrecision(100).
			WithLineSegmentConfig(1, conveyor.SegmentConfig{
				Capacity:       1,
				MinTransitTime: 5,
			}).
			Build()
	})

	It("should rank the buffers of a model by their average level", func() {
		p := MakePerfAnalyzerBuilder().WithPrecision(m.Precision()).Build()
		p.RegisterModel(m)

		Expect(m.RunFor(200)).To(Succeed())

		levels := p.Levels()
		Expect(levels).To(HaveLen(2*4 + 2))
		for i := 1; i < len(levels); i++ {
			Expect(levels[i-1].Average).To(
				BeNumerically(">=", levels[i].Average))
		}

		Expect(levels[0].Average).To(BeNumerically(">", 0))
		Expect(p.Entries()).NotTo(BeEmpty())
	})

	It("should record periodic entries", func() {
		path := filepath.Join(GinkgoT().TempDir(), "perf")
		recorder, err := datarecording.New(path)
		Expect(err).NotTo(HaveOccurred())

		p := MakePerfAnalyzerBuilder().
			WithPrecision(m.Precision()).
			WithPeriod(sim.Units(50, m.Precision())).
			WithRecorder(recorder).
			Build()
		p.RegisterModel(m)

		Expect(m.RunFor(200)).To(Succeed())
		Expect(p.Entries()).To(BeEmpty())
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(PerfAnalyzerTable, PerfAnalyzerEntry{})
		rows, total, err := reader.Query(context.Background(),
			PerfAnalyzerTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeNumerically(">", 0))

		for _, row := range rows {
			e := row.(*PerfAnalyzerEntry)
			Expect(e.Value).To(BeNumerically(">", 0))
			Expect(e.EndTime - e.StartTime).To(BeNumerically("<=", 50))
		}
	})
})
