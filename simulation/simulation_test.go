package simulation

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/datarecording"
	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/tracing"
)

var _ = Describe("Simulation", func() {
	var modelBuilder conveyor.ModelBuilder

	BeforeEach(func() {
		modelBuilder = conveyor.MakeModelBuilder().
			WithLines(3).
			WithSegments(4).
			WithPrecision(1000).
			WithSeed(5)
	})

	It("should register the components of the model", func() {
		s, err := MakeBuilder().WithModelBuilder(modelBuilder).Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		Expect(s.Components()).To(HaveLen(4))
		Expect(s.GetComponentByName("Sink")).To(BeIdenticalTo(s.Model().Sink()))
		Expect(s.GetComponentByName("Line[1]")).To(BeIdenticalTo(s.Model().Line(1)))
		Expect(s.GetComponentByName("Nothing")).To(BeNil())

		Expect(s.GetDataRecorder()).To(BeNil())
		Expect(s.GetMonitor()).To(BeNil())
		Expect(s.GetAnalyzer()).To(BeNil())
	})

	It("should trace deliveries and lead times", func() {
		s, err := MakeBuilder().WithModelBuilder(modelBuilder).Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		Expect(s.Model().RunFor(100)).To(Succeed())

		r := s.Model().Results()
		var delivered uint64
		for _, l := range r.Lines {
			delivered += l.Delivered
		}

		Expect(s.GetDeliveryCounter().TotalDeliveries()).To(Equal(delivered))
		Expect(s.GetDeliveryCounter().Batches()).To(Equal(r.ReceivedBatches))
		Expect(s.GetLeadTimeTracer().Count()).To(Equal(delivered))
	})

	It("should record and analyze a continued run", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		s, err := MakeBuilder().
			WithModelBuilder(modelBuilder).
			WithOutputFileName(path).
			WithAnalysis(25).
			Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Run(sim.Units(60, s.Model().Precision()))).To(Succeed())
		Expect(s.Run(sim.Units(100, s.Model().Precision()))).To(Succeed())
		Expect(s.GetAnalyzer().Levels()).To(HaveLen(3*4 + 3))
		Expect(s.Terminate()).To(Succeed())
		Expect(s.Terminate()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.LineSummaryTable, tracing.LineSummaryEntry{})
		_, lines, err := reader.Query(context.Background(),
			tracing.LineSummaryTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal(3))
	})

	It("should refuse to overwrite a recording", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")
		Expect(os.WriteFile(path+".sqlite3", nil, 0o600)).To(Succeed())

		_, err := MakeBuilder().
			WithModelBuilder(modelBuilder).
			WithOutputFileName(path).
			Build()

		Expect(err).To(MatchError(datarecording.ErrFileExists))
	})

	It("should panic on monitor settings without a monitor", func() {
		Expect(func() { MakeBuilder().WithMonitorPort(8080).Build() }).
			To(Panic())
		Expect(func() { MakeBuilder().WithBrowser().Build() }).To(Panic())
	})
})
