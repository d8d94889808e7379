package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/conveyorsim/conveyor"
	"github.com/sarchlab/conveyorsim/sim"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		m        *conveyor.Model
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
		m = conveyor.MakeModelBuilder().
			WithLines(2).
			WithPrecision(1000).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record batches and a single summary of every line", func() {
		recorder.EXPECT().CreateTable(BatchReleaseTable, BatchReleaseEntry{})
		recorder.EXPECT().CreateTable(LineSummaryTable, LineSummaryEntry{})

		var batches []BatchReleaseEntry
		recorder.EXPECT().
			InsertData(BatchReleaseTable, gomock.Any()).
			Do(func(_ string, entry any) {
				batches = append(batches, entry.(BatchReleaseEntry))
			}).
			AnyTimes()

		var lines []LineSummaryEntry
		recorder.EXPECT().
			InsertData(LineSummaryTable, gomock.Any()).
			Do(func(_ string, entry any) {
				lines = append(lines, entry.(LineSummaryEntry))
			}).
			Times(2)
		recorder.EXPECT().Flush().Times(3)

		t := NewDBTracer(recorder, m)
		Expect(m.RunFor(30)).To(Succeed())
		Expect(lines).To(BeEmpty())

		Expect(m.RunFor(60)).To(Succeed())
		t.Finish()
		t.Finish()

		r := m.Results()
		Expect(batches).To(HaveLen(int(r.ReceivedBatches)))
		for i, b := range batches {
			Expect(b.Batch).To(Equal(uint64(i + 1)))
			Expect(b.Totes).To(Equal(2))
			Expect(b.Time).To(BeNumerically("<=", 60))
		}

		Expect(lines).To(Equal([]LineSummaryEntry{
			{
				Line: 0, Name: "Line[0]",
				Generated: r.Lines[0].Generated,
				Moved:     r.Lines[0].Moved,
				Delivered: r.Lines[0].Delivered,
			},
			{
				Line: 1, Name: "Line[1]",
				Generated: r.Lines[1].Generated,
				Moved:     r.Lines[1].Moved,
				Delivered: r.Lines[1].Delivered,
			},
		}))
	})

	It("should convert release times into model time units", func() {
		recorder.EXPECT().CreateTable(gomock.Any(), gomock.Any()).Times(2)
		recorder.EXPECT().InsertData(BatchReleaseTable, BatchReleaseEntry{
			Time:  2.5,
			Batch: 7,
			Totes: 2,
		})

		t := NewDBTracer(recorder, m)
		t.BatchReleased(conveyor.BatchRelease{
			Time:  sim.SimTime(2500),
			Batch: 7,
			Totes: make([]conveyor.Tote, 2),
		})
	})
})
