package analysis

import (
	"github.com/sarchlab/conveyorsim/sim"
	"github.com/sarchlab/conveyorsim/sim/queueing"
)

// A TimeTeller tells the local time of the simulator that owns a buffer.
type TimeTeller interface {
	Now() sim.SimTime
}

// BufferAnalyzer records the time-weighted level of a buffer, either over
// the whole run or per period.
type BufferAnalyzer struct {
	PerfLogger
	TimeTeller

	buf       queueing.Buffer
	precision sim.Precision
	usePeriod bool
	period    sim.SimTime

	lastTime           sim.SimTime
	lastBufLevel       int
	bufLevelToDuration map[int]sim.SimTime

	levelTicks float64
	totalTicks float64
}

// Func is a function that records buffer level change.
func (b *BufferAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != queueing.HookPosBufPush && ctx.Pos != queueing.HookPosBufPop {
		return
	}

	now := b.Now()

	if b.usePeriod {
		b.closePeriods(now)
	}

	b.accumulate(now)
	b.lastBufLevel = b.buf.Size()
}

// Buffer returns the analyzed buffer.
func (b *BufferAnalyzer) Buffer() queueing.Buffer {
	return b.buf
}

// AverageLevel returns the time-weighted level since the start of the run.
func (b *BufferAnalyzer) AverageLevel() float64 {
	if b.totalTicks == 0 {
		return 0
	}

	return b.levelTicks / b.totalTicks
}

// Finish accounts the time up to now and reports the period in progress, or
// the whole run if no period is used.
func (b *BufferAnalyzer) Finish(now sim.SimTime) {
	if !b.usePeriod {
		b.accumulate(now)
		b.summarizePeriod(0, now)

		return
	}

	b.closePeriods(now)
	b.accumulate(now)
	b.summarizePeriod(b.periodStartTime(now), now)
}

func (b *BufferAnalyzer) accumulate(now sim.SimTime) {
	if now <= b.lastTime {
		return
	}

	d := now - b.lastTime
	b.bufLevelToDuration[b.lastBufLevel] += d
	b.levelTicks += float64(b.lastBufLevel) * float64(d)
	b.totalTicks += float64(d)
	b.lastTime = now
}

// closePeriods reports every period that ended at or before now.
func (b *BufferAnalyzer) closePeriods(now sim.SimTime) {
	for end := b.periodEndTime(b.lastTime); end <= now; end += b.period {
		b.accumulate(end)
		b.summarizePeriod(end-b.period, end)
		b.bufLevelToDuration = make(map[int]sim.SimTime)
	}
}

func (b *BufferAnalyzer) summarizePeriod(start, end sim.SimTime) {
	sumLevel := 0.0
	sumDuration := 0.0
	for level, duration := range b.bufLevelToDuration {
		sumLevel += float64(level) * float64(duration)
		sumDuration += float64(duration)
	}

	if sumDuration == 0 {
		return
	}

	avgLevel := sumLevel / sumDuration
	if avgLevel == 0 {
		return
	}

	b.PerfLogger.AddDataEntry(PerfAnalyzerEntry{
		StartTime: start.InUnits(b.precision),
		EndTime:   end.InUnits(b.precision),
		Location:  b.buf.Name(),
		What:      "Level",
		EntryType: "Buffer",
		Value:     avgLevel,
		Unit:      "totes",
	})
}

func (b *BufferAnalyzer) periodStartTime(t sim.SimTime) sim.SimTime {
	return t / b.period * b.period
}

func (b *BufferAnalyzer) periodEndTime(t sim.SimTime) sim.SimTime {
	return b.periodStartTime(t) + b.period
}

// BufferAnalyzerBuilder can build a BufferAnalyzer.
type BufferAnalyzerBuilder struct {
	perfLogger PerfLogger
	timeTeller TimeTeller
	precision  sim.Precision
	usePeriod  bool
	period     sim.SimTime
	buffer     queueing.Buffer
}

// MakeBufferAnalyzerBuilder creates a BufferAnalyzerBuilder.
func MakeBufferAnalyzerBuilder() BufferAnalyzerBuilder {
	return BufferAnalyzerBuilder{
		precision: sim.DefaultPrecision,
	}
}

// WithPerfLogger sets the PerfLogger to use.
func (b BufferAnalyzerBuilder) WithPerfLogger(
	perfLogger PerfLogger,
) BufferAnalyzerBuilder {
	b.perfLogger = perfLogger
	return b
}

// WithTimeTeller sets the TimeTeller to use.
func (b BufferAnalyzerBuilder) WithTimeTeller(
	timeTeller TimeTeller,
) BufferAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// WithPrecision sets the number of ticks per reported time unit.
func (b BufferAnalyzerBuilder) WithPrecision(
	p sim.Precision,
) BufferAnalyzerBuilder {
	b.precision = p
	return b
}

// WithPeriod sets the period to use, in ticks.
func (b BufferAnalyzerBuilder) WithPeriod(
	period sim.SimTime,
) BufferAnalyzerBuilder {
	b.usePeriod = true
	b.period = period

	return b
}

// WithBuffer sets the buffer to use.
func (b BufferAnalyzerBuilder) WithBuffer(
	buffer queueing.Buffer,
) BufferAnalyzerBuilder {
	b.buffer = buffer
	return b
}

// Build creates a BufferAnalyzer.
func (b BufferAnalyzerBuilder) Build() *BufferAnalyzer {
	if b.perfLogger == nil {
		panic("perfLogger is not set")
	}

	if b.timeTeller == nil {
		panic("timeTeller is not set")
	}

	if b.buffer == nil {
		panic("buffer is not set")
	}

	if b.usePeriod && b.period == 0 {
		panic("period must be at least one tick")
	}

	return &BufferAnalyzer{
		PerfLogger:         b.perfLogger,
		TimeTeller:         b.timeTeller,
		buf:                b.buffer,
		precision:          b.precision,
		usePeriod:          b.usePeriod,
		period:             b.period,
		lastBufLevel:       b.buffer.Size(),
		bufLevelToDuration: make(map[int]sim.SimTime),
	}
}
