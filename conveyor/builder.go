package conveyor

import (
	"log"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/conveyorsim/model"
	"github.com/sarchlab/conveyorsim/sim"
)

// ModelBuilder can build conveyor models.
type ModelBuilder struct {
	numLines              int
	numSegments           int
	segmentConfig         SegmentConfig
	lineSegmentConfigs    map[int]SegmentConfig
	maxGenerationInterval float64
	syncDelay             uint64
	precision             sim.Precision
	seed                  int64
	parallel              bool
	eventLogger           *logrus.Logger
}

// MakeModelBuilder creates a ModelBuilder with one line of three segments.
func MakeModelBuilder() ModelBuilder {
	return ModelBuilder{
		numLines:              1,
		numSegments:           3,
		segmentConfig:         DefaultSegmentConfig(),
		maxGenerationInterval: 10,
		syncDelay:             1,
		precision:             sim.DefaultPrecision,
	}
}

// WithLines sets the number of lines that feed the sink.
func (b ModelBuilder) WithLines(n int) ModelBuilder {
	b.numLines = n
	return b
}

// WithSegments sets the number of segments per line, including the source.
func (b ModelBuilder) WithSegments(n int) ModelBuilder {
	b.numSegments = n
	return b
}

// WithSegmentConfig sets the parameters of every non-source segment.
func (b ModelBuilder) WithSegmentConfig(cfg SegmentConfig) ModelBuilder {
	b.segmentConfig = cfg
	return b
}

// WithLineSegmentConfig overrides the segment parameters of one line.
func (b ModelBuilder) WithLineSegmentConfig(
	line int,
	cfg SegmentConfig,
) ModelBuilder {
	configs := make(map[int]SegmentConfig, len(b.lineSegmentConfigs)+1)
	for k, v := range b.lineSegmentConfigs {
		configs[k] = v
	}
	configs[line] = cfg

	b.lineSegmentConfigs = configs

	return b
}

// WithMaxGenerationInterval sets the upper bound of the time between two
// totes generated by a source, in model time units.
func (b ModelBuilder) WithMaxGenerationInterval(units float64) ModelBuilder {
	b.maxGenerationInterval = units
	return b
}

// WithSyncDelay sets the time a tote takes to travel from the last segment
// to the sink, in model time units. It is also the promise of every
// line-to-sink dependency.
func (b ModelBuilder) WithSyncDelay(units uint64) ModelBuilder {
	b.syncDelay = units
	return b
}

// WithPrecision sets the number of ticks per model time unit.
func (b ModelBuilder) WithPrecision(p sim.Precision) ModelBuilder {
	b.precision = p
	return b
}

// WithSeed sets the seed of the model.
func (b ModelBuilder) WithSeed(seed int64) ModelBuilder {
	b.seed = seed
	return b
}

// WithParallel lets lines run concurrently.
func (b ModelBuilder) WithParallel() ModelBuilder {
	b.parallel = true
	return b
}

// WithEventLogger logs every event at debug level.
func (b ModelBuilder) WithEventLogger(logger *logrus.Logger) ModelBuilder {
	b.eventLogger = logger
	return b
}

// Build creates the model. Every line gets its own simulator and a promised
// dependency towards the sink's simulator.
func (b ModelBuilder) Build() *Model {
	b.mustBeValid()

	cb := model.MakeBuilder().
		WithPrecision(b.precision).
		WithSeed(b.seed)
	if b.parallel {
		cb = cb.WithParallel()
	}
	if b.eventLogger != nil {
		cb = cb.WithEventLogger(b.eventLogger)
	}

	c := cb.Build()

	lineSims := make([]*model.Simulator, b.numLines)
	for i := range lineSims {
		lineSims[i] = c.AddSimulator(sim.BuildNameWithIndex("", "Line", i))
	}

	sinkSim := c.AddSimulator("Sink")
	promise := sim.Units(b.syncDelay, b.precision)

	m := &Model{
		container: c,
		sink:      newSink(sinkSim, b.numLines),
	}

	for i, s := range lineSims {
		c.AddDependency(s, sinkSim)
		c.SetPromise(s, sinkSim, promise)

		m.lines = append(m.lines, b.buildLine(i, s, sinkSim.ID(), promise))
	}

	return m
}

func (b ModelBuilder) buildLine(
	index int,
	s *model.Simulator,
	sink model.SimulatorID,
	syncDelay sim.SimTime,
) *Line {
	l := &Line{
		ComponentBase:         sim.NewComponentBase(s.Name()),
		index:                 index,
		simulator:             s,
		maxGenerationInterval: b.maxGenerationInterval,
		syncDelay:             syncDelay,
		sink:                  sink,
	}

	cfg := b.segmentConfig
	if override, ok := b.lineSegmentConfigs[index]; ok {
		cfg = override
	}

	for j := 0; j < b.numSegments; j++ {
		l.segments = append(l.segments, newSegment(l.Name(), j, cfg))
	}

	return l
}

func (b ModelBuilder) mustBeValid() {
	if b.numLines < 1 {
		log.Panicf("a model needs at least one line, got %d", b.numLines)
	}

	if b.numSegments < 2 {
		log.Panicf("a line needs a source and at least one segment, got %d",
			b.numSegments)
	}

	if b.maxGenerationInterval < 0 {
		log.Panicf("generation interval must not be negative, got %f",
			b.maxGenerationInterval)
	}

	if b.syncDelay == 0 {
		log.Panic("sync delay must be at least one time unit")
	}

	for line := range b.lineSegmentConfigs {
		if line < 0 || line >= b.numLines {
			log.Panicf("segment config given for line %d, which does not exist",
				line)
		}
	}
}
