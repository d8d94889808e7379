package model

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/conveyorsim/sim"
)

// Builder can build containers.
type Builder struct {
	precision   sim.Precision
	seed        int64
	parallel    bool
	eventLogger *logrus.Logger
}

// MakeBuilder creates a new Builder with the default precision and seed 0.
func MakeBuilder() Builder {
	return Builder{
		precision: sim.DefaultPrecision,
	}
}

// WithPrecision sets the number of ticks per model time unit.
func (b Builder) WithPrecision(p sim.Precision) Builder {
	b.precision = p
	return b
}

// WithSeed sets the master seed of the random streams.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithParallel lets the simulators of a window run concurrently.
func (b Builder) WithParallel() Builder {
	b.parallel = true
	return b
}

// WithEventLogger logs every event of every simulator at debug level.
func (b Builder) WithEventLogger(logger *logrus.Logger) Builder {
	b.eventLogger = logger
	return b
}

// Build creates a container with no simulators.
func (b Builder) Build() *Container {
	sim.PrecisionMustBeValid(b.precision)

	return &Container{
		precision:   b.precision,
		rng:         sim.NewPartitionedRNG(b.seed),
		parallel:    b.parallel,
		eventLogger: b.eventLogger,
		nameIndex:   make(map[string]SimulatorID),
	}
}
