package sim

import (
	"math"
	"math/bits"
)

// SimTime is a point or a span in simulated time, counted in ticks. How many
// ticks make one model time unit is decided by the Precision of the model.
type SimTime uint64

// Precision is the number of ticks in one model time unit.
type Precision uint64

// DefaultPrecision resolves one model time unit into a million ticks.
const DefaultPrecision Precision = 1_000_000

// MaxSimTime is the largest representable time. Arithmetic saturates at this
// value instead of wrapping around.
const MaxSimTime = SimTime(math.MaxUint64)

// Add returns t+d, saturating at MaxSimTime.
func (t SimTime) Add(d SimTime) SimTime {
	sum, carry := bits.Add64(uint64(t), uint64(d), 0)
	if carry != 0 {
		return MaxSimTime
	}

	return SimTime(sum)
}

// Mul returns t*f, saturating at MaxSimTime.
func (t SimTime) Mul(f uint64) SimTime {
	hi, lo := bits.Mul64(uint64(t), f)
	if hi != 0 {
		return MaxSimTime
	}

	return SimTime(lo)
}

// Div returns t/f. Dividing by zero is a programming error.
func (t SimTime) Div(f uint64) SimTime {
	if f == 0 {
		panic("sim: dividing time by zero")
	}

	return SimTime(uint64(t) / f)
}

// ApplyPrecision converts a value given in model time units into ticks.
func (t SimTime) ApplyPrecision(p Precision) SimTime {
	PrecisionMustBeValid(p)

	return t.Mul(uint64(p))
}

// TruncateToPrecision drops the sub-unit part of t.
func (t SimTime) TruncateToPrecision(p Precision) SimTime {
	PrecisionMustBeValid(p)

	return t - t%SimTime(p)
}

// InUnits expresses t in model time units.
func (t SimTime) InUnits(p Precision) float64 {
	PrecisionMustBeValid(p)

	return float64(t) / float64(p)
}

// Units returns n whole model time units as ticks.
func Units(n uint64, p Precision) SimTime {
	return SimTime(n).ApplyPrecision(p)
}

// FromUnits converts a fractional amount of model time units into ticks,
// rounding to the nearest tick. Negative amounts become zero.
func FromUnits(units float64, p Precision) SimTime {
	PrecisionMustBeValid(p)

	if units <= 0 || math.IsNaN(units) {
		return 0
	}

	ticks := math.Round(units * float64(p))
	if ticks >= float64(MaxSimTime) {
		return MaxSimTime
	}

	return SimTime(ticks)
}

// MinTime returns the smaller of two times.
func MinTime(a, b SimTime) SimTime {
	if a < b {
		return a
	}

	return b
}

// PrecisionMustBeValid panics if p is zero.
func PrecisionMustBeValid(p Precision) {
	if p == 0 {
		panic("sim: precision must be positive")
	}
}
