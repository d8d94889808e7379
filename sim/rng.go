package sim

import (
	"hash/fnv"
	"math/rand"
	"sync"
)

// PartitionedRNG hands out one deterministic random stream per named
// subsystem. Streams are derived from a single master seed, so a run is
// reproduced by its seed no matter in which order the subsystems are created.
//
// The streams themselves are not thread-safe. Each one must stay with the
// simulator that owns it.
type PartitionedRNG struct {
	mu         sync.Mutex
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the stream of the named subsystem. The same name
// always returns the same stream.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	rng := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.subsystems[name] = rng

	return rng
}

// Seed returns the master seed.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))

	return int64(h.Sum64())
}
