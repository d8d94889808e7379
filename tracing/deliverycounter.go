package tracing

import (
	"sync"

	"github.com/sarchlab/conveyorsim/conveyor"
)

// DeliveryCounter counts the totes each line hands over and the batches the
// sink releases. Lines may report concurrently.
type DeliveryCounter struct {
	lock       sync.Mutex
	deliveries map[string]uint64
	batches    uint64
}

// NewDeliveryCounter creates a new DeliveryCounter.
func NewDeliveryCounter() *DeliveryCounter {
	return &DeliveryCounter{
		deliveries: make(map[string]uint64),
	}
}

// ToteDelivered counts a delivery of the line.
func (c *DeliveryCounter) ToteDelivered(line *conveyor.Line, _ conveyor.Tote) {
	c.lock.Lock()
	c.deliveries[line.Name()]++
	c.lock.Unlock()
}

// BatchReleased counts a batch.
func (c *DeliveryCounter) BatchReleased(_ conveyor.BatchRelease) {
	c.lock.Lock()
	c.batches++
	c.lock.Unlock()
}

// Deliveries returns the number of totes the named line has handed over.
func (c *DeliveryCounter) Deliveries(line string) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.deliveries[line]
}

// TotalDeliveries returns the number of totes handed over by all lines.
func (c *DeliveryCounter) TotalDeliveries() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	var total uint64
	for _, n := range c.deliveries {
		total += n
	}

	return total
}

// Batches returns the number of released batches.
func (c *DeliveryCounter) Batches() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.batches
}
