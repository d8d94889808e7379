package model

import (
	"log"

	"github.com/sarchlab/conveyorsim/sim"
)

// A Dependency is a one-way causal edge between two simulators. Deliveries
// along the edge travel through its channel.
type Dependency struct {
	from     *Simulator
	to       *Simulator
	promise  sim.SimTime
	promised bool
	channel  *SyncChannel
}

// From returns the sending simulator.
func (d *Dependency) From() *Simulator {
	return d.from
}

// To returns the receiving simulator.
func (d *Dependency) To() *Simulator {
	return d.to
}

// Channel returns the channel that carries the deliveries of the edge.
func (d *Dependency) Channel() *SyncChannel {
	return d.channel
}

// SetPromise declares the minimal delay of every delivery along the edge.
// The receiver may run up to this far ahead of the sender.
func (d *Dependency) SetPromise(minimalDelay sim.SimTime) {
	if minimalDelay == 0 {
		log.Panicf("promise of %s -> %s must be at least one tick",
			d.from.name, d.to.name)
	}

	d.promise = minimalDelay
	d.promised = true
}

// Promise returns the declared minimal delay. The boolean is false if no
// promise has been set.
func (d *Dependency) Promise() (sim.SimTime, bool) {
	return d.promise, d.promised
}

// A SyncMsg is the payload of a synchronized delivery.
type SyncMsg interface {
	// OnSenderSide runs on the sending simulator once the delivery leaves
	// it. It must only touch the sender's state.
	OnSenderSide(sender *Simulator)
}

// SyncTransfer is a delivery that has been sent but not yet applied.
type SyncTransfer struct {
	Src     *Simulator
	Dst     *Simulator
	Msg     SyncMsg
	Arrival sim.SimTime
}

// SyncEvent applies a delivery on the receiving simulator at the arrival
// time. Its handler is the receiver registered with SetSyncReceiver.
type SyncEvent struct {
	*sim.EventBase

	Src *Simulator
	Dst *Simulator
	Msg SyncMsg
}

// SyncChannel buffers the deliveries of one dependency until the container
// hands them to the receiver. Only the sender writes to it while simulators
// run, and only the container drains it, between windows.
type SyncChannel struct {
	transfers []SyncTransfer
	sent      uint64
	delivered uint64
}

func (c *SyncChannel) push(t SyncTransfer) {
	c.transfers = append(c.transfers, t)
	c.sent++
}

func (c *SyncChannel) drain() []SyncTransfer {
	out := c.transfers
	c.transfers = nil
	c.delivered += uint64(len(out))

	return out
}

// Len returns the number of deliveries waiting in the channel.
func (c *SyncChannel) Len() int {
	return len(c.transfers)
}

// Sent returns the number of deliveries ever pushed into the channel.
func (c *SyncChannel) Sent() uint64 {
	return c.sent
}

// Delivered returns the number of deliveries handed to the receiver.
func (c *SyncChannel) Delivered() uint64 {
	return c.delivered
}
