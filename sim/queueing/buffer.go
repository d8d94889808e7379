// Package queueing provides the FIFO buffers that hold totes inside segments
// and sinks.
package queueing

import (
	"log"

	"github.com/sarchlab/conveyorsim/sim"
)

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &sim.HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &sim.HookPos{Name: "Buffer Pop"}

// A Buffer is a fifo queue for anything
type Buffer interface {
	sim.Named
	sim.Hookable

	CanPush() bool
	Push(e interface{})
	Pop() interface{}
	Peek() interface{}

	// Capacity returns the maximum number of elements. Unbounded buffers
	// report 0.
	Capacity() int
	Size() int
	Clear()
}

// BufferBuilder is a builder for Buffer.
type BufferBuilder struct {
	capacity  int
	unbounded bool
}

// MakeBufferBuilder creates a BufferBuilder with a capacity of one element.
func MakeBufferBuilder() BufferBuilder {
	return BufferBuilder{capacity: 1}
}

// WithCapacity defines the capacity of the buffer.
func (b BufferBuilder) WithCapacity(capacity int) BufferBuilder {
	b.capacity = capacity
	b.unbounded = false

	return b
}

// Unbounded makes the buffer accept any number of elements.
func (b BufferBuilder) Unbounded() BufferBuilder {
	b.unbounded = true
	return b
}

// Build builds a new Buffer.
func (b BufferBuilder) Build(name string) Buffer {
	sim.NameMustBeValid(name)

	if !b.unbounded && b.capacity <= 0 {
		log.Panicf("buffer %s must have a positive capacity", name)
	}

	return &bufferImpl{
		name:      name,
		capacity:  b.capacity,
		unbounded: b.unbounded,
	}
}

type bufferImpl struct {
	sim.HookableBase

	name      string
	capacity  int
	unbounded bool
	elements  []interface{}
}

// Name returns the name of the buffer.
func (b *bufferImpl) Name() string {
	return b.name
}

func (b *bufferImpl) CanPush() bool {
	return b.unbounded || len(b.elements) < b.capacity
}

func (b *bufferImpl) Push(e interface{}) {
	if !b.CanPush() {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.elements = append(b.elements, e)

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    HookPosBufPush,
			Item:   e,
		})
	}
}

func (b *bufferImpl) Pop() interface{} {
	if len(b.elements) == 0 {
		return nil
	}

	e := b.elements[0]
	b.elements[0] = nil
	b.elements = b.elements[1:]

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    HookPosBufPop,
			Item:   e,
		})
	}

	return e
}

func (b *bufferImpl) Peek() interface{} {
	if len(b.elements) == 0 {
		return nil
	}

	return b.elements[0]
}

func (b *bufferImpl) Capacity() int {
	if b.unbounded {
		return 0
	}

	return b.capacity
}

func (b *bufferImpl) Size() int {
	return len(b.elements)
}

func (b *bufferImpl) Clear() {
	b.elements = nil
}
