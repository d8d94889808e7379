package queueing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyorsim/sim"
)

var _ = Describe("BufferImpl", func() {
	var (
		buf Buffer
	)

	BeforeEach(func() {
		buf = MakeBufferBuilder().
			WithCapacity(2).
			Build("Buf")
	})

	It("should allow push and pop", func() {
		Expect(buf.Capacity()).To(Equal(2))
		Expect(buf.CanPush()).To(BeTrue())

		buf.Push(1)
		Expect(buf.CanPush()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))

		buf.Push(2)
		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(func() {
			buf.Push(3)
		}).To(Panic())

		Expect(buf.Peek()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(1))
		Expect(buf.Size()).To(Equal(1))
		Expect(buf.Peek()).To(Equal(2))
		Expect(buf.Pop()).To(Equal(2))
		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
		Expect(buf.Pop()).To(BeNil())
	})

	It("should clear", func() {
		buf.Push(1)
		buf.Push(2)

		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.CanPush()).To(BeTrue())
	})

	It("should accept any number of elements when unbounded", func() {
		unbounded := MakeBufferBuilder().Unbounded().Build("Source")

		for i := 0; i < 1000; i++ {
			Expect(unbounded.CanPush()).To(BeTrue())
			unbounded.Push(i)
		}

		Expect(unbounded.Size()).To(Equal(1000))
		Expect(unbounded.Capacity()).To(Equal(0))
		Expect(unbounded.Pop()).To(Equal(0))
	})

	It("should invoke hooks on push and pop", func() {
		var positions []*sim.HookPos
		buf.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		buf.Push(1)
		buf.Pop()

		Expect(positions).To(Equal([]*sim.HookPos{HookPosBufPush, HookPosBufPop}))
	})

	It("should refuse a zero capacity", func() {
		Expect(func() {
			MakeBufferBuilder().WithCapacity(0).Build("Buf")
		}).To(Panic())
	})

	It("should refuse an invalid name", func() {
		Expect(func() {
			MakeBufferBuilder().Build("buf")
		}).To(Panic())
	})
})
