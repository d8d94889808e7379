package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ComponentBase", func() {
	It("should keep its name", func() {
		component := NewComponentBase("Line[0]")

		Expect(component.Name()).To(Equal("Line[0]"))
	})

	It("should accept nested names", func() {
		component := NewComponentBase(BuildNameWithIndex("Line[2]", "Segment", 4))

		Expect(component.Name()).To(Equal("Line[2].Segment[4]"))
	})

	It("should panic on an invalid name", func() {
		Expect(func() { NewComponentBase("test_comp") }).To(Panic())
	})

	It("should forward hooks", func() {
		component := NewComponentBase("Sink")

		var positions []*HookPos
		component.AcceptHook(HookFunc(func(ctx HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		component.InvokeHook(HookCtx{Domain: component, Pos: HookPosBeforeEvent})

		Expect(positions).To(Equal([]*HookPos{HookPosBeforeEvent}))
	})
})
