// Package conveyor models lines of capacity-limited conveyor segments that
// move totes from a source to a shared sink. The sink joins one tote from
// every line into a batch.
package conveyor

import "fmt"

// A Tote is a unit of flow. It carries no payload beyond its identity, which
// is unique within a model because it includes the line that generated it.
type Tote struct {
	Line   int
	Serial uint64
}

func (t Tote) String() string {
	return fmt.Sprintf("Tote(%d:%d)", t.Line, t.Serial)
}
