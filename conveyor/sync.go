package conveyor

import (
	"log"

	"github.com/sarchlab/conveyorsim/model"
)

// sinkDelivery carries a tote from the last segment of a line to the sink.
type sinkDelivery struct {
	line *Line
	tote Tote
}

// OnSenderSide detaches the tote from its line.
func (d *sinkDelivery) OnSenderSide(sender *model.Simulator) {
	if sender != d.line.simulator {
		log.Panicf("%s was sent by %s", d.tote, sender.Name())
	}

	d.line.detach(d.tote)
}
