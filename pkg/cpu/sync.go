package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// Synchronize implements the synchronizer, spec.md section 4.5. It is
// called directly from the receive-context classifier (it bypasses the
// ring) when a non-MOD frame carries CONFIG_SYNC; it is the one writer
// invoked outside the periodic context, and the one writer that touches
// the shared cycle[] cache.
func (c *Context) Synchronize(h *wire.Header, body wire.Body) {
	cycles := body.Cycles()

	c.Sink.BulkCopy(bram.RegionController, bram.CycleBase, cycles)

	dc := c.Shared.DCCycStartTime()
	c.Sink.Write(bram.RegionController, bram.ECSyncTime0+0, uint16(dc))
	c.Sink.Write(bram.RegionController, bram.ECSyncTime0+1, uint16(dc>>16))
	c.Sink.Write(bram.RegionController, bram.ECSyncTime0+2, uint16(dc>>32))
	c.Sink.Write(bram.RegionController, bram.ECSyncTime0+3, uint16(dc>>48))

	c.Sink.Write(bram.RegionController, bram.CtlReg, uint16(h.FPGACtlReg())|bram.CtlSync)

	n := len(cycles)
	if n > len(c.cycle) {
		n = len(c.cycle)
	}
	copy(c.cycle[:n], cycles[:n])

	c.Metrics.SyncWrites.Add(1)
}
