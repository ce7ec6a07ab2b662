package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// writeModDelay implements the mod-delay writer, spec.md section 4.9.
func (c *Context) writeModDelay(body wire.Body) {
	c.Sink.BulkCopy(bram.RegionController, bram.ModDelayBase, body.ModDelays())
	c.Metrics.ModDelayWrites.Add(1)
}
