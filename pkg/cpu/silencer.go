package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// configureSilencer implements the silencer configurator, spec.md
// section 4.4: writes the two scalar low-pass parameters.
func (c *Context) configureSilencer(h *wire.Header) {
	c.Sink.Write(bram.RegionController, bram.SilentStepReg, h.SilentStep())
	c.Sink.Write(bram.RegionController, bram.SilentCycleReg, h.SilentCycle())
	c.Metrics.SilencerWrites.Add(1)
}
