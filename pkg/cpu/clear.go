package cpu

import "github.com/shinolab/autd3cpu-go/pkg/bram"

// Clear implements spec.md section 4.12. It is invoked at power-on (via
// New) and whenever the receive-context classifier sees MSG_CLEAR. It
// never touches ack: at power-on ack is simply its zero value, and on
// MSG_CLEAR the classifier has already latched ack's high byte to the
// msg_id being served before calling Clear (spec.md section 4.11).
func (c *Context) Clear() {
	c.clearLocked()
}

func (c *Context) clearLocked() {
	c.Sink.Write(bram.RegionController, bram.CtlReg, bram.CtlLegacyMode)
	c.Sink.Write(bram.RegionController, bram.SilentStepReg, DefaultSilentStep)
	c.Sink.Write(bram.RegionController, bram.SilentCycleReg, DefaultSilentCycle)

	c.stmCycle = 0

	c.modCycle = 2
	c.Sink.Write(bram.RegionController, bram.ModCycleReg, 1)
	c.Sink.Write(bram.RegionController, bram.ModFreqDiv0, uint16(DefaultModFreqDiv))
	c.Sink.Write(bram.RegionController, bram.ModFreqDiv0+1, uint16(DefaultModFreqDiv>>16))
	c.Sink.Write(bram.RegionMod, 0, 0)

	c.Sink.BulkSet(bram.RegionNormal, 0, 0, uint32(c.N))

	c.Ring.Clear()

	c.readFPGAInfo = false
}
