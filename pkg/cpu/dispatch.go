package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ctl"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// Tick implements the periodic-context dispatcher, spec.md section
// 4.10. It drains at most one ring entry, dispatches it to the
// appropriate writer based on control flags, and refreshes ack. Call it
// once per 1ms tick.
func (c *Context) Tick() {
	var h wire.Header
	body := make([]byte, 2*c.N)
	if !c.Ring.Pop(&h, body) {
		return
	}
	b := wire.BodyFromBytes(body)

	fpga := ctl.DecodeFPGA(h.FPGACtlReg())
	in := ctl.DecodeCPU(h.CPUCtlReg())

	c.Sink.Write(bram.RegionController, bram.CtlReg, uint16(h.FPGACtlReg()))

	if in.IsMod {
		c.writeModulation(&h, in)
	} else if in.ConfigSilencer {
		c.configureSilencer(&h)
	}

	if in.WriteBody {
		switch {
		case in.ModDelay:
			c.writeModDelay(b)
		case !fpga.OpModeSTM:
			c.writeNormalGain(b, in, fpga.LegacyMode)
		case !fpga.STMGainMode:
			c.writePointSTM(b, in)
		default:
			c.writeGainSTM(b, in, fpga.LegacyMode)
		}
	}

	c.refreshAck(h.MsgID(), fpga)
	c.Metrics.FramesClassified.Add(1)
}

// refreshAck implements the ack refresh at the end of spec.md section
// 4.10. The high byte was already latched to msg_id by the classifier
// (section 4.11); here only the low byte may be reloaded from the FPGA
// info register, and only for frames that are not themselves CPU/FPGA
// version queries (those already carry their own answer in the low
// byte) and only when the classifier observed READS_FPGA_INFO.
func (c *Context) refreshAck(msgID uint8, fpga ctl.FPGAFlags) {
	switch msgID {
	case wire.MsgRDCPUVersion, wire.MsgRDFPGAVersion, wire.MsgRDFPGAFunction:
		// low byte already set by the classifier; leave it alone.
	default:
		if c.readFPGAInfo {
			info := c.Sink.Read(bram.RegionController, bram.FPGAInfo)
			c.ack.setLow(uint8(info))
		}
	}
	c.Shared.WriteTX(c.ack.get())
}

// Ack returns the current 16-bit acknowledgement word.
func (c *Context) Ack() uint16 { return c.ack.get() }

// ModCycle returns the number of modulation samples appended so far in
// the current upload, for diagnostics and tests.
func (c *Context) ModCycle() uint32 { return c.modCycle }

// STMCycle returns the number of STM entries appended so far in the
// current upload, for diagnostics and tests.
func (c *Context) STMCycle() uint32 { return c.stmCycle }

// Cycle returns a copy of the local per-channel cycle cache written by
// Synchronize, for diagnostics and tests.
func (c *Context) Cycle() []uint16 {
	out := make([]uint16, len(c.cycle))
	copy(out, c.cycle)
	return out
}
