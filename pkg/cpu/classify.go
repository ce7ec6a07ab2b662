package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ctl"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// OnFrame implements the receive-context classifier, spec.md section
// 4.11. It is meant to be called once per EtherCAT frame arrival, from
// the single goroutine that owns the receive context. header and body
// must be at least wire.HeaderSize and 2*c.N bytes respectively.
func (c *Context) OnFrame(headerBytes, bodyBytes []byte) {
	h := wire.HeaderFromBytes(headerBytes)
	msgID := h.MsgID()

	if msgID == c.msgIDLast {
		c.Metrics.FramesDuplicate.Add(1)
		return
	}
	c.msgIDLast = msgID

	c.ack.set(msgID, 0)

	fpga := ctl.DecodeFPGA(h.FPGACtlReg())
	c.readFPGAInfo = fpga.ReadsFPGAInfo
	if c.readFPGAInfo {
		info := c.Sink.Read(bram.RegionController, bram.FPGAInfo)
		c.ack.setLow(uint8(info))
	}

	switch msgID {
	case wire.MsgClear:
		c.Clear()
	case wire.MsgRDCPUVersion:
		c.ack.setLow(uint8(wire.CPUVersion))
	case wire.MsgRDFPGAVersion:
		fpgaVersion := c.Sink.Read(bram.RegionController, bram.VersionNum)
		c.ack.setLow(uint8(fpgaVersion))
	case wire.MsgRDFPGAFunction:
		fpgaVersion := c.Sink.Read(bram.RegionController, bram.VersionNum)
		c.ack.setLow(uint8(fpgaVersion >> 8))
	default:
		if msgID > wire.MsgEnd {
			c.Metrics.FramesDropped.Add(1)
			break
		}
		in := ctl.DecodeCPU(h.CPUCtlReg())
		if !in.IsMod && in.ConfigSync {
			b := wire.BodyFromBytes(bodyBytes)
			c.Synchronize(&h, b)
		} else {
			for !c.Ring.Push(h, bodyBytes) {
				c.Metrics.RingFullSpins.Add(1)
			}
		}
	}

	c.Shared.WriteTX(c.ack.get())
}
