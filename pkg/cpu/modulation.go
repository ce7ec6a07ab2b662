package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ctl"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// writeModulation implements the modulation writer, spec.md section 4.3.
// It appends up to header.Size() modulation bytes into the segmented MOD
// BRAM buffer, handling the segment-boundary wrap and updating mod_cycle
// and, on MOD_END, the MOD_CYCLE register.
func (c *Context) writeModulation(h *wire.Header, in ctl.Intent) {
	var data []byte
	if in.ModBegin {
		c.modCycle = 0
		c.Sink.Write(bram.RegionController, bram.ModAddrOffset, 0)
		freqDiv := h.ModHeadFreqDiv()
		c.Sink.Write(bram.RegionController, bram.ModFreqDiv0, uint16(freqDiv))
		c.Sink.Write(bram.RegionController, bram.ModFreqDiv0+1, uint16(freqDiv>>16))
		data = h.ModHeadData()
	} else {
		data = h.ModBodyData()
	}

	segCap := (c.modCycle &^ uint32(modMask)) + modSegment - c.modCycle
	write := uint32(h.Size())

	if write <= segCap {
		words := packWords(data, int(write))
		c.Sink.BulkCopy(bram.RegionMod, (c.modCycle&modMask)/2, words)
		c.modCycle += write
	} else {
		headWords := packWords(data, int(segCap))
		c.Sink.BulkCopy(bram.RegionMod, (c.modCycle&modMask)/2, headWords)
		c.modCycle += segCap
		c.Sink.Write(bram.RegionController, bram.ModAddrOffset, uint16(c.modCycle/modSegment))

		remain := write - segCap
		tailWords := packWords(data[segCap:], int(remain))
		c.Sink.BulkCopy(bram.RegionMod, 0, tailWords)
		c.modCycle += remain
	}

	if c.modCycle%2 != 0 && !in.ModEnd {
		c.Log.Debug("modulation frame left mod_cycle odd before MOD_END; later frames may misalign", "mod_cycle", c.modCycle)
	}

	if in.ModEnd {
		c.Sink.Write(bram.RegionController, bram.ModCycleReg, uint16(max(uint32(1), c.modCycle)-1))
	}
	c.Metrics.ModWrites.Add(1)
}
