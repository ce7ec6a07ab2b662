package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ctl"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// writePointSTM implements the point-STM writer, spec.md section 4.7.
// Each point contributes 4 u16 data words to a stride-8 slot in STM
// BRAM; segment wrap mirrors the modulation writer (section 4.3).
func (c *Context) writePointSTM(body wire.Body, in ctl.Intent) {
	var size uint16
	var points []wire.Point
	if in.STMBegin {
		c.stmCycle = 0
		c.Sink.Write(bram.RegionController, bram.STMAddrOffset, 0)
		size = body.PointSTMHeadSize()
		freqDiv := body.PointSTMHeadFreqDiv()
		soundSpeed := body.PointSTMHeadSoundSpeed()
		c.Sink.Write(bram.RegionController, bram.STMFreqDiv0, uint16(freqDiv))
		c.Sink.Write(bram.RegionController, bram.STMFreqDiv0+1, uint16(freqDiv>>16))
		c.Sink.Write(bram.RegionController, bram.SoundSpeed0, uint16(soundSpeed))
		c.Sink.Write(bram.RegionController, bram.SoundSpeed0+1, uint16(soundSpeed>>16))
		points = body.PointSTMHeadPoints()
	} else {
		size = body.PointSTMBodySize()
		points = body.PointSTMBodyPoints()
	}

	n := uint32(size)
	if uint32(len(points)) < n {
		n = uint32(len(points))
	}
	points = points[:n]

	segCap := (c.stmCycle &^ uint32(stmPtMask)) + stmPtSegment - c.stmCycle

	if n <= segCap {
		c.writePointRun(points)
		c.stmCycle += n
	} else {
		c.writePointRun(points[:segCap])
		c.stmCycle += segCap
		c.Sink.Write(bram.RegionController, bram.STMAddrOffset, uint16(c.stmCycle/stmPtSegment))
		c.writePointRun(points[segCap:])
		c.stmCycle += n - segCap
	}

	if in.STMEnd {
		c.Sink.Write(bram.RegionController, bram.STMCycleReg, uint16(max(uint32(1), c.stmCycle)-1))
	}
	c.Metrics.PointSTMWrites.Add(1)
}

// writePointRun writes a contiguous run of points starting at the slot
// addressed by the current stm_cycle, without crossing a segment
// boundary (the caller has already split the run at segCap).
func (c *Context) writePointRun(points []wire.Point) {
	local := c.stmCycle & stmPtMask
	for i, p := range points {
		off := (local + uint32(i)) * 8
		c.Sink.BulkCopy(bram.RegionSTM, off, p[:])
	}
}
