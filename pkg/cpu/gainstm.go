package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ctl"
	"github.com/shinolab/autd3cpu-go/pkg/metrics"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// gainSlotWords is the size, in words, of one gain-STM frame's slot in
// STM BRAM (spec.md section 4.8: "each frame consumes a 2^9-word slot").
const gainSlotWords = 1 << 9

// writeGainSTM implements the gain-STM writer, spec.md section 4.8 — the
// hardest logic in the core: it dispatches over three body encodings
// (PHASE_DUTY_FULL, PHASE_FULL, PHASE_HALF) crossed with the
// LEGACY_MODE/IS_DUTY flags.
func (c *Context) writeGainSTM(body wire.Body, in ctl.Intent, legacy bool) {
	if in.STMBegin {
		c.stmCycle = 0
		c.Sink.Write(bram.RegionController, bram.STMAddrOffset, 0)
		freqDiv := body.GainSTMHeadFreqDiv()
		c.Sink.Write(bram.RegionController, bram.STMFreqDiv0, uint16(freqDiv))
		c.Sink.Write(bram.RegionController, bram.STMFreqDiv0+1, uint16(freqDiv>>16))
		c.seqGainDataMode = body.GainSTMHeadMode()
		c.Metrics.GainSTMWrites.Add(1)
		return
	}

	mode := c.seqGainDataMode
	if idx, known := metrics.GainSTMModeIndex(mode); known {
		c.Metrics.GainSTMByMode[idx].Add(1)
	} else {
		c.Metrics.UnknownGainMode.Add(1)
		c.Log.Warn("gain-STM unknown data mode, falling back to PHASE_DUTY_FULL", "mode", mode)
	}

	gains := body.GainSTMGains()

	switch mode {
	case wire.GainSTMModePhaseFull:
		c.gainSTMPhaseFull(gains, in, legacy)
	case wire.GainSTMModePhaseHalf:
		if legacy {
			c.gainSTMPhaseHalf(gains)
		} else {
			c.Log.Warn("gain-STM PHASE_HALF requires LEGACY_MODE, skipping frame")
			c.Metrics.LegacyIncompatSkip.Add(1)
		}
	default: // PHASE_DUTY_FULL, or an unrecognized mode (falls back to it)
		c.gainSTMPhaseDutyFull(gains, in, legacy)
	}

	if in.STMEnd {
		c.Sink.Write(bram.RegionController, bram.STMCycleReg, uint16(max(uint32(1), c.stmCycle)-1))
	}
	c.Metrics.GainSTMWrites.Add(1)
}

func (c *Context) gainSlotBase() uint32 {
	return (c.stmCycle & stmGnMask) * gainSlotWords
}

// advanceGain advances stm_cycle by one frame and, on crossing a
// segment boundary, updates the STM address-offset register.
func (c *Context) advanceGain() {
	c.stmCycle++
	if c.stmCycle&stmGnMask == 0 {
		c.Sink.Write(bram.RegionController, bram.STMAddrOffset, uint16(c.stmCycle/stmGnSegment))
	}
}

func (c *Context) gainSTMPhaseDutyFull(gains []uint16, in ctl.Intent, legacy bool) {
	base := c.gainSlotBase()
	if legacy {
		for i, g := range gains {
			c.Sink.Write(bram.RegionSTM, base+uint32(i)*2, g)
		}
		c.advanceGain()
		return
	}
	offset := uint32(0)
	if in.IsDuty {
		offset = 1
	}
	for i, g := range gains {
		c.Sink.Write(bram.RegionSTM, base+uint32(i)*2+offset, g)
	}
	if in.IsDuty {
		c.advanceGain()
	}
}

func (c *Context) gainSTMPhaseFull(gains []uint16, in ctl.Intent, legacy bool) {
	if legacy {
		base1 := c.gainSlotBase()
		for i, g := range gains {
			c.Sink.Write(bram.RegionSTM, base1+uint32(i)*2, 0xFF00|(g&0x00FF))
		}
		c.advanceGain()

		base2 := c.gainSlotBase()
		for i, g := range gains {
			c.Sink.Write(bram.RegionSTM, base2+uint32(i)*2, 0xFF00|((g>>8)&0x00FF))
		}
		c.advanceGain()
		return
	}

	if in.IsDuty {
		c.Log.Warn("gain-STM PHASE_FULL RAW duty frame has no data to write, skipping")
		c.Metrics.LegacyIncompatSkip.Add(1)
		return
	}

	// cycle[i+1] rather than cycle[i] is the observed firmware behavior
	// (spec.md section 9, open question); preserved as-is.
	base := c.gainSlotBase()
	for i, g := range gains {
		var cyc uint16
		if i+1 < len(c.cycle) {
			cyc = c.cycle[i+1]
		} else {
			c.Log.Debug("gain-STM PHASE_FULL RAW cycle index out of range", "i", i, "n", len(c.cycle))
		}
		c.Sink.Write(bram.RegionSTM, base+uint32(i)*2, g)
		c.Sink.Write(bram.RegionSTM, base+uint32(i)*2+1, cyc>>1)
	}
	c.advanceGain()
}

func (c *Context) gainSTMPhaseHalf(gains []uint16) {
	for pass := 0; pass < 4; pass++ {
		shift := uint(pass * 4)
		base := c.gainSlotBase()
		for i, g := range gains {
			p := (g >> shift) & 0x0F
			c.Sink.Write(bram.RegionSTM, base+uint32(i)*2, 0xFF00|(p<<4)|p)
		}
		c.advanceGain()
	}
}
