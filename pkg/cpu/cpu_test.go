package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// TestClearSetsDefaultsAndRDCPUVersionAcks covers the first end-to-end
// scenario: CLEAR followed by RD_CPU_VERSION, checking the ack word each
// step publishes to EtherCAT TX.
func TestClearSetsDefaultsAndRDCPUVersionAcks(t *testing.T) {
	h := newHarness(32)

	clearHdr := newHeader(wire.MsgClear, 0, 0, 0)
	h.ctx.OnFrame(clearHdr.Bytes(), nil)
	assert.Equal(t, uint16(0x0000), h.ctx.Ack())
	assert.Equal(t, uint16(0x0000), h.ecatS.LastAck())
	assert.Equal(t, uint16(bram.CtlLegacyMode), h.sink.Read(bram.RegionController, bram.CtlReg))
	assert.Equal(t, DefaultSilentStep, h.sink.Read(bram.RegionController, bram.SilentStepReg))
	assert.Equal(t, DefaultSilentCycle, h.sink.Read(bram.RegionController, bram.SilentCycleReg))

	verHdr := newHeader(wire.MsgRDCPUVersion, 0, 0, 0)
	h.ctx.OnFrame(verHdr.Bytes(), nil)
	assert.Equal(t, uint16(0x0182), h.ctx.Ack())
	assert.Equal(t, uint16(0x0182), h.ecatS.LastAck())
}

// TestModulationWritePacks covers the modulation scenario: a 3-byte
// upload packs into two BRAM words and leaves MOD_CYCLE at 2.
func TestModulationWritePacks(t *testing.T) {
	h := newHarness(32)

	hdr := newHeader(0x10, 0, cpuMod|cpuModBegin|cpuModEnd, 3)
	hdr.SetModHeadFreqDiv(DefaultModFreqDiv)
	data := hdr.ModHeadData()
	data[0], data[1], data[2] = 0xAA, 0xBB, 0xCC

	body := wire.NewBody(32)
	h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
	require.Equal(t, 1, h.ctx.Ring.Len())
	h.ctx.Tick()

	words := h.sink.Words(bram.RegionMod)
	require.GreaterOrEqual(t, len(words), 2)
	assert.Equal(t, uint16(0xBBAA), words[0])
	assert.Equal(t, uint16(0x00CC), words[1])
	assert.Equal(t, uint16(2), h.sink.Read(bram.RegionController, bram.ModCycleReg))
	assert.Equal(t, uint32(3), h.ctx.ModCycle())
}

// TestSilencerConfigureWritesStepAndCycle covers the silencer scenario.
func TestSilencerConfigureWritesStepAndCycle(t *testing.T) {
	h := newHarness(32)

	hdr := newHeader(0x11, 0, cpuConfigSilencer, 0)
	hdr.SetSilent(2048, 5)
	body := wire.NewBody(32)
	h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
	h.ctx.Tick()

	assert.Equal(t, uint16(5), h.sink.Read(bram.RegionController, bram.SilentStepReg))
	assert.Equal(t, uint16(2048), h.sink.Read(bram.RegionController, bram.SilentCycleReg))
}

// TestSynchronizeWritesCycleAndSyncTime covers the synchronizer scenario:
// it bypasses the ring and is observable immediately after OnFrame.
func TestSynchronizeWritesCycleAndSyncTime(t *testing.T) {
	h := newHarness(4)
	h.ecatS.SetDCCycStartTime(0x1122334455667788)

	hdr := newHeader(0x12, fpgaLegacyMode, cpuConfigSync, 0)
	body := wire.NewBody(4)
	body.SetCycles([]uint16{10, 20, 30, 40})
	h.ctx.OnFrame(hdr.Bytes(), body.Bytes())

	assert.Equal(t, 0, h.ctx.Ring.Len(), "sync bypasses the ring")

	syncTime := h.sink.Words(bram.RegionController)
	assert.Equal(t, uint16(0x7788), syncTime[bram.ECSyncTime0+0])
	assert.Equal(t, uint16(0x5566), syncTime[bram.ECSyncTime0+1])
	assert.Equal(t, uint16(0x3344), syncTime[bram.ECSyncTime0+2])
	assert.Equal(t, uint16(0x1122), syncTime[bram.ECSyncTime0+3])
	assert.Equal(t, uint16(fpgaLegacyMode|bram.CtlSync), h.sink.Read(bram.RegionController, bram.CtlReg))
	assert.Equal(t, []uint16{10, 20, 30, 40}, h.ctx.Cycle())
}

// TestPointSTMWritesSingleSlot covers the point-STM scenario: one point
// {p0,p1,p2,p3} lands at STM BRAM words 0..3 of the stride-8 slot.
func TestPointSTMWritesSingleSlot(t *testing.T) {
	h := newHarness(32)

	hdr := newHeader(0x13, fpgaOpModeSTM, cpuWriteBody|cpuSTMBegin|cpuSTMEnd, 0)
	body := wire.NewBody(32)
	body.SetPointSTMHead(1, 40960, 340290, []wire.Point{{1, 2, 3, 4}})
	h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
	h.ctx.Tick()

	words := h.sink.Words(bram.RegionSTM)
	require.GreaterOrEqual(t, len(words), 4)
	assert.Equal(t, []uint16{1, 2, 3, 4}, words[0:4])
	assert.Equal(t, uint16(0), h.sink.Read(bram.RegionController, bram.STMCycleReg))
}

// TestGainSTMPhaseHalfLegacyFourPasses covers the gain-STM scenario: a
// GAIN_STM_HEAD frame latches PHASE_HALF mode, then a GAIN_STM_BODY frame
// under LEGACY_MODE expands one gain word into four nibble passes.
func TestGainSTMPhaseHalfLegacyFourPasses(t *testing.T) {
	h := newHarness(4)
	fpgaCtl := uint8(fpgaLegacyMode | fpgaOpModeSTM | fpgaSTMGainMode)

	headHdr := newHeader(0x14, fpgaCtl, cpuWriteBody|cpuSTMBegin, 0)
	headBody := wire.NewBody(4)
	headBody.SetGainSTMHead(40960, wire.GainSTMModePhaseHalf)
	h.ctx.OnFrame(headHdr.Bytes(), headBody.Bytes())
	h.ctx.Tick()

	bodyHdr := newHeader(0x15, fpgaCtl, cpuWriteBody|cpuSTMEnd, 0)
	gainBody := wire.NewBody(4)
	gainBody.SetGainSTMGains([]uint16{0x1234})
	h.ctx.OnFrame(bodyHdr.Bytes(), gainBody.Bytes())
	h.ctx.Tick()

	words := h.sink.Words(bram.RegionSTM)
	require.GreaterOrEqual(t, len(words), 1537)
	assert.Equal(t, uint16(0xFF44), words[0])
	assert.Equal(t, uint16(0xFF33), words[512])
	assert.Equal(t, uint16(0xFF22), words[1024])
	assert.Equal(t, uint16(0xFF11), words[1536])
	assert.Equal(t, uint16(3), h.sink.Read(bram.RegionController, bram.STMCycleReg))
}

// TestDuplicateMsgIDIsDropped covers deduplication: a repeated msg_id is
// counted and otherwise ignored, rather than queued twice.
func TestDuplicateMsgIDIsDropped(t *testing.T) {
	h := newHarness(32)

	hdr := newHeader(0x20, 0, cpuConfigSilencer, 0)
	body := wire.NewBody(32)
	h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
	require.Equal(t, 1, h.ctx.Ring.Len())

	h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
	assert.Equal(t, 1, h.ctx.Ring.Len(), "duplicate msg_id must not be queued again")
	assert.Equal(t, uint64(1), h.ctx.Metrics.FramesDuplicate.Load())
}

// TestClearIsIdempotent checks that calling Clear twice in a row leaves
// the same state as calling it once, and resets the periodic-context
// upload counters.
func TestClearIsIdempotent(t *testing.T) {
	h := newHarness(16)
	h.ctx.modCycle = 99
	h.ctx.stmCycle = 7

	h.ctx.Clear()
	first := append([]uint16(nil), h.sink.Words(bram.RegionController)...)
	assert.Equal(t, uint32(2), h.ctx.ModCycle())
	assert.Equal(t, uint32(0), h.ctx.STMCycle())

	h.ctx.Clear()
	second := h.sink.Words(bram.RegionController)
	assert.Equal(t, first, second)
	assert.Equal(t, uint32(2), h.ctx.ModCycle())
	assert.Equal(t, uint32(0), h.ctx.STMCycle())
}

// TestModulationRoundTripProperty checks that any single-frame modulation
// upload (well under the 32768-byte segment) packs into BRAM words that
// decode back to the exact byte sequence that was sent, and that
// mod_cycle advances by exactly the byte count.
func TestModulationRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 120).Draw(rt, "n")
		data := rapid.SliceOfN(rapid.Uint8(), n, n).Draw(rt, "data")

		h := newHarness(64)
		hdr := newHeader(0x30, 0, cpuMod|cpuModBegin|cpuModEnd, uint8(n))
		copy(hdr.ModHeadData(), data)
		body := wire.NewBody(64)
		h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
		h.ctx.Tick()

		words := h.sink.Words(bram.RegionMod)
		for i := 0; i < n; i++ {
			wordIdx := i / 2
			require.Greater(rt, len(words), wordIdx)
			var got byte
			if i%2 == 0 {
				got = byte(words[wordIdx])
			} else {
				got = byte(words[wordIdx] >> 8)
			}
			assert.Equalf(rt, data[i], got, "byte %d", i)
		}
		assert.Equal(rt, uint32(n), h.ctx.ModCycle())
	})
}

// TestPointSTMRoundTripProperty checks that a single-frame point-STM
// upload places every point at its stride-8 slot, unmodified.
func TestPointSTMRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(rt, "n")
		points := make([]wire.Point, n)
		for i := range points {
			for j := 0; j < 4; j++ {
				points[i][j] = rapid.Uint16().Draw(rt, "word")
			}
		}

		bodyWords := 5 + 4*n
		h := newHarness(bodyWords)
		hdr := newHeader(0x31, fpgaOpModeSTM, cpuWriteBody|cpuSTMBegin|cpuSTMEnd, 0)
		body := wire.NewBody(bodyWords)
		body.SetPointSTMHead(uint16(n), 40960, 340290, points)
		h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
		h.ctx.Tick()

		words := h.sink.Words(bram.RegionSTM)
		for i, p := range points {
			off := i * 8
			require.GreaterOrEqual(rt, len(words), off+4)
			assert.Equal(rt, p[:], words[off:off+4])
		}
	})
}

// TestGainSTMAdvanceLawProperty checks the advance law for the simplest
// gain-STM encoding (PHASE_DUTY_FULL, LEGACY_MODE): each non-begin frame
// advances stm_cycle by exactly one, and the STM address-offset register
// is only rewritten when stm_cycle crosses a 32-frame segment boundary.
func TestGainSTMAdvanceLawProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		calls := rapid.IntRange(1, 40).Draw(rt, "calls")

		h := newHarness(4)
		fpgaCtl := uint8(fpgaLegacyMode | fpgaOpModeSTM | fpgaSTMGainMode)

		headHdr := newHeader(0x32, fpgaCtl, cpuWriteBody|cpuSTMBegin, 0)
		headBody := wire.NewBody(4)
		headBody.SetGainSTMHead(40960, wire.GainSTMModePhaseDutyFull)
		h.ctx.OnFrame(headHdr.Bytes(), headBody.Bytes())
		h.ctx.Tick()

		for i := 0; i < calls; i++ {
			last := i == calls-1
			cpuCtl := uint8(cpuWriteBody)
			if last {
				cpuCtl |= cpuSTMEnd
			}
			hdr := newHeader(uint8(0x33+i), fpgaCtl, cpuCtl, 0)
			body := wire.NewBody(4)
			body.SetGainSTMGains([]uint16{uint16(i + 1), uint16(i + 1), uint16(i + 1), uint16(i + 1)})
			h.ctx.OnFrame(hdr.Bytes(), body.Bytes())
			h.ctx.Tick()
		}

		assert.Equal(rt, uint32(calls), h.ctx.STMCycle())
		assert.Equal(rt, uint16(max(1, calls)-1), h.sink.Read(bram.RegionController, bram.STMCycleReg))
		assert.Equal(rt, uint16(calls/32), h.sink.Read(bram.RegionController, bram.STMAddrOffset))
	})
}
