package cpu

import (
	"encoding/binary"

	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ecat"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// fpga_ctl_reg bit positions, mirrored from pkg/ctl for test frame
// construction (that package intentionally doesn't export raw bits).
const (
	fpgaLegacyMode    = 1 << 0
	fpgaOpModeSTM     = 1 << 2
	fpgaSTMGainMode   = 1 << 3
	fpgaReadsFPGAInfo = 1 << 4
	fpgaSync          = 1 << 5
)

// cpu_ctl_reg bit positions, mirrored from pkg/ctl for test frame
// construction.
const (
	cpuMod            = 1 << 0
	cpuModBegin       = 1 << 1
	cpuModEnd         = 1 << 2
	cpuConfigSilencer = 1 << 1
	cpuConfigSync     = 1 << 2
	cpuWriteBody      = 1 << 3
	cpuSTMBegin       = 1 << 4
	cpuSTMEnd         = 1 << 5
	cpuIsDuty         = 1 << 6
	cpuModDelay       = 1 << 7
)

type testHarness struct {
	ctx   *Context
	sink  *bram.Sim
	ecatS *ecat.Sim
}

func newHarness(n int) *testHarness {
	sink := bram.NewSim()
	es := ecat.NewSim()
	return &testHarness{
		ctx:   New(n, sink, es, nil),
		sink:  sink,
		ecatS: es,
	}
}

func newHeader(msgID, fpgaCtl, cpuCtl, size uint8) wire.Header {
	var h wire.Header
	h.SetMsgID(msgID)
	h.SetFPGACtlReg(fpgaCtl)
	h.SetCPUCtlReg(cpuCtl)
	h.SetSize(size)
	return h
}

func sequentialCycles(n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = uint16(i + 1)
	}
	return out
}

func le16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off : off+2]) }
