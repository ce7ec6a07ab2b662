package cpu

import (
	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ctl"
	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// writeNormalGain implements the normal-gain writer, spec.md section
// 4.6. Each channel occupies a stride-2 pair of words in NORMAL BRAM
// holding {phase, duty}; in LEGACY_MODE both halves are encoded in one
// FPGA-side word and this writer always targets offset 0 of the pair,
// otherwise it targets offset 0 for a phase frame (IS_DUTY clear) or
// offset 1 for a duty frame (IS_DUTY set).
func (c *Context) writeNormalGain(body wire.Body, in ctl.Intent, legacy bool) {
	offset := uint32(0)
	if !legacy && in.IsDuty {
		offset = 1
	}
	for i, g := range body.NormalGains() {
		c.Sink.Write(bram.RegionNormal, uint32(i)*2+offset, g)
	}
	c.Metrics.NormalGainWrites.Add(1)
}
