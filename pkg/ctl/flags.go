// Package ctl decodes the two control-flag bytes carried in every
// Header (fpga_ctl_reg, cpu_ctl_reg) into a tagged-union Intent. Three
// bit positions in cpu_ctl_reg are overloaded: MOD/CONFIG_EN_N share bit
// 0, MOD_BEGIN/CONFIG_SILENCER share bit 1, MOD_END/CONFIG_SYNC share
// bit 2. Decode resolves the overlap by tagging on the MOD bit first,
// exactly as spec.md section 4.2 requires, so downstream writers never
// see the raw bitflags.
package ctl

// fpga_ctl_reg bit positions.
const (
	bitLegacyMode      = 1 << 0
	bitForceFan        = 1 << 1
	bitOpMode          = 1 << 2 // 0 = normal gain, 1 = STM
	bitSTMGainMode     = 1 << 3 // 0 = point, 1 = gain
	bitReadsFPGAInfo   = 1 << 4
	bitSync            = 1 << 5
)

// cpu_ctl_reg bit positions.
const (
	bitModOrConfigEnN        = 1 << 0
	bitModBeginOrConfigSilen = 1 << 1
	bitModEndOrConfigSync    = 1 << 2
	bitWriteBody             = 1 << 3
	bitSTMBegin              = 1 << 4
	bitSTMEnd                = 1 << 5
	bitIsDuty                = 1 << 6
	bitModDelay              = 1 << 7
)

// FPGAFlags is the decoded view of fpga_ctl_reg.
type FPGAFlags struct {
	LegacyMode    bool
	ForceFan      bool
	OpModeSTM     bool // false: normal gain, true: STM
	STMGainMode   bool // false: point-STM, true: gain-STM
	ReadsFPGAInfo bool
	Sync          bool
}

// DecodeFPGA decodes the fpga_ctl_reg byte.
func DecodeFPGA(reg uint8) FPGAFlags {
	return FPGAFlags{
		LegacyMode:    reg&bitLegacyMode != 0,
		ForceFan:      reg&bitForceFan != 0,
		OpModeSTM:     reg&bitOpMode != 0,
		STMGainMode:   reg&bitSTMGainMode != 0,
		ReadsFPGAInfo: reg&bitReadsFPGAInfo != 0,
		Sync:          reg&bitSync != 0,
	}
}

// Intent is the decoded cpu_ctl_reg, with the MOD/CONFIG overlap already
// resolved: exactly one of IsMod or the CONFIG_* fields is meaningful.
type Intent struct {
	IsMod bool

	// Meaningful only when IsMod is true.
	ModBegin bool
	ModEnd   bool

	// Meaningful only when IsMod is false.
	ConfigSilencer bool
	ConfigSync     bool

	WriteBody bool
	STMBegin  bool
	STMEnd    bool
	IsDuty    bool
	ModDelay  bool
}

// DecodeCPU decodes the cpu_ctl_reg byte into an Intent.
func DecodeCPU(reg uint8) Intent {
	isMod := reg&bitModOrConfigEnN != 0
	in := Intent{
		IsMod:     isMod,
		WriteBody: reg&bitWriteBody != 0,
		STMBegin:  reg&bitSTMBegin != 0,
		STMEnd:    reg&bitSTMEnd != 0,
		IsDuty:    reg&bitIsDuty != 0,
		ModDelay:  reg&bitModDelay != 0,
	}
	if isMod {
		in.ModBegin = reg&bitModBeginOrConfigSilen != 0
		in.ModEnd = reg&bitModEndOrConfigSync != 0
	} else {
		in.ConfigSilencer = reg&bitModBeginOrConfigSilen != 0
		in.ConfigSync = reg&bitModEndOrConfigSync != 0
	}
	return in
}
