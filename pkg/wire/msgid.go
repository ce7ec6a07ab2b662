// Package wire defines the byte-exact EtherCAT frame layouts the CPU
// firmware exchanges with the host: a fixed 128-byte Header and a
// 2*N-byte Body, both little-endian, plus the msg_id space that selects
// how the periodic dispatcher interprets them.
package wire

// Header message identifiers (spec.md section 6).
const (
	MsgClear           uint8 = 0x00
	MsgRDCPUVersion    uint8 = 0x01
	MsgRDFPGAVersion   uint8 = 0x03
	MsgRDFPGAFunction  uint8 = 0x04
	MsgEnd             uint8 = 0xF0 // anything above this is dropped
)

// CPUVersion is returned verbatim (low byte) on MsgRDCPUVersion.
const CPUVersion uint16 = 0x82

// Gain-STM body encodings, latched by a GAIN_STM_HEAD frame and used by
// subsequent GAIN_STM_BODY frames until the next GAIN_STM_HEAD.
const (
	GainSTMModePhaseDutyFull uint16 = 1
	GainSTMModePhaseFull     uint16 = 2
	GainSTMModePhaseHalf     uint16 = 4
)

// HeaderSize is the fixed wire size of a Header, in bytes.
const HeaderSize = 128

// HeaderPayloadSize is the size of the union payload following the
// 4-byte msg_id/fpga_ctl_reg/cpu_ctl_reg/size prefix.
const HeaderPayloadSize = HeaderSize - 4
