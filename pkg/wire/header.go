package wire

import "encoding/binary"

// Header is the fixed 128-byte record read from the EtherCAT RX1 region.
// The trailing 124 bytes are a union, reinterpreted per the classified
// intent by the accessor methods below; Header itself never branches on
// that intent, it only exposes typed views over the raw bytes.
type Header struct {
	raw [HeaderSize]byte
}

// HeaderFromBytes copies a wire-format buffer into a Header. The input
// must be at least HeaderSize bytes; extra bytes are ignored.
func HeaderFromBytes(b []byte) Header {
	var h Header
	copy(h.raw[:], b)
	return h
}

// Bytes returns the raw wire-format bytes backing h.
func (h *Header) Bytes() []byte { return h.raw[:] }

func (h *Header) MsgID() uint8        { return h.raw[0] }
func (h *Header) FPGACtlReg() uint8   { return h.raw[1] }
func (h *Header) CPUCtlReg() uint8    { return h.raw[2] }
func (h *Header) Size() uint8         { return h.raw[3] }

func (h *Header) SetMsgID(v uint8)      { h.raw[0] = v }
func (h *Header) SetFPGACtlReg(v uint8) { h.raw[1] = v }
func (h *Header) SetCPUCtlReg(v uint8)  { h.raw[2] = v }
func (h *Header) SetSize(v uint8)       { h.raw[3] = v }

func (h *Header) payload() []byte { return h.raw[4:] }

// ModHeadFreqDiv reads the freq_div field of a MOD_HEAD payload.
func (h *Header) ModHeadFreqDiv() uint32 {
	return binary.LittleEndian.Uint32(h.payload()[0:4])
}

// SetModHeadFreqDiv writes the freq_div field of a MOD_HEAD payload.
func (h *Header) SetModHeadFreqDiv(v uint32) {
	binary.LittleEndian.PutUint32(h.payload()[0:4], v)
}

// ModHeadData returns up to 120 modulation bytes following freq_div.
func (h *Header) ModHeadData() []byte {
	return h.payload()[4:HeaderPayloadSize]
}

// ModBodyData returns the full 124-byte modulation payload of a MOD_BODY
// frame (no freq_div prefix).
func (h *Header) ModBodyData() []byte {
	return h.payload()[:HeaderPayloadSize]
}

// SilentCycle reads the SILENT payload's cycle field.
func (h *Header) SilentCycle() uint16 {
	return binary.LittleEndian.Uint16(h.payload()[0:2])
}

// SilentStep reads the SILENT payload's step field.
func (h *Header) SilentStep() uint16 {
	return binary.LittleEndian.Uint16(h.payload()[2:4])
}

// SetSilent writes a SILENT payload.
func (h *Header) SetSilent(cycle, step uint16) {
	binary.LittleEndian.PutUint16(h.payload()[0:2], cycle)
	binary.LittleEndian.PutUint16(h.payload()[2:4], step)
}
