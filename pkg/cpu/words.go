package cpu

import "encoding/binary"

// packWords converts the first nBytes of b into ceil(nBytes/2) u16
// words, little-endian. If nBytes is odd the last word also consumes
// the byte immediately following the nBytes boundary in b (b must be
// long enough); this mirrors the modulation writer's own assumption
// that mod_cycle stays even except on the final frame (spec.md section
// 9, "observed anomalies").
func packWords(b []byte, nBytes int) []uint16 {
	n := (nBytes + 1) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		lo := 2 * i
		if lo+1 < len(b) {
			out[i] = binary.LittleEndian.Uint16(b[lo : lo+2])
		} else if lo < len(b) {
			out[i] = uint16(b[lo])
		}
	}
	return out
}
