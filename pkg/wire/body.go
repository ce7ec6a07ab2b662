package wire

import "encoding/binary"

// Point is a single spatio-temporal focal point: 4 little-endian u16
// words as carried in POINT_STM_HEAD/POINT_STM_BODY payloads.
type Point [4]uint16

// Body is the 2*N-byte record read from the EtherCAT RX0 region, N being
// the transducer count fixed at Context construction. Like Header, Body
// exposes typed views over the raw bytes rather than branching on intent
// itself.
type Body struct {
	raw []byte
}

// BodyFromBytes wraps an existing buffer (no copy) as a Body view.
// Callers that need to retain the bytes across frames should copy first.
func BodyFromBytes(b []byte) Body { return Body{raw: b} }

// NewBody allocates a zeroed Body sized for n transducers.
func NewBody(n int) Body { return Body{raw: make([]byte, 2*n)} }

// Bytes returns the raw wire-format bytes backing b.
func (b Body) Bytes() []byte { return b.raw }

// Len returns the number of u16 words in b.
func (b Body) Len() int { return len(b.raw) / 2 }

func (b Body) word(i int) uint16 {
	return binary.LittleEndian.Uint16(b.raw[2*i : 2*i+2])
}

func (b Body) setWord(i int, v uint16) {
	binary.LittleEndian.PutUint16(b.raw[2*i:2*i+2], v)
}

// NormalGains returns the N u16 gain words of a NORMAL body (one half of
// a {phase, duty} pair per invocation; see the normal-gain writer).
func (b Body) NormalGains() []uint16 {
	return b.words(0, b.Len())
}

// Cycles returns the N u16 per-channel cycle words of a CYCLE body.
func (b Body) Cycles() []uint16 {
	return b.words(0, b.Len())
}

// ModDelays returns the N u16 per-channel delay words of a MOD_DELAY_DATA
// body.
func (b Body) ModDelays() []uint16 {
	return b.words(0, b.Len())
}

func (b Body) words(from, n int) []uint16 {
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = b.word(from + i)
	}
	return out
}

// PointSTMHeadSize reads the size field of a POINT_STM_HEAD body.
func (b Body) PointSTMHeadSize() uint16 { return b.word(0) }

// PointSTMHeadFreqDiv reads the 32-bit freq_div field of a
// POINT_STM_HEAD body (words 1,2, little-endian halves).
func (b Body) PointSTMHeadFreqDiv() uint32 {
	return uint32(b.word(1)) | uint32(b.word(2))<<16
}

// PointSTMHeadSoundSpeed reads the 32-bit sound_speed field of a
// POINT_STM_HEAD body (words 3,4).
func (b Body) PointSTMHeadSoundSpeed() uint32 {
	return uint32(b.word(3)) | uint32(b.word(4))<<16
}

// PointSTMHeadPoints returns the points following the 5-word head
// prefix (payload starts at the 6th u16, i.e. word index 5).
func (b Body) PointSTMHeadPoints() []Point {
	return b.points(5)
}

// PointSTMBodySize reads the leading size word of a POINT_STM_BODY body.
func (b Body) PointSTMBodySize() uint16 { return b.word(0) }

// PointSTMBodyPoints returns the points following the leading size word.
func (b Body) PointSTMBodyPoints() []Point {
	return b.points(1)
}

func (b Body) points(from int) []Point {
	n := (b.Len() - from) / 4
	if n < 0 {
		n = 0
	}
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		w := from + 4*i
		out[i] = Point{b.word(w), b.word(w + 1), b.word(w + 2), b.word(w + 3)}
	}
	return out
}

// GainSTMHeadFreqDiv reads the 32-bit freq_div field of a GAIN_STM_HEAD
// body (words 0,1).
func (b Body) GainSTMHeadFreqDiv() uint32 {
	return uint32(b.word(0)) | uint32(b.word(1))<<16
}

// GainSTMHeadMode reads the latched seq_gain_data_mode field (word 2) of
// a GAIN_STM_HEAD body.
func (b Body) GainSTMHeadMode() uint16 { return b.word(2) }

// GainSTMGains returns the N u16 encoded gain words of a GAIN_STM_BODY
// body, interpretation depending on the latched mode (see the gain-STM
// writer).
func (b Body) GainSTMGains() []uint16 {
	return b.words(0, b.Len())
}

// SetNormalGains is a test/simulation helper to populate a NORMAL body.
func (b Body) SetNormalGains(v []uint16) {
	for i, g := range v {
		b.setWord(i, g)
	}
}

// SetCycles is a test/simulation helper to populate a CYCLE body.
func (b Body) SetCycles(v []uint16) {
	for i, c := range v {
		b.setWord(i, c)
	}
}

// SetPointSTMHead is a test/simulation helper to populate a
// POINT_STM_HEAD body.
func (b Body) SetPointSTMHead(size uint16, freqDiv, soundSpeed uint32, points []Point) {
	b.setWord(0, size)
	b.setWord(1, uint16(freqDiv))
	b.setWord(2, uint16(freqDiv>>16))
	b.setWord(3, uint16(soundSpeed))
	b.setWord(4, uint16(soundSpeed>>16))
	b.setPoints(5, points)
}

// SetPointSTMBody is a test/simulation helper to populate a
// POINT_STM_BODY body.
func (b Body) SetPointSTMBody(size uint16, points []Point) {
	b.setWord(0, size)
	b.setPoints(1, points)
}

func (b Body) setPoints(from int, points []Point) {
	for i, p := range points {
		w := from + 4*i
		for j := 0; j < 4; j++ {
			b.setWord(w+j, p[j])
		}
	}
}

// SetGainSTMHead is a test/simulation helper to populate a
// GAIN_STM_HEAD body.
func (b Body) SetGainSTMHead(freqDiv uint32, mode uint16) {
	b.setWord(0, uint16(freqDiv))
	b.setWord(1, uint16(freqDiv>>16))
	b.setWord(2, mode)
}

// SetGainSTMGains is a test/simulation helper to populate a
// GAIN_STM_BODY body.
func (b Body) SetGainSTMGains(v []uint16) {
	for i, g := range v {
		b.setWord(i, g)
	}
}

// SetModDelays is a test/simulation helper to populate a MOD_DELAY_DATA
// body.
func (b Body) SetModDelays(v []uint16) {
	for i, d := range v {
		b.setWord(i, d)
	}
}
