// Package cpu implements the frame-dispatch and streaming-write engine:
// the process-wide state of spec.md section 3, the four mode writers of
// section 4.3-4.9, the dispatcher of section 4.10, the receive-context
// classifier of section 4.11, and the clear routine of section 4.12.
//
// A Context owns all of it. The receive-context classifier and the
// periodic-context dispatcher are meant to run as two goroutines sharing
// one Context exactly as spec.md section 5 describes: cross-context
// communication is exclusively through the ring plus the ack word and
// the read_fpga_info flag.
package cpu

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/ecat"
	"github.com/shinolab/autd3cpu-go/pkg/logging"
	"github.com/shinolab/autd3cpu-go/pkg/metrics"
	"github.com/shinolab/autd3cpu-go/pkg/ring"
)

// Segment sizes, in entries, fixed by spec.md section 3 and 4.
const (
	modSegment   = 1 << 15
	modMask      = modSegment - 1
	stmPtSegment = 1 << 11
	stmPtMask    = stmPtSegment - 1
	stmGnSegment = 1 << 5
	stmGnMask    = stmGnSegment - 1
)

// Default values installed by Clear (spec.md section 4.12).
const (
	DefaultModFreqDiv   uint32 = 40960
	DefaultSilentStep   uint16 = 10
	DefaultSilentCycle  uint16 = 4096
)

// Context holds every piece of process-wide state in spec.md section 3,
// plus the collaborators it was built with. Exactly one receive-context
// goroutine and one periodic-context goroutine are expected to call its
// methods, per the division documented on each method.
type Context struct {
	N       int
	Sink    bram.Sink
	Shared  ecat.Shared
	Ring    *ring.Ring
	Log     *log.Logger
	Metrics *metrics.Counters

	// receive-context-owned
	msgIDLast uint8

	// shared: written by receive context, read by periodic context.
	readFPGAInfo bool

	// shared: written by both contexts, last-writer-wins (spec.md
	// section 5). ackWord's set/setLow/get below keep the 16-bit word
	// atomic so "last writer wins" means a whole word, never a torn half.
	ack ackWord

	// written by synchronizer (receive context); read by gain-STM
	// PHASE_FULL non-legacy path (periodic context). A reader may see a
	// torn update; spec.md section 5 accepts this as harmless because
	// CONFIG_SYNC is protocol-guaranteed not to arrive mid-STM-upload.
	cycle []uint16

	// periodic-context-owned
	modCycle        uint32
	stmCycle        uint32
	seqGainDataMode uint16
}

// New constructs a Context for an array of n transducers. sink and
// shared must be non-nil; logger may be nil, in which case logging is
// discarded.
func New(n int, sink bram.Sink, shared ecat.Shared, logger *log.Logger) *Context {
	if logger == nil {
		logger = logging.Discard
	}
	c := &Context{
		N:       n,
		Sink:    sink,
		Shared:  shared,
		Ring:    ring.New(n),
		Log:     logger,
		Metrics: &metrics.Counters{},
		cycle:   make([]uint16, n),
		// No served msg_id is above wire.MsgEnd, so the first frame
		// (even a CLEAR with msg_id 0) is never taken as a duplicate.
		msgIDLast: 0xFF,
	}
	c.clearLocked()
	return c
}

// ackWord packs the 16-bit ack as (high=msg_id, low=info byte) behind a
// single atomic so concurrent publishers from either context never
// produce a torn word (spec.md section 5): "ack updates are 16-bit word
// stores; last-writer-wins is acceptable because the ISR's write always
// carries the freshest msg_id."
type ackWord struct {
	packed atomic.Uint32 // only the low 16 bits are meaningful
}

func (a *ackWord) set(high, low uint8) {
	a.packed.Store(uint32(high)<<8 | uint32(low))
}

func (a *ackWord) setLow(low uint8) {
	for {
		old := a.packed.Load()
		next := (old &^ 0xFF) | uint32(low)
		if a.packed.CompareAndSwap(old, next) {
			return
		}
	}
}

func (a *ackWord) get() uint16 { return uint16(a.packed.Load()) }
