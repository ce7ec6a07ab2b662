// Package metrics exposes diagnostic-only runtime counters for the
// frame-dispatch engine: frames classified, frames dropped, ring-full
// spins, and per-writer invocation counts. None of these feed back into
// any control decision (spec.md section 7: all errors are local); they
// exist purely so cmd/ tooling and tests can observe engine behavior,
// the same role gocat's scanner.ScanResult counters play for its
// scanning loop.
package metrics

import (
	"expvar"
	"sync/atomic"
)

// Counters is a small set of named atomic counters, one instance per
// Context. Callers read a snapshot with Snapshot(); fields are not meant
// to be read directly while the engine may still be running.
type Counters struct {
	FramesClassified  atomic.Uint64
	FramesDropped     atomic.Uint64
	FramesDuplicate   atomic.Uint64
	RingFullSpins     atomic.Uint64
	ModWrites         atomic.Uint64
	SilencerWrites    atomic.Uint64
	SyncWrites        atomic.Uint64
	NormalGainWrites  atomic.Uint64
	PointSTMWrites    atomic.Uint64
	GainSTMWrites     atomic.Uint64
	ModDelayWrites    atomic.Uint64
	GainSTMByMode     [3]atomic.Uint64 // indexed by GainSTMModeIndex
	UnknownGainMode   atomic.Uint64
	LegacyIncompatSkip atomic.Uint64
}

// GainSTMModeIndex maps the wire.GainSTMMode* constants to a dense index
// for GainSTMByMode. Unknown/fallback modes are accounted separately via
// UnknownGainMode.
func GainSTMModeIndex(mode uint16) (idx int, ok bool) {
	switch mode {
	case 1: // PHASE_DUTY_FULL
		return 0, true
	case 2: // PHASE_FULL
		return 1, true
	case 4: // PHASE_HALF
		return 2, true
	default:
		return 0, false
	}
}

// Snapshot is a point-in-time, race-free copy of Counters for reporting.
type Snapshot struct {
	FramesClassified   uint64
	FramesDropped      uint64
	FramesDuplicate    uint64
	RingFullSpins      uint64
	ModWrites          uint64
	SilencerWrites     uint64
	SyncWrites         uint64
	NormalGainWrites   uint64
	PointSTMWrites     uint64
	GainSTMWrites      uint64
	ModDelayWrites     uint64
	GainSTMByMode      [3]uint64
	UnknownGainMode    uint64
	LegacyIncompatSkip uint64
}

// Snapshot reads every counter atomically.
func (c *Counters) Snapshot() Snapshot {
	var s Snapshot
	s.FramesClassified = c.FramesClassified.Load()
	s.FramesDropped = c.FramesDropped.Load()
	s.FramesDuplicate = c.FramesDuplicate.Load()
	s.RingFullSpins = c.RingFullSpins.Load()
	s.ModWrites = c.ModWrites.Load()
	s.SilencerWrites = c.SilencerWrites.Load()
	s.SyncWrites = c.SyncWrites.Load()
	s.NormalGainWrites = c.NormalGainWrites.Load()
	s.PointSTMWrites = c.PointSTMWrites.Load()
	s.GainSTMWrites = c.GainSTMWrites.Load()
	s.ModDelayWrites = c.ModDelayWrites.Load()
	for i := range c.GainSTMByMode {
		s.GainSTMByMode[i] = c.GainSTMByMode[i].Load()
	}
	s.UnknownGainMode = c.UnknownGainMode.Load()
	s.LegacyIncompatSkip = c.LegacyIncompatSkip.Load()
	return s
}

// Publish registers c's counters under expvar so cmd/ tools exposing a
// debug HTTP endpoint can serve them alongside Go's runtime stats.
// Registering the same name twice panics (expvar's documented behavior),
// so Publish is expected to be called at most once per process.
func (c *Counters) Publish(name string) {
	expvar.Publish(name, expvar.Func(func() any {
		s := c.Snapshot()
		return s
	}))
}
