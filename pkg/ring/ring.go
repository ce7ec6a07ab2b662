// Package ring implements the bounded single-producer/single-consumer
// queue that hands frames from the EtherCAT receive context to the 1ms
// periodic context (spec.md section 4.1). It never blocks the consumer;
// the producer is expected to retry (optionally after a short
// wait/yield) when Push reports the ring full.
package ring

import (
	"sync/atomic"

	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

// Capacity is the fixed number of slots in the ring (spec.md section 3).
// One slot is always kept empty so that write==read is unambiguously
// "empty" and (write+1)%Capacity==read is unambiguously "full".
const Capacity = 32

type slot struct {
	header wire.Header
	body   []byte
}

// Ring is a bounded SPSC queue of (Header, Body) pairs, stored by value.
// Only the producer goroutine may call Push; only the consumer goroutine
// may call Pop. The zero value is not usable; construct with New.
type Ring struct {
	slots      [Capacity]slot
	bodyWords  int
	write      atomic.Uint32 // producer-owned, published with Store (release)
	read       atomic.Uint32 // consumer-owned, published with Store (release)
	fullSpins  atomic.Uint64 // diagnostic counter, see spec.md "Producer spin on ring full"
}

// New returns an empty Ring whose body slots are sized for bodyWords u16
// words (i.e. 2*bodyWords bytes), matching the Context's transducer
// count N.
func New(bodyWords int) *Ring {
	r := &Ring{bodyWords: bodyWords}
	for i := range r.slots {
		r.slots[i].body = make([]byte, 2*bodyWords)
	}
	return r
}

// Push copies header and body into the next free slot and publishes it
// to the consumer. It reports false without side effects if the ring is
// full; the caller (the receive-context classifier) is responsible for
// retrying.
func (r *Ring) Push(h wire.Header, body []byte) bool {
	write := r.write.Load()
	next := (write + 1) % Capacity
	if next == r.read.Load() {
		return false
	}
	s := &r.slots[write]
	s.header = h
	copy(s.body, body)
	// Publish the slot before advancing write: the store below must be
	// observed by the consumer only after the payload writes above are
	// visible to it (spec.md section 4.1 release/acquire requirement).
	r.write.Store(next)
	return true
}

// PushSpin retries Push, incrementing the diagnostic spin counter on
// each failed attempt, until it succeeds. It never blocks for long in
// practice because the consumer drains one slot per 1ms tick.
func (r *Ring) PushSpin(h wire.Header, body []byte) {
	for !r.Push(h, body) {
		r.fullSpins.Add(1)
	}
}

// FullSpins returns the number of failed Push attempts observed so far,
// for diagnostics only (spec.md section 4: "prefer a small wait/yield
// with an instrumentation counter over a hard spin").
func (r *Ring) FullSpins() uint64 { return r.fullSpins.Load() }

// Pop copies the oldest unread slot into (h, body) and advances the read
// cursor. body must be at least 2*bodyWords bytes; it reports false
// without side effects if the ring is empty.
func (r *Ring) Pop(h *wire.Header, body []byte) bool {
	read := r.read.Load()
	if read == r.write.Load() {
		return false
	}
	s := &r.slots[read]
	*h = s.header
	copy(body, s.body)
	r.read.Store((read + 1) % Capacity)
	return true
}

// Len reports the number of unread entries. It is a snapshot only; safe
// to call from either context for diagnostics.
func (r *Ring) Len() int {
	w, rd := int(r.write.Load()), int(r.read.Load())
	if w >= rd {
		return w - rd
	}
	return w + Capacity - rd
}

// Clear resets the ring to empty, zeroing slot payloads. Only safe to
// call when neither context is concurrently pushing or popping (used by
// the clear routine at power-on and on MSG_CLEAR).
func (r *Ring) Clear() {
	for i := range r.slots {
		r.slots[i].header = wire.Header{}
		for j := range r.slots[i].body {
			r.slots[i].body[j] = 0
		}
	}
	r.write.Store(0)
	r.read.Store(0)
}
