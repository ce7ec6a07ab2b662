package ring

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/shinolab/autd3cpu-go/pkg/wire"
)

func TestPushPopFIFO(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New(4)
		ops := rapid.SliceOf(rapid.IntRange(0, 1)).Draw(t, "ops")

		var pushed []uint8
		var popped []uint8
		for _, op := range ops {
			if op == 0 {
				id := uint8(rapid.IntRange(0, 255).Draw(t, "id"))
				var h wire.Header
				h.SetMsgID(id)
				if r.Push(h, make([]byte, 8)) {
					pushed = append(pushed, id)
				}
			} else {
				var h wire.Header
				body := make([]byte, 8)
				if r.Pop(&h, body) {
					popped = append(popped, h.MsgID())
				}
			}
		}
		// Drain whatever remains so every successful push is accounted for.
		for {
			var h wire.Header
			body := make([]byte, 8)
			if !r.Pop(&h, body) {
				break
			}
			popped = append(popped, h.MsgID())
		}
		assert.Equal(t, pushed, popped, "popped order must equal pushed order")
	})
}

func TestPushFailsWhenFull(t *testing.T) {
	r := New(1)
	for i := 0; i < Capacity-1; i++ {
		require.True(t, r.Push(wire.Header{}, []byte{0, 0}), "push %d should succeed", i)
	}
	assert.False(t, r.Push(wire.Header{}, []byte{0, 0}), "ring should report full with Capacity-1 entries outstanding")
	assert.Equal(t, Capacity-1, r.Len())
}

func TestPopEmpty(t *testing.T) {
	r := New(1)
	var h wire.Header
	body := make([]byte, 2)
	assert.False(t, r.Pop(&h, body))
}

func TestPushSpinCountsFullAttempts(t *testing.T) {
	r := New(1)
	for i := 0; i < Capacity-1; i++ {
		require.True(t, r.Push(wire.Header{}, []byte{0, 0}))
	}
	assert.Equal(t, uint64(0), r.FullSpins())
	assert.False(t, r.Push(wire.Header{}, []byte{0, 0}))

	done := make(chan struct{})
	go func() {
		r.PushSpin(wire.Header{}, []byte{1, 1})
		close(done)
	}()
	for r.FullSpins() == 0 {
		runtime.Gosched()
	}

	var h wire.Header
	body := make([]byte, 2)
	require.True(t, r.Pop(&h, body))
	<-done
	assert.Greater(t, r.FullSpins(), uint64(0))
	assert.Equal(t, Capacity-1, r.Len())
}

func TestClearResetsRing(t *testing.T) {
	r := New(1)
	var h wire.Header
	h.SetMsgID(7)
	require.True(t, r.Push(h, []byte{1, 2}))
	r.Clear()
	assert.Equal(t, 0, r.Len())
	var out wire.Header
	body := make([]byte, 2)
	assert.False(t, r.Pop(&out, body))
}
