package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteRingDrainFIFO(t *testing.T) {
	r := NewByteRing(16)
	r.Append([]byte("abc"))
	r.Append([]byte("def"))

	assert.Equal(t, 6, r.Len())
	assert.False(t, r.Full())

	out := r.Drain()
	assert.Equal(t, "abcdef", string(out))
	assert.Equal(t, 0, r.Len())
}

func TestByteRingFullTriggersFlushPolicy(t *testing.T) {
	r := NewByteRing(8)
	r.Append([]byte("12345678"))
	require.True(t, r.Full())

	out := r.Drain()
	assert.Equal(t, "12345678", string(out))
	assert.False(t, r.Full())
}

func TestByteRingOverflowTruncates(t *testing.T) {
	r := NewByteRing(4)
	r.Append([]byte("123456"))
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, "1234", string(r.Drain()))
}

func TestPcmRingPushDropsBeyondCapacity(t *testing.T) {
	r := NewPcmRing(4)
	n := r.Push([]float32{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{1, 2, 3, 4}, r.Drain())
}

func TestPcmRingDrainEmptiesRing(t *testing.T) {
	r := NewPcmRing(8)
	r.Push([]float32{1, 2, 3})
	assert.Equal(t, 3, r.Len())
	r.Drain()
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Drain())
}

func TestSegmentRingDropsWhenFull(t *testing.T) {
	r := NewSegmentRing(2)
	r.Push(Segment{DurationS: 1})
	r.Push(Segment{DurationS: 2})
	r.Push(Segment{DurationS: 3}) // dropped

	segs := r.Drain()
	require.Len(t, segs, 2)
	assert.Equal(t, float32(1), segs[0].DurationS)
	assert.Equal(t, float32(2), segs[1].DurationS)
}
