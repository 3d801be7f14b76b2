package vad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitWindowsExactMultiple(t *testing.T) {
	v := make([]float32, WindowSamples*3)
	left, right := SplitWindows(v)
	assert.Len(t, left, WindowSamples*3)
	assert.Empty(t, right)
}

func TestSplitWindowsWithRemainder(t *testing.T) {
	v := make([]float32, WindowSamples*2+100)
	left, right := SplitWindows(v)
	assert.Len(t, left, WindowSamples*2)
	assert.Len(t, right, 100)
	assert.Equal(t, len(v), len(left)+len(right))
}

func TestSplitWindowsShorterThanOneWindow(t *testing.T) {
	v := make([]float32, 50)
	left, right := SplitWindows(v)
	assert.Empty(t, left)
	assert.Len(t, right, 50)
}

func TestSplitWindowsReconstructsInput(t *testing.T) {
	v := make([]float32, WindowSamples*4+17)
	for i := range v {
		v[i] = float32(i)
	}
	left, right := SplitWindows(v)
	assert.Equal(t, 0, len(left)%WindowSamples)
	assert.Less(t, len(right), WindowSamples)

	reconstructed := append(append([]float32{}, left...), right...)
	assert.Equal(t, v, reconstructed)
}
