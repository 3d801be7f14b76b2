package vad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamscribe/streamscribe/pkg/ringbuf"
)

func silenceWindow() []float32 {
	return make([]float32, WindowSamples)
}

func speechWindow() []float32 {
	w := make([]float32, WindowSamples)
	for i := range w {
		w[i] = 0.2
	}
	return w
}

func TestStateNotTriggeredByLowProbability(t *testing.T) {
	mock := NewMockDetectorWithProb(0.0)
	state := NewState(mock)

	for i := 0; i < 10; i++ {
		out, err := state.Step(silenceWindow(), nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
	assert.False(t, state.Triggered())
}

func TestStateTriggersOnHighProbability(t *testing.T) {
	mock := NewMockDetectorWithProb(0.9)
	state := NewState(mock)

	out, err := state.Step(speechWindow(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, state.Triggered())
}

func TestStateEmitsSegmentAfterSustainedSilenceFollowingLongSpeech(t *testing.T) {
	mock := NewMockDetectorWithProb(0.9)
	state := NewState(mock)

	// Enough high-probability windows to clear MIN_SPEECH_SAMPLES (4800).
	speechWindows := MinSpeechSamples/WindowSamples + 2
	for i := 0; i < speechWindows; i++ {
		_, err := state.Step(speechWindow(), nil)
		require.NoError(t, err)
	}
	require.True(t, state.Triggered())

	// Now feed low-probability windows until the silence gate closes.
	mock.InferFunc = func([]float32) (float32, error) { return 0.0, nil }
	silenceWindows := MinSilenceSamples/WindowSamples + 2

	var emitted []ringbuf.Segment
	for i := 0; i < silenceWindows; i++ {
		out, err := state.Step(silenceWindow(), nil)
		require.NoError(t, err)
		emitted = append(emitted, out...)
	}

	require.Len(t, emitted, 1)
	seg := emitted[0]
	assert.Greater(t, len(seg.Data), MinSpeechSamples)
	assert.LessOrEqual(t, len(seg.Data), RetentionSamples)
	assert.False(t, state.Triggered())
}

func TestStateDiscardsTooShortSpeech(t *testing.T) {
	mock := NewMockDetectorWithProb(0.9)
	state := NewState(mock)

	// Only one window of speech: far short of MIN_SPEECH_SAMPLES.
	_, err := state.Step(speechWindow(), nil)
	require.NoError(t, err)
	require.True(t, state.Triggered())

	mock.InferFunc = func([]float32) (float32, error) { return 0.0, nil }
	silenceWindows := MinSilenceSamples/WindowSamples + 2

	var emitted []ringbuf.Segment
	for i := 0; i < silenceWindows; i++ {
		out, err := state.Step(silenceWindow(), nil)
		require.NoError(t, err)
		emitted = append(emitted, out...)
	}

	assert.Empty(t, emitted)
	assert.False(t, state.Triggered())
}

func TestStateForcedFlushAt15Seconds(t *testing.T) {
	mock := NewMockDetectorWithProb(0.0)
	state := NewState(mock)

	windowsFor15s := RetentionSamples / WindowSamples

	var emitted []ringbuf.Segment
	for i := 0; i < windowsFor15s; i++ {
		out, err := state.Step(silenceWindow(), nil)
		require.NoError(t, err)
		emitted = append(emitted, out...)
	}

	require.Len(t, emitted, 1)
	assert.Equal(t, float32(15.0), emitted[0].DurationS)
	assert.Len(t, emitted[0].Data, RetentionSamples)
}

func TestStateSpeechEndClearedByRenewedSpeech(t *testing.T) {
	mock := NewMockDetectorWithProb(0.9)
	state := NewState(mock)

	speechWindows := MinSpeechSamples/WindowSamples + 2
	for i := 0; i < speechWindows; i++ {
		_, err := state.Step(speechWindow(), nil)
		require.NoError(t, err)
	}

	// A few low-probability windows start a pending silence close...
	mock.InferFunc = func([]float32) (float32, error) { return 0.0, nil }
	for i := 0; i < 3; i++ {
		out, err := state.Step(silenceWindow(), nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
	assert.True(t, state.Triggered())
	assert.NotZero(t, state.speechEndTs)

	// ...but a renewed high-probability window should cancel it, so a
	// subsequent full silence run starts the MIN_SILENCE_SAMPLES count
	// over rather than immediately closing.
	mock.InferFunc = func([]float32) (float32, error) { return 0.9, nil }
	_, err := state.Step(speechWindow(), nil)
	require.NoError(t, err)
	assert.True(t, state.Triggered())
	assert.Equal(t, uint32(0), state.speechEndTs)
}

func TestStateRejectsWrongWindowSize(t *testing.T) {
	mock := NewMockDetector()
	state := NewState(mock)

	_, err := state.Step(make([]float32, 10), nil)
	assert.Error(t, err)
}

func TestStateResetClearsDetectorAndCounters(t *testing.T) {
	mock := NewMockDetectorWithProb(0.9)
	state := NewState(mock)

	_, err := state.Step(speechWindow(), nil)
	require.NoError(t, err)
	require.True(t, state.Triggered())

	state.Reset()
	assert.False(t, state.Triggered())
	assert.True(t, mock.ResetCalled)
	assert.Equal(t, uint32(0), state.windowCount)
	assert.Equal(t, uint32(0), state.speechStartTs)
}
