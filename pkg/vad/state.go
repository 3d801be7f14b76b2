package vad

import (
	"fmt"

	"github.com/streamscribe/streamscribe/pkg/ringbuf"
)

// SampleRate is the fixed rate the VAD state machine operates at. Audio
// reaching it has already been resampled to this rate.
const SampleRate = 16000

// WindowSamples is the fixed per-inference window: 30ms at 16kHz.
const WindowSamples = 480

// Hysteresis thresholds and timing gates, grounded on
// original_source/src/vad.rs's vad() function but tuned to this spec's
// parameter values rather than the Rust original's.
const (
	Threshold    = 0.5
	NegThreshold = 0.1

	MinSilenceMs = 800
	MinSpeechMs  = 300

	MinSilenceSamples = MinSilenceMs * SampleRate / 1000
	MinSpeechSamples  = MinSpeechMs * SampleRate / 1000

	// RetentionSamples is the forced-flush ceiling: 15s at 16kHz.
	RetentionSamples = 15 * SampleRate
)

// State is the VAD hysteresis state machine. It owns the detector's
// recurrent h/c tensors, the triggered/speech-timestamp bookkeeping, and
// a bounded retention ring that both backs emitted segments and caps
// per-segment memory and latency.
//
// Grounded on original_source/src/vad.rs's VadState/vad(), restructured
// as an explicit Go state object driven window-by-window rather than the
// original's single vad() entry point, so the VAD worker (pkg/stream)
// can feed it one window at a time as windows arrive off the PCM ring.
type State struct {
	detector Detector

	h, c []float32

	triggered     bool
	speechStartTs uint32
	speechEndTs   uint32
	windowCount   uint32

	retention []float32
}

// NewState creates a State bound to detector, with zeroed recurrent
// tensors and an empty retention ring.
func NewState(detector Detector) *State {
	return &State{
		detector:  detector,
		h:         make([]float32, 2*HiddenSizeOrDefault()),
		c:         make([]float32, 2*HiddenSizeOrDefault()),
		retention: make([]float32, 0, RetentionSamples),
	}
}

// HiddenSizeOrDefault returns HiddenSize when built with the vad build
// tag (ONNX present), and the old-Silero default of 64 otherwise — the
// mock detector never inspects h/c shape, so this only needs to be a
// stable, non-zero allocation size.
func HiddenSizeOrDefault() int {
	return 64
}

// Step feeds one WindowSamples-length window through the detector and
// the hysteresis state machine, appending any closed segment to out.
// Returns the (possibly extended) out slice.
func (s *State) Step(window []float32, out []ringbuf.Segment) ([]ringbuf.Segment, error) {
	if len(window) != WindowSamples {
		return out, fmt.Errorf("vad: window must be %d samples, got %d", WindowSamples, len(window))
	}

	// 1. Append to the retention ring; forced flush if it's now full.
	s.retention = append(s.retention, window...)
	if len(s.retention) >= RetentionSamples {
		out = append(out, ringbuf.Segment{
			Data:      s.retention,
			DurationS: 15.0,
		})
		s.retention = make([]float32, 0, RetentionSamples)
		s.speechStartTs = 0
		s.speechEndTs = 0
		s.windowCount = 0
	}

	t := s.windowCount * WindowSamples

	// 2. Run inference, updating recurrent state.
	newH, newC, prob, err := s.detector.Infer(window, s.h, s.c)
	if err != nil {
		return out, fmt.Errorf("vad: infer: %w", err)
	}
	s.h, s.c = newH, newC

	// 3. A fresh high-confidence window cancels a pending silence close.
	if prob >= Threshold && s.speechEndTs != 0 {
		s.speechEndTs = 0
	}

	// 4/5. Hysteresis transitions.
	if prob >= Threshold && !s.triggered {
		s.triggered = true
		s.speechStartTs = t
	} else if prob < NegThreshold && s.triggered {
		if s.speechEndTs == 0 {
			s.speechEndTs = t
		}

		if t-s.speechEndTs >= MinSilenceSamples {
			if s.speechEndTs-s.speechStartTs > MinSpeechSamples {
				out = append(out, ringbuf.Segment{
					Data:      drainRetention(&s.retention),
					DurationS: float32(t) / SampleRate,
				})
				s.speechStartTs = 0
				s.speechEndTs = 0
				s.windowCount = 0
			}
			s.triggered = false
		}
	}

	// 6. Advance the window counter.
	s.windowCount++
	return out, nil
}

// drainRetention returns the ring's current contents in FIFO order (they
// are already in that order since it is append-only between resets) and
// resets the ring for the next segment.
func drainRetention(retention *[]float32) []float32 {
	data := *retention
	*retention = make([]float32, 0, RetentionSamples)
	return data
}

// Reset zeroes all state, including the underlying detector's recurrent
// tensors and retention ring. Used between independent runs/tests.
func (s *State) Reset() {
	s.detector.Reset()
	for i := range s.h {
		s.h[i] = 0
	}
	for i := range s.c {
		s.c[i] = 0
	}
	s.triggered = false
	s.speechStartTs = 0
	s.speechEndTs = 0
	s.windowCount = 0
	s.retention = s.retention[:0]
}

// Triggered reports whether the state machine currently considers itself
// inside a speech region. Exposed for tests and diagnostics.
func (s *State) Triggered() bool { return s.triggered }
