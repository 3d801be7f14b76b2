package vad

import "sync"

// MockDetector is a test double for Detector that lets the caller script
// a sequence (or function) of speech probabilities without loading an
// ONNX model.
type MockDetector struct {
	// InferFunc is called when Infer is invoked. If nil, returns 0.0.
	InferFunc func(window []float32) (float32, error)

	// InferCalls records every window passed to Infer, for assertions.
	InferCalls [][]float32

	ResetCalled   bool
	DestroyCalled bool

	mu sync.Mutex
}

// NewMockDetector creates a MockDetector that always reports silence.
func NewMockDetector() *MockDetector {
	return &MockDetector{InferCalls: make([][]float32, 0)}
}

// NewMockDetectorWithProb creates a MockDetector returning a fixed probability.
func NewMockDetectorWithProb(prob float32) *MockDetector {
	return &MockDetector{
		InferFunc: func([]float32) (float32, error) { return prob, nil },
		InferCalls: make([][]float32, 0),
	}
}

// NewMockDetectorWithSequence creates a MockDetector that cycles through probs.
func NewMockDetectorWithSequence(probs []float32) *MockDetector {
	idx := 0
	return &MockDetector{
		InferFunc: func([]float32) (float32, error) {
			if len(probs) == 0 {
				return 0, nil
			}
			p := probs[idx]
			idx = (idx + 1) % len(probs)
			return p, nil
		},
		InferCalls: make([][]float32, 0),
	}
}

// Infer implements Detector. The returned h/c are the input slices
// themselves — the mock carries no real recurrent state, it simply reports whatever
// probability it was scripted to.
func (m *MockDetector) Infer(window, h, c []float32) ([]float32, []float32, float32, error) {
	m.mu.Lock()
	cp := make([]float32, len(window))
	copy(cp, window)
	m.InferCalls = append(m.InferCalls, cp)
	m.mu.Unlock()

	var prob float32
	var err error
	if m.InferFunc != nil {
		prob, err = m.InferFunc(window)
	}
	return h, c, prob, err
}

// Reset implements Detector.
func (m *MockDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCalled = true
}

// Destroy implements Detector.
func (m *MockDetector) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DestroyCalled = true
	return nil
}

// InferCallCount returns the number of times Infer was called.
func (m *MockDetector) InferCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.InferCalls)
}

var _ Detector = (*MockDetector)(nil)
