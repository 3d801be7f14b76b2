package asr

import "sync"

// MockEngine is a test double for Engine that returns a scripted set of
// inner segments without loading a real whisper.cpp model.
type MockEngine struct {
	// TranscribeFunc is called when Transcribe is invoked. If nil,
	// returns no segments.
	TranscribeFunc func(pcm []float32, cfg Config) ([]InnerSegment, error)

	// Calls records the cfg passed to every Transcribe call.
	Calls []Config

	CloseCalled bool

	mu sync.Mutex
}

// NewMockEngine creates a MockEngine that produces no segments.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// NewMockEngineWithSegments creates a MockEngine that always returns segs.
func NewMockEngineWithSegments(segs []InnerSegment) *MockEngine {
	return &MockEngine{
		TranscribeFunc: func([]float32, Config) ([]InnerSegment, error) { return segs, nil },
	}
}

// Transcribe implements Engine.
func (m *MockEngine) Transcribe(pcm []float32, cfg Config) ([]InnerSegment, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, cfg)
	m.mu.Unlock()

	if m.TranscribeFunc == nil {
		return nil, nil
	}
	return m.TranscribeFunc(pcm, cfg)
}

// Close implements Engine.
func (m *MockEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

var _ Engine = (*MockEngine)(nil)
