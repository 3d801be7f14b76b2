package tsdemux

import "sync"

// MockDecoder is a test double for Decoder: DecodeFunc, when set,
// determines the return value; otherwise Decode returns ResultToReturn
// (or ErrToReturn, if non-nil).
type MockDecoder struct {
	DecodeFunc     func(data []byte) (*Result, error)
	ResultToReturn *Result
	ErrToReturn    error

	mu    sync.Mutex
	Calls [][]byte
}

// NewMockDecoder returns a MockDecoder that yields result on every call.
func NewMockDecoder(result *Result) *MockDecoder {
	return &MockDecoder{ResultToReturn: result}
}

func (m *MockDecoder) Decode(data []byte) (*Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]byte{}, data...))
	m.mu.Unlock()

	if m.DecodeFunc != nil {
		return m.DecodeFunc(data)
	}
	if m.ErrToReturn != nil {
		return nil, m.ErrToReturn
	}
	return m.ResultToReturn, nil
}

func (m *MockDecoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var _ Decoder = (*MockDecoder)(nil)
