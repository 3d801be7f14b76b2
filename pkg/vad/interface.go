// Package vad implements voice-activity-delimited speech segmentation:
// a Silero-VAD hysteresis state machine (State) driven by an
// interchangeable neural inference backend (Detector).
package vad

// Detector runs one window of 16 kHz mono PCM through the VAD neural
// model and returns an updated recurrent state and a speech probability.
//
// This mirrors the teacher's DetectorInterface (pkg/vad/interface.go in
// the reference repo), generalized from that repo's single packed RNN
// state to the two-tensor h/c pair the spec's model shape carries.
type Detector interface {
	// Infer runs the model on window (exactly WindowSizeSamples f32
	// samples) with recurrent state (h, c), returning the updated state
	// and the speech probability read from the model's first output.
	Infer(window, h, c []float32) (newH, newC []float32, prob float32, err error)

	// Reset zeroes the detector's recurrent state.
	Reset()

	// Destroy releases any resources (ONNX session, etc).
	Destroy() error
}
