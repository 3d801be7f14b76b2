//go:build vad

package vad

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// HiddenSize is the width of the VAD model's h/c recurrent tensors,
// shaped [2, 1, HiddenSize] per spec §3.
const HiddenSize = 64

// WindowSizeSamples is the fixed window the model expects: 30ms at 16kHz.
const WindowSizeSamples = 480

var (
	runtimeInitialized bool
	runtimeMu          sync.Mutex
)

// InitRuntime initializes the ONNX runtime environment. libraryPath may
// be empty to auto-detect libonnxruntime. Call once at startup.
func InitRuntime(libraryPath string) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if runtimeInitialized {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	} else if p := findONNXRuntimeLibrary(); p != "" {
		ort.SetSharedLibraryPath(p)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}
	runtimeInitialized = true
	return nil
}

// DestroyRuntime tears down the ONNX runtime environment.
func DestroyRuntime() error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if !runtimeInitialized {
		return nil
	}
	if err := ort.DestroyEnvironment(); err != nil {
		return fmt.Errorf("destroy onnx runtime: %w", err)
	}
	runtimeInitialized = false
	return nil
}

func findONNXRuntimeLibrary() string {
	paths := []string{
		os.Getenv("ONNXRUNTIME_LIB"),
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/opt/onnxruntime/lib/libonnxruntime.so",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"/usr/local/lib/libonnxruntime.dylib",
	}
	if ld := os.Getenv("LD_LIBRARY_PATH"); ld != "" {
		for _, dir := range filepath.SplitList(ld) {
			paths = append(paths, filepath.Join(dir, "libonnxruntime.so"))
		}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// OnnxDetector runs the Silero VAD ONNX model via onnxruntime_go.
//
// It is grounded on the teacher's pkg/vad/detector.go but targets the
// older Silero export the spec's model contract names: separate h/c
// state tensors shaped [2,1,64] (input names "input","h0","c0"; output
// names "output","hn","cn") rather than that file's single packed
// [2,1,128] state tensor.
type OnnxDetector struct {
	session *ort.DynamicAdvancedSession
	modelPath string
}

// NewOnnxDetector loads the ONNX model at modelPath. InitRuntime must
// have been called first (or auto-initializes with default discovery).
func NewOnnxDetector(modelPath string) (*OnnxDetector, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("vad: model path must not be empty")
	}

	runtimeMu.Lock()
	initialized := runtimeInitialized
	runtimeMu.Unlock()
	if !initialized {
		if err := InitRuntime(""); err != nil {
			return nil, fmt.Errorf("vad: onnx runtime not initialized: %w", err)
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("vad: create session options: %w", err)
	}
	defer options.Destroy()
	if err := options.SetIntraOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("vad: set intra-op threads: %w", err)
	}
	if err := options.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("vad: set inter-op threads: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input", "h0", "c0"},
		[]string{"output", "hn", "cn"},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("vad: create session: %w", err)
	}

	return &OnnxDetector{session: session, modelPath: modelPath}, nil
}

// Infer implements Detector.
func (d *OnnxDetector) Infer(window, h, c []float32) ([]float32, []float32, float32, error) {
	if d == nil || d.session == nil {
		return nil, nil, 0, fmt.Errorf("vad: nil detector")
	}
	if len(window) != WindowSizeSamples {
		return nil, nil, 0, fmt.Errorf("vad: window must be %d samples, got %d", WindowSizeSamples, len(window))
	}

	inputShape := ort.NewShape(1, int64(len(window)))
	inputTensor, err := ort.NewTensor(inputShape, window)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("vad: input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	stateShape := ort.NewShape(2, 1, HiddenSize)
	hTensor, err := ort.NewTensor(stateShape, h)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("vad: h tensor: %w", err)
	}
	defer hTensor.Destroy()

	cTensor, err := ort.NewTensor(stateShape, c)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("vad: c tensor: %w", err)
	}
	defer cTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return nil, nil, 0, fmt.Errorf("vad: output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	hnTensor, err := ort.NewEmptyTensor[float32](stateShape)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("vad: hn tensor: %w", err)
	}
	defer hnTensor.Destroy()

	cnTensor, err := ort.NewEmptyTensor[float32](stateShape)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("vad: cn tensor: %w", err)
	}
	defer cnTensor.Destroy()

	inputs := []ort.Value{inputTensor, hTensor, cTensor}
	outputs := []ort.Value{outputTensor, hnTensor, cnTensor}
	if err := d.session.Run(inputs, outputs); err != nil {
		return nil, nil, 0, fmt.Errorf("vad: run inference: %w", err)
	}

	out := outputTensor.GetData()
	if len(out) < 2 {
		return nil, nil, 0, fmt.Errorf("vad: unexpected output shape")
	}

	newH := make([]float32, HiddenSize*2)
	copy(newH, hnTensor.GetData())
	newC := make([]float32, HiddenSize*2)
	copy(newC, cnTensor.GetData())

	return newH, newC, out[1], nil
}

// Reset is a no-op on OnnxDetector: the caller (State) owns h/c and
// resets them by zeroing its own buffers between runs.
func (d *OnnxDetector) Reset() {}

// Destroy releases the ONNX session.
func (d *OnnxDetector) Destroy() error {
	if d == nil || d.session == nil {
		return nil
	}
	if err := d.session.Destroy(); err != nil {
		return fmt.Errorf("vad: destroy session: %w", err)
	}
	d.session = nil
	return nil
}

var _ Detector = (*OnnxDetector)(nil)
