//go:build asr

package asr

import (
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go"
)

// WhisperEngine implements Engine over a local whisper.cpp model,
// loaded once at startup from the path given by --model.
//
// Grounded on the teacher's pkg/asr/whisper.go (struct + mutex-guarded
// provider shape, NewXxxProvider constructor pattern) but replacing that
// file's OpenAI Whisper HTTP client with the native whisper.cpp Go
// bindings the spec's exact decoder-flag contract names.
type WhisperEngine struct {
	model whisper.Model
	mu    sync.Mutex
}

// NewWhisperEngine loads a GGML/GGUF whisper model from modelPath.
func NewWhisperEngine(modelPath string) (*WhisperEngine, error) {
	if modelPath == "" {
		return nil, &Error{Code: ErrCodeInvalidConfig, Message: "asr: model path is required"}
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, &Error{Code: ErrCodeModelLoad, Message: "asr: failed to load whisper model", Err: err}
	}

	return &WhisperEngine{model: model}, nil
}

// Transcribe implements Engine.
func (w *WhisperEngine) Transcribe(pcm []float32, cfg Config) ([]InnerSegment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, err := w.model.NewContext()
	if err != nil {
		return nil, &Error{Code: ErrCodeModelRun, Message: "asr: failed to create whisper context", Err: err}
	}

	ctx.SetThreads(uint(cfg.Threads))
	if cfg.Language != "" {
		if err := ctx.SetLanguage(cfg.Language); err != nil {
			return nil, &Error{Code: ErrCodeInvalidConfig, Message: "asr: unsupported language " + cfg.Language, Err: err}
		}
	}

	// Decoder flags fixed by the spec's Transcriber contract, not
	// surfaced as caller-configurable knobs.
	ctx.SetBeamSize(1) // greedy sampling, best_of=1
	ctx.SetSuppressBlank(true)
	ctx.SetNoSpeechThreshold(1.0)
	ctx.SetSingleSegment(true)
	ctx.SetNoContext(true)
	ctx.SetTokenTimestamps(false)

	if err := ctx.Process(pcm, nil, nil); err != nil {
		return nil, &Error{Code: ErrCodeModelRun, Message: "asr: whisper inference failed", Err: err}
	}

	var out []InnerSegment
	for {
		seg, err := ctx.NextSegment()
		if err != nil {
			break
		}
		out = append(out, InnerSegment{
			Text:    seg.Text,
			StartMs: int(seg.Start.Milliseconds()),
		})
	}
	return out, nil
}

// Close releases the whisper model.
func (w *WhisperEngine) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model == nil {
		return nil
	}
	err := w.model.Close()
	w.model = nil
	return err
}

var _ Engine = (*WhisperEngine)(nil)
