package stream

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamscribe/streamscribe/pkg/asr"
	"github.com/streamscribe/streamscribe/pkg/logx"
	"github.com/streamscribe/streamscribe/pkg/ringbuf"
	"github.com/streamscribe/streamscribe/pkg/tsdemux"
	"github.com/streamscribe/streamscribe/pkg/vad"
)

func newTestCoordinator(decoder tsdemux.Decoder, detector vad.Detector, engine asr.Engine, out *bytes.Buffer) *Coordinator {
	return New(logx.New(false), decoder, detector, engine, asr.Config{Threads: 1, Language: "en"}, nil, out)
}

func TestIngestLoopDecodesOnEOFFlush(t *testing.T) {
	decoder := tsdemux.NewMockDecoder(&tsdemux.Result{
		Samples:    []float32{0, 0, 0, 0},
		SampleRate: 16000,
	})
	var out bytes.Buffer
	c := newTestCoordinator(decoder, vad.NewMockDetector(), asr.NewMockEngine(), &out)

	err := c.ingestLoop(strings.NewReader("not really mpeg-ts but non-empty"))
	require.NoError(t, err)

	assert.Equal(t, 1, decoder.CallCount())
	assert.Equal(t, int32(16000), c.sourceRateHz.Load())
}

func TestIngestLoopPropagatesNonEOFReadError(t *testing.T) {
	decoder := tsdemux.NewMockDecoder(nil)
	var out bytes.Buffer
	c := newTestCoordinator(decoder, vad.NewMockDetector(), asr.NewMockEngine(), &out)

	boom := errors.New("boom")
	err := c.ingestLoop(&erroringReader{err: boom})
	assert.ErrorIs(t, err, boom)
}

type erroringReader struct{ err error }

func (r *erroringReader) Read(p []byte) (int, error) { return 0, r.err }

func TestFlushByteRingDropsEmptyDecoderBatchQuietly(t *testing.T) {
	decoder := tsdemux.NewMockDecoder(nil)
	decoder.ErrToReturn = tsdemux.ErrEmptyBatch
	var out bytes.Buffer
	c := newTestCoordinator(decoder, vad.NewMockDetector(), asr.NewMockEngine(), &out)

	c.byteRing.Append([]byte("x"))
	c.flushByteRing() // must not panic and must not post a Sync

	select {
	case <-c.vadSignal.C():
		t.Fatal("no Sync expected after an empty-batch decode")
	default:
	}
}

func TestFlushByteRingSkipsEmptyBatches(t *testing.T) {
	decoder := tsdemux.NewMockDecoder(&tsdemux.Result{Samples: []float32{1}})
	var out bytes.Buffer
	c := newTestCoordinator(decoder, vad.NewMockDetector(), asr.NewMockEngine(), &out)

	c.flushByteRing() // byteRing is empty, decoder must not be called
	assert.Equal(t, 0, decoder.CallCount())
}

func TestDrainAndProcessPCMPushesSegmentsAndSignalsTranscriber(t *testing.T) {
	// A run of high-probability windows triggers VAD; a following silence
	// run long enough to pass the silence gate closes and emits the segment.
	probs := make([]float32, 0, 50)
	for i := 0; i < 20; i++ {
		probs = append(probs, 0.9)
	}
	for i := 0; i < 30; i++ {
		probs = append(probs, 0.0)
	}
	detector := vad.NewMockDetectorWithSequence(probs)

	var out bytes.Buffer
	c := newTestCoordinator(tsdemux.NewMockDecoder(nil), detector, asr.NewMockEngine(), &out)
	c.sourceRateHz.Store(vad.SampleRate) // identity resample

	samples := make([]float32, vad.WindowSamples*len(probs))
	c.pcmRing.Push(samples)

	c.drainAndProcessPCM()

	assert.Greater(t, detector.InferCallCount(), 0)
	assert.Equal(t, 1, c.segRing.Len())
	select {
	case k := <-c.transcriberSignal.C():
		assert.Equal(t, 0, int(k)) // Sync == 0
	default:
		t.Fatal("expected a Sync posted to the transcriber after processing")
	}
}

func TestTranscribeSegmentEmitsCleanedDeduplicatedText(t *testing.T) {
	engine := asr.NewMockEngineWithSegments([]asr.InnerSegment{
		{Text: "hello world", StartMs: 0},
		{Text: " hello world ", StartMs: 500}, // cleans to the previous segment's raw text
		{Text: "(applause) goodbye", StartMs: 900},
	})
	var out bytes.Buffer
	c := newTestCoordinator(tsdemux.NewMockDecoder(nil), vad.NewMockDetector(), engine, &out)

	c.transcribeSegment(ringbuf.Segment{Data: []float32{0, 0}, DurationS: 1})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "hello world")
	assert.Contains(t, lines[1], "goodbye")
}

func TestTranscribeSegmentAdvancesStreamingTimeOnEngineError(t *testing.T) {
	engine := &asr.MockEngine{
		TranscribeFunc: func([]float32, asr.Config) ([]asr.InnerSegment, error) {
			return nil, errors.New("model crashed")
		},
	}
	var out bytes.Buffer
	c := newTestCoordinator(tsdemux.NewMockDecoder(nil), vad.NewMockDetector(), engine, &out)

	c.transcribeSegment(ringbuf.Segment{Data: []float32{0}, DurationS: 2.5})
	assert.Equal(t, 2.5, c.streamingTimeS)
	assert.Empty(t, out.String())
}

func TestRunReturnsErrorWhenFetcherCannotStart(t *testing.T) {
	var out bytes.Buffer
	c := newTestCoordinator(tsdemux.NewMockDecoder(nil), vad.NewMockDetector(), asr.NewMockEngine(), &out)

	// With no yt-dlp on PATH, Start fails fast via exec.Command's lookup,
	// which Run must surface.
	t.Setenv("PATH", t.TempDir())
	err := c.Run("https://example.invalid/video")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream:")
}
