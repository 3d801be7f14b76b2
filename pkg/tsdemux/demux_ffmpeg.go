//go:build demux

// Package tsdemux extracts AAC-in-ADTS audio from an MPEG-TS container
// and decodes it to interleaved PCM, per the Demuxer/decoder stage's
// contract.
//
// The FFmpeg-backed implementation in this file requires cgo and the
// demux build tag; building without it (the default) compiles only the
// Decoder interface and MockDecoder in this package, matching how
// pkg/vad and pkg/asr gate their native-dependent detectors/engines.
package tsdemux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astits"
)

// FFmpegDecoder decodes MPEG-TS/AAC batches via astiav/astits. It holds
// no state of its own; every field is local to Decode.
type FFmpegDecoder struct{}

// NewFFmpegDecoder returns a Decoder backed by FFmpeg's AAC decoder.
func NewFFmpegDecoder() *FFmpegDecoder {
	return &FFmpegDecoder{}
}

// Decode implements the Demuxer/decoder algorithm: extract the AAC/ADTS
// elementary stream from an MPEG-TS blob (filtering to the PID declared
// audio in the first PMT), then decode it to PCM.
//
// Grounded on the teacher's pkg/audio/resample.go for the astiav
// Frame/CodecContext resource-lifecycle idiom (Alloc.../Free(), Unref
// between uses), adapted here to decoding rather than resampling, and on
// the go-astits README's demuxer-loop shape for PMT/PID/PES extraction.
func (d *FFmpegDecoder) Decode(data []byte) (*Result, error) {
	aac, err := extractAudioElementaryStream(data)
	if err != nil {
		return nil, err
	}
	if len(aac) == 0 {
		return nil, ErrEmptyBatch
	}
	return decodeAAC(aac)
}

// extractAudioElementaryStream demuxes the MPEG-TS container and
// concatenates PES payloads on the first AAC-in-ADTS audio PID declared
// by a PMT.
func extractAudioElementaryStream(data []byte) ([]byte, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dmx := astits.New(ctx, bytes.NewReader(data))

	var audioPID uint16
	var havePID bool
	var out bytes.Buffer

	for {
		d, err := dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) {
				break
			}
			// A malformed packet is tolerated; the container may still
			// yield more useful data downstream.
			continue
		}

		if d.PMT != nil && !havePID {
			for _, es := range d.PMT.ElementaryStreams {
				if es.StreamType == astits.StreamTypeAACAudio {
					audioPID = es.ElementaryPID
					havePID = true
					break
				}
			}
		}

		if !havePID || d.PID != audioPID {
			continue
		}

		if d.PES == nil {
			continue
		}
		// Only audio stream-ids carry the payload we want; anything else
		// on this PID (unlikely, but the contract names it) is skipped.
		if d.PES.Header.StreamID < 0xC0 || d.PES.Header.StreamID > 0xDF {
			continue
		}
		out.Write(d.PES.Data)
	}

	if !havePID {
		return nil, nil
	}
	return out.Bytes(), nil
}

// decodeAAC feeds a raw AAC/ADTS byte stream through FFmpeg's AAC
// decoder via astiav, accumulating plane-0 f32 samples across every
// decoded frame of the first decodable (non-null codec) audio track.
func decodeAAC(aac []byte) (*Result, error) {
	reader := bytes.NewReader(aac)

	ioCtx := astiav.AllocIOContext(4096, false,
		func(b []byte) (int, error) { return reader.Read(b) },
		nil, nil,
	)
	defer ioCtx.Free()

	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, fmt.Errorf("tsdemux: failed to allocate format context")
	}
	defer fc.Free()
	fc.SetPb(ioCtx)

	inputFormat := astiav.FindInputFormat("aac")
	if err := fc.OpenInput("", inputFormat, nil); err != nil {
		return nil, fmt.Errorf("tsdemux: open aac input: %w", err)
	}
	defer fc.CloseInput()

	if err := fc.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("tsdemux: find stream info: %w", err)
	}

	var stream *astiav.Stream
	var codec *astiav.Codec
	sawAudio := false
	for _, s := range fc.Streams() {
		if s.CodecParameters().MediaType() != astiav.MediaTypeAudio {
			continue
		}
		sawAudio = true
		if dec := astiav.FindDecoder(s.CodecParameters().CodecID()); dec != nil {
			stream, codec = s, dec
			break
		}
	}
	if !sawAudio {
		return nil, ErrNoAudioTrack
	}
	if stream == nil {
		return nil, ErrUnsupportedCodec
	}

	codecCtx := astiav.AllocCodecContext(codec)
	if codecCtx == nil {
		return nil, fmt.Errorf("tsdemux: failed to allocate codec context")
	}
	defer codecCtx.Free()

	if err := stream.CodecParameters().ToCodecContext(codecCtx); err != nil {
		return nil, fmt.Errorf("tsdemux: codec parameters: %w", err)
	}
	if err := codecCtx.Open(codec, nil); err != nil {
		return nil, fmt.Errorf("tsdemux: open codec: %w", err)
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()
	frame := astiav.AllocFrame()
	defer frame.Free()

	res := &Result{}
	plane0Recorded := false

	for {
		if err := fc.ReadFrame(pkt); err != nil {
			break
		}
		if pkt.StreamIndex() != stream.Index() {
			pkt.Unref()
			continue
		}

		if err := codecCtx.SendPacket(pkt); err != nil {
			// Recoverable decode/reset errors are skipped, not fatal for
			// the batch; anything stranger ends this batch early.
			pkt.Unref()
			if isSoftDecodeError(err) {
				continue
			}
			break
		}
		pkt.Unref()

		for {
			if err := codecCtx.ReceiveFrame(frame); err != nil {
				break
			}

			if !plane0Recorded {
				res.SampleRate = frame.SampleRate()
				plane0Recorded = true
			}
			res.Samples = append(res.Samples, planeZeroFloat32(frame)...)
			res.DurationS += float64(frame.NbSamples()) / float64(frame.SampleRate())

			frame.Unref()
		}
	}

	return res, nil
}

// planeZeroFloat32 reads plane 0 of frame as packed little-endian f32
// samples. AAC decode in FFmpeg commonly yields planar float (fltp),
// whose first plane is exactly this layout for a mono/left channel.
func planeZeroFloat32(frame *astiav.Frame) []float32 {
	raw, err := frame.Data().Bytes(0)
	if err != nil || len(raw) < 4 {
		return nil
	}

	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = float32FromLEBytes(raw[i*4 : i*4+4])
	}
	return out
}

func float32FromLEBytes(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

// isSoftDecodeError reports whether err represents a recoverable decode
// hiccup (a mid-stream format reset, a single corrupt frame) as opposed
// to something that should end the batch outright. astiav surfaces
// these as EAGAIN-class errors from the codec; anything else is
// treated as terminal for this batch per the demuxer's contract.
func isSoftDecodeError(err error) bool {
	return errors.Is(err, astiav.ErrEagain)
}

var _ Decoder = (*FFmpegDecoder)(nil)
