// Package resample converts PCM sample vectors between sample rates
// using band-limited windowed-sinc interpolation.
//
// The teacher repo (pkg/audio/resample.go) wraps FFmpeg's swresample for
// this; that dependency is already wired for AAC decoding in pkg/tsdemux.
// The resampler here instead follows original_source/src/audio.rs's
// fixed sinc design (sinc length 256, cutoff 0.95x Nyquist, a
// Blackman-Harris-squared window) directly, because that fixed knob
// surface is the thing spec §8's round-trip property pins down — no
// library in the pack exposes this design by name, and inventing a
// plausible-sounding call into one we can't verify would be worse than
// writing the well-understood algorithm out.
//
// The kernel is evaluated exactly at every tap distance. No oversampled
// kernel table is built and no linear sub-sample interpolation is done;
// the oversampling constant is not used by the computation.
package resample

import "math"

const (
	sincLen      = 256
	cutoff       = 0.95
	oversampling = 256
)

// windowedSinc evaluates the filter kernel at a fractional tap distance
// x (in input samples), pre-scaled by the resampling cutoff.
func windowedSinc(x float64) float64 {
	// Band-limit to cutoff * Nyquist.
	xs := x * cutoff
	var sinc float64
	if xs == 0 {
		sinc = 1
	} else {
		px := math.Pi * xs
		sinc = math.Sin(px) / px
	}

	// Blackman-Harris squared window over the kernel support
	// [-sincLen/2, sincLen/2].
	half := float64(sincLen) / 2
	if x <= -half || x >= half {
		return 0
	}
	n := (x + half) / float64(sincLen) // normalized position in [0,1)
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	w := a0 - a1*math.Cos(2*math.Pi*n) + a2*math.Cos(4*math.Pi*n) - a3*math.Cos(6*math.Pi*n)
	w = w * w

	return sinc * cutoff * w
}

// Resample converts input (mono f32 samples at inRate Hz) to outRate Hz.
// It is one-shot: the full input is consumed and the full output
// returned, with no streaming state carried between calls.
func Resample(input []float32, inRate, outRate float64) []float32 {
	if len(input) == 0 || inRate <= 0 || outRate <= 0 {
		return nil
	}

	ratio := outRate / inRate
	outLen := int(math.Round(float64(len(input)) * ratio))
	if outLen <= 0 {
		return nil
	}
	out := make([]float32, outLen)

	halfTaps := sincLen / 2

	for i := 0; i < outLen; i++ {
		// Position of this output sample in input-sample units.
		t := float64(i) / ratio

		center := int(math.Floor(t))
		lo := center - halfTaps + 1
		hi := center + halfTaps

		var acc float64
		for n := lo; n <= hi; n++ {
			if n < 0 || n >= len(input) {
				continue
			}
			acc += float64(input[n]) * windowedSinc(t-float64(n))
		}
		out[i] = float32(acc)
	}

	return out
}
