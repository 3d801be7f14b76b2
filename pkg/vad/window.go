package vad

// SplitWindows splits v into whole WindowSamples-length chunks and a
// trailing remainder shorter than one window. left's length is always a
// multiple of WindowSamples; len(right) < WindowSamples; appending right
// to left reproduces v exactly.
//
// Grounded on original_source/src/vad.rs's
// split_audio_data_with_window_size, ported from a (Option,Option) pair
// to plain slices since Go slices naturally represent "none" as nil/empty.
func SplitWindows(v []float32) (left, right []float32) {
	n := len(v)
	wholeChunks := n / WindowSamples
	cut := wholeChunks * WindowSamples
	return v[:cut], v[cut:]
}
