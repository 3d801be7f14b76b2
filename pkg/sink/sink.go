package sink

import (
	"fmt"
	"io"
)

// Writer emits one "[ts] text" line per transcribed segment.
type Writer struct {
	out io.Writer
}

// NewWriter creates a Writer that writes to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Emit writes a single transcript line for text at streamOffsetMs.
func (w *Writer) Emit(text string, streamOffsetMs int64) {
	fmt.Fprintf(w.out, "[%s] %s\n", FormatTimestamp(streamOffsetMs), text)
}
