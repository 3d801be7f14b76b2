//go:build !demux

package main

import (
	"errors"

	"github.com/streamscribe/streamscribe/pkg/tsdemux"
)

// Built without the demux tag (no cgo/FFmpeg available); there is no
// real decoder to hand back.
func newDecoder() (tsdemux.Decoder, func(), error) {
	return nil, func() {}, errors.New("streamscribe built without the demux build tag")
}
