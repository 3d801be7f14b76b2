//go:build demux

package main

import "github.com/streamscribe/streamscribe/pkg/tsdemux"

func newDecoder() (tsdemux.Decoder, func(), error) {
	return tsdemux.NewFFmpegDecoder(), func() {}, nil
}
