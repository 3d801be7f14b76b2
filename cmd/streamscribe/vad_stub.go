//go:build !vad

package main

import (
	"errors"

	"github.com/streamscribe/streamscribe/pkg/vad"
)

// Built without the vad tag (no cgo/ONNX runtime available); there is
// no real detector to hand back.
func newDetector(modelPath string) (vad.Detector, func(), error) {
	return nil, func() {}, errors.New("streamscribe built without the vad build tag")
}
