//go:build !asr

package main

import (
	"errors"

	"github.com/streamscribe/streamscribe/pkg/asr"
)

// Built without the asr tag (no cgo/whisper.cpp available); there is no
// real engine to hand back.
func newEngine(modelPath string) (asr.Engine, error) {
	return nil, errors.New("streamscribe built without the asr build tag")
}
