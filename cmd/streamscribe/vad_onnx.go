//go:build vad

package main

import "github.com/streamscribe/streamscribe/pkg/vad"

func newDetector(modelPath string) (vad.Detector, func(), error) {
	if err := vad.InitRuntime(""); err != nil {
		return nil, func() {}, err
	}
	d, err := vad.NewOnnxDetector(modelPath)
	if err != nil {
		_ = vad.DestroyRuntime()
		return nil, func() {}, err
	}
	return d, func() {
		_ = d.Destroy()
		_ = vad.DestroyRuntime()
	}, nil
}
