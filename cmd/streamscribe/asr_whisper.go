//go:build asr

package main

import "github.com/streamscribe/streamscribe/pkg/asr"

func newEngine(modelPath string) (asr.Engine, error) {
	return asr.NewWhisperEngine(modelPath)
}
