package asr

import (
	"fmt"
	"strings"

	"github.com/liuzl/gocc"
)

// ZhTransformer converts cleaned text between Simplified and Traditional
// Chinese, selected once at startup from the --lang flag.
//
// Grounded on original_source/src/zh.rs's ZHTransformer, ported from the
// Rust opencc_rust binding to the pure-Go github.com/liuzl/gocc port of
// the same OpenCC configuration set.
type ZhTransformer struct {
	cc *gocc.OpenCC
}

// NewZhTransformer builds a transformer for lang, or returns an error if
// lang is not a concrete (non-auto-detect) Chinese variant code. Callers
// should treat a non-nil error as "do not apply a zh transform" rather
// than fatal — most languages never reach this constructor at all.
func NewZhTransformer(lang string) (*ZhTransformer, error) {
	l := strings.ToLower(lang)

	if l == "zh" {
		return nil, fmt.Errorf("asr: %q is an auto-detecting chinese code, not a concrete variant", lang)
	}
	if !strings.HasPrefix(l, "zh") {
		return nil, fmt.Errorf("asr: %q is not a chinese language code", lang)
	}

	var config string
	switch l {
	case "zh-tw", "zh_tw":
		config = "s2tw"
	case "zh-hk", "zh_hk":
		config = "s2hk"
	default:
		config = "t2s"
	}

	cc, err := gocc.New(config)
	if err != nil {
		return nil, fmt.Errorf("asr: load opencc config %q: %w", config, err)
	}
	return &ZhTransformer{cc: cc}, nil
}

// Convert applies the configured OpenCC transform to text.
func (z *ZhTransformer) Convert(text string) (string, error) {
	if z == nil || z.cc == nil {
		return text, nil
	}
	out, err := z.cc.Convert(text)
	if err != nil {
		return text, fmt.Errorf("asr: opencc convert: %w", err)
	}
	return out, nil
}
