// Command streamscribe transcribes a live stream's audio to timestamped
// text on stdout: `yt-dlp <url>` feeds an MPEG-TS byte stream through
// demux/decode, VAD segmentation, and ASR, per the pipeline in
// pkg/stream.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/streamscribe/streamscribe/pkg/asr"
	"github.com/streamscribe/streamscribe/pkg/logx"
	"github.com/streamscribe/streamscribe/pkg/stream"
)

const vadModelPath = "models/silero_vad.onnx"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		modelPath string
		threads   uint8
		lang      string
		verbose   bool
	)

	pflag.StringVarP(&modelPath, "model", "m", "", "ASR model weights file")
	pflag.Uint8VarP(&threads, "threads", "t", 1, "ASR thread count")
	pflag.StringVarP(&lang, "lang", "l", "en", "target language code")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable verbose and error log lines")
	pflag.Parse()

	log := logx.New(verbose)

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: streamscribe [flags] <url>")
		return 1
	}
	url := pflag.Arg(0)

	if modelPath == "" {
		log.Error("--model is required")
		return 1
	}

	decoder, closeDecoder, err := newDecoder()
	if err != nil {
		log.Errorf("decoder: %v", err)
		return 1
	}
	defer closeDecoder()

	detector, closeDetector, err := newDetector(vadModelPath)
	if err != nil {
		log.Errorf("vad: %v", err)
		return 1
	}
	defer closeDetector()

	engine, err := newEngine(modelPath)
	if err != nil {
		log.Errorf("asr: %v", err)
		return 1
	}
	defer engine.Close()

	var zh *asr.ZhTransformer
	if lang != "en" {
		if z, zerr := asr.NewZhTransformer(lang); zerr == nil {
			zh = z
		}
		// A non-Chinese or auto-detect language code simply leaves zh nil;
		// NewZhTransformer's rejection isn't a startup-fatal condition.
	}

	coordinator := stream.New(log, decoder, detector, engine, asr.Config{
		Threads:  int(threads),
		Language: lang,
	}, zh, os.Stdout)

	if err := coordinator.Run(url); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}
