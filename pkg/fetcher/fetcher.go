// Package fetcher wraps the yt-dlp subprocess that supplies the
// pipeline's raw MPEG-TS byte stream.
package fetcher

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/streamscribe/streamscribe/pkg/logx"
)

// GraceTimeout is how long Close waits for the child to exit on its own
// (the pipe closing on EOF usually causes this) before killing it.
//
// Grounded on original_source/main.rs's get_yt_dlp_stdout/wait_timeout
// behavior (SPEC_FULL's supplemented graceful-wait-then-kill feature):
// Close gives the process this window to exit cleanly and kills it only
// if it is still running afterwards; a process that has already exited
// is reaped without a kill.
var GraceTimeout = 3 * time.Second

// GraceTimeoutForTest overrides GraceTimeout for the duration of a test
// and returns a function that restores the previous value.
func GraceTimeoutForTest(d time.Duration) func() {
	prev := GraceTimeout
	GraceTimeout = d
	return func() { GraceTimeout = prev }
}

// Fetcher runs `yt-dlp <url> -f w --quiet -o -` and exposes its stdout.
type Fetcher struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	log    logx.Logger
}

// Start launches the fetcher subprocess for url.
func Start(url string, log logx.Logger) (*Fetcher, error) {
	cmd := exec.Command("yt-dlp", url, "-f", "w", "--quiet", "-o", "-")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("fetcher: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("fetcher: spawn yt-dlp: %w", err)
	}

	return &Fetcher{cmd: cmd, stdout: stdout, log: log}, nil
}

// Stdout returns the subprocess's standard output for streaming reads.
func (f *Fetcher) Stdout() io.Reader {
	return f.stdout
}

// Close waits up to GraceTimeout for the child to exit on its own; if it
// has not, Close kills it. Either way the child is reaped before Close
// returns. Safe to call once, at shutdown.
func (f *Fetcher) Close() error {
	done := make(chan error, 1)
	go func() { done <- f.cmd.Wait() }()

	select {
	case err := <-done:
		f.log.Verbosef("fetcher exited on its own: %v", err)
	case <-time.After(GraceTimeout):
		f.log.Verbose("fetcher did not exit within grace window, killing")
		if err := f.cmd.Process.Kill(); err != nil {
			f.log.Errorf("fetcher: kill failed: %v", err)
		}
		<-done
	}
	return nil
}
