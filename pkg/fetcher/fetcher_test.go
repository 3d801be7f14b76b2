package fetcher

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamscribe/streamscribe/pkg/logx"
)

// withFakeYtDlp installs a fake yt-dlp script ahead of the real PATH for
// the duration of the test, so Start() exercises the real exec.Command
// plumbing without needing network access or the real tool installed.
func withFakeYtDlp(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp script is a POSIX shell script")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	oldPath := os.Getenv("PATH")
	require.NoError(t, os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath))
	t.Cleanup(func() { os.Setenv("PATH", oldPath) })
}

func TestFetcherStreamsStdout(t *testing.T) {
	withFakeYtDlp(t, "#!/bin/sh\nprintf 'hello-ts-bytes'\n")

	f, err := Start("https://example.invalid/video", logx.New(false))
	require.NoError(t, err)

	got, err := io.ReadAll(f.Stdout())
	require.NoError(t, err)
	assert.Equal(t, "hello-ts-bytes", string(got))

	assert.NoError(t, f.Close())
}

func TestFetcherCloseKillsAfterGraceTimeout(t *testing.T) {
	withFakeYtDlp(t, "#!/bin/sh\nsleep 30\n")

	f, err := Start("https://example.invalid/video", logx.New(false))
	require.NoError(t, err)

	orig := GraceTimeoutForTest(10 * time.Millisecond)
	defer orig()

	start := time.Now()
	assert.NoError(t, f.Close())
	assert.Less(t, time.Since(start), 5*time.Second)
}
