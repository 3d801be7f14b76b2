// Package logx provides the run's verbose/error console gate.
//
// It mirrors the original CLI's tiny logger: a boolean switch that is
// cheap to clone and pass to every worker goroutine, backed here by
// charmbracelet/log instead of hand-rolled ANSI codes.
package logx

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger gates verbose output behind a single boolean. It is read-only
// after construction, so copying it across goroutines is safe.
type Logger struct {
	enabled bool
	inner   *charmlog.Logger
}

// New creates a Logger. When enabled is false, both Verbose and Error
// are no-ops.
func New(enabled bool) Logger {
	inner := charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	inner.SetStyles(charmlog.DefaultStyles())
	return Logger{enabled: enabled, inner: inner}
}

// Verbose prints "[verbose] msg" when the logger is enabled.
func (l Logger) Verbose(msg string) {
	if !l.enabled {
		return
	}
	l.inner.Print("[verbose] " + msg)
}

// Verbosef is the formatted form of Verbose.
func (l Logger) Verbosef(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.inner.Printf("[verbose] "+format, args...)
}

// Error prints "[error] msg" when the logger is enabled.
func (l Logger) Error(msg string) {
	if !l.enabled {
		return
	}
	l.inner.Print("[error] " + msg)
}

// Errorf is the formatted form of Error.
func (l Logger) Errorf(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.inner.Printf("[error] "+format, args...)
}
