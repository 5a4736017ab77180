// Package logger provides levelled logging for the pipeline.
// Debug, Info, Warn and Section print only in verbose mode (the --verbose
// flag); Error always prints. Output goes to stderr unless redirected.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose switches verbose output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// emit writes one line. Lines below Error are dropped unless verbose.
func emit(always bool, prefix, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

func Debug(format string, args ...any) { emit(false, "[DEBUG] ", format, args) }
func Info(format string, args ...any)  { emit(false, "[INFO] ", format, args) }
func Warn(format string, args ...any)  { emit(false, "[WARN] ", format, args) }
func Error(format string, args ...any) { emit(true, "[ERROR] ", format, args) }

// Section prints a banner separating phases of a long run such as a nightly crawl.
func Section(name string) {
	emit(false, "\n=== ", "%s ===", []any{name})
}
