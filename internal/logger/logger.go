// Package logger provides opt-in diagnostic logging for the medsearch
// CLI. Nothing is printed unless verbose mode is on; the commands keep
// stdout for results and this package keeps stderr for the pipeline
// narration behind --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects the log output, stderr by default.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(lv level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", lv, fmt.Sprintf(format, args...))
}

// Debug logs fine-grained pipeline detail.
func Debug(format string, args ...any) {
	emit(levelDebug, format, args...)
}

// Info logs a notable pipeline step.
func Info(format string, args ...any) {
	emit(levelInfo, format, args...)
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	emit(levelWarn, format, args...)
}

// Section marks the start of a pipeline phase.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Timing logs how long a labelled operation took.
func Timing(label string, d time.Duration) {
	emit(levelInfo, "%s took %s", label, d.Round(time.Microsecond))
}
