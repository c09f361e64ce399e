// Package colors provides color output utilities.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Color constants
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

const checkmark = "✓"

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled = false
	quiet        = false
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
	logger       Logger
	mu           sync.RWMutex
)

func init() {
	if val := os.Getenv("SOUNDBOARD_DEBUG"); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugEnabled = enabled
}

// SetQuiet suppresses console output while still mirroring to the logger.
// The TUI enables it so stray writes do not corrupt the alternate screen.
func SetQuiet(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = enabled
}

// SetOutput replaces the console writers. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	msg := strings.Join(msgs, " ")
	emit(func(l Logger) { l.Error(msg) }, true, fmt.Sprintf("%sError:%s %s%s\n", Red, Reset, msg, Reset))
}

// Success outputs a success message to stdout.
func Success(msgs ...string) {
	msg := strings.Join(msgs, " ")
	emit(func(l Logger) { l.Info(msg, "type", "success") }, false, fmt.Sprintf("%s%s%s %s%s\n", Green, checkmark, Reset, msg, Reset))
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	msg := strings.Join(msgs, " ")
	emit(func(l Logger) { l.Warn(msg) }, true, fmt.Sprintf("%sWarning:%s %s%s\n", Yellow, Reset, msg, Reset))
}

// Info outputs an informational message to stdout.
func Info(msgs ...string) {
	msg := strings.Join(msgs, " ")
	emit(func(l Logger) { l.Info(msg) }, false, fmt.Sprintf("%s%s%s\n", Blue, msg, Reset))
}

// Plain writes msg to stdout without decoration; used for machine-readable output.
func Plain(msg string) {
	mu.RLock()
	w := stdout
	mu.RUnlock()
	fmt.Fprintln(w, msg)
}

// Debug outputs a debug message to stderr if debug is enabled.
func Debug(msgs ...string) {
	mu.RLock()
	enabled := debugEnabled
	mu.RUnlock()
	if !enabled {
		return
	}
	msg := strings.Join(msgs, " ")
	emit(func(l Logger) { l.Debug(msg) }, true, fmt.Sprintf("%sDebug:%s %s%s\n", Cyan, Reset, msg, Reset))
}

func emit(mirror func(Logger), toStderr bool, line string) {
	mu.RLock()
	l := logger
	silent := quiet
	w := stdout
	if toStderr {
		w = stderr
	}
	mu.RUnlock()

	if l != nil {
		mirror(l)
	}
	if silent {
		return
	}
	if _, err := io.WriteString(w, line); err != nil {
		// Direct write to the process stderr, ignore errors
		fmt.Fprintf(os.Stderr, "%s\n", strings.TrimSpace(line))
	}
}
