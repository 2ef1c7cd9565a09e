// Package logger provides verbose logging for the archon CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the sync pipeline. An
// optional rotating log file captures Info and Warn regardless of the
// verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file    io.WriteCloser
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetFile routes Info and Warn messages to a rotating log file in
// addition to the verbose stream. Passing an empty path disables it.
func SetFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	if path == "" {
		return
	}
	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled,
// and always appends it to the log file when one is configured.
func Info(format string, args ...any) {
	log("INFO", format, args...)
}

// Warn prints a warning message if verbose mode is enabled,
// and always appends it to the log file when one is configured.
func Warn(format string, args ...any) {
	log("WARN", format, args...)
}

func log(level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
	if file != nil {
		ts := time.Now().Format(time.RFC3339)
		fmt.Fprintf(file, ts+" ["+level+"] "+format+"\n", args...)
	}
}
