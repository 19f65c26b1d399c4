// Package logger is the process-wide log for docintel.
//
// The console only shows errors unless --verbose is set. The log file, when
// configured, receives every message with a timestamp.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 30
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file    *lumberjack.Logger
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

// SetOutput replaces the console writer, os.Stderr by default, and
// returns the previous one.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := output
	output = w
	return prev
}

// SetFile appends all log messages to the file at path, creating parent
// directories as needed. The file rotates at 10 MB, keeping five compressed
// backups for up to 30 days. An empty path closes any open log file.
func SetFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		_ = file.Close()
		file = nil
	}
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	// The rotator opens lazily; probe now so a bad path fails here.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	_ = f.Close()

	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	return nil
}

// Close closes the log file if one is open.
func Close() error {
	return SetFile("")
}

type level struct {
	name string
	// loud levels reach the console without --verbose.
	loud bool
}

var (
	levelDebug = level{name: "DEBUG"}
	levelInfo  = level{name: "INFO"}
	levelWarn  = level{name: "WARN"}
	levelError = level{name: "ERROR", loud: true}
)

func logf(l level, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()

	msg := fmt.Sprintf(format, args...)
	if verbose || l.loud {
		fmt.Fprintf(output, "[%s] %s\n", l.name, msg)
	}
	if file != nil {
		fmt.Fprintf(file, "%s [%s] %s\n", time.Now().Format(time.RFC3339), l.name, msg)
	}
}

// Debug traces pipeline steps.
func Debug(format string, args ...any) { logf(levelDebug, format, args) }

// Info reports progress.
func Info(format string, args ...any) { logf(levelInfo, format, args) }

// Warn reports a degraded but recoverable condition.
func Warn(format string, args ...any) { logf(levelWarn, format, args) }

// Error is always printed.
func Error(format string, args ...any) { logf(levelError, format, args) }

// Section starts a named block of verbose output, such as one pipeline stage.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
	if file != nil {
		fmt.Fprintf(file, "%s [SECTION] %s\n", time.Now().Format(time.RFC3339), name)
	}
}
