// Package logger provides structured logging for the PDF generation pipeline.
// It is intentionally small: leveled output with key-value fields, written to
// an io.Writer (stderr by default).
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the severity level of a log message
type Level int

const (
	// LevelDebug is for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo is for general informational messages
	LevelInfo
	// LevelWarn is for warning messages
	LevelWarn
	// LevelError is for error messages
	LevelError
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger writes leveled, structured log lines
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a logger writing to out at the given minimum level
func New(out io.Writer, level Level) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{out: out, level: level}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Debug logs a debug message with optional fields
func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }

// Info logs an informational message with optional fields
func (l *Logger) Info(msg string, fields ...Field) { l.log(LevelInfo, msg, fields) }

// Warn logs a warning message with optional fields
func (l *Logger) Warn(msg string, fields ...Field) { l.log(LevelWarn, msg, fields) }

// Error logs an error message with error and optional fields
func (l *Logger) Error(msg string, err error, fields ...Field) {
	l.log(LevelError, msg, append(fields, Err(err)))
}

func (l *Logger) log(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	fmt.Fprintf(l.out, "%s [%s] %s", time.Now().Format("2006-01-02 15:04:05.000"), level, msg)
	for _, f := range fields {
		fmt.Fprintf(l.out, " %s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(l.out)
}

var (
	defaultLogger = New(os.Stderr, LevelInfo)
	defaultMu     sync.RWMutex
)

// Default returns the package-level logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the package-level logger
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Debug logs a debug message using the package-level logger
func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }

// Info logs an informational message using the package-level logger
func Info(msg string, fields ...Field) { Default().Info(msg, fields...) }

// Warn logs a warning message using the package-level logger
func Warn(msg string, fields ...Field) { Default().Warn(msg, fields...) }

// Error logs an error message using the package-level logger
func Error(msg string, err error, fields ...Field) { Default().Error(msg, err, fields...) }
