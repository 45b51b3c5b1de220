// Package logger provides a small leveled key-value logger with context
// propagation. Components receive a Logger explicitly; code running without
// one falls back to a no-op via FromContext.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type ctxKey int

const loggerKey ctxKey = iota

// NewContext returns a context carrying l.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the Logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok && l != nil {
		return l
	}
	return NewNoOp()
}

// Level is a log severity threshold.
type Level int8

const (
	DebugLevel Level = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a config string onto a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger is a leveled logger taking alternating key/value fields.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

type textLogger struct {
	mu     *sync.Mutex
	w      io.Writer
	level  Level
	fields []interface{}
}

// New creates a text logger writing to w at the given level threshold.
func New(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &textLogger{mu: &sync.Mutex{}, w: w, level: level}
}

func (l *textLogger) Debug(msg string, fields ...interface{}) { l.log(DebugLevel, "DEBUG", msg, fields) }
func (l *textLogger) Info(msg string, fields ...interface{})  { l.log(InfoLevel, "INFO", msg, fields) }
func (l *textLogger) Warn(msg string, fields ...interface{})  { l.log(WarnLevel, "WARN", msg, fields) }
func (l *textLogger) Error(msg string, fields ...interface{}) { l.log(ErrorLevel, "ERROR", msg, fields) }

func (l *textLogger) With(fields ...interface{}) Logger {
	child := *l
	child.fields = make([]interface{}, 0, len(l.fields)+len(fields))
	child.fields = append(child.fields, l.fields...)
	child.fields = append(child.fields, fields...)
	return &child
}

func (l *textLogger) log(level Level, tag, msg string, fields []interface{}) {
	if l.level > level {
		return
	}
	var sb strings.Builder
	sb.WriteString(time.Now().Format(time.RFC3339))
	sb.WriteString(" ")
	sb.WriteString(tag)
	sb.WriteString(" ")
	sb.WriteString(msg)

	all := append(append([]interface{}{}, l.fields...), fields...)
	for i := 0; i+1 < len(all); i += 2 {
		key, ok := all[i].(string)
		if !ok {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprintf("%v", all[i+1]))
	}
	sb.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, sb.String())
}

type noOpLogger struct{}

func (noOpLogger) Debug(string, ...interface{}) {}
func (noOpLogger) Info(string, ...interface{})  {}
func (noOpLogger) Warn(string, ...interface{})  {}
func (noOpLogger) Error(string, ...interface{}) {}
func (n noOpLogger) With(...interface{}) Logger { return n }

// NewNoOp returns a logger that discards everything.
func NewNoOp() Logger {
	return noOpLogger{}
}
