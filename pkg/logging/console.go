package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"
)

// ConsoleLogger writes log entries to a stream, stderr by default.
// The CLI uses it for --verbose diagnostics so they stay out of stdout.
type ConsoleLogger struct {
	out    *lockedWriter
	level  Level
	format Format
	fields Fields
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleLogger creates a logger writing to w (nil means stderr)
func NewConsoleLogger(w io.Writer, level Level, format Format) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleLogger{
		out:    &lockedWriter{w: w},
		level:  level,
		format: format,
	}
}

func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

func (l *ConsoleLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *ConsoleLogger) WithFields(fields Fields) Logger {
	return &ConsoleLogger{
		out:    l.out,
		level:  l.level,
		format: l.format,
		fields: mergeFields(l.fields, fields),
	}
}

// Close does nothing; the stream belongs to the caller
func (l *ConsoleLogger) Close() error {
	return nil
}

func (l *ConsoleLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}
	line, encErr := encode(l.format, time.Now(), level, msg, err, mergeFields(l.fields, fields))
	if encErr != nil {
		return
	}
	l.out.mu.Lock()
	l.out.w.Write(line)
	l.out.mu.Unlock()
}
