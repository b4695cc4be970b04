// Package logging defines the logger contract used across the engine, a fmt
// based fallback and an adapter for go-logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"time"
)

// Logger is the runtime logging contract. Messages are printf style.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger extends Logger with structured-field support.
type FieldsLogger interface {
	WithFields(map[string]any) Logger
}

// Correlation keys attached by the engine. FmtLogger prints them first, in
// this order, so lines of one session and chain line up.
const (
	FieldSessionID = "session_id"
	FieldChainID   = "chain_id"
	FieldStep      = "step"
	FieldAction    = "action"
)

var correlationKeys = []string{FieldSessionID, FieldChainID, FieldStep, FieldAction}

var levels = map[string]int{"TRACE": 0, "DEBUG": 1, "INFO": 2, "WARN": 3, "ERROR": 4, "FATAL": 5}

// FmtLogger writes one plain text line per entry:
//
//	2026-01-02T15:04:05Z WARN  render fallback at $.children[1] session_id=s-1 chain_id=c-9
//
// It is what Normalize returns when no logger is configured.
type FmtLogger struct {
	out    io.Writer
	ctx    context.Context
	min    int
	fields map[string]any
}

// NewFmtLogger writes to out, or stdout when out is nil, at every level.
func NewFmtLogger(out io.Writer) *FmtLogger {
	if out == nil {
		out = os.Stdout
	}
	return &FmtLogger{out: out, ctx: context.Background()}
}

// WithMinLevel drops entries below level (trace, debug, info, warn, error).
func (l *FmtLogger) WithMinLevel(level string) *FmtLogger {
	cp := *l
	if n, ok := levels[strings.ToUpper(strings.TrimSpace(level))]; ok {
		cp.min = n
	}
	return &cp
}

func (l *FmtLogger) Trace(msg string, args ...any) { l.write("TRACE", msg, args) }
func (l *FmtLogger) Debug(msg string, args ...any) { l.write("DEBUG", msg, args) }
func (l *FmtLogger) Info(msg string, args ...any)  { l.write("INFO", msg, args) }
func (l *FmtLogger) Warn(msg string, args ...any)  { l.write("WARN", msg, args) }
func (l *FmtLogger) Error(msg string, args ...any) { l.write("ERROR", msg, args) }
func (l *FmtLogger) Fatal(msg string, args ...any) { l.write("FATAL", msg, args) }

func (l *FmtLogger) WithContext(ctx context.Context) Logger {
	if l == nil {
		return NewFmtLogger(nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cp := *l
	cp.ctx = ctx
	return &cp
}

func (l *FmtLogger) WithFields(fields map[string]any) Logger {
	if l == nil {
		l = NewFmtLogger(nil)
	}
	cp := *l
	cp.fields = mergeFields(l.fields, fields)
	return &cp
}

func (l *FmtLogger) write(level, msg string, args []any) {
	if l == nil {
		l = NewFmtLogger(nil)
	}
	if levels[level] < l.min {
		return
	}
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&b, " %-5s %s", level, strings.TrimSpace(sprintf(msg, args)))
	if fields := formatFields(l.fields); fields != "" {
		b.WriteByte(' ')
		b.WriteString(fields)
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(l.out, b.String())
}

// Nop discards everything.
type Nop struct{}

func (Nop) Trace(string, ...any)                 {}
func (Nop) Debug(string, ...any)                 {}
func (Nop) Info(string, ...any)                  {}
func (Nop) Warn(string, ...any)                  {}
func (Nop) Error(string, ...any)                 {}
func (Nop) Fatal(string, ...any)                 {}
func (n Nop) WithContext(context.Context) Logger { return n }
func (n Nop) WithFields(map[string]any) Logger   { return n }

// Normalize returns logger, or a stdout FmtLogger when it is nil.
func Normalize(logger Logger) Logger {
	if logger == nil {
		return NewFmtLogger(nil)
	}
	return logger
}

// WithFields attaches fields when the logger supports them.
func WithFields(logger Logger, fields map[string]any) Logger {
	if logger == nil {
		return NewFmtLogger(nil).WithFields(fields)
	}
	if fl, ok := logger.(FieldsLogger); ok {
		return fl.WithFields(fields)
	}
	return logger
}

func mergeFields(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// formatFields prints correlation keys first, then the rest sorted.
func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, k := range correlationKeys {
		if v, ok := fields[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	rest := make([]string, 0, len(fields))
	for k := range fields {
		if !slices.Contains(correlationKeys, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
