package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-logger/glog"
)

// Options configures a go-logger backed Logger.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// New builds a go-logger instance and wraps it. Format "json" selects the JSON
// encoder; anything else keeps the go-logger default.
func New(opts Options) Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := strings.ToLower(strings.TrimSpace(opts.Level))
	if level == "" {
		level = "info"
	}
	if strings.EqualFold(opts.Format, "json") {
		return NewGlogLogger(glog.NewLogger(
			glog.WithWriter(w),
			glog.WithLoggerTypeJSON(),
			glog.WithLevel(level),
		))
	}
	return NewGlogLogger(glog.NewLogger(
		glog.WithWriter(w),
		glog.WithLevel(level),
	))
}

// GlogLogger adapts glog.Logger to Logger.
type GlogLogger struct {
	logger glog.Logger
}

func NewGlogLogger(logger glog.Logger) *GlogLogger {
	return &GlogLogger{logger: logger}
}

// glog treats trailing args as key/value attributes, so messages are
// formatted here to keep the printf contract.
func (l *GlogLogger) Trace(msg string, args ...any) { l.logger.Trace(sprintf(msg, args)) }
func (l *GlogLogger) Debug(msg string, args ...any) { l.logger.Debug(sprintf(msg, args)) }
func (l *GlogLogger) Info(msg string, args ...any)  { l.logger.Info(sprintf(msg, args)) }
func (l *GlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(sprintf(msg, args)) }
func (l *GlogLogger) Error(msg string, args ...any) { l.logger.Error(sprintf(msg, args)) }
func (l *GlogLogger) Fatal(msg string, args ...any) { l.logger.Fatal(sprintf(msg, args)) }

func sprintf(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func (l *GlogLogger) WithContext(ctx context.Context) Logger {
	if l == nil || l.logger == nil {
		return NewFmtLogger(nil).WithContext(ctx)
	}
	return &GlogLogger{logger: l.logger.WithContext(ctx)}
}

func (l *GlogLogger) WithFields(fields map[string]any) Logger {
	if l == nil || l.logger == nil {
		return NewFmtLogger(nil).WithFields(fields)
	}
	if fl, ok := l.logger.(glog.FieldsLogger); ok {
		return &GlogLogger{logger: fl.WithFields(fields)}
	}
	return l
}
