// Package log is the structured logger used across dirsort. It wraps logrus
// with a small field API and two formatters: a human readable line format and
// a JSON format for scheduled runs whose output is collected by other tools.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"dirsort/internal/errors"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single key/value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured log lines.
type Logger struct {
	entry *logrus.Entry
	level logrus.Level
	file  io.Closer
}

type options struct {
	out   io.Writer
	json  bool
	level logrus.Level
	file  string
}

// Option configures a Logger.
type Option func(*options)

// WithOutput sets the destination writer (stdout by default).
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithLevel sets the minimum level by name: debug, info, warn or error.
// Unknown names keep the default.
func WithLevel(name string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(name))); err == nil {
			o.level = lvl
		}
	}
}

// WithFile mirrors output to a size-rotated log file.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// NewLogger creates a logger with the given options.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout, level: logrus.InfoLevel}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	// Level filtering happens in Logger so SetDebug can flip debug output on
	// for loggers that already exist.
	base.SetLevel(logrus.TraceLevel)
	if o.json {
		base.SetFormatter(jsonFormatter())
	} else {
		base.SetFormatter(&lineFormatter{})
	}

	l := &Logger{level: o.level}
	out := o.out
	if o.file != "" {
		rotator := &lumberjack.Logger{
			Filename:   o.file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(o.out, rotator)
		l.file = rotator
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the package-level logger.
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Default returns the package-level logger.
func Default() *Logger {
	return logger
}

// SetDebug enables debug output on every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// Close releases the rotating log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), level: l.level, file: l.file}
}

// WithError returns a child logger describing err, including the kind and
// subject of application errors.
func (l *Logger) WithError(err error) *Logger {
	return l.With(errorFields(err)...)
}

type runIDKey struct{}

// ContextWithRunID stores a run identifier for WithContext to pick up.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// WithContext returns a child logger carrying the run id stored in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return l.With(F("run_id", id))
	}
	return l
}

func (l *Logger) enabled(level logrus.Level) bool {
	if level == logrus.DebugLevel && isDebug.Load() {
		return true
	}
	return level <= l.level
}

func (l *Logger) logf(level logrus.Level, format string, args ...interface{}) {
	if !l.enabled(level) {
		return
	}
	entry := l.entry
	if _, file, line, ok := runtime.Caller(2); ok {
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	entry.Log(level, msg)
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string) { l.logf(logrus.DebugLevel, "%s", msg) }

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(logrus.DebugLevel, format, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string) { l.logf(logrus.InfoLevel, "%s", msg) }

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(logrus.InfoLevel, format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string) { l.logf(logrus.WarnLevel, "%s", msg) }

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(logrus.WarnLevel, format, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string) { l.logf(logrus.ErrorLevel, "%s", msg) }

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(logrus.ErrorLevel, format, args...)
}

// Package-level helpers log through the configured default logger.

func Debug(msg string) { logger.logf(logrus.DebugLevel, "%s", msg) }

func Debugf(format string, args ...interface{}) { logger.logf(logrus.DebugLevel, format, args...) }

func Info(msg string) { logger.logf(logrus.InfoLevel, "%s", msg) }

func Infof(format string, args ...interface{}) { logger.logf(logrus.InfoLevel, format, args...) }

func Warn(msg string) { logger.logf(logrus.WarnLevel, "%s", msg) }

func Warnf(format string, args ...interface{}) { logger.logf(logrus.WarnLevel, format, args...) }

func Error(msg string) { logger.logf(logrus.ErrorLevel, "%s", msg) }

func Errorf(format string, args ...interface{}) { logger.logf(logrus.ErrorLevel, format, args...) }

// LogWithFields returns the default logger with fields attached.
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the default logger describing err.
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err with a message at error level.
func LogError(err error, msg string) {
	logger.WithError(err).logf(logrus.ErrorLevel, "%s", msg)
}

// errorFields describes the outermost typed error in err's chain.
func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", nil)}
	}
	fields := []Field{F("error", err.Error())}

	var fallback *errors.ApplicationError
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case *errors.LockError:
			fields = append(fields, F("error_kind", int(v.Kind())), F("sentinel", v.Sentinel()))
			if v.PID() != "" {
				fields = append(fields, F("pid", v.PID()))
			}
			return fields
		case *errors.FileError:
			fields = append(fields, F("error_kind", int(v.Kind())))
			if v.Path() != "" {
				fields = append(fields, F("path", v.Path()))
			}
			return fields
		case *errors.ConfigError:
			fields = append(fields, F("error_kind", int(v.Kind())))
			if v.Param() != "" {
				fields = append(fields, F("param", v.Param()))
			}
			return fields
		case *errors.ApplicationError:
			if fallback == nil {
				fallback = v
			}
		}
	}
	if fallback != nil {
		fields = append(fields, F("error_kind", int(fallback.Kind())))
	}
	return fields
}
