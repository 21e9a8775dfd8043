// Package logger provides the structured, context-aware logging interface
// used across the service, backed by zap.
package logger

import (
	"context"
	"os"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Logger defines the logging interface.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field = zap.Field

// Field constructors.
func String(key, val string) Field          { return zap.String(key, val) }
func Int(key string, val int) Field         { return zap.Int(key, val) }
func Float64(key string, val float64) Field { return zap.Float64(key, val) }
func Bool(key string, val bool) Field       { return zap.Bool(key, val) }
func Any(key string, val interface{}) Field { return zap.Any(key, val) }
func Error(err error) Field                 { return zap.Error(err) }

type contextKey struct{}

// WithFields returns a context whose fields are added to every entry logged
// with it.
func WithFields(ctx context.Context, fields ...Field) context.Context {
	existing, _ := ctx.Value(contextKey{}).([]Field)
	merged := make([]Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, contextKey{}, merged)
}

func contextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).([]Field)
	return fields
}

// zapLogger implements Logger on top of a zap core.
type zapLogger struct {
	zap *zap.Logger
}

// New wraps an existing zap logger.
func New(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &zapLogger{zap: z}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger { return New(zap.NewNop()) }

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{zap: l.zap.Named(name)}
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
	_ = l.zap.Sync()
	os.Exit(1)
}

func (l *zapLogger) log(ctx context.Context, level zapcore.Level, msg string, fields []Field) {
	ce := l.zap.Check(level, msg)
	if ce == nil {
		return
	}
	if extra := contextFields(ctx); len(extra) > 0 {
		fields = append(append(make([]Field, 0, len(extra)+len(fields)), extra...), fields...)
	}
	ce.Write(fields...)
}

var (
	global   atomic.Pointer[zapLogger]
	levelVar = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init initializes the global logger writing JSON to stdout.
func Init() error {
	return InitWithFormat(FormatJSON)
}

// InitWithFormat initializes the global logger with the given encoding.
func InitWithFormat(format string) error {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "source",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case FormatConsole:
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return errors.Newf("unknown log format: %s", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), levelVar)
	// skip zapLogger.log and the interface method
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel))
	global.Store(&zapLogger{zap: z})
	return nil
}

// Get returns the global logger.
func Get() Logger {
	l := global.Load()
	if l == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return l
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	l := global.Load()
	if l == nil {
		return nil
	}
	err := l.zap.Sync()
	// stdout cannot be fsynced on most platforms
	if err != nil && (errors.Is(err, os.ErrInvalid) || strings.Contains(err.Error(), "inappropriate ioctl")) {
		return nil
	}
	return err
}

// SetLevel updates the current logging level for the global logger.
func SetLevel(level zapcore.Level) { levelVar.SetLevel(level) }

// Level returns the current global level.
func Level() zapcore.Level { return levelVar.Level() }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(zapcore.DebugLevel)
	case "", "info":
		SetLevel(zapcore.InfoLevel)
	case "warn", "warning":
		SetLevel(zapcore.WarnLevel)
	case "error":
		SetLevel(zapcore.ErrorLevel)
	default:
		return errors.Newf("unknown log level: %s", level)
	}
	return nil
}
