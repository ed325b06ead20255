package telemetry

import (
	"sort"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(newProductionLogger())
}

func newProductionLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.DisableStacktrace = true
	lg, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return lg
}

// SetLogger replaces the process logger and returns a func restoring the previous one.
func SetLogger(lg *zap.Logger) func() {
	if lg == nil {
		lg = zap.NewNop()
	}
	prev := current.Swap(lg)
	return func() { current.Store(prev) }
}

// Logger returns the underlying zap logger.
func Logger() *zap.Logger {
	return current.Load()
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	current.Load().Info(msg, toZap(fields)...)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	current.Load().Warn(msg, toZap(fields)...)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	current.Load().Error(msg, toZap(fields)...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = current.Load().Sync()
}

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		switch v := fields[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
