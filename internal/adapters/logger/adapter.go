// Package logger provides the zap-backed logging adapter.
package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface used throughout the application.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// ZapAdapter implements Logger on top of a zap.Logger.
type ZapAdapter struct {
	log *zap.Logger
}

// NewZapAdapter builds a production zap logger at the given level and wraps
// it. Unknown levels fall back to info. The appName is attached to every
// entry as the "app" field.
func NewZapAdapter(level, appName string) (*ZapAdapter, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &ZapAdapter{log: log.With(zap.String("app", appName))}, nil
}

// NewZapAdapterWithLogger wraps an existing zap logger.
// This is useful for testing with zaptest or an observer core.
func NewZapAdapterWithLogger(log *zap.Logger) *ZapAdapter {
	return &ZapAdapter{log: log}
}

// NewNop returns an adapter that discards everything.
func NewNop() *ZapAdapter {
	return &ZapAdapter{log: zap.NewNop()}
}

// Debug logs a debug message.
func (a *ZapAdapter) Debug(_ context.Context, msg string, fields map[string]interface{}) {
	a.log.Debug(msg, toZapFields(fields)...)
}

// Info logs an info message.
func (a *ZapAdapter) Info(_ context.Context, msg string, fields map[string]interface{}) {
	a.log.Info(msg, toZapFields(fields)...)
}

// Warn logs a warning message.
func (a *ZapAdapter) Warn(_ context.Context, msg string, fields map[string]interface{}) {
	a.log.Warn(msg, toZapFields(fields)...)
}

// Error logs an error message with the error attached.
func (a *ZapAdapter) Error(_ context.Context, msg string, err error, fields map[string]interface{}) {
	a.log.Error(msg, append(toZapFields(fields), zap.Error(err))...)
}

// Sync flushes buffered entries. Call on shutdown.
func (a *ZapAdapter) Sync() error {
	return a.log.Sync()
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return zf
}
