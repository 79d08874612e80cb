package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedAdapter() (*ZapAdapter, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapAdapterWithLogger(zap.New(core)), logs
}

func TestNewZapAdapter(t *testing.T) {
	adapter, err := NewZapAdapter("debug", "catalogctl")

	require.NoError(t, err)
	assert.NotNil(t, adapter)
}

func TestNewZapAdapter_UnknownLevelFallsBack(t *testing.T) {
	adapter, err := NewZapAdapter("shouting", "catalogctl")

	require.NoError(t, err)
	assert.NotNil(t, adapter)
}

func TestZapAdapter_Info(t *testing.T) {
	adapter, logs := newObservedAdapter()

	adapter.Info(context.Background(), "catalog published", map[string]interface{}{"commit": "abc123"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "catalog published", entry.Message)
	assert.Equal(t, "abc123", entry.ContextMap()["commit"])
}

func TestZapAdapter_Debug(t *testing.T) {
	adapter, logs := newObservedAdapter()

	adapter.Debug(context.Background(), "resolved revision", map[string]interface{}{"ref": "v1.0.0"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.DebugLevel, entry.Level)
	assert.Equal(t, "v1.0.0", entry.ContextMap()["ref"])
}

func TestZapAdapter_Warn(t *testing.T) {
	adapter, logs := newObservedAdapter()

	adapter.Warn(context.Background(), "failed to pin repository version", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestZapAdapter_Error(t *testing.T) {
	adapter, logs := newObservedAdapter()
	cause := errors.New("push rejected")

	adapter.Error(context.Background(), "catalog reconciliation failed", cause, map[string]interface{}{"remote": "origin"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "push rejected", entry.ContextMap()["error"])
	assert.Equal(t, "origin", entry.ContextMap()["remote"])
}

func TestNewNop(t *testing.T) {
	adapter := NewNop()
	// Must not panic on any level.
	adapter.Debug(context.Background(), "x", nil)
	adapter.Info(context.Background(), "x", nil)
	adapter.Warn(context.Background(), "x", nil)
	adapter.Error(context.Background(), "x", errors.New("x"), nil)
	assert.NoError(t, adapter.Sync())
}
