package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observeLogs swaps in an observed logger and restores the previous one on cleanup.
func observeLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	prev := Logger()
	core, logs := observer.New(level)
	SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func TestGetLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"error":   zapcore.ErrorLevel,
		"warn":    zapcore.WarnLevel,
		"":        zapcore.WarnLevel,
		"verbose": zapcore.WarnLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, getLogLevel(in), in)
	}
}

func TestLogHelpers(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	LogWarn("cache unavailable", errors.New("locked"))
	LogWarn("no coordinates", nil)
	LogInfo("converted units", "metal", "Lead")
	LogDebug("imputed", "count", 2)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "locked", entries[0].ContextMap()["error"])
	assert.Empty(t, entries[1].Context)
	assert.Equal(t, "Lead", entries[2].ContextMap()["metal"])
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level)
	assert.EqualValues(t, 2, entries[3].ContextMap()["count"])
}

func TestLogFatal(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	code := -1
	prevExit := exitFunc
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() { exitFunc = prevExit })

	LogFatal("Error loading file", errors.New("boom"))

	assert.Equal(t, 1, code)
	entries := logs.FilterMessage("Error loading file").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}
