package xlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xboot-rbtree/lib/infra"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	res := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		res = append(res, m)
	}
	return res
}

func TestXLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewXLogger(
		WithXLoggerWriteSyncer(zapcore.AddSync(buf)),
		WithXLoggerEncoder(JSON),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerName("rbtree"),
	)
	l.Debug("debug msg", zap.Int64("count", 1))
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error(errors.New("boom"), "error msg")
	l.Logf(zapcore.InfoLevel, "logf %d", 42)
	require.NoError(t, l.Sync())

	lines := decodeLines(t, buf)
	require.Len(t, lines, 5)
	require.Equal(t, "DEBUG", lines[0]["lvl"])
	require.Equal(t, "debug msg", lines[0]["msg"])
	require.Equal(t, float64(1), lines[0]["count"])
	require.Equal(t, "rbtree", lines[0]["component"])
	require.Contains(t, lines[0]["callAt"], "zap_test.go")
	require.Equal(t, "INFO", lines[1]["lvl"])
	require.Equal(t, "WARN", lines[2]["lvl"])
	require.Equal(t, "ERROR", lines[3]["lvl"])
	require.Equal(t, "boom", lines[3]["error"])
	require.Equal(t, "logf 42", lines[4]["msg"])
}

func TestXLogger_IncreaseLogLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewXLogger(
		WithXLoggerWriteSyncer(zapcore.AddSync(buf)),
		WithXLoggerLevel(LogLevelDebug),
	)
	l.IncreaseLogLevel(zapcore.WarnLevel)
	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	require.Equal(t, "kept", lines[0]["msg"])
}

func TestXLogger_ErrorStack(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewXLogger(
		WithXLoggerWriteSyncer(zapcore.AddSync(buf)),
		WithXLoggerLevel(LogLevelInfo),
	)
	sentinel := errors.New("sentinel")
	l.ErrorStack(infra.WrapErrorStackWithMessage(sentinel, "wrapped"), "with stack")
	l.ErrorStack(sentinel, "without stack")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	require.Equal(t, "wrapped: sentinel", lines[0]["error"])
	stack, ok := lines[0]["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, stack)
	require.Equal(t, "sentinel", lines[1]["error"])
	require.NotContains(t, lines[1], "errorStack")
}

func TestXLogger_Options(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriteSyncer(nil))
	})
	require.NotPanics(t, func() {
		l := NewXLogger(
			WithXLoggerWriter(StdErr),
			WithXLoggerEncoder(PlainText),
			WithXLoggerLevelEncoder(nil),
			WithXLoggerTimeEncoder(nil),
			WithXLoggerLevel(LogLevelError),
		)
		l.Debug("invisible")
	})
}

func TestGetLogLevelOrDefault(t *testing.T) {
	testcases := []struct {
		level    string
		expected zapcore.Level
	}{
		{"", zapcore.DebugLevel},
		{"  ", zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
		{"unknown", zapcore.DebugLevel},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, getLogLevelOrDefault(tc.level), tc.level)
	}
}
