package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{initPC, "%d", "14"},
		{initPC, "%v", "err_stack_test.go:14"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}

	for _, tc := range testcases {
		require.Equal(t, tc.want, fmt.Sprintf(tc.format, tc.Frame))
	}

	full := fmt.Sprintf("%+v", initPC)
	require.True(t, strings.HasPrefix(full, "github.com/benz9527/xboot-rbtree/lib/infra.init\n\t"))
	require.True(t, strings.HasSuffix(full, "err_stack_test.go:14"))
}

func TestFrameMarshalText(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/xboot-rbtree/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(text), "err_stack_test.go:14"))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

var errSentinel = errors.New("sentinel")

func TestErrorStackWrap(t *testing.T) {
	require.NoError(t, WrapErrorStack(nil))
	require.NoError(t, WrapErrorStackWithMessage(nil, "ignored"))

	err := WrapErrorStackWithMessage(errSentinel, "[test] wrapped")
	require.ErrorIs(t, err, errSentinel)
	require.Equal(t, "[test] wrapped: sentinel", err.Error())

	var es ErrorStack
	require.ErrorAs(t, err, &es)
	require.True(t, hasFrame(es.Frames(), "TestErrorStackWrap"))

	again := WrapErrorStack(err)
	require.Same(t, err.(*errorStack), again.(*errorStack))

	plain := NewErrorStack("plain")
	require.Equal(t, "plain", plain.Error())
	require.ErrorAs(t, plain, &es)
	require.True(t, hasFrame(es.Frames(), "TestErrorStackWrap"))
}

func hasFrame(frames []Frame, fn string) bool {
	for _, frame := range frames {
		if fmt.Sprintf("%n", frame) == fn {
			return true
		}
	}
	return false
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := WrapErrorStack(errSentinel)
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, err.(ErrorStack).MarshalLogObject(enc))
	require.Equal(t, "sentinel", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.Len(t, frames, len(err.(ErrorStack).Frames()))
}
