package logger

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdLog redirects the standard logger for one test.
func captureStdLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestEnvLogger(t *testing.T) {
	tests := []struct {
		name  string
		debug string
		emit  func(Logger)
		want  string
	}{
		{name: "debug when enabled", debug: "1", emit: func(l Logger) { l.Debug("refresh %d", 3) }, want: "[t] refresh 3"},
		{name: "debug when disabled", debug: "", emit: func(l Logger) { l.Debug("refresh %d", 3) }, want: ""},
		{name: "info always", debug: "", emit: func(l Logger) { l.Info("loaded %s", "cfg") }, want: "[t] loaded cfg"},
		{name: "warn", debug: "", emit: func(l Logger) { l.Warn("slow") }, want: "[t] WARN: slow"},
		{name: "error", debug: "", emit: func(l Logger) { l.Error("broken") }, want: "[t] ERROR: broken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdLog(t)
			t.Setenv(DebugEnv, tt.debug)

			tt.emit(NewEnvLogger("[t]"))

			if tt.want == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestNoopLogger(t *testing.T) {
	buf := captureStdLog(t)

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	assert.False(t, l.HasLevel("warn"))

	l.Debug("debug %s", "msg")
	l.Warn("warn %s", "msg")

	require.Len(t, l.Messages, 2)
	assert.Equal(t, "debug", l.Messages[0].Level)
	assert.Equal(t, "warn msg", l.Messages[1].Message)
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestDefault(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	buf := NewBufferLogger()
	SetDefault(buf)
	assert.Equal(t, buf, Default())
}
