package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrStorage,
		ErrTerminal,
		ErrLog,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .expml.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "storage error",
			code:       ErrStorage,
			message:    "Cannot read summary.json",
			suggestion: "Check the run directory permissions",
		},
		{
			name:       "terminal error",
			code:       ErrTerminal,
			message:    "Terminal is too small",
			suggestion: "Resize the window",
		},
		{
			name:       "log error",
			code:       ErrLog,
			message:    "Cannot open debug.log",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "message and suggestion",
			err:           New(ErrConfig, "Invalid configuration", "Check .expml.yaml syntax"),
			expectedParts: []string{"✗ Invalid configuration", "Check .expml.yaml syntax"},
		},
		{
			name:          "cause is included",
			err:           WrapWithCode(fmt.Errorf("permission denied"), ErrStorage, "Cannot read run", "Fix permissions"),
			expectedParts: []string{"Cannot read run", "permission denied", "Fix permissions"},
		},
		{
			name:          "no suggestion",
			err:           Wrap(fmt.Errorf("eof"), "Truncated metrics file"),
			expectedParts: []string{"Truncated metrics file", "eof"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, out, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, out, part)
			}
		})
	}
}

func TestWrapDefaultsToStorage(t *testing.T) {
	err := Wrap(fs.ErrNotExist, "Missing metadata.json")

	assert.Equal(t, ErrStorage, err.Code)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestIsCode(t *testing.T) {
	base := New(ErrLog, "log broke", "")
	wrapped := fmt.Errorf("outer: %w", base)

	assert.True(t, IsCode(base, ErrLog))
	assert.True(t, IsCode(wrapped, ErrLog))
	assert.False(t, IsCode(wrapped, ErrConfig))
	assert.False(t, IsCode(nil, ErrLog))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrLog))
}

func TestNewRunNotFound(t *testing.T) {
	err := NewRunNotFound("expml_runs")

	assert.Equal(t, ErrStorage, err.Code)
	assert.True(t, strings.Contains(err.Error(), "expml_runs"))
	assert.NotEmpty(t, err.Suggestion)
}
