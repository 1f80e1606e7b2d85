package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in   string
		want Verbosity
	}{
		{"", VerbosityMessage},
		{"none", VerbosityNone},
		{"ERROR", VerbosityError},
		{" message ", VerbosityMessage},
		{"verbose", VerbosityVerbose},
	}
	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseVerbosity("loud")
	assert.Error(t, err)
}

func TestNew_FiltersByVerbosity(t *testing.T) {
	tests := []struct {
		v         Verbosity
		wantDebug bool
		wantInfo  bool
		wantError bool
	}{
		{VerbosityNone, false, false, false},
		{VerbosityError, false, false, true},
		{VerbosityMessage, false, true, true},
		{VerbosityVerbose, true, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.v), func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.v, &buf)

			logger.Debug("debug-line")
			logger.Info("info-line", slog.String("path", "a.swift"))
			logger.Error("error-line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug-line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info-line"))
			assert.Equal(t, tt.wantError, strings.Contains(out, "error-line"))
		})
	}
}
