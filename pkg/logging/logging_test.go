package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		enabled       zapcore.Level
		disabled      zapcore.Level
	}{
		{"debug", "console", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", "json", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", "console", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.disabled))
		})
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("loud", "console")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
