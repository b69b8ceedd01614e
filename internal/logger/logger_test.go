package logger_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, logger.ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew(t *testing.T) {
	log, err := logger.New("debug", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", logger.Truncate("short", 10))
	assert.Equal(t, "abc…", logger.Truncate("abcdef", 3))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" and "₹" are 2 and 3 bytes long.
	assert.Equal(t, "a…", logger.Truncate("aé", 2))
	assert.Equal(t, "₹…", logger.Truncate("₹₹", 4))
	assert.Equal(t, "…", logger.Truncate("₹", 2))

	got := logger.Truncate("stipend ₹40,000", 9)
	assert.True(t, utf8.ValidString(got), got)
	assert.Equal(t, "stipend …", got)
}
