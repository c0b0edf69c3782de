package logging_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prism-overlay/bwoverlay/internal/logging"
)

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, logging.LevelFromVerbosity(0))
	assert.Equal(t, slog.LevelInfo, logging.LevelFromVerbosity(1))
	assert.Equal(t, slog.LevelDebug, logging.LevelFromVerbosity(2))
	assert.Equal(t, slog.LevelDebug, logging.LevelFromVerbosity(5))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("nonsense"))
}
