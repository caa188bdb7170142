package log_test

import (
	"testing"

	"github.com/plus3/earthshot/log"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, log.ParseLevel("debug"))
	assert.Equal(t, log.LevelWarn, log.ParseLevel("warning"))
	assert.Equal(t, log.LevelError, log.ParseLevel("error"))
	assert.Equal(t, log.LevelInfo, log.ParseLevel("loud"))
}

func TestLoggerWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := log.FromZap(zap.New(core)).With(log.String("session", "s1"))

	logger.Warn("spawn skipped", log.Int("lane", 2))

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "spawn skipped", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "s1", fields["session"])
	assert.Equal(t, int64(2), fields["lane"])
}
