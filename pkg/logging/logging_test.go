package logging

import (
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (ectologger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(core)
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		write(zl, msg)
	})
	return logger, logs
}

func TestNew(t *testing.T) {
	t.Run("BuildsProductionLogger", func(t *testing.T) {
		logger, flush, err := New("info", false)
		require.NoError(t, err)
		require.NotNil(t, logger)
		flush()
	})

	t.Run("UnknownLevelFallsBackToInfo", func(t *testing.T) {
		logger, flush, err := New("nonsense", true)
		require.NoError(t, err)
		require.NotNil(t, logger)
		flush()
	})
}

func TestWrite(t *testing.T) {
	t.Run("ErrorEntryCarriesTheError", func(t *testing.T) {
		logger, logs := observedLogger()

		logger.WithError(errors.New("registry unavailable")).WithFields(map[string]any{"submission_id": "sub-1"}).Error("Matching failed")

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "Matching failed", entries[0].Message)

		fields := entries[0].ContextMap()
		assert.Equal(t, "registry unavailable", fields["error"])
		assert.Equal(t, "sub-1", fields["submission_id"])
	})

	t.Run("LevelsMapToZapLevels", func(t *testing.T) {
		logger, logs := observedLogger()

		logger.Debug("d")
		logger.Info("i")
		logger.Warn("w")
		logger.Error("e")

		entries := logs.All()
		require.Len(t, entries, 4)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	})

	t.Run("PlainEntryHasNoErrorField", func(t *testing.T) {
		logger, logs := observedLogger()

		logger.Info("Request")

		entries := logs.All()
		require.Len(t, entries, 1)
		_, hasError := entries[0].ContextMap()["error"]
		assert.False(t, hasError)
	})
}
