// Package logging builds the application logger: an ectologger front backed
// by a zap core.
package logging

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. The returned flush func should run on
// shutdown.
func New(level string, pretty bool) (ectologger.Logger, func(), error) {
	zapLevel := zapcore.InfoLevel
	if err := zapLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	zl, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, nil, err
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		write(zl, msg)
	})

	flush := func() {
		_ = zl.Sync()
	}
	return logger, flush, nil
}

func write(zl *zap.Logger, msg ectologger.EctoLogMessage) {
	fields := make([]zap.Field, 0, len(msg.Fields)+1)
	for k, v := range msg.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	if msg.Err != nil {
		fields = append(fields, zap.Error(msg.Err))
	}

	switch strings.ToLower(fmt.Sprint(msg.Level)) {
	case "debug":
		zl.Debug(msg.Message, fields...)
	case "warn", "warning":
		zl.Warn(msg.Message, fields...)
	case "error":
		zl.Error(msg.Message, fields...)
	case "fatal":
		zl.Fatal(msg.Message, fields...)
	default:
		zl.Info(msg.Message, fields...)
	}
}
