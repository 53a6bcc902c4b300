package logger

import (
	"github.com/gomantics/repograph/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. env=dev selects zap's development encoder with
// coloured levels, anything else the production JSON encoder. The level comes
// from log.level (REPOGRAPH_LOG_LEVEL) and --verbose raises it to debug; an
// unparsable level keeps the encoder's default.
func New() *zap.Logger {
	var cfg zap.Config

	if config.IsDev() {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if level, err := zap.ParseAtomicLevel(config.Log.Level()); err == nil {
		cfg.Level = level
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	return logger
}
