package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ServiceName = "civicconnect-api"

var log = zap.NewNop()

// Init builds the global logger. Production gets JSON output, everything
// else a colored console encoder.
func Init(level string, production bool) error {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	built, err := cfg.Build(zap.Fields(zap.String("service", ServiceName)))
	if err != nil {
		return err
	}
	log = built
	zap.ReplaceGlobals(log)
	return nil
}

func Get() *zap.Logger {
	return log
}

func Sync() {
	_ = log.Sync()
}
