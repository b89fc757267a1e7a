package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

// InitLogger installs the process-wide zap logger.
// Debug mode writes colored console output to stderr; otherwise logging is silent.
func InitLogger(debug bool) {
	l := zap.NewNop()
	if debug {
		built, err := developmentConfig().Build()
		if err != nil {
			panic(err)
		}
		l = built
	}

	zap.ReplaceGlobals(l)
	zap.RedirectStdLog(l)
	logger = l.Sugar().Named("vanilla")
}

func developmentConfig() zap.Config {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	config.DisableStacktrace = true
	config.OutputPaths = []string{"stderr"}
	return config
}

// GetLogger returns the sugared logger, initializing a silent one on first use.
func GetLogger() *zap.SugaredLogger {
	if logger == nil {
		InitLogger(false)
	}
	return logger
}

// Sync flushes buffered log entries. Errors from syncing stderr are ignored.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
