package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once sync.Once
	log  *zap.SugaredLogger
)

// Init builds the process-wide sugared logger. Safe to call more than once;
// only the first call configures the core.
func Init() *zap.SugaredLogger {
	once.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		level := zap.InfoLevel
		if os.Getenv("LOG_LEVEL") == "debug" {
			level = zap.DebugLevel
		}

		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(os.Stdout),
			level,
		)

		log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	})
	return log
}

// L returns the initialized logger, initializing with defaults if needed.
func L() *zap.SugaredLogger {
	if log == nil {
		return Init()
	}
	return log
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
