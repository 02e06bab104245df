package contract

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnv selects the minimum log level (debug, info, warn, error).
const LogLevelEnv = "HMPI_LOG_LEVEL"

var (
	logger     *zap.SugaredLogger
	loggerOnce sync.Once
	exitFunc   = os.Exit
)

// getLogLevel converts a level name to a zap level. Unknown names map to warn.
func getLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// newLogger builds a console logger writing to stderr.
func newLogger(level zapcore.Level) *zap.SugaredLogger {
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core).Sugar()
}

// Logger returns the process-wide logger.
func Logger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = newLogger(getLogLevel(os.Getenv(LogLevelEnv)))
		}
	})
	return logger
}

// SetLogger replaces the process-wide logger. Tests use it with zaptest or observer cores.
func SetLogger(l *zap.SugaredLogger) {
	loggerOnce.Do(func() {})
	logger = l
}

// SyncLogger flushes any buffered log entries.
func SyncLogger() {
	_ = Logger().Sync()
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().Errorw(msg, "error", err)
	SyncLogger()
	exitFunc(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		Logger().Warnw(msg, "error", err)
		return
	}
	Logger().Warn(msg)
}

// LogInfo logs an informational message with optional key/value pairs.
func LogInfo(msg string, keysAndValues ...any) {
	Logger().Infow(msg, keysAndValues...)
}

// LogDebug logs a debug message with optional key/value pairs.
func LogDebug(msg string, keysAndValues ...any) {
	Logger().Debugw(msg, keysAndValues...)
}
