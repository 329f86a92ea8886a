// Package log provides the process-wide zap logger, configured from the
// NERRF_LOG environment variable the way the daemon's Rust ancestor reads
// RUST_LOG.
package log

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// L returns the process-wide sugared logger, initializing it on first use.
func L() *zap.SugaredLogger {
	once.Do(func() {
		logger = newLogger().Sugar()
	})
	return logger
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(levelFromEnv())
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		// Logging is ambient infrastructure; fall back to a no-frills
		// logger rather than fail the daemon over a config mistake.
		return zap.NewNop()
	}
	return l
}

func levelFromEnv() zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("NERRF_LOG"))) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "":
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}
