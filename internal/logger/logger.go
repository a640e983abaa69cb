package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op logger until Init runs.
var Log = zap.NewNop()

// Init builds the production logger. WINTER3D_LOG_LEVEL overrides the level.
func Init() {
	level := os.Getenv("WINTER3D_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if err := InitWithConfig(level, false); err != nil {
		Log = zap.NewExample()
		Log.Warn("Falling back to example logger", zap.Error(err))
	}
}

// InitWithConfig replaces Log with a logger at the given level.
func InitWithConfig(level string, development bool) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = !development

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes buffered entries. Errors from syncing stderr/stdout are ignored.
func Sync() {
	_ = Log.Sync()
}
