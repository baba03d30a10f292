package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op logger until Init is called so
// packages and tests can log unconditionally.
var Log = zap.NewNop()

// Init installs a development logger writing to stderr.
func Init() {
	InitWithLevel(zapcore.InfoLevel)
}

// InitDebug reinstalls the logger at debug level when debug is set, so
// per-frame and resource lines become visible. Otherwise it is a no-op.
func InitDebug(debug bool) {
	if debug {
		InitWithLevel(zapcore.DebugLevel)
	}
}

// InitWithLevel installs a logger at the given minimum level.
func InitWithLevel(level zapcore.Level) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		// Keep the no-op logger; there is nowhere else to report this.
		return
	}
	Log = l
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = Log.Sync()
}
