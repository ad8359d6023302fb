// Package observability provides the shared zap logger for CLI commands.
//
// Logs go to stderr so command output on stdout stays machine-readable.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger used by all CLI commands. Defaults to info level;
// call Configure to change it.
var CLILogger = newLogger(zapcore.InfoLevel)

// Configure rebuilds the CLI logger at the given verbosity.
func Configure(verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	CLILogger = newLogger(level)
}

func newLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Logger construction from a static config cannot fail at runtime;
		// fall back to a no-op logger rather than panic in a CLI.
		return zap.NewNop()
	}
	return logger
}

// Sync flushes buffered log entries. Called before process exit.
func Sync() {
	_ = CLILogger.Sync()
}
