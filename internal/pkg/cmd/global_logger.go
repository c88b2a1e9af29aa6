package cmd

import (
	"go.uber.org/zap" // Logging.
	"go.uber.org/zap/zapcore"
)

// SetGlobalLogger both sets the zap global logger, and
// redirects the output from the standard library's
// package-global logger to the supplied logger at the debug level.
// It returns a teardown function to reset the global loggers.
func SetGlobalLogger(logger *zap.Logger) func() {
	return SetGlobalLoggerAt(logger, zap.DebugLevel)
}

// SetGlobalLoggerAt is like SetGlobalLogger, but the standard library's
// logger writes at the given level. It panics if the level is invalid.
func SetGlobalLoggerAt(logger *zap.Logger, stdLogLevel zapcore.Level) func() {
	undoGlobals := zap.ReplaceGlobals(logger)
	undoStdLog, err := zap.RedirectStdLogAt(logger, stdLogLevel)
	if err != nil {
		undoGlobals()
		panic(err)
	}
	return func() {
		undoStdLog()
		undoGlobals()
	}
}
