package cmd

import (
	"os"

	"github.com/mattn/go-isatty" // Check if running in a terminal.
	"github.com/pkg/errors"      // Wrap errors with context.
	"go.uber.org/zap"            // Logging.
	"go.uber.org/zap/zapcore"
)

// LoggingFlags represents a set of flags for setting up logging.
type LoggingFlags struct {
	LogLevel zapcore.Level // Logging level.

	// Development forces the human readable development
	// logging config even when not in a terminal.
	Development bool
}

var logLevels = []zapcore.Level{
	zap.DebugLevel,
	zap.InfoLevel,
	zap.WarnLevel,
	zap.ErrorLevel,
	zap.DPanicLevel,
	zap.PanicLevel,
	zap.FatalLevel,
}

// NewLoggingFlags returns a new LoggingFlags.
func NewLoggingFlags(app Flagger, logLevel string) *LoggingFlags {
	var f LoggingFlags

	hints := make([]string, 0, 2*len(logLevels))
	for _, l := range logLevels {
		hints = append(hints, l.CapitalString(), l.String())
	}
	app.Flag("log.level", "Set logging level.").
		HintOptions(hints...).
		Default(logLevel).
		SetValue(&f.LogLevel)

	app.Flag("log.dev", "Use human readable log output.").
		Hidden().
		BoolVar(&f.Development)

	return &f
}

// Config returns the zap logging config for these flags.
// If the program is running in a terminal, it's based on the zap
// development config, else the production config.
func (f *LoggingFlags) Config() zap.Config {
	var conf zap.Config
	fd := os.Stdout.Fd()
	if f.Development || isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		conf = zap.NewDevelopmentConfig()
	} else {
		conf = zap.NewProductionConfig()
	}
	conf.Level.SetLevel(f.LogLevel)
	return conf
}

// NewLogger returns a new logger based on the flags.
func (f *LoggingFlags) NewLogger(opts ...zap.Option) (*zap.Logger, error) {
	logger, err := f.Config().Build(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error building logger")
	}
	return logger, nil
}
