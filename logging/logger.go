// Package logging holds the process-wide diagnostic logger. Diagnostics go to stderr so that
// stdout stays reserved for test progress and the marker lines other tools look for.
package logging

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogLevel overrides the level chosen by command line flags.
const EnvLogLevel = "LOG_LEVEL"

var (
	logger  *zap.Logger
	sugared *zap.SugaredLogger
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	ConsoleMode()
}

// SetLevel adjusts the level of the loggers.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// ApplyLevel sets the level to debug if debug is true, unless the LOG_LEVEL environment
// variable names a level, which always wins.
func ApplyLevel(debug bool) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(v)); err != nil {
			return err
		}
		SetLevel(l)
		return nil
	}
	if debug {
		SetLevel(zapcore.DebugLevel)
	}
	return nil
}

// ConsoleMode switches logging output to TTY mode, with timestamps relative to process start.
func ConsoleMode() {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func() zapcore.TimeEncoder {
		start := time.Now()
		return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			elapsed := t.Sub(start)
			enc.AppendString(strconv.FormatFloat(elapsed.Seconds(), 'f', 5, 64) + "s")
		}
	}()

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	logger = l
	sugared = l.Sugar()
}

// L returns the global raw logger.
func L() *zap.Logger {
	return logger
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	return sugared
}

// Printer adapts a sugared logger to the Printf-style logger interface used by the test
// framework. Messages are logged at debug level.
type Printer struct {
	s *zap.SugaredLogger
}

// DebugPrinter returns a Printer over the global logger.
func DebugPrinter() Printer {
	return Printer{s: sugared}
}

// NewPrinter returns a Printer over s.
func NewPrinter(s *zap.SugaredLogger) Printer {
	return Printer{s: s}
}

func (p Printer) Printf(message string, args ...interface{}) {
	p.s.Debugf(message, args...)
}
