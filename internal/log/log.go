/*
Package log provides the structured logger shared by all cymrudns packages. It is a thin wrapper
around github.com/rs/zerolog.

Library packages obtain a component logger with WithComponent() and log at Debug or Trace level
for query tracing. The global Logger is disabled until a program calls Init() so that library code
and tests are silent by default.

Typical usage in a program:

	log.Init(log.Config{Level: log.DebugLevel, Output: os.Stderr})
	logger := log.WithComponent("cymru")
	logger.Debug().Str("qName", qName).Msg("query")
*/
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance
var Logger = zerolog.Nop()

// Level is the textual representation of a log level as used on command lines and in config files.
type Level string

const (
	TraceLevel    Level = "trace"
	DebugLevel    Level = "debug"
	InfoLevel     Level = "info"
	WarnLevel     Level = "warn"
	ErrorLevel    Level = "error"
	DisabledLevel Level = "disabled"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer // Defaults to os.Stderr so program output on Stdout stays clean
}

// ParseLevel converts a case-insensitive level name into a Level. The empty string is InfoLevel.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case "":
		return InfoLevel, nil
	case TraceLevel, DebugLevel, InfoLevel, WarnLevel, ErrorLevel, DisabledLevel:
		return l, nil
	}

	return "", fmt.Errorf("log: Unknown log level '%s'", s)
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case DisabledLevel:
		return zerolog.Disabled
	}

	return zerolog.InfoLevel
}

// Init replaces the global Logger. Unlike the package default, the new logger writes to
// cfg.Output filtered at cfg.Level.
func Init(cfg Config) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	zerolog.SetGlobalLevel(zerolog.TraceLevel) // zerolog defaults to Debug globally; filter per-logger instead

	if cfg.JSONOutput {
		Logger = zerolog.New(output).Level(cfg.Level.zerolog()).With().Timestamp().Logger()
		return
	}

	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).Level(cfg.Level.zerolog()).With().Timestamp().Logger()
}

// WithComponent creates a child logger with a component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
