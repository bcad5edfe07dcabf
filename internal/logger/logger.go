// Package logger provides process-wide logging for wikirec.
// Messages are written through zerolog. Debug and info messages are only
// emitted in verbose mode (the --verbose flag); warnings and errors are
// always emitted.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Format is the log output encoding.
type Format string

// Supported formats.
const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format            = FormatConsole
	output  io.Writer = os.Stderr
	log               = build()
)

// build creates the logger from the current settings (caller must hold mu).
func build() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	var w io.Writer = output
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
			NoColor:    true,
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build()
}

// SetFormat selects console or JSON output. Unknown formats fall back to console.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatConsole
	}
	format = f
	log = build()
}

// L returns the current logger for structured logging.
//
//	logger.L().Error().Err(err).Str("session", id).Msg("history append failed")
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	L().Debug().Msg(fmt.Sprintf(format, args...))
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	L().Debug().Str("section", name).Msg("=== " + name + " ===")
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	L().Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	L().Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs an error message with the causing error attached.
func Error(err error, format string, args ...any) {
	L().Error().Err(err).Msg(fmt.Sprintf(format, args...))
}
