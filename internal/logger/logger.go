// Package logger provides a small, centralized logging facade with
// numeric verbosity control, backed by zerolog.
//
// Verbosity levels (in increasing order):
//
//	0 Error < 1 Info < 2 Debug < 3 Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("loading chain for %s", symbol)
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// log writes human-readable lines to stderr so command output on stdout
// stays pipeable.
var log = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: "15:04:05",
}).With().Timestamp().Logger()

// SetVerbosity sets the global verbosity. Typically called once at
// startup after flag parsing.
func SetVerbosity(v int) {
	switch {
	case v <= 0:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case v == 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case v == 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}
}

// Errorf logs a failure that needs attention.
func Errorf(format string, args ...any) { log.Error().Msgf(format, args...) }

// Infof logs a major lifecycle event.
func Infof(format string, args ...any) { log.Info().Msgf(format, args...) }

// Debugf logs diagnostic detail.
func Debugf(format string, args ...any) { log.Debug().Msgf(format, args...) }

// Tracef logs fine-grained execution detail; high volume.
func Tracef(format string, args ...any) { log.Trace().Msgf(format, args...) }
