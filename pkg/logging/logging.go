// Package logging constructs the process-wide structured logger. Every
// component takes a zerolog.Logger at construction time rather than
// reaching for a package-level global, so tests can inject a silent or
// buffered logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console-friendly logger when writer is nil (defaults to
// stderr), or a plain JSON logger over the given writer otherwise — JSON
// output is what a supervised/packaged deployment wants; the console
// writer is for local CLI use.
func New(component string, writer io.Writer) zerolog.Logger {
	if writer == nil {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(writer).With().
		Timestamp().
		Str("component", component).
		Logger()
}

// Nop returns a logger that discards everything, for tests that don't
// care about log output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
