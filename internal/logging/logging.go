// Package logging builds the process-wide structured logger shared by
// the synthesizer, decay engine, and sync coordinator binaries.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a zerolog.Logger writing human-readable console output in
// development and switches to plain JSON when HELIX_LOG_FORMAT=json, the
// way a daemon running under a process supervisor would want it.
func New(component string) zerolog.Logger {
	var writer = os.Stderr
	zerolog.TimeFieldFormat = time.RFC3339

	if os.Getenv("HELIX_LOG_FORMAT") == "json" {
		return zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	}

	console := zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	return zerolog.New(console).With().Timestamp().Str("component", component).Logger()
}
