// Package logging builds the process-wide zerolog logger: a colorized
// console writer in development, structured JSON in production.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger for the given environment ("development" or an empty
// value gets a human-readable console writer; anything else gets JSON on
// stdout).
func New(appEnv string) zerolog.Logger {
	var writer = os.Stdout
	if strings.EqualFold(appEnv, "development") || appEnv == "" {
		return zerolog.New(zerolog.ConsoleWriter{Out: writer}).With().Timestamp().Logger()
	}
	return zerolog.New(writer).With().Timestamp().Logger()
}
