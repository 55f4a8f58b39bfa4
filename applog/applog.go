// Package applog wires up the process-wide zerolog logger.
package applog

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger. In "production" env it emits plain JSON to
// stdout; otherwise it uses a colorized console writer for local dev.
func New(env string) zerolog.Logger {
	var w zerolog.ConsoleWriter
	if env == "production" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	w = zerolog.ConsoleWriter{Out: colorable.NewColorableStdout()}
	return zerolog.New(w).With().Timestamp().Logger()
}
