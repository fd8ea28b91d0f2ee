package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Pretty output is for local development;
// production emits JSON.
func New(level string, pretty bool) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
