package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the console logger. Output goes to stderr so command output on
// stdout stays clean for piping.
func New(environment string) zerolog.Logger {
	return NewWithWriter(os.Stderr, environment)
}

func NewWithWriter(w io.Writer, environment string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).Level(level).With().
		Timestamp().
		Str("env", environment).
		Logger()
}
