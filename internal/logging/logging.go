package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the process logger. With a file the output is JSON appended to
// it; otherwise, if console is set, human-readable lines go to stderr, and
// if neither is set logging is discarded so the dashboard keeps the terminal.
func New(level, file string, console bool) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to parse log level %q: %w", level, err)
	}
	zerolog.DurationFieldUnit = time.Second
	zerolog.DurationFieldInteger = false

	switch {
	case file != "":
		f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
		}
		return newLogger(f, lvl), f, nil
	case console:
		return newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, lvl), nopCloser{}, nil
	default:
		return zerolog.Nop(), nopCloser{}, nil
	}
}

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
