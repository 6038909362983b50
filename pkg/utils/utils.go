package utils

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ParseLevel maps a configured level name to a zerolog level.
// An empty name selects DefaultLevel.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return DefaultLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "log level %q", name)
	}
	return level, nil
}

// NewLogger builds the process logger writing human readable lines to w.
func NewLogger(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
