package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

// NewLogger builds the process logger writing to out in the configured format.
func NewLogger(cfg Config, out io.Writer) (zerolog.Logger, error) {
	lvl, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	w := out
	if !strings.EqualFold(cfg.LogFormat, "json") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
