// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// FromEnv reads LOG_LEVEL and LOG_FORMAT.
func FromEnv() (Options, error) {
	var o Options
	if err := env.Parse(&o); err != nil {
		return o, fmt.Errorf("logging env: %w", err)
	}
	return o, nil
}

// New returns a logger writing to out. An unknown level falls back to info.
// Format "json" selects the JSON formatter, anything else is text.
func New(o Options, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	level, err := logrus.ParseLevel(o.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(o.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
