package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func parseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.WarnLevel, nil
	}
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("invalid logLevel %q: %w", s, err)
	}
	return lvl, nil
}

// NewLogger builds a logger writing to stderr at the configured level.
func NewLogger(c Config) *logrus.Logger {
	return newLogger(c, os.Stderr)
}

func newLogger(c Config, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	lvl, err := parseLevel(c.LogLevel.String)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    c.NoColor.Bool,
		DisableTimestamp: true,
	})
	return l
}
