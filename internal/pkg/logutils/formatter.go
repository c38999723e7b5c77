// Package logutils centralizes logrus setup: a UTC-normalizing formatter
// wrapper and small helpers to apply the level/format knobs exposed on the
// command-line front ends and the HTTP service.
package logutils

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// UTCFormatter wraps another logrus.Formatter and rewrites the entry
// timestamp to UTC before delegating, so log lines are comparable across
// hosts regardless of local timezone.
type UTCFormatter struct {
	logrus.Formatter
}

// Format implements logrus.Formatter.
func (u UTCFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

// SetLogLevel parses level (case-insensitive: debug, info, warn, error) and
// applies it to the standard logrus logger.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("logutils: invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// SetLogFormat installs a UTCFormatter wrapping either the JSON or text
// logrus formatter, matched case-insensitively; anything other than "json"
// falls back to text.
func SetLogFormat(format string) {
	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(UTCFormatter{Formatter: &logrus.JSONFormatter{}})
	default:
		logrus.SetFormatter(UTCFormatter{Formatter: &logrus.TextFormatter{FullTimestamp: true}})
	}
}

// SetupTestLogging configures verbose, UTC-normalized text logging for use
// in test main functions and TestMain hooks.
func SetupTestLogging() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(UTCFormatter{Formatter: &logrus.TextFormatter{FullTimestamp: true}})
}
