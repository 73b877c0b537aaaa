// Package logging configures the process-wide logrus logger.
//
// Usage:
//
//	log, err := logging.New(logging.Options{Level: "debug", Format: "json"})
//	log.WithField("user_id", 7).Info("User banned")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls how logging is configured.
type Options struct {
	Level  string    // "debug", "info", "warn", "error" (default: "info")
	Format string    // "text" or "json" (default: "text")
	Output io.Writer // where to write logs (default: os.Stdout)
}

// ParseLevel converts a level name to a logrus level.
// Unknown values return logrus.InfoLevel with an error.
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info", "":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", level)
	}
}

// New builds a logger from opts
func New(opts Options) (*logrus.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: text, json)", opts.Format)
	}
	return log, nil
}

// Setup builds a logger from opts and installs its settings on the logrus
// standard logger, which package-level helpers such as httpx.FailErr use.
func Setup(opts Options) (*logrus.Logger, error) {
	log, err := New(opts)
	if err != nil {
		return nil, err
	}
	std := logrus.StandardLogger()
	std.SetOutput(log.Out)
	std.SetLevel(log.GetLevel())
	std.SetFormatter(log.Formatter)
	return log, nil
}
