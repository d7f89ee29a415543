// Package log provides logrus loggers for textpipe components.
package log

import (
	"io"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config defines logger settings. It's read from TEXTPIPE_DEBUG and
// TEXTPIPE_LOG_FORMAT environment variables.
type Config struct {
	Debug  bool   `envconfig:"DEBUG" default:"false"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// JSONFormat selects logrus JSON formatter.
const JSONFormat = "json"

var (
	env    Config
	silent = newSilent()
)

func init() {
	if err := envconfig.Process("textpipe", &env); err != nil {
		env = Config{Format: "text"}
	}
}

// GetLogger returns a new logger configured with environment.
func GetLogger() *logrus.Logger {
	return New(env)
}

// New returns a new logger with provided configuration.
func New(cfg Config) *logrus.Logger {
	l := logrus.New()
	if cfg.Debug {
		l.SetLevel(logrus.DebugLevel)
	}
	if cfg.Format == JSONFormat {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

// Silent returns a logger which discards all entries.
func Silent() logrus.FieldLogger {
	return silent
}

func newSilent() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}
