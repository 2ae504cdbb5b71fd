package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Default level
	Logger.SetLevel(logrus.InfoLevel)

	// Override from env, e.g., LOG_LEVEL=debug
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if parsedLevel, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
			Logger.SetLevel(parsedLevel)
		}
	}
}

// WithComponent adds a component field to the logger
func WithComponent(component string) *logrus.Entry {
	return Logger.WithField("component", component)
}

// SetLevel applies a named level to the process logger, keeping the current
// level when the name does not parse. Used by the config hot-reload path.
func SetLevel(name string) {
	if name == "" {
		return
	}
	if parsed, err := logrus.ParseLevel(strings.ToLower(name)); err == nil {
		Logger.SetLevel(parsed)
	} else {
		WithComponent("logger").Warnf("ignoring invalid log level %q", name)
	}
}
