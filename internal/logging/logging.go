// Package logging configures the logrus logger shared by every component.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

// Logger is the logger type passed between components.
type Logger = logrus.FieldLogger

// Fields represents structured logging fields.
type Fields = logrus.Fields

const logFileName = "rushnotify.log"

// New creates a logger writing to out with the given level and format.
// Unknown levels fall back to info; format "json" selects the JSON formatter.
func New(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(l Logger, component string) *logrus.Entry {
	return l.WithField("component", component)
}

// Discard returns a logger that drops everything. Used by tests and stubs.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// OpenFile opens the log file under the XDG state directory. The terminal UI
// logs there so output does not corrupt the screen.
func OpenFile() (*os.File, error) {
	path, err := xdg.StateFile(filepath.Join("rushnotify", logFileName))
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
