// Package logging builds the logrus logger shared by the backend.
package logging

import (
	"io"
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr at the given level.
// Unknown levels fall back to info.
func New(level string) *log.Logger {
	return newLogger(os.Stderr, level)
}

func newLogger(out io.Writer, level string) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)
	logger.SetFormatter(&nested.Formatter{
		FieldsOrder:     []string{"component", "request_id", "method", "path", "status"},
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		NoColors:        true,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warnf("Unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Component returns an entry tagged with the component name.
func Component(logger log.FieldLogger, name string) *log.Entry {
	return logger.WithField("component", name)
}
