// Package log provides the levelled logging used throughout ledger-sheets.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return l
}

func Logger() *logrus.Logger {
	return logger
}

func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
}

func SetLevel(level string) error {
	if strings.TrimSpace(level) == "" {
		return nil
	}

	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	logger.SetLevel(l)

	return nil
}

// SetFormat selects the 'text' or 'json' log format.
func SetFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})

	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})

	default:
		return fmt.Errorf("unsupported log format '%v'", format)
	}

	return nil
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func WithFields(fields map[string]any) *logrus.Entry {
	return logger.WithFields(logrus.Fields(fields))
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
