package config

import (
	"io"

	"github.com/sirupsen/logrus"
)

func parseLevel(level string) (logrus.Level, error) {
	return logrus.ParseLevel(level)
}

// SetupLogging configures the standard logrus logger.
func SetupLogging(c LogConfig, out io.Writer) error {
	level, err := parseLevel(c.Level)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)
	logrus.SetOutput(out)
	if c.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
