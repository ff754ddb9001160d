package log

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.Formatter = NewFormatter(os.Getenv("CERTEXPIRY_LOGFORMAT"))
	log.Level = LevelFromString(os.Getenv("CERTEXPIRY_LOGLEVEL"))
}

// Get returns the shared logger.
func Get() *logrus.Logger {
	return log
}

// Configure applies the level and format from configuration to the shared logger.
func Configure(level, format string) {
	log.Level = LevelFromString(level)
	log.Formatter = NewFormatter(format)
}

// LevelFromString maps a level name to a logrus level, defaulting to info.
func LevelFromString(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// NewFormatter returns the formatter for the given format name ("json" or text).
func NewFormatter(format string) logrus.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		}
	default:
		return &logrus.TextFormatter{
			TimestampFormat: "Jan 02 15:04:05",
			FullTimestamp:   true,
			DisableColors:   true,
		}
	}
}
