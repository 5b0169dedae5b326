// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"

	"attendance_exception_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

const serviceName = "attendance-exception-bot"

// Log is the global logger instance
var Log = logrus.New()

// Init configures the global logger from cfg and writes to stdout.
func Init(cfg *config.AppConfig) {
	configure(Log, cfg, os.Stdout)

	Log.WithFields(logrus.Fields{
		"level":  Log.GetLevel().String(),
		"format": formatName(cfg),
	}).Info("Logger initialized")
}

func configure(l *logrus.Logger, cfg *config.AppConfig, out io.Writer) {
	l.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		l.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if formatName(cfg) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
			FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
		return
	}
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     cfg.Environment == "development",
	})
}

// formatName resolves LOG_FORMAT, falling back to JSON outside development.
func formatName(cfg *config.AppConfig) string {
	if cfg.LogFormat != "" {
		return cfg.LogFormat
	}
	switch cfg.Environment {
	case "production", "staging":
		return "json"
	default:
		return "text"
	}
}

// Component returns an entry tagged with the service and component name.
func Component(name string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"service":   serviceName,
		"component": name,
	})
}
