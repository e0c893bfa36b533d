package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger: JSON with @timestamp/message keys
// outside development, colored text in development.
func Init(env string) {
	log.SetOutput(os.Stdout)
	configure(log.StandardLogger(), env)
}

// New returns a standalone logger configured the same way as the global one.
func New(env string, out io.Writer) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)
	configure(logger, env)
	return logger
}

func configure(logger *log.Logger, env string) {
	if env == "development" {
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
		logger.SetLevel(log.DebugLevel)
		return
	}

	logger.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime: "@timestamp",
			log.FieldKeyMsg:  "message",
		},
	})
	logger.SetLevel(log.InfoLevel)
}
