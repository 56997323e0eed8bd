// file: logger/logger.go

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the application-wide logger. It is usable before Init is called,
// which only adjusts formatting and level.
var Log = logrus.New()

// Init configures the shared logger: JSON output on stdout and the level
// taken from LOG_LEVEL (defaults to info).
func Init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}
