// Package log provides a thread-safe, structured logging infrastructure with filesystem-based persistence.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/key"
	"github.com/zapper-tv/zapper/where"
)

// enabled reports whether emissions reach logrus at all.
var enabled bool

// Setup opens today's log file and applies level and format from configuration.
// When logs.write is false every call in this package is a no-op.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	filename := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, filename)

	if exists := lo.Must(filesystem.API().Exists(path)); !exists {
		lo.Must(filesystem.API().Create(path))
	}

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// Tee additionally copies every entry to w. Headless mode uses it to print
// status lines on stdout. It force-enables logging.
func Tee(w io.Writer) {
	if enabled {
		logrus.SetOutput(io.MultiWriter(logrus.StandardLogger().Out, w))
	} else {
		logrus.SetOutput(w)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	enabled = true
}

// WithField returns an entry scoped to a subsystem. The entry is detached
// from the output when logging is disabled.
func WithField(k string, v any) *logrus.Entry {
	if !enabled {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l.WithField(k, v)
	}
	return logrus.WithField(k, v)
}

func Error(args ...interface{}) {
	if enabled {
		logrus.Error(args...)
	}
}
func Errorf(format string, args ...interface{}) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}
func Warn(args ...interface{}) {
	if enabled {
		logrus.Warn(args...)
	}
}
func Warnf(format string, args ...interface{}) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}
func Info(args ...interface{}) {
	if enabled {
		logrus.Info(args...)
	}
}
func Infof(format string, args ...interface{}) {
	if enabled {
		logrus.Infof(format, args...)
	}
}
func Debug(args ...interface{}) {
	if enabled {
		logrus.Debug(args...)
	}
}
func Debugf(format string, args ...interface{}) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
