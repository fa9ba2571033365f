// Package log writes structured logs to a per-day file when enabled.
package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Hoodgail/watchlist/filesystem"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var enabled bool

// Setup opens today's log file and configures logrus from the persisted
// settings. When logging is turned off, every emission below is a no-op.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{PrettyPrint: true})
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

func emit(level logrus.Level, args ...interface{}) {
	if enabled {
		logrus.StandardLogger().Log(level, args...)
	}
}

func emitf(level logrus.Level, format string, args ...interface{}) {
	if enabled {
		logrus.StandardLogger().Logf(level, format, args...)
	}
}

func Error(args ...interface{})                 { emit(logrus.ErrorLevel, args...) }
func Errorf(format string, args ...interface{}) { emitf(logrus.ErrorLevel, format, args...) }
func Warn(args ...interface{})                  { emit(logrus.WarnLevel, args...) }
func Warnf(format string, args ...interface{})  { emitf(logrus.WarnLevel, format, args...) }
func Info(args ...interface{})                  { emit(logrus.InfoLevel, args...) }
func Infof(format string, args ...interface{})  { emitf(logrus.InfoLevel, format, args...) }
func Debug(args ...interface{})                 { emit(logrus.DebugLevel, args...) }
func Debugf(format string, args ...interface{}) { emitf(logrus.DebugLevel, format, args...) }
