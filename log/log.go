// Package log is the logging facade: a logrus logger writing dated files under where.Logs().
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// logger drops everything until Setup enables file output.
var logger = logrus.New()

func init() {
	silence()
}

func silence() {
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
}

// Setup opens today's log file and applies formatter and level from config.
// With logs.write off every emission is dropped.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		silence()
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	name := time.Now().Format(time.DateOnly) + ".log"
	file, err := filesystem.API().OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	var formatter logrus.Formatter = &logrus.TextFormatter{DisableColors: true}
	if viper.GetBool(key.LogsJson) {
		formatter = &logrus.JSONFormatter{}
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetOutput(file)
	logger.SetFormatter(formatter)
	logger.SetLevel(level)
	return nil
}

func Error(args ...any)                 { logger.Error(args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
