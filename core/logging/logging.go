package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"medledger/core/config"
)

const timestampFormat = "2006-01-02 15:04:05.000000"

// RotateLog returns a daily rotating writer for <abspath>.<date>.log,
// keeping a week of files.
func RotateLog(abspath string) *rotatelogs.RotateLogs {
	logFile, err := rotatelogs.New(
		abspath+".%Y%m%d.log",
		rotatelogs.WithLinkName(abspath+".log"),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		panic(fmt.Sprintf("logging: cannot create rotating log %s: %v", abspath, err))
	}
	return logFile
}

// ParseLevel maps a level name to a logrus level. Unknown names fall back to
// info and report false.
func ParseLevel(name string) (logrus.Level, bool) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel, false
	}
	return lvl, true
}

// Init configures logger from the log section of cfg. With neither stdout
// nor file enabled, output is discarded.
func Init(logger *logrus.Logger, cfg *config.Config) error {
	var writers []io.Writer
	var logdir string

	if cfg.Log.File {
		var err error
		logdir, err = filepath.Abs(cfg.Log.Dir)
		if err != nil {
			return fmt.Errorf("logging: log dir %s: %w", cfg.Log.Dir, err)
		}
		if err := os.MkdirAll(logdir, os.ModePerm); err != nil {
			return fmt.Errorf("logging: create log dir %s: %w", logdir, err)
		}
		writers = append(writers, RotateLog(filepath.Join(logdir, "run")))
	}
	if cfg.Log.Stdout {
		writers = append(writers, os.Stdout)
	}
	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	lvl, ok := ParseLevel(cfg.Log.Level)
	logger.SetLevel(lvl)

	formatter := new(logrus.TextFormatter)
	formatter.ForceColors = cfg.Log.Stdout && !cfg.Log.File
	formatter.TimestampFormat = timestampFormat
	formatter.FullTimestamp = true
	logger.SetFormatter(formatter)

	if cfg.Log.ByLevel && cfg.Log.File {
		writerMap := lfshook.WriterMap{
			logrus.PanicLevel: RotateLog(filepath.Join(logdir, "panic")),
			logrus.FatalLevel: RotateLog(filepath.Join(logdir, "fatal")),
			logrus.ErrorLevel: RotateLog(filepath.Join(logdir, "error")),
			logrus.WarnLevel:  RotateLog(filepath.Join(logdir, "warn")),
		}
		logger.AddHook(lfshook.NewHook(writerMap, &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		}))
	}

	if !ok {
		logger.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
	}
	logger.Debug("logger initialized")
	return nil
}
