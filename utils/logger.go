package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	isVerbose bool

	logger  = newLogger(os.Stderr)
	logMu   sync.Mutex
	logFile *os.File
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

func SetVerbose(verbose bool) {
	isVerbose = verbose
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetLevel applies a level name such as "warn" or "debug". Debug and trace
// also turn on Verbose output.
func SetLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}

	isVerbose = level >= logrus.DebugLevel
	logger.SetLevel(level)
	return nil
}

func IsVerbose() bool {
	return isVerbose
}

// SetOutput redirects console logging, mainly for tests.
func SetOutput(out io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()

	if logFile != nil {
		logger.SetOutput(io.MultiWriter(out, logFile))
		return
	}
	logger.SetOutput(out)
}

// SetLogFile mirrors every log entry into the given file (appending).
// An empty path detaches any previously configured file.
func SetLogFile(path string) error {
	logMu.Lock()
	defer logMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	if path == "" {
		logger.SetOutput(os.Stderr)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logFile = f
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// Logger exposes the underlying logrus logger for structured fields.
func Logger() *logrus.Logger {
	return logger
}

func Verbose(format string, args ...interface{}) {
	if isVerbose {
		logger.Debugf(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
