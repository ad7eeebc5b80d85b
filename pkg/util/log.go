package util

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// EnvVerbose enables debug logging when set to "true"
const EnvVerbose = "VKSDK_VERBOSE"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide diagnostic logger. It writes to stderr and
// starts at debug level when VKSDK_VERBOSE=true.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		verbose := os.Getenv(EnvVerbose) == "true"
		logger = newLogger(os.Stderr)
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	})
	return logger
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "vksdk",
		Level:  log.WarnLevel,
	})
}

// SetVerbose switches the diagnostic logger between debug and warn level
func SetVerbose(verbose bool) {
	if verbose {
		Logger().SetLevel(log.DebugLevel)
		return
	}
	Logger().SetLevel(log.WarnLevel)
}

// SetOutput redirects the diagnostic logger, mainly for tests
func SetOutput(w io.Writer) {
	Logger().SetOutput(w)
}

// IsVerbose returns true if verbose logging is enabled
func IsVerbose() bool {
	if logger != nil {
		return logger.GetLevel() <= log.DebugLevel
	}
	return os.Getenv(EnvVerbose) == "true"
}

// LogVerbose prints verbose log messages
func LogVerbose(format string, args ...interface{}) {
	Logger().Debugf(format, args...)
}

// LogWarn prints a warning that is shown even without --verbose
func LogWarn(format string, args ...interface{}) {
	Logger().Warnf(format, args...)
}
