package logging

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/ComedicChimera/minimini/src/util"
)

// logger is a global reference to a shared Logger
var logger = newLogger(LogLevelError)

// exit terminates the process after a fatal error
var exit = os.Exit

// Initialize initializes the global logger with the provided log level.  All
// counters and pending warnings are cleared.
func Initialize(loglevel int) {
	out := logger.out
	logger = newLogger(loglevel)
	logger.out = out
}

// SetOutput redirects all log output to w
func SetOutput(w io.Writer) {
	logger.out = w
}

// ErrorCount returns the number of errors logged since initialization
func ErrorCount() int {
	return logger.ErrorCount
}

// NOTE TO READER: all log functions will only display if the appropriate log
// level is set.  Most log functions will simply fail silently if below their
// appropriate log level.

// LogError logs and displays a source error (user-induced, bad code)
func LogError(lctx *LogContext, message string, kind string, pos *util.TextPosition) {
	logger.ErrorCount++

	if logger.LogLevel > LogLevelSilent {
		logger.displayLogMessage(&LogMessage{Context: lctx, Message: message, Kind: kind, Position: pos}, true)
	}
}

// LogStdError logs any error.  Source errors are displayed with the code they
// refer to, everything else is displayed as is.
func LogStdError(lctx *LogContext, err error) {
	var se *util.SourceError
	if errors.As(err, &se) {
		LogError(lctx, se.Message, se.Kind, se.Position)
		return
	}

	logger.ErrorCount++

	if logger.LogLevel > LogLevelSilent {
		logger.displayStdError(err)
	}
}

// LogWarning logs a warning (user-induced, less-than-ideal code).  Warnings are
// displayed by LogFinished.
func LogWarning(lctx *LogContext, message string, kind string, pos *util.TextPosition) {
	logger.warnings = append(logger.warnings, &LogMessage{
		Context:  lctx,
		Message:  message,
		Kind:     kind,
		Position: pos,
	})
}

// LogFatal logs a fatal error message (something unexpected happened with the
// interpreter -- developer error, requires bug fix).  TERMINATES PROGRAM!
func LogFatal(message string) {
	logger.displayFatalMessage(message)
	exit(-1)
}

// LogStateChange logs a state change (for verbose logging)
func LogStateChange(newstate string) {
	if logger.LogLevel == LogLevelVerbose {
		logger.displayStateChange(newstate)

		// always update timer
		logger.prevUpdate = time.Now()
	}
}

// LogFinished logs the final status of a load and displays any warnings
// encountered.  This should be called at the end of loading (regardless of
// success or failure).  The error count and the warnings are cleared for the
// next load.
func LogFinished() {
	if logger.LogLevel == LogLevelVerbose && !logger.prevUpdate.IsZero() {
		logger.printf("Done (%.3fs)\n", time.Since(logger.prevUpdate).Seconds())
		logger.prevUpdate = time.Time{}
	}

	if logger.LogLevel > LogLevelError {
		for _, warning := range logger.warnings {
			logger.displayLogMessage(warning, false)
		}
	}

	if logger.LogLevel > LogLevelError || (logger.LogLevel == LogLevelError && logger.ErrorCount > 0) {
		logger.displayFinalMessage(logger.ErrorCount, len(logger.warnings))
	}

	logger.ErrorCount = 0
	logger.warnings = nil
}
