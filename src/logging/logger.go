package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ComedicChimera/minimini/src/util"
)

// Logger is a type that is responsible for storing and displaying the
// diagnostics produced while loading and running programs
type Logger struct {
	ErrorCount int // Total encountered errors
	LogLevel   int

	// warnings is a list of all warnings to be displayed by LogFinished
	warnings []*LogMessage

	// prevUpdate is used to hold the last time when the state updated
	prevUpdate time.Time

	// out is where every message is written
	out io.Writer
}

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and the closing message of a failed load
	LogLevelWarning        // errors, warnings and the closing message
	LogLevelVerbose        // errors, warnings, stage timing and the closing message
)

var logLevelNames = map[string]int{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"warn":    LogLevelWarning,
	"verbose": LogLevelVerbose,
}

// LevelFromString converts a command-line log level name into a log level
func LevelFromString(name string) (int, error) {
	if level, ok := logLevelNames[strings.ToLower(name)]; ok {
		return level, nil
	}

	return 0, fmt.Errorf("invalid log level `%s` (expected silent, error, warn or verbose)", name)
}

// LogContext describes the source a message refers to.  Source is the full
// program text: it is used to display the offending code.
type LogContext struct {
	FilePath string
	Source   string
}

// LogMessage is a single positioned error or warning
type LogMessage struct {
	Context  *LogContext
	Message  string
	Kind     string
	Position *util.TextPosition
}

// newLogger creates a new logger writing to os.Stdout
func newLogger(loglevel int) Logger {
	return Logger{LogLevel: loglevel, out: os.Stdout}
}

// printf writes to the logger's output
func (l *Logger) printf(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format, args...)
}
