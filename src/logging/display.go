package logging

import (
	"bufio"
	"strconv"
	"strings"
	"time"

	"github.com/ComedicChimera/minimini/src/util"
)

// displayLogMessage displays a LogMessage.  isError is used to determine the
// header for the error (eg. "Syntax Error"  or "Syntax Warning").
func (l *Logger) displayLogMessage(lm *LogMessage, isError bool) {
	l.displayLogMessageHeader(lm, isError)

	if lm.Position == nil {
		l.printf("%s\n", lm.Message)
		return
	}

	l.printf("%s at (Ln: %d, Col: %d)\n\n", lm.Message, lm.Position.StartLn, lm.Position.StartCol+1)

	if lm.Context == nil || lm.Context.Source == "" {
		return
	}

	sc := bufio.NewScanner(strings.NewReader(lm.Context.Source))

	// position the scanner on the starting line; a position past the end of
	// the source (the end of input) selects the last line
	last := ""
	for i := 0; i < lm.Position.StartLn && sc.Scan(); i++ {
		last = sc.Text()
	}

	l.displayCodeSelection(last, sc, lm.Position)
}

// displayCodeSelection displays the code that an error occurs on and highlights
// the relevant lines.  first is the text of the starting line and sc is
// positioned on it (calling sc.Scan() moves to the following line).
func (l *Logger) displayCodeSelection(first string, sc *bufio.Scanner, pos *util.TextPosition) {
	minLnNumberLen := len(strconv.Itoa(pos.EndLn))
	lnNumberFmtStr := "%-" + strconv.Itoa(minLnNumberLen) + "v | "

	text := first
	for line := pos.StartLn; line <= pos.EndLn; line++ {
		l.printf(lnNumberFmtStr, line)

		// convert all tabs to four spaces (for consistency)
		l.printf("%s\n", strings.ReplaceAll(text, "\t", "    "))

		l.printf("%s", strings.Repeat(" ", minLnNumberLen+3))

		if pos.StartLn == pos.EndLn {
			l.printf("%s", strings.Repeat(" ", expandedCol(text, pos.StartCol)))
			l.printf("%s\n", strings.Repeat("^", maxInt(pos.EndCol-pos.StartCol, 1)))
		} else {
			if line == pos.StartLn {
				l.printf("%s", strings.Repeat(" ", expandedCol(text, pos.StartCol)))
				l.printf("%s\n", strings.Repeat("^", maxInt(len(text)-pos.StartCol, 1)))
			} else if line == pos.EndLn {
				l.printf("%s\n", strings.Repeat("^", pos.EndCol+1))
			} else {
				l.printf("%s\n", strings.Repeat("^", len(text)))
			}

			sc.Scan()
			text = sc.Text()
		}
	}
}

// expandedCol converts a column of text into a display column with tabs
// expanded to four spaces
func expandedCol(text string, col int) int {
	if col > len(text) {
		return col + 3*strings.Count(text, "\t")
	}

	return col + 3*strings.Count(text[:col], "\t")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}

// displayLogMessageHeader displays the header/banner that is placed on top of
// every formal log message (contains error kind and file path)
func (l *Logger) displayLogMessageHeader(lm *LogMessage, isError bool) {
	l.printf("\n--- ")

	sb := strings.Builder{}
	sb.WriteString(lm.Kind)

	if isError {
		sb.WriteString(" Error ")
	} else {
		sb.WriteString(" Warning ")
	}

	if sb.Len() < 28 {
		sb.WriteString(strings.Repeat("-", 28-sb.Len()))
	}

	l.printf("%s", sb.String())

	if lm.Context != nil && lm.Context.FilePath != "" {
		l.printf(" (file: %s)", lm.Context.FilePath)
	}

	l.printf("\n")
}

// displayStdError displays a standard Go error that is not a LogMessage
func (l *Logger) displayStdError(err error) {
	l.printf("\n%s\n", err)
}

// fatalErrorMessage is the string printed after any fatal error
const fatalErrorMessage = `Uh oh! That wasn't supposed to happen.
The interpreter hit an internal error.  Please report it along with the
program you tried to load and the message above.`

// displayFatalMessage displays a fatal error message (DOES NOT EXIT)
func (l *Logger) displayFatalMessage(message string) {
	l.printf("\nUnexpected Fatal Error: %s\n", message)
	l.printf("%s\n", fatalErrorMessage)
}

// MaxStateLength is the number of character required to represent a state
// change (len("Canonicalizing") == 14)
const MaxStateLength = 14

// displayStateChange shows a state change message
func (l *Logger) displayStateChange(newstate string) {
	// only report the previous stage if one has been started
	if !l.prevUpdate.IsZero() {
		l.printf("Done (%.3fs)\n", time.Since(l.prevUpdate).Seconds())
	}

	// pad the state string out with dots
	stateString := newstate
	if len(newstate) < MaxStateLength+3 {
		stateString += strings.Repeat(".", MaxStateLength-len(newstate)+3)
	}

	// no newline so that the `Done (...)` will print on the same line
	l.printf("\t%s ", stateString)
}

// displayFinalMessage displays the conclusive message for a load
func (l *Logger) displayFinalMessage(errorCount, warningCount int) {
	if errorCount == 0 {
		l.printf("\nLoad Succeeded (0 errors, %d warnings)\n", warningCount)
	} else {
		l.printf("\nLoad Failed (%d errors, %d warnings)\n", errorCount, warningCount)
	}
}
