package util

import "fmt"

// TextPosition represents the positional range of a token or a node in the
// source text (for error handling)
type TextPosition struct {
	StartLn, StartCol int // starting line, starting 0-indexed column
	EndLn, EndCol     int // ending Line, column trailing token (one over)
}

// SourceError represents a positioned error in a program's source text (created
// by the scanner or the front end when a parse fails)
type SourceError struct {
	Message  string
	Position *TextPosition

	// indicates what type of error was thrown: used in display (--- $Kind Error ----)
	Kind string

	// Err is the error that caused this one (if any).  It is kept so callers can
	// still inspect the original failure with errors.As
	Err error
}

// NewSourceError creates a new source error from a message and text position
func NewSourceError(message, errorKind string, tp *TextPosition) *SourceError {
	return &SourceError{Message: message, Kind: errorKind, Position: tp}
}

// WrapSourceError creates a new source error that carries the error it was
// derived from
func WrapSourceError(err error, errorKind string, tp *TextPosition) *SourceError {
	return &SourceError{Message: err.Error(), Kind: errorKind, Position: tp, Err: err}
}

// Error does not produce the full error message: it simply produces the top
// line ie. the error details (message, line, and column)
func (se *SourceError) Error() string {
	if se.Position == nil {
		return se.Message
	}

	return se.Message + fmt.Sprintf(" at (Ln: %d, Col: %d)", se.Position.StartLn, se.Position.StartCol+1)
}

// Unwrap returns the underlying error (may be nil)
func (se *SourceError) Unwrap() error {
	return se.Err
}
