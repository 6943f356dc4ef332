package syntax

import (
	"fmt"

	"github.com/ComedicChimera/minimini/src/util"
)

// Token represents a token fed to the parser.  Kind is the name of the
// terminal the token matches.  Line and Col are 1-indexed line and 0-indexed
// column of its first rune.
type Token struct {
	Kind  string
	Value string
	Line  int
	Col   int
}

func (t *Token) String() string {
	if t.Value == "" || t.Value == t.Kind {
		return t.Kind
	}

	return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
}

// TextPositionOfToken takes in a token and returns its text position
func TextPositionOfToken(tok *Token) *util.TextPosition {
	return &util.TextPosition{StartLn: tok.Line, StartCol: tok.Col, EndLn: tok.Line, EndCol: tok.Col + len(tok.Value)}
}
