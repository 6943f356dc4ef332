package syntax

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

// simple scanner/parser to read in and create a grammar.  The accepted format
// is a list of productions of the form
//
//	NAME : 'terminal' NONTERMINAL ... | ... ;
//
// with `//` line comments.  Each alternative becomes one production and ids are
// assigned in order of appearance.
type gramLoader struct {
	file *bufio.Reader
	curr rune
	eof  bool

	line, col int

	prods []*Production

	// nonterminals used on a right-hand side and where they were first used
	used map[Symbol][2]int
}

// GrammarError is returned when grammar text is malformed
type GrammarError struct {
	Message   string
	Line, Col int
}

func (ge *GrammarError) Error() string {
	return fmt.Sprintf("grammar: %s at (Ln: %d, Col: %d)", ge.Message, ge.Line, ge.Col)
}

// LoadGrammar reads grammar text from r and creates a grammar using end as its
// end-of-input terminal.  It fails if the grammar text is syntactically
// invalid or refers to an undefined nonterminal.
func LoadGrammar(r io.Reader, end Symbol) (*Grammar, error) {
	gl := &gramLoader{file: bufio.NewReader(r), line: 1, used: make(map[Symbol][2]int)}

	if err := gl.load(); err != nil {
		return nil, err
	}

	if len(gl.prods) == 0 {
		return nil, &GrammarError{Message: "no productions", Line: gl.line, Col: gl.col}
	}

	defined := make(map[Symbol]struct{})
	for _, p := range gl.prods {
		defined[p.LHS] = struct{}{}
	}

	// report undefined names in order of first use so the error is stable
	var first *GrammarError
	for nt, pos := range gl.used {
		if _, ok := defined[nt]; !ok {
			if first == nil || pos[0] < first.Line || (pos[0] == first.Line && pos[1] < first.Col) {
				first = &GrammarError{Message: fmt.Sprintf("undefined nonterminal `%s`", nt), Line: pos[0], Col: pos[1]}
			}
		}
	}

	if first != nil {
		return nil, first
	}

	return NewGrammar(gl.prods, end)
}

// load the grammar into the production list
func (gl *gramLoader) load() error {
	for gl.next() {
		switch gl.curr {
		// ignore whitespace
		case ' ', '\n', '\t', '\r':
			break
		// handle comments (double / = ok, single = invalid)
		case '/':
			if b, err := gl.peek(); err == nil && b == '/' {
				gl.skipComment()
			} else {
				return gl.unexpectedToken()
			}
		default:
			if isNameStart(gl.curr) {
				if err := gl.readProduction(); err != nil {
					return err
				}
			} else {
				return gl.unexpectedToken()
			}
		}
	}

	return nil
}

// read a rune from the stream and store it
func (gl *gramLoader) next() bool {
	r, _, err := gl.file.ReadRune()

	if err != nil {
		gl.eof = true
		return false
	}

	if gl.curr == '\n' {
		gl.line++
		gl.col = 1
	} else {
		gl.col++
	}

	gl.curr = r
	return true
}

// peek and convert to rune if successful, return error if not (rune is 0 then)
func (gl *gramLoader) peek() (rune, error) {
	b, err := gl.file.Peek(1)

	if err != nil {
		return 0, err
	}

	return rune(b[0]), nil
}

// read a line comment to its end (at a newline)
func (gl *gramLoader) skipComment() {
	for gl.next() && gl.curr != '\n' {
	}
}

// returns an unexpected token error
func (gl *gramLoader) unexpectedToken() error {
	return gl.errorf("unexpected token '%c'", gl.curr)
}

func (gl *gramLoader) errorf(format string, args ...interface{}) error {
	return &GrammarError{Message: fmt.Sprintf(format, args...), Line: gl.line, Col: gl.col}
}

// load and parse a production
func (gl *gramLoader) readProduction() error {
	lhs := Symbol(gl.readName())

	// the name may be followed by whitespace before the ':'
	for !gl.eof && unicode.IsSpace(gl.curr) {
		gl.next()
	}

	if gl.eof {
		return gl.errorf("unexpected end of grammar")
	}

	if gl.curr != ':' {
		return gl.unexpectedToken()
	}

	alternatives, err := gl.parseAlternatives()
	if err != nil {
		return err
	}

	for _, rhs := range alternatives {
		gl.prods = append(gl.prods, &Production{ID: len(gl.prods), LHS: lhs, RHS: rhs})
	}

	return nil
}

// parse the alternatives of a production up to its closing ';'
func (gl *gramLoader) parseAlternatives() ([][]Symbol, error) {
	var alternatives [][]Symbol
	var current []Symbol

	closeAlternative := func() error {
		if len(current) == 0 {
			return gl.errorf("empty alternative")
		}

		alternatives = append(alternatives, current)
		current = nil
		return nil
	}

	for gl.next() {
		switch gl.curr {
		case ' ', '\t', '\n', '\r':
			continue
		case '/':
			if b, err := gl.peek(); err == nil && b == '/' {
				gl.skipComment()
			} else {
				return nil, gl.unexpectedToken()
			}
		case '|':
			if err := closeAlternative(); err != nil {
				return nil, err
			}
		case ';':
			if err := closeAlternative(); err != nil {
				return nil, err
			}

			return alternatives, nil
		case '\'':
			terminal, ok := gl.readTerminal()
			if !ok {
				return nil, gl.errorf("malformed terminal")
			}

			current = append(current, Symbol(terminal))
		default:
			if !isNameStart(gl.curr) {
				return nil, gl.unexpectedToken()
			}

			line, col := gl.line, gl.col
			nt := Symbol(gl.readName())
			if _, ok := gl.used[nt]; !ok {
				gl.used[nt] = [2]int{line, col}
			}

			current = append(current, nt)

			// readName stops on the rune after the name which must be handled
			if gl.eof {
				break
			}

			switch gl.curr {
			case '|':
				if err := closeAlternative(); err != nil {
					return nil, err
				}
			case ';':
				if err := closeAlternative(); err != nil {
					return nil, err
				}

				return alternatives, nil
			case ' ', '\t', '\n', '\r':
			default:
				return nil, gl.unexpectedToken()
			}
		}
	}

	return nil, gl.errorf("production not closed before end of grammar")
}

// readTerminal reads the body of a quoted terminal (the opening quote is the
// current rune)
func (gl *gramLoader) readTerminal() (string, bool) {
	var terminal []rune

	for gl.next() {
		switch gl.curr {
		case '\'':
			return string(terminal), len(terminal) > 0
		case '\n':
			return "", false
		}

		terminal = append(terminal, gl.curr)
	}

	// if the terminal is not closed before EOF, then it is malformed
	return "", false
}

// readName reads a name starting at the current rune.  It leaves the loader on
// the first rune that is not part of the name.
func (gl *gramLoader) readName() string {
	name := []rune{gl.curr}

	for gl.next() {
		if isNameStart(gl.curr) || unicode.IsDigit(gl.curr) {
			name = append(name, gl.curr)
		} else {
			break
		}
	}

	return string(name)
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}
