package lang

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ComedicChimera/minimini/src/syntax"
	"github.com/ComedicChimera/minimini/src/util"
)

// IsLetter tests if a rune is an ASCII letter
func IsLetter(r rune) bool {
	return r > '`' && r < '{' || r > '@' && r < '['
}

// IsDigit tests if a rune is an ASCII digit
func IsDigit(r rune) bool {
	return r > '/' && r < ':'
}

// Scanner works like an io.Reader for program text (outputting tokens)
type Scanner struct {
	file *bufio.Reader

	// position of the next rune to be read (1-indexed line, 0-indexed column)
	line, col int

	// position of the rune in curr
	currLn, currCol int

	// start of the token being scanned
	startLn, startCol int

	tokBuff []rune
	curr    rune
	err     error
}

// NewScanner creates a scanner reading program text from r
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{file: bufio.NewReader(r), line: 1}
}

// Scan reads all tokens of a program and closes the stream with an end token.
// Malformed tokens are reported as *util.SourceError values of kind "Token".
func Scan(r io.Reader) ([]*syntax.Token, error) {
	s := NewScanner(r)

	var tokens []*syntax.Token
	for {
		tok, err := s.ReadToken()

		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}

	tokens = append(tokens, &syntax.Token{Kind: EndKind, Line: s.line, Col: s.col})
	tracer().Debugf("scanned %d tokens", len(tokens))
	return tokens, nil
}

// ScanString is Scan over a string
func ScanString(src string) ([]*syntax.Token, error) {
	return Scan(strings.NewReader(src))
}

// ReadToken reads a single token from the stream, error can indicate malformed
// token or end of token stream (io.EOF)
func (s *Scanner) ReadToken() (*syntax.Token, error) {
	for {
		s.discardBuff()

		if !s.readNext() {
			break
		}

		var tok *syntax.Token
		malformed := false

		switch s.curr {
		// skip whitespace and byte order marks, line counting done in readNext
		case ' ', '\t', '\n', '\r', 65279:
			continue
		// handle comments
		case '/':
			if ahead, more := s.peek(); more && ahead == '/' {
				s.skipLineComment()
				continue
			}

			tok = s.getToken()
		default:
			if IsLetter(s.curr) || s.curr == '_' {
				tok = s.readWord()
			} else if IsDigit(s.curr) {
				tok = s.readNumber()
			} else {
				tok, malformed = s.readSymbol()
			}
		}

		if malformed {
			return nil, util.NewSourceError(
				fmt.Sprintf("Malformed token `%s`", string(s.tokBuff)), "Token",
				&util.TextPosition{StartLn: s.startLn, StartCol: s.startCol, EndLn: s.currLn, EndCol: s.currCol + 1},
			)
		}

		return tok, nil
	}

	if s.err != nil {
		return nil, s.err
	}

	// end of file
	return nil, io.EOF
}

// reads a rune from the stream into the token buffer and returns whether or
// not there are more runes to be read
func (s *Scanner) readNext() bool {
	r, _, err := s.file.ReadRune()

	if err != nil {
		if err != io.EOF {
			s.err = err
		}

		return false
	}

	if len(s.tokBuff) == 0 {
		s.startLn, s.startCol = s.line, s.col
	}

	s.currLn, s.currCol = s.line, s.col

	// do line and column counting
	if r == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}

	s.tokBuff = append(s.tokBuff, r)
	s.curr = r
	return true
}

// peek a rune ahead on the scanner.  Only single-byte runes are recognized
// which is all the language's symbols need.
func (s *Scanner) peek() (rune, bool) {
	bytes, err := s.file.Peek(1)

	if err != nil {
		return 0, false
	}

	return rune(bytes[0]), true
}

// discards the current token buffer (keeping it allocated)
func (s *Scanner) discardBuff() {
	s.tokBuff = s.tokBuff[:0]
}

// skip a line comment up to (not including) its newline
func (s *Scanner) skipLineComment() {
	for {
		ahead, more := s.peek()
		if !more || ahead == '\n' {
			return
		}

		s.readNext()
	}
}

// create a token of the given kind from the contents of the token buffer
func (s *Scanner) makeToken(kind string) *syntax.Token {
	return &syntax.Token{Kind: kind, Value: string(s.tokBuff), Line: s.startLn, Col: s.startCol}
}

// create a symbol token whose kind is given by the symbol patterns
func (s *Scanner) getToken() *syntax.Token {
	return s.makeToken(symbolPatterns[string(s.tokBuff)])
}

// reads an identifier or a keyword
func (s *Scanner) readWord() *syntax.Token {
	for {
		c, more := s.peek()

		if !more || !(IsLetter(c) || IsDigit(c) || c == '_') {
			break
		}

		s.readNext()
	}

	if kind, ok := keywordPatterns[string(s.tokBuff)]; ok {
		return s.makeToken(kind)
	}

	return s.makeToken(NAME)
}

// reads a decimal integer literal
func (s *Scanner) readNumber() *syntax.Token {
	for {
		c, more := s.peek()

		if !more || !IsDigit(c) {
			break
		}

		s.readNext()
	}

	return s.makeToken(NUMBER)
}

// reads a one or two rune symbol (longest match wins)
func (s *Scanner) readSymbol() (*syntax.Token, bool) {
	if ahead, more := s.peek(); more {
		if _, ok := symbolPatterns[string(s.curr)+string(ahead)]; ok {
			s.readNext()
			return s.getToken(), false
		}
	}

	if _, ok := symbolPatterns[string(s.curr)]; ok {
		return s.getToken(), false
	}

	return nil, true
}
