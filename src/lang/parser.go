package lang

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/ComedicChimera/minimini/src/syntax"
)

//go:embed minimini.bnf
var grammarText string

// Grammar loads the language grammar
func Grammar() (*syntax.Grammar, error) {
	return syntax.LoadGrammar(strings.NewReader(grammarText), EndKind)
}

// Automaton builds the characteristic automaton of the language grammar
func Automaton() (*syntax.Automaton, error) {
	g, err := Grammar()
	if err != nil {
		return nil, err
	}

	return syntax.BuildAutomaton(g)
}

// NewParser creates a parser for the language.  If cachePath is not empty and
// forceCreate is not set, the parsing table is loaded from that file when it
// exists.  Otherwise the table is built from the grammar and, if cachePath is
// not empty, saved there for later runs.
func NewParser(cachePath string, forceCreate bool) (*syntax.Parser, error) {
	if cachePath != "" && !forceCreate {
		pt, err := syntax.LoadTableFile(cachePath)
		if err == nil {
			tracer().Infof("loaded parsing table from %s", cachePath)
			return syntax.NewParser(pt), nil
		}

		tracer().Infof("building parsing table: %v", err)
	}

	a, err := Automaton()
	if err != nil {
		return nil, err
	}

	pt := syntax.BuildTable(a)

	if cachePath != "" {
		if err := syntax.SaveTableFile(cachePath, pt); err != nil {
			return nil, err
		}
	}

	return syntax.NewParser(pt), nil
}

var (
	defaultParser    *syntax.Parser
	defaultParserErr error
	defaultOnce      sync.Once
)

// DefaultParser returns the process-wide parser built from the embedded
// grammar.  It is built on first use and shared read-only afterwards.
func DefaultParser() (*syntax.Parser, error) {
	defaultOnce.Do(func() {
		defaultParser, defaultParserErr = NewParser("", false)
	})

	return defaultParser, defaultParserErr
}
