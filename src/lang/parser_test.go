package lang

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ComedicChimera/minimini/src/ast"
	"github.com/ComedicChimera/minimini/src/syntax"
	"github.com/stretchr/testify/require"
)

func TestLanguageGrammar(t *testing.T) {
	g, err := Grammar()
	require.NoError(t, err)

	require.Len(t, g.Productions, 22)
	require.Equal(t, "PROG -> DECL STMT $", g.Production(0).String())
	require.Equal(t, "STMT -> STMT STMT", g.Production(11).String())
	require.Equal(t, "STMT -> if lparen COND rparen STMT else STMT", g.Production(16).String())
	require.Equal(t, "COMP -> greater_equal", g.Production(21).String())
	require.Len(t, g.Terminals, 20)
}

func TestLanguageAutomatonHasNoReduceConflicts(t *testing.T) {
	a, err := Automaton()
	require.NoError(t, err)

	// only the state after `DECL STMT $` accepts
	accepting := a.Accepting()
	require.Len(t, accepting, 1)
	require.Equal(t, 0, accepting[0].Reduce.ID)

	// the end terminal is only ever read by an accept
	pt := syntax.BuildTable(a)
	for _, tr := range a.Transitions {
		if tr.Symbol == EndKind {
			require.Equal(t, syntax.AKAccept, pt.Lookup(tr.From, EndKind).Kind)
			require.True(t, a.States[tr.To].Accepting)
		}
	}
}

func TestParseErrorPositions(t *testing.T) {
	p, err := DefaultParser()
	require.NoError(t, err)

	cases := []struct {
		src  string
		pos  int
		kind string
	}{
		{"a; a = ; print(a);", 4, SEMICOLON},
		{"a = 3;", 1, EQUAL},
		{"a; print(a)", 6, EndKind},
		{"a; a = 3 3;", 5, NUMBER},
		{"a; if (a) print(a);", 5, RPAREN},
		{"a; }", 2, RBRACE},
	}

	for _, c := range cases {
		tokens, err := ScanString(c.src)
		require.NoError(t, err)

		_, err = p.Parse(tokens)

		var se *syntax.SyntaxError
		require.True(t, errors.As(err, &se), c.src)
		require.Equal(t, c.pos, se.Position, c.src)
		require.Equal(t, c.kind, se.Token.Kind, c.src)
	}
}

func TestCachedTableParsesIdentically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimini.ptable")

	built, err := NewParser(path, false)
	require.NoError(t, err)
	require.FileExists(t, path)

	cached, err := NewParser(path, false)
	require.NoError(t, err)
	require.Equal(t, built.Table().String(), cached.Table().String())

	forced, err := NewParser(path, true)
	require.NoError(t, err)
	require.Equal(t, built.Table().String(), forced.Table().String())

	src := "a, b; a = 1; while (5 >= a) { a = a + 1; } if (a == 6) print(a); else print(b);"
	tokens, err := ScanString(src)
	require.NoError(t, err)

	want, err := built.Parse(tokens)
	require.NoError(t, err)
	got, err := cached.Parse(tokens)
	require.NoError(t, err)
	require.Equal(t, ast.Format(want), ast.Format(got))
}

func TestDefaultParserIsShared(t *testing.T) {
	p1, err := DefaultParser()
	require.NoError(t, err)
	p2, err := DefaultParser()
	require.NoError(t, err)
	require.Same(t, p1, p2)
}
