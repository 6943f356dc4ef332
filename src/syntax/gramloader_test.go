package syntax

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadGrammarNumbersAlternatives(t *testing.T) {
	g, err := LoadGrammar(strings.NewReader(`
		A : 'x' B | B ;  // trailing comment
		B:'y';
	`), "$")
	require.NoError(t, err)

	require.Len(t, g.Productions, 3)
	require.Equal(t, "A -> x B", g.Production(0).String())
	require.Equal(t, "A -> B", g.Production(1).String())
	require.Equal(t, "B -> y", g.Production(2).String())
}

func TestLoadGrammarErrors(t *testing.T) {
	cases := []struct {
		name, text, msg string
	}{
		{"empty", "// nothing here\n", "no productions"},
		{"unclosed", "A : 'x'", "not closed"},
		{"unterminated terminal", "A : 'x ;", "malformed terminal"},
		{"empty alternative", "A : 'x' | ;", "empty alternative"},
		{"empty terminal", "A : '' ;", "malformed terminal"},
		{"stray rune", "A : 'x' # ;", "unexpected token '#'"},
		{"missing colon", "A 'x' ;", "unexpected token"},
		{"single slash", "/ A : 'x' ;", "unexpected token '/'"},
		{"undefined", "A : 'x' B ;", "undefined nonterminal `B`"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadGrammar(strings.NewReader(c.text), "$")
			require.Error(t, err)
			require.Contains(t, err.Error(), c.msg)

			var ge *GrammarError
			require.True(t, errors.As(err, &ge))
		})
	}
}

func TestLoadGrammarErrorPosition(t *testing.T) {
	_, err := LoadGrammar(strings.NewReader("A : 'x' ;\nB : 'y' ? ;"), "$")

	var ge *GrammarError
	require.True(t, errors.As(err, &ge))
	require.Equal(t, 2, ge.Line)
	require.Equal(t, 9, ge.Col)
}
