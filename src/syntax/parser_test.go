package syntax

import (
	"errors"
	"strings"
	"testing"

	"github.com/ComedicChimera/minimini/src/ast"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func mustGrammar(t *testing.T, text string) *Grammar {
	t.Helper()

	g, err := LoadGrammar(strings.NewReader(text), "$")
	require.NoError(t, err)
	return g
}

func sumTokens(kinds ...string) []*Token {
	tokens := make([]*Token, len(kinds))
	for i, k := range kinds {
		tokens[i] = &Token{Kind: k, Value: k, Line: 1, Col: 2 * i}
	}

	return tokens
}

// dumpRaw renders a raw tree as nested symbols: `S(E(E(n) + n))`
func dumpRaw(n *ast.Node) string {
	if n.IsLeaf() {
		return n.Symbol
	}

	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = dumpRaw(c)
	}

	return n.Symbol + "(" + strings.Join(parts, " ") + ")"
}

func TestParseBuildsRawTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "minimini.syntax")
	defer teardown()

	p := NewParser(buildSumTable(t))

	root, err := p.Parse(sumTokens("n", "+", "n", "+", "n", "$"))
	require.NoError(t, err)
	require.Equal(t, "S(E(E(E(n) + n) + n))", dumpRaw(root))
	require.True(t, root.Linked())
	require.Nil(t, root.Parent())
	require.Equal(t, ast.Raw, root.Kind)
}

func TestParseLeavesCarryTokens(t *testing.T) {
	p := NewParser(buildSumTable(t))

	root, err := p.Parse([]*Token{
		{Kind: "n", Value: "12", Line: 3, Col: 4},
		{Kind: "$", Line: 3, Col: 6},
	})
	require.NoError(t, err)

	leaf := root.Child(0).Child(0)
	require.Equal(t, "n", leaf.Symbol)
	require.Equal(t, "12", leaf.Value)
	require.Equal(t, 3, leaf.Pos.StartLn)
	require.Equal(t, 4, leaf.Pos.StartCol)
	require.Equal(t, 6, leaf.Pos.EndCol)
}

func TestParseErrorPosition(t *testing.T) {
	p := NewParser(buildSumTable(t))

	cases := []struct {
		kinds []string
		pos   int
	}{
		{[]string{"+", "n", "$"}, 0},
		{[]string{"n", "n", "$"}, 1},
		{[]string{"n", "+", "+", "$"}, 2},
		{[]string{"n", "+", "n", "n", "$"}, 3},
	}

	for _, c := range cases {
		_, err := p.Parse(sumTokens(c.kinds...))

		var se *SyntaxError
		require.True(t, errors.As(err, &se), "input %v", c.kinds)
		require.Equal(t, c.pos, se.Position, "input %v", c.kinds)
		require.Equal(t, c.kinds[c.pos], se.Token.Kind)
	}
}

func TestParseRunsOutOfInput(t *testing.T) {
	p := NewParser(buildSumTable(t))

	_, err := p.Parse(sumTokens("n", "+", "n"))

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 3, se.Position)
	require.Nil(t, se.Token)
	require.Contains(t, se.Error(), "end of input")

	_, err = p.Parse(nil)
	require.True(t, errors.As(err, &se))
	require.Equal(t, 0, se.Position)
}

func TestParserIsReusable(t *testing.T) {
	p := NewParser(buildSumTable(t))

	_, err := p.Parse(sumTokens("n", "n", "$"))
	require.Error(t, err)

	root, err := p.Parse(sumTokens("n", "$"))
	require.NoError(t, err)
	require.Equal(t, "S(E(n))", dumpRaw(root))
}
