package vm

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/ComedicChimera/minimini/src/ast"
	"github.com/ComedicChimera/minimini/src/bytecode"
	"github.com/ComedicChimera/minimini/src/lang"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.Program {
	t.Helper()

	tokens, err := lang.ScanString(src)
	require.NoError(t, err)

	p, err := lang.DefaultParser()
	require.NoError(t, err)

	raw, err := p.Parse(tokens)
	require.NoError(t, err)

	root, err := lang.Canonicalize(raw)
	require.NoError(t, err)

	prog, err := bytecode.Compile(root)
	require.NoError(t, err)
	return prog
}

func run(t *testing.T, src string) (string, map[string]int64) {
	t.Helper()

	out := &bytes.Buffer{}
	vars, err := New(compile(t, src)).Execute(out)
	require.NoError(t, err)
	return out.String(), vars
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "minimini.vm")
	defer teardown()

	prog := compile(t, "a; a = 3; print(a);")
	m := New(prog)
	require.Same(t, prog, m.Program())
	require.Equal(t, map[string]int64{"a": 0}, m.Variables())

	out := &bytes.Buffer{}
	vars, err := m.Execute(out)
	require.NoError(t, err)
	require.Equal(t, "3\n", out.String())
	require.Equal(t, map[string]int64{"a": 3}, vars)

	// halting resets the machine
	require.Equal(t, map[string]int64{"a": 0}, m.Variables())
}

func TestLoop(t *testing.T) {
	out, vars := run(t, "a, b; a = 0; b = 0; while (5 >= b) { b = b + 1; a = a + b; }")
	require.Empty(t, out)
	require.Equal(t, map[string]int64{"a": 21, "b": 6}, vars)

	out, _ = run(t, "a, b; a = 1; while (5 >= b) { b = b + 1; a = a * b; print(a); }")
	require.Equal(t, "1\n2\n6\n24\n120\n720\n", out)
}

func TestBranches(t *testing.T) {
	cases := []struct {
		src, out string
	}{
		{"a; a = 3; if (a == 3) { print(1); } else { print(2); }", "1\n"},
		{"a; a = 4; if (a == 3) { print(1); } else { print(2); }", "2\n"},
		{"a; a = 5; if (a >= 5) print(1); else print(2);", "1\n"},
		{"a; a = 6; if (a >= 5) print(1); else print(2);", "1\n"},
		{"a; a = 4; if (a >= 5) print(1); else print(2);", "2\n"},
		{"a; a = 4; if (5 >= a) print(1); else print(2);", "1\n"},
		{"a; a = 1; if (a == 0) print(1); print(2);", "2\n"},
		{"a; a = 0; if (a == 0) print(1); print(2);", "1\n2\n"},
		{"a; if (a == 0) print(1); else print(2); print(3);", "1\n"},
		{"a; a = 1; if (a == 0) print(1); else print(2); print(3);", "2\n3\n"},
		{"a; while (3 >= a) a = a + 1; print(a);", "4\n"},
		{"a; if ((a == 0)) print(7);", "7\n"},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			out, _ := run(t, c.src)
			require.Equal(t, c.out, out)
		})
	}
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"a; a = 2 * 3 + 4;", 14},
		{"a; a = 10 - 4 - 3;", 9},
		{"a; a = 7 / 2;", 3},
		{"a; a = 0 - 7; a = a / 2;", -3},
		{"a; a = 4; a = 2 / a;", 0},
		{"a; a = (2 * 3) + 4;", 10},
		{"a; a = 100 / (2 + 3);", 20},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			_, vars := run(t, c.src)
			require.Equal(t, c.want, vars["a"])
		})
	}
}

func TestExecuteIsRepeatable(t *testing.T) {
	m := New(compile(t, "a, b; a = 1; while (5 >= b) { b = b + 1; a = a * b; print(a); }"))

	first := &bytes.Buffer{}
	firstVars, err := m.Execute(first)
	require.NoError(t, err)

	second := &bytes.Buffer{}
	secondVars, err := m.Execute(second)
	require.NoError(t, err)

	require.Equal(t, first.String(), second.String())
	require.Equal(t, firstVars, secondVars)
	require.Equal(t, int64(720), secondVars["a"])
}

func TestExecuteWithoutOutput(t *testing.T) {
	vars, err := New(compile(t, "a; a = 2; print(a);")).Execute(nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), vars["a"])
}

func TestRuntimeFaults(t *testing.T) {
	cases := []struct {
		name string
		prog *bytecode.Program
		want error
		ip   int
	}{
		{
			"division by zero",
			compile(t, "a; a = 5; a = 1 / 0;"),
			ErrDivisionByZero,
			4,
		},
		{
			"load of an undeclared variable",
			compile(t, "a; print(c);"),
			ErrUndeclared,
			0,
		},
		{
			"store to an undeclared variable",
			compile(t, "a; a = 1; b = 1;"),
			ErrUndeclared,
			3,
		},
		{
			"stack underflow",
			&bytecode.Program{Code: []bytecode.Instruction{{Op: bytecode.IConst, Const: 1}, {Op: bytecode.IAdd}}},
			ErrStackUnderflow,
			1,
		},
		{
			"unresolved label",
			&bytecode.Program{Code: []bytecode.Instruction{{Op: bytecode.Goto, Label: 0}}, Labels: []int{-1}},
			ErrUnresolvedLabel,
			0,
		},
		{
			"unknown label",
			&bytecode.Program{Code: []bytecode.Instruction{{Op: bytecode.Goto, Label: 2}}},
			ErrUnresolvedLabel,
			0,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := New(c.prog)

			vars, err := m.Execute(&bytes.Buffer{})
			require.Nil(t, vars)
			require.True(t, errors.Is(err, c.want))

			var re *RuntimeError
			require.True(t, errors.As(err, &re))
			require.Equal(t, c.ip, re.IP)
			require.Equal(t, c.prog.Code[c.ip], re.Op)

			// a fault resets the machine
			for _, v := range m.Variables() {
				require.Zero(t, v)
			}
			require.Zero(t, m.ip)
			require.Empty(t, m.stack)
		})
	}
}

// programGen builds random canonical programs that always terminate and never
// divide by zero.  Loops count up a counter of their own that nothing else
// assigns.
type programGen struct {
	r        *rand.Rand
	vars     []string
	counters int
}

func (g *programGen) number(max int) *ast.Node {
	return ast.New(ast.Number, fmt.Sprint(g.r.Intn(max)))
}

func (g *programGen) expr(depth int) *ast.Node {
	if depth == 0 || g.r.Intn(3) == 0 {
		if g.r.Intn(2) == 0 {
			return g.number(10)
		}

		return ast.New(ast.Name, g.vars[g.r.Intn(len(g.vars))])
	}

	switch g.r.Intn(4) {
	case 0:
		return ast.New(ast.Add, "", g.expr(depth-1), g.expr(depth-1))
	case 1:
		return ast.New(ast.Sub, "", g.expr(depth-1), g.expr(depth-1))
	case 2:
		return ast.New(ast.Mul, "", g.expr(depth-1), g.expr(depth-1))
	default:
		divisor := ast.New(ast.Number, fmt.Sprint(1+g.r.Intn(9)))
		return ast.New(ast.Div, "", divisor, g.expr(depth-1))
	}
}

func (g *programGen) cond() *ast.Node {
	kind := ast.Eq
	if g.r.Intn(2) == 0 {
		kind = ast.Ge
	}

	return ast.New(kind, "", g.expr(2), g.expr(2))
}

func (g *programGen) block(depth int) *ast.Node {
	block := ast.New(ast.Block, "")
	for i := g.r.Intn(4); i >= 0; i-- {
		block.AddChild(g.stmt(depth))
	}

	return block
}

func (g *programGen) stmt(depth int) *ast.Node {
	kind := g.r.Intn(5)
	if depth == 0 {
		kind %= 2
	}

	switch kind {
	case 0:
		target := ast.New(ast.Name, g.vars[g.r.Intn(len(g.vars))])
		return ast.New(ast.Assign, "", g.expr(3), target)
	case 1:
		return ast.New(ast.Print, "", g.expr(3))
	case 2:
		n := ast.New(ast.If, "", g.cond(), g.block(depth-1))
		if g.r.Intn(2) == 0 {
			n.AddChild(g.block(depth - 1))
		}

		return n
	case 3:
		elseNode := ast.New(ast.Else, "", g.block(depth-1))
		if g.r.Intn(2) == 0 {
			elseNode.AddChild(g.block(depth - 1))
		}

		return ast.New(ast.If, "", g.cond(), g.block(depth-1), elseNode)
	default:
		counter := fmt.Sprintf("c%d", g.counters)
		g.counters++

		body := g.block(depth - 1)
		body.AddChild(ast.New(ast.Assign, "",
			ast.New(ast.Add, "", ast.New(ast.Number, "1"), ast.New(ast.Name, counter)),
			ast.New(ast.Name, counter),
		))

		cond := ast.New(ast.Ge, "", ast.New(ast.Name, counter), g.number(4))
		n := ast.New(ast.While, "", body, cond)
		if g.r.Intn(2) == 0 {
			n.AddChild(g.block(depth - 1))
		}

		return n
	}
}

func (g *programGen) program() *ast.Node {
	g.counters = 0
	body := g.block(3)

	decl := ast.New(ast.Decl, "")
	for _, name := range g.vars {
		decl.AddChild(ast.New(ast.Name, name))
	}

	for i := 0; i < g.counters; i++ {
		decl.AddChild(ast.New(ast.Name, fmt.Sprintf("c%d", i)))
	}

	return ast.New(ast.Program, "", decl, body)
}

func TestRandomProgramsKeepTheStackBalanced(t *testing.T) {
	g := &programGen{r: rand.New(rand.NewSource(1)), vars: []string{"x", "y", "z"}}

	for i := 0; i < 200; i++ {
		root := g.program()

		prog, err := bytecode.Compile(root)
		require.NoError(t, err, ast.Format(root))

		for _, addr := range prog.Labels {
			require.GreaterOrEqual(t, addr, 0)
		}

		depths, err := prog.StackDepths()
		require.NoError(t, err)
		require.LessOrEqual(t, depths[len(prog.Code)], 0)

		m := New(prog)
		out := &bytes.Buffer{}
		m.out = out

		steps := 0
		for m.ip < len(prog.Code) {
			require.NoError(t, m.step(), ast.Format(root))

			steps++
			require.Less(t, steps, 1_000_000, "program does not terminate: %s", ast.Format(root))
		}

		require.Empty(t, m.stack, ast.Format(root))
		m.reset()
	}
}
