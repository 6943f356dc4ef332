package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ComedicChimera/minimini/src/build"
	"github.com/ComedicChimera/minimini/src/logging"
	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, name, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()

	c, err := build.DefaultCompiler()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logging.SetOutput(out)
	logging.Initialize(logging.LogLevelError)
	t.Cleanup(func() { logging.SetOutput(os.Stdout) })

	return NewShell(c, out), out
}

func TestShellNeedsAProgram(t *testing.T) {
	sh, out := newTestShell(t)

	for _, cmd := range []string{"execute", "render_ast", "print_bseq"} {
		out.Reset()
		require.False(t, sh.Handle(cmd))
		require.Equal(t, "No program found, please load a program before using "+cmd+"\n", out.String())
	}
}

func TestShellLoadAndExecute(t *testing.T) {
	sh, out := newTestShell(t)
	path := writeProgram(t, "round_trip.mm", "a; a = 3; print(a);")

	require.False(t, sh.Handle("load "+path))
	require.Equal(t, "Program '"+path+"' successfully loaded\n", out.String())
	require.NotNil(t, sh.Program())

	out.Reset()
	sh.Handle("execute")
	require.Equal(t, "3\nexit 0\n", out.String())

	// executing again starts from a reset machine
	out.Reset()
	sh.Handle("  execute  ")
	require.Equal(t, "3\nexit 0\n", out.String())

	out.Reset()
	sh.Handle("render_ast")
	require.True(t, strings.HasPrefix(out.String(), "[program]\n  [decl]\n    [name: 'a']\n"))

	out.Reset()
	sh.Handle("print_bseq")
	require.Equal(t, ""+
		"_____________________\n"+
		"Local variable table:\n"+
		"Name: a | Value: 0\n"+
		"_____________________\n"+
		"   0: iconst 3\n"+
		"   1: istore a\n"+
		"   2: iload a\n"+
		"   3: print\n", out.String())
}

func TestShellLoadErrors(t *testing.T) {
	sh, out := newTestShell(t)

	sh.Handle("load")
	require.Equal(t, "Usage: load [program name]\n", out.String())

	out.Reset()
	missing := filepath.Join(t.TempDir(), "missing.mm")
	sh.Handle("load " + missing)
	require.Equal(t, "File with name '"+missing+"' not found\n", out.String())

	good := writeProgram(t, "good.mm", "a; a = 1;")
	sh.Handle("load " + good)
	loaded := sh.Program()

	out.Reset()
	bad := writeProgram(t, "bad.mm", "a;\na = ; print(a);\n")
	sh.Handle("load " + bad)
	require.Contains(t, out.String(), "--- Syntax Error")
	require.Contains(t, out.String(), "2 | a = ; print(a);\n        ^\n")

	// the previous program stays loaded
	require.Same(t, loaded, sh.Program())
}

func TestShellRuntimeFault(t *testing.T) {
	sh, out := newTestShell(t)
	sh.Handle("load " + writeProgram(t, "div.mm", "a; print(1); a = 1 / 0;"))

	out.Reset()
	sh.Handle("execute")
	require.True(t, strings.HasPrefix(out.String(), "1\n"))
	require.Contains(t, out.String(), "division by zero")
	require.True(t, strings.HasSuffix(out.String(), "exit 1\n"))
}

func TestShellCommands(t *testing.T) {
	sh, out := newTestShell(t)

	require.False(t, sh.Handle(""))
	require.Empty(t, out.String())

	sh.Handle("-help")
	require.Equal(t, shellHelpMessage+"\n", out.String())

	out.Reset()
	sh.Handle("exectue")
	require.Equal(t, "Command not found!\nDid you mean: execute?\n", out.String())

	out.Reset()
	sh.Handle("frobnicate")
	require.Equal(t, "Command not found!\n", out.String())

	require.True(t, sh.Handle("exit"))
}

func TestSuggest(t *testing.T) {
	require.Equal(t, []string{"render_ast"}, suggest("render"))
	require.Equal(t, []string{"load"}, suggest("lod"))
	require.Empty(t, suggest("xyzzy"))
}

func TestComplete(t *testing.T) {
	require.Equal(t, []string{"exit", "execute"}, complete("ex"))
	require.Equal(t, []string{"print_bseq"}, complete("pr"))

	path := writeProgram(t, "loop.mm", "a;")
	require.Equal(t, []string{"load " + path}, complete("load "+strings.TrimSuffix(path, "op.mm")))
}
