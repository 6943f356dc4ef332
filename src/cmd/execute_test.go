package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ComedicChimera/minimini/src/logging"
	"github.com/stretchr/testify/require"
)

func runMain(t *testing.T, args ...string) (int, string) {
	t.Helper()

	out := &bytes.Buffer{}
	code := Main(args, out)

	logging.SetOutput(os.Stdout)
	logging.Initialize(logging.LogLevelError)
	return code, out.String()
}

func TestMainRun(t *testing.T) {
	path := writeProgram(t, "fac.mm", "a, b; a = 1; while (5 >= b) { b = b + 1; a = a * b; print(a); }")

	code, out := runMain(t, "run", path)
	require.Equal(t, 0, code)
	require.Equal(t, "1\n2\n6\n24\n120\n720\n", out)
}

func TestMainRunReportsWarnings(t *testing.T) {
	path := writeProgram(t, "dup.mm", "a, a; a = 2; print(a);")

	code, out := runMain(t, "run", "-log", "warn", path)
	require.Equal(t, 0, code)
	require.Contains(t, out, "--- Declaration Warning")
	require.Contains(t, out, "Load Succeeded (0 errors, 1 warnings)")
	require.Contains(t, out, "2\n")

	code, out = runMain(t, "run", path)
	require.Equal(t, 0, code)
	require.Equal(t, "2\n", out)
}

func TestMainRunReportsErrors(t *testing.T) {
	code, out := runMain(t, "run", writeProgram(t, "bad.mm", "a; a = 3 3;"))
	require.Equal(t, 1, code)
	require.Contains(t, out, "--- Syntax Error")
	require.Contains(t, out, "Load Failed (1 errors, 0 warnings)")

	code, out = runMain(t, "run", writeProgram(t, "div.mm", "a; a = 1 / 0;"))
	require.Equal(t, 1, code)
	require.Contains(t, out, "division by zero")

	code, _ = runMain(t, "run")
	require.Equal(t, 1, code)

	code, out = runMain(t, "run", "-log", "loud", "x.mm")
	require.Equal(t, 1, code)
	require.Contains(t, out, "invalid log level")

	code, _ = runMain(t, "run", filepath.Join(t.TempDir(), "missing.mm"))
	require.Equal(t, 1, code)
}

func TestMainRunWithCachedTable(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "minimini.ptable")
	path := writeProgram(t, "round_trip.mm", "a; a = 3; print(a);")

	for i := 0; i < 2; i++ {
		code, out := runMain(t, "run", "-table", cache, path)
		require.Equal(t, 0, code)
		require.Equal(t, "3\n", out)
		require.FileExists(t, cache)
	}

	code, _ := runMain(t, "run", "-table", cache, "-f", path)
	require.Equal(t, 0, code)
}

func TestMainTable(t *testing.T) {
	code, out := runMain(t, "table")
	require.Equal(t, 0, code)
	require.Contains(t, out, "r0: PROG/3\n")
	require.NotContains(t, out, "state 0")

	code, out = runMain(t, "table", "-states")
	require.Equal(t, 0, code)
	require.Contains(t, out, "state 0\n")
	require.Contains(t, out, "(accept)")
}

func TestMainConform(t *testing.T) {
	code, out := runMain(t, "conform", "-dir", filepath.Join("..", "conformance", "testdata"))
	require.Equal(t, 0, code, out)
	require.Contains(t, out, "Failed: 0")
}

func TestMainHelp(t *testing.T) {
	code, out := runMain(t)
	require.Equal(t, 1, code)
	require.Contains(t, out, "minimini <command> [arguments]")

	code, out = runMain(t, "help")
	require.Equal(t, 0, code)
	require.Equal(t, helpMessage, out)

	code, out = runMain(t, "bogus")
	require.Equal(t, 1, code)
	require.Contains(t, out, "unknown command `bogus`")

	code, _ = runMain(t, "run", "-h")
	require.Equal(t, 0, code)
}
