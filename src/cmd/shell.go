package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ComedicChimera/minimini/src/ast"
	"github.com/ComedicChimera/minimini/src/build"
	"github.com/ComedicChimera/minimini/src/logging"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/peterh/liner"
)

const (
	prompt      = "(interp): "
	historyFile = ".minimini_history"
)

// shellCommands are the commands understood by the shell
var shellCommands = []string{"-help", "help", "exit", "load", "execute", "render_ast", "print_bseq"}

// Shell is the interactive command shell.  It holds at most one loaded
// program at a time.
type Shell struct {
	compiler *build.Compiler
	out      io.Writer
	prog     *build.Program
}

// NewShell creates a shell writing to out
func NewShell(compiler *build.Compiler, out io.Writer) *Shell {
	return &Shell{compiler: compiler, out: out}
}

// Program returns the loaded program (nil if none)
func (s *Shell) Program() *build.Program {
	return s.prog
}

// Run reads commands with line editing until `exit` or the end of input.
// History is read from and saved to historyPath if it is not empty.
func (s *Shell) Run(historyPath string) error {
	fmt.Fprintln(s.out, shellBanner)

	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)
	ln.SetCompleter(complete)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}

		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.out)
			return nil
		} else if err != nil {
			return err
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}

		if s.Handle(line) {
			return nil
		}
	}
}

// complete completes command names and, after `load`, file names
func complete(line string) []string {
	if strings.HasPrefix(line, "load ") {
		prefix := strings.TrimLeft(strings.TrimPrefix(line, "load "), " ")
		matches, _ := filepath.Glob(prefix + "*")

		completions := make([]string, 0, len(matches))
		for _, m := range matches {
			completions = append(completions, "load "+m)
		}

		return completions
	}

	var completions []string
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd, line) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

// Handle runs one command line and reports whether the shell should exit
func (s *Shell) Handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd := fields[0]; cmd {
	case "help", "-help":
		fmt.Fprintln(s.out, shellHelpMessage)
	case "exit":
		return true
	case "load":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, "Usage: load [program name]")
			break
		}

		s.load(fields[1])
	case "execute":
		if s.requireProgram(cmd) {
			s.execute()
		}
	case "render_ast":
		if s.requireProgram(cmd) {
			if err := ast.Dump(s.out, s.prog.AST()); err != nil {
				fmt.Fprintln(s.out, err)
			}
		}
	case "print_bseq":
		if s.requireProgram(cmd) {
			s.printBytecode()
		}
	default:
		fmt.Fprintln(s.out, "Command not found!")

		if suggestions := suggest(cmd); len(suggestions) > 0 {
			fmt.Fprintf(s.out, "Did you mean: %s?\n", strings.Join(suggestions, ", "))
		}
	}

	return false
}

// requireProgram checks that a program is loaded before running cmd
func (s *Shell) requireProgram(cmd string) bool {
	if s.prog == nil {
		fmt.Fprintf(s.out, "No program found, please load a program before using %s\n", cmd)
		return false
	}

	return true
}

// load replaces the loaded program.  A program that fails to load leaves the
// previous one in place.
func (s *Shell) load(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.out, "File with name '%s' not found\n", path)
		return
	}

	prog, err := s.compiler.Load(path, string(src))
	if err != nil {
		logging.LogStdError(&logging.LogContext{FilePath: path, Source: string(src)}, err)
		logging.LogFinished()
		return
	}

	logging.LogFinished()

	s.prog = prog
	fmt.Fprintf(s.out, "Program '%s' successfully loaded\n", path)
}

func (s *Shell) execute() {
	if _, err := s.prog.Execute(s.out); err != nil {
		logging.LogStdError(s.prog.LogContext(), err)
		fmt.Fprintln(s.out, "exit 1")
		return
	}

	fmt.Fprintln(s.out, "exit 0")
}

func (s *Shell) printBytecode() {
	fmt.Fprintln(s.out, "_____________________")
	fmt.Fprintln(s.out, "Local variable table:")
	fmt.Fprint(s.out, s.prog.VariableListing())
	fmt.Fprintln(s.out, "_____________________")
	fmt.Fprint(s.out, s.prog.Listing())
	fmt.Fprint(s.out, s.prog.LabelListing())
}

// suggest returns the commands closest to an unknown command: those it
// fuzzily matches first, then those within a small edit distance
func suggest(cmd string) []string {
	ranks := fuzzy.RankFindFold(cmd, shellCommands)
	sort.Sort(ranks)

	seen := make(map[string]bool)
	var suggestions []string
	for _, r := range ranks {
		if !seen[r.Target] {
			seen[r.Target] = true
			suggestions = append(suggestions, r.Target)
		}
	}

	for _, target := range shellCommands {
		if !seen[target] && fuzzy.LevenshteinDistance(strings.ToLower(cmd), target) <= 2 {
			seen[target] = true
			suggestions = append(suggestions, target)
		}
	}

	return suggestions
}
