package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/minimini/src/build"
	"github.com/ComedicChimera/minimini/src/conformance"
	"github.com/ComedicChimera/minimini/src/lang"
	"github.com/ComedicChimera/minimini/src/logging"
	"github.com/ComedicChimera/minimini/src/syntax"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// traceKeys are the tracers configured by the -trace flag
var traceKeys = []string{"minimini.syntax", "minimini.lang", "minimini.bytecode", "minimini.vm"}

// Execute should be called from main and runs the subcommand given on the
// command line
func Execute() {
	os.Exit(Main(os.Args[1:], os.Stdout))
}

// Main runs a subcommand and returns the exit status
func Main(args []string, out io.Writer) int {
	// ensure that a subcommand is passed
	if len(args) < 1 {
		fmt.Fprint(out, helpMessage)
		return 1
	}

	logging.SetOutput(out)

	// if any of these functions return some kind of error, we display it and
	// exit with status code 1, otherwise exit successfully
	var err error

	switch args[0] {
	case "run":
		err = run(args[1:], out)
	case "repl":
		err = repl(args[1:], out)
	case "table":
		err = table(args[1:], out)
	case "conform":
		err = conform(args[1:], out)
	case "help", "-help", "--help", "-h":
		printHelpMessage(out)
	default:
		fmt.Fprintf(out, "unknown command `%s`\n", args[0])
		printHelpMessage(out)
		return 1
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(out, err)
		}

		return 1
	}

	return 0
}

// errReported is returned when the error has already been displayed
var errReported = errors.New("error reported")

// options are the flags shared by every subcommand
type options struct {
	logLevel   string
	traceLevel string
	tablePath  string
	force      bool
}

// newFlagSet creates the flag set of a subcommand with the shared flags
func newFlagSet(name string, out io.Writer, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&opts.logLevel, "log", "error", "Set the log level { silent | error | warn | verbose }")
	fs.StringVar(&opts.traceLevel, "trace", "", "Enable developer tracing at a level { Error | Info | Debug }")
	fs.StringVar(&opts.tablePath, "table", "", "Cache the parsing table in this file")
	fs.BoolVar(&opts.force, "f", false, "Rebuild the cached parsing table")

	return fs
}

// setup applies the shared flags and creates the parser
func (opts *options) setup() (*syntax.Parser, error) {
	level, err := logging.LevelFromString(opts.logLevel)
	if err != nil {
		return nil, err
	}

	logging.Initialize(level)

	if opts.traceLevel != "" {
		tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))

		traceLevel := tracing.TraceLevelFromString(opts.traceLevel)
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(traceLevel)
		}
	}

	return newParser(opts.tablePath, opts.force)
}

// newParser builds the language parser.  A grammar conflict is a defect of
// the interpreter itself.
func newParser(tablePath string, force bool) (*syntax.Parser, error) {
	parser, err := lang.NewParser(tablePath, force)

	var ce *syntax.ConflictError
	if errors.As(err, &ce) {
		logging.LogFatal(ce.Error())
	}

	return parser, err
}

// Execute a `run` command: load a program and run it once
func run(args []string, out io.Writer) error {
	opts := &options{}
	runCommand := newFlagSet("run", out, opts)

	if err := runCommand.Parse(args); err != nil {
		return err
	}

	if runCommand.NArg() != 1 {
		return errors.New("expecting exactly one argument which is the path to the program")
	}

	parser, err := opts.setup()
	if err != nil {
		return err
	}
	compiler := build.NewCompiler(parser)

	prog, err := loadFile(compiler, runCommand.Arg(0))
	if err != nil {
		return err
	}

	if _, err := prog.Execute(out); err != nil {
		logging.LogStdError(prog.LogContext(), err)
		return errReported
	}

	return nil
}

// loadFile loads a program and displays any error in it
func loadFile(compiler *build.Compiler, path string) (*build.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	prog, err := compiler.Load(path, string(src))
	if err != nil {
		logging.LogStdError(&logging.LogContext{FilePath: path, Source: string(src)}, err)
		logging.LogFinished()
		return nil, errReported
	}

	logging.LogFinished()
	return prog, nil
}

// Execute a `repl` command: start the interactive shell
func repl(args []string, out io.Writer) error {
	opts := &options{}
	replCommand := newFlagSet("repl", out, opts)

	if err := replCommand.Parse(args); err != nil {
		return err
	}

	parser, err := opts.setup()
	if err != nil {
		return err
	}
	compiler := build.NewCompiler(parser)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyFile)
	}

	return NewShell(compiler, out).Run(historyPath)
}

// Execute a `table` command: dump the automaton and the parsing table
func table(args []string, out io.Writer) error {
	opts := &options{}
	tableCommand := newFlagSet("table", out, opts)
	states := tableCommand.Bool("states", false, "Also dump the automaton states")

	if err := tableCommand.Parse(args); err != nil {
		return err
	}

	parser, err := opts.setup()
	if err != nil {
		return err
	}

	if *states {
		a, err := lang.Automaton()
		if err != nil {
			return err
		}

		fmt.Fprint(out, a)
		fmt.Fprintln(out)
	}

	fmt.Fprint(out, parser.Table())
	return nil
}

// Execute a `conform` command: run conformance suites
func conform(args []string, out io.Writer) error {
	opts := &options{}
	conformCommand := newFlagSet("conform", out, opts)
	dir := conformCommand.String("dir", conformance.TestPath, "Directory holding the YAML suites")

	if err := conformCommand.Parse(args); err != nil {
		return err
	}

	parser, err := opts.setup()
	if err != nil {
		return err
	}
	compiler := build.NewCompiler(parser)

	tests, err := conformance.LoadAllTests(*dir)
	if err != nil {
		return err
	}

	results := conformance.NewRunner(compiler).RunAll(tests)
	for _, result := range results {
		if !result.Passed && !result.Skipped {
			fmt.Fprintf(out, "FAIL %s/%s: %v\n", result.Test.File, result.Test.Test.Name, result.Error)
		}
	}

	stats := conformance.ComputeStats(results)
	fmt.Fprintln(out, conformance.FormatStats(stats))

	if stats.Failed > 0 {
		return errReported
	}

	return nil
}
