package cmd

import (
	"fmt"
	"io"
)

const helpMessage = `
minimini is an interpreter for the MiniMini toy language

Usage:

	minimini <command> [arguments]

The commands are:

	run        load a program and run it
	repl       start the interactive shell
	table      print the parsing table of the language
	conform    run YAML conformance suites
	help       print this message

Every command accepts:

	-log       log level { silent | error | warn | verbose }
	-trace     developer tracing level { Error | Info | Debug }
	-table     parsing table cache file
	-f         rebuild the parsing table cache
`

// printHelpMessage prints the general purpose help message
func printHelpMessage(w io.Writer) {
	fmt.Fprint(w, helpMessage)
}

const shellHelpMessage = `+ print help: -help
+ exit interpreter: exit
+ load program: load [program name]
+ execute program: execute
+ render ast: render_ast
+ render bytecode sequence: print_bseq`

const shellBanner = `/-----------------------/
MiniMini-Java-Interpreter
  Enter -help for help
/-----------------------/`
