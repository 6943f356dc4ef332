// Package build runs the front end of the interpreter: it turns program text
// into a loaded program ready to be executed.
package build

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ComedicChimera/minimini/src/ast"
	"github.com/ComedicChimera/minimini/src/bytecode"
	"github.com/ComedicChimera/minimini/src/lang"
	"github.com/ComedicChimera/minimini/src/logging"
	"github.com/ComedicChimera/minimini/src/syntax"
	"github.com/ComedicChimera/minimini/src/util"
	"github.com/ComedicChimera/minimini/src/vm"
)

// Compiler stores the state shared by every load: the parser (and so the
// parsing table) is built once and reused
type Compiler struct {
	parser *syntax.Parser
}

// NewCompiler creates a compiler around a parser for the language
func NewCompiler(parser *syntax.Parser) *Compiler {
	return &Compiler{parser: parser}
}

// DefaultCompiler creates a compiler around the shared default parser
func DefaultCompiler() (*Compiler, error) {
	parser, err := lang.DefaultParser()
	if err != nil {
		return nil, err
	}

	return NewCompiler(parser), nil
}

// LoadFile reads and loads the program stored at path
func (c *Compiler) LoadFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return c.Load(path, string(src))
}

// Load runs every stage of the front end over src.  Scanning and syntax errors
// are returned as *util.SourceError values; the other stages return their own
// error types.
func (c *Compiler) Load(name, src string) (*Program, error) {
	logging.LogStateChange("Scanning")
	tokens, err := lang.Scan(strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	logging.LogStateChange("Parsing")
	raw, err := c.parser.Parse(tokens)
	if err != nil {
		var se *syntax.SyntaxError
		if errors.As(err, &se) {
			return nil, wrapSyntaxError(se, tokens)
		}

		return nil, err
	}

	logging.LogStateChange("Canonicalizing")
	root, err := lang.Canonicalize(raw)
	if err != nil {
		return nil, err
	}

	warnDuplicateDecls(&logging.LogContext{FilePath: name, Source: src}, root.Child(0))

	logging.LogStateChange("Compiling")
	code, err := bytecode.Compile(root)
	if err != nil {
		return nil, err
	}

	return &Program{
		Name:    name,
		Source:  src,
		Tokens:  tokens,
		root:    root,
		machine: vm.New(code),
	}, nil
}

// warnDuplicateDecls logs a warning for every name declared more than once.
// Repeated names refer to the same variable.
func warnDuplicateDecls(lctx *logging.LogContext, decl *ast.Node) {
	seen := make(map[string]struct{})

	for _, name := range decl.Children {
		if _, ok := seen[name.Value]; ok {
			logging.LogWarning(lctx, fmt.Sprintf("variable `%s` is declared more than once", name.Value), "Declaration", name.Position())
			continue
		}

		seen[name.Value] = struct{}{}
	}
}

// wrapSyntaxError turns a syntax error into a source error positioned on the
// offending token
func wrapSyntaxError(se *syntax.SyntaxError, tokens []*syntax.Token) error {
	tok := se.Token
	if tok == nil && len(tokens) > 0 {
		tok = tokens[len(tokens)-1]
	}

	if tok == nil {
		return util.WrapSourceError(se, "Syntax", nil)
	}

	return util.WrapSourceError(se, "Syntax", syntax.TextPositionOfToken(tok))
}

// Load loads src with the default compiler
func Load(name, src string) (*Program, error) {
	c, err := DefaultCompiler()
	if err != nil {
		return nil, err
	}

	return c.Load(name, src)
}

// Program is a loaded program: its tokens, its canonical AST, its bytecode and
// the machine that runs it
type Program struct {
	Name   string
	Source string
	Tokens []*syntax.Token

	root    *ast.Node
	machine *vm.Machine
}

// AST returns the canonical AST of the program
func (p *Program) AST() *ast.Node {
	return p.root
}

// Bytecode returns the compiled program
func (p *Program) Bytecode() *bytecode.Program {
	return p.machine.Program()
}

// Execute runs the program once, writing printed values to out, and returns
// the final variable table
func (p *Program) Execute(out io.Writer) (map[string]int64, error) {
	return p.machine.Execute(out)
}

// Variables returns the current variable table of the program's machine
func (p *Program) Variables() map[string]int64 {
	return p.machine.Variables()
}

// Listing returns the instruction listing
func (p *Program) Listing() string {
	return p.Bytecode().Listing()
}

// LabelListing returns the label table listing
func (p *Program) LabelListing() string {
	return p.Bytecode().LabelListing()
}

// VariableListing returns the variable table in declaration order
func (p *Program) VariableListing() string {
	sb := strings.Builder{}
	vars := p.machine.Variables()

	for _, name := range p.Bytecode().Vars {
		sb.WriteString(fmt.Sprintf("Name: %s | Value: %d\n", name, vars[name]))
	}

	return sb.String()
}

// LogContext returns the context used to display errors about the program
func (p *Program) LogContext() *logging.LogContext {
	return &logging.LogContext{FilePath: p.Name, Source: p.Source}
}
