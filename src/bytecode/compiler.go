package bytecode

import (
	"fmt"
	"strconv"

	"github.com/ComedicChimera/minimini/src/ast"
)

// CompileError is returned when the tree handed to the compiler is not a
// canonical program
type CompileError struct {
	Node    *ast.Node
	Message string
}

func (ce *CompileError) Error() string {
	if pos := ce.Node.Position(); pos != nil {
		return fmt.Sprintf("compile: %s at (Ln: %d, Col: %d)", ce.Message, pos.StartLn, pos.StartCol+1)
	}

	return "compile: " + ce.Message
}

// Compiler linearizes a canonical AST into a program
type Compiler struct {
	program *Program
}

// Compile compiles a canonical program tree (a Program node holding a Decl
// and a Block).  The returned program has every label resolved.
func Compile(root *ast.Node) (*Program, error) {
	if root.Kind != ast.Program || len(root.Children) != 2 ||
		root.Child(0).Kind != ast.Decl || root.Child(1).Kind != ast.Block {
		return nil, &CompileError{Node: root, Message: fmt.Sprintf("expected a program but got `%s`", ast.Format(root))}
	}

	c := &Compiler{program: &Program{}}

	if err := c.declare(root.Child(0)); err != nil {
		return nil, err
	}

	if err := c.compile(root.Child(1)); err != nil {
		return nil, err
	}

	if err := c.program.Validate(); err != nil {
		return nil, err
	}

	tracer().Infof("compiled %d instructions, %d labels", len(c.program.Code), len(c.program.Labels))
	return c.program, nil
}

// declare collects the declared variable names
func (c *Compiler) declare(decl *ast.Node) error {
	seen := make(map[string]struct{})

	for _, name := range decl.Children {
		if name.Kind != ast.Name {
			return c.unexpected(name)
		}

		if _, ok := seen[name.Value]; !ok {
			seen[name.Value] = struct{}{}
			c.program.Vars = append(c.program.Vars, name.Value)
		}
	}

	return nil
}

func (c *Compiler) unexpected(n *ast.Node) error {
	return &CompileError{Node: n, Message: fmt.Sprintf("unexpected `%s` node", n.Kind)}
}

// emit adds an instruction and returns its address
func (c *Compiler) emit(ins Instruction) int {
	c.program.Code = append(c.program.Code, ins)
	return len(c.program.Code) - 1
}

// here is the address of the next instruction
func (c *Compiler) here() int {
	return len(c.program.Code)
}

// newLabel adds a label with the given address (-1 for unresolved)
func (c *Compiler) newLabel(addr int) int {
	c.program.Labels = append(c.program.Labels, addr)
	return len(c.program.Labels) - 1
}

// patchLabel resolves a label to the current address.  A label is resolved
// exactly once: resolving it again is reported against n.
func (c *Compiler) patchLabel(n *ast.Node, label int) error {
	if c.program.Labels[label] != -1 {
		return &CompileError{Node: n, Message: fmt.Sprintf("label L%d resolved twice", label)}
	}

	c.program.Labels[label] = c.here()
	return nil
}

// compile emits the code of a statement or an expression
func (c *Compiler) compile(n *ast.Node) error {
	switch n.Kind {
	case ast.Block:
		for _, stmt := range n.Children {
			if err := c.compile(stmt); err != nil {
				return err
			}
		}
	case ast.Assign:
		if len(n.Children) != 2 || n.Child(1).Kind != ast.Name {
			return c.unexpected(n)
		}

		if err := c.compile(n.Child(0)); err != nil {
			return err
		}

		c.emit(Instruction{Op: IStore, Name: n.Child(1).Value})
	case ast.Print:
		if len(n.Children) != 1 {
			return c.unexpected(n)
		}

		if err := c.compile(n.Child(0)); err != nil {
			return err
		}

		c.emit(Instruction{Op: Print})
	case ast.Number:
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return &CompileError{Node: n, Message: fmt.Sprintf("invalid number `%s`", n.Value)}
		}

		c.emit(Instruction{Op: IConst, Const: v})
	case ast.Name:
		c.emit(Instruction{Op: ILoad, Name: n.Value})
	case ast.While:
		return c.compileWhile(n)
	case ast.If:
		return c.compileIf(n)
	default:
		if n.Kind.IsBinaryOp() {
			return c.compileBinaryOp(n)
		}

		return c.unexpected(n)
	}

	return nil
}

var binaryOps = map[ast.Kind]Opcode{
	ast.Add: IAdd,
	ast.Sub: ISub,
	ast.Mul: IMul,
	ast.Div: IDiv,
}

// operator nodes hold [second, first]: the first operand is pushed first so
// that it is the `a` of `a b -- (a op b)`
func (c *Compiler) compileBinaryOp(n *ast.Node) error {
	if len(n.Children) != 2 {
		return c.unexpected(n)
	}

	if err := c.compile(n.Child(1)); err != nil {
		return err
	}

	if err := c.compile(n.Child(0)); err != nil {
		return err
	}

	c.emit(Instruction{Op: binaryOps[n.Kind]})
	return nil
}

// compileCond emits a comparison that jumps to label unless it holds.
// Comparison nodes hold [second, first] and the second operand is pushed
// first, so the code after the jump runs iff `first OP second`.
func (c *Compiler) compileCond(n *ast.Node, label int) error {
	var op Opcode

	switch n.Kind {
	case ast.Eq:
		op = ICmpE
	case ast.Ge:
		op = ICmpGe
	default:
		return &CompileError{Node: n, Message: fmt.Sprintf("expected a comparison but got `%s`", n.Kind)}
	}

	if len(n.Children) != 2 {
		return c.unexpected(n)
	}

	if err := c.compile(n.Child(0)); err != nil {
		return err
	}

	if err := c.compile(n.Child(1)); err != nil {
		return err
	}

	c.emit(Instruction{Op: op, Label: label})
	return nil
}

// While[body, cond] or While[body, cond, trailing]
func (c *Compiler) compileWhile(n *ast.Node) error {
	if len(n.Children) < 2 || len(n.Children) > 3 {
		return c.unexpected(n)
	}

	entry := c.newLabel(c.here())
	exit := c.newLabel(-1)

	if err := c.compileCond(n.Child(1), exit); err != nil {
		return err
	}

	if err := c.compile(n.Child(0)); err != nil {
		return err
	}

	c.emit(Instruction{Op: Goto, Label: entry})
	if err := c.patchLabel(n, exit); err != nil {
		return err
	}

	if trailing := n.Child(2); trailing != nil {
		return c.compile(trailing)
	}

	return nil
}

// If[cond, body], If[cond, body, trailing] or If[cond, body, Else[...]]
func (c *Compiler) compileIf(n *ast.Node) error {
	if len(n.Children) < 2 || len(n.Children) > 3 {
		return c.unexpected(n)
	}

	skipBody := c.newLabel(-1)

	if err := c.compileCond(n.Child(0), skipBody); err != nil {
		return err
	}

	if err := c.compile(n.Child(1)); err != nil {
		return err
	}

	third := n.Child(2)
	if third == nil || third.Kind != ast.Else {
		if err := c.patchLabel(n, skipBody); err != nil {
			return err
		}

		if third != nil {
			return c.compile(third)
		}

		return nil
	}

	// Else[body] or Else[body, trailing]: the trailing statement only runs
	// after the else body
	if len(third.Children) < 1 || len(third.Children) > 2 {
		return c.unexpected(third)
	}

	skipElse := c.newLabel(-1)
	c.emit(Instruction{Op: Goto, Label: skipElse})
	if err := c.patchLabel(n, skipBody); err != nil {
		return err
	}

	for _, stmt := range third.Children {
		if err := c.compile(stmt); err != nil {
			return err
		}
	}

	return c.patchLabel(n, skipElse)
}
