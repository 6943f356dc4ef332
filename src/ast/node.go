package ast

import (
	"fmt"

	"github.com/ComedicChimera/minimini/src/util"
)

// Kind is the tag of an AST node.  Nodes built directly by the parser are Raw
// and carry the grammar symbol they were built from; canonicalization retags or
// replaces them with one of the fixed kinds that follow.
type Kind int

// Enumeration of the node kinds
const (
	Raw Kind = iota

	// containers
	Program
	Decl
	Block

	// statements
	Assign
	Print
	If
	Else
	While

	// binary operators
	Add
	Sub
	Mul
	Div

	// comparisons
	Eq
	Ge

	// leaves
	Name
	Number
)

var kindNames = [...]string{
	Raw:     "raw",
	Program: "program",
	Decl:    "decl",
	Block:   "block",
	Assign:  "assign",
	Print:   "print",
	If:      "if",
	Else:    "else",
	While:   "while",
	Add:     "plus",
	Sub:     "minus",
	Mul:     "mul",
	Div:     "div",
	Eq:      "d_equal",
	Ge:      "greater_equal",
	Name:    "name",
	Number:  "number",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// IsBinaryOp reports whether k is one of the arithmetic operators
func (k Kind) IsBinaryOp() bool {
	return k >= Add && k <= Div
}

// IsComparison reports whether k is one of the comparison operators
func (k Kind) IsComparison() bool {
	return k == Eq || k == Ge
}

// Node is a node of a syntax tree.  A node owns its children; the parent link
// is a back reference used while the tree is being rewritten and never for
// ownership.
type Node struct {
	Kind Kind

	// Symbol is the grammar symbol a raw node was built from (terminal kind for
	// leaves, left-hand side for reductions)
	Symbol string

	Value    string
	Children []*Node

	// Pos is the source position of a leaf (nil for nodes without a token)
	Pos *util.TextPosition

	parent *Node
}

// NewRaw creates a raw node for the given grammar symbol
func NewRaw(symbol, value string, pos *util.TextPosition) *Node {
	return &Node{Kind: Raw, Symbol: symbol, Value: value, Pos: pos}
}

// New creates a node of the given kind and adopts the given children in order
func New(kind Kind, value string, children ...*Node) *Node {
	n := &Node{Kind: kind, Value: value}

	for _, c := range children {
		n.AddChild(c)
	}

	return n
}

// Parent returns the node's parent (nil for a root or a detached node)
func (n *Node) Parent() *Node {
	return n.parent
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsRaw reports whether the node still has its grammar shape
func (n *Node) IsRaw() bool {
	return n.Kind == Raw
}

// Child returns the i-th child or nil if there is no such child
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}

	return n.Children[i]
}

// AddChild appends c to the children of n (detaching it from its old parent)
func (n *Node) AddChild(c *Node) {
	if c.parent != nil && c.parent != n {
		c.parent.RemoveChild(c)
	}

	c.parent = n
	n.Children = append(n.Children, c)
}

// ReplaceChild swaps old for repl in the children of n.  It returns false if
// old is not a child of n.
func (n *Node) ReplaceChild(old, repl *Node) bool {
	if n.indexOf(old) < 0 {
		return false
	}

	if old == repl {
		return true
	}

	if repl.parent != nil {
		repl.parent.RemoveChild(repl)
	}

	n.Children[n.indexOf(old)] = repl
	repl.parent = n
	old.parent = nil
	return true
}

// RemoveChild removes c from the children of n.  It returns false if c is not
// a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	i := n.indexOf(c)
	if i < 0 {
		return false
	}

	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	c.parent = nil
	return true
}

// Splice replaces the child c with the given nodes, keeping their order.  The
// nodes must not already be children of n.
func (n *Node) Splice(c *Node, with []*Node) bool {
	if n.indexOf(c) < 0 {
		return false
	}

	for _, w := range with {
		if w.parent != nil {
			w.parent.RemoveChild(w)
		}

		w.parent = n
	}

	i := n.indexOf(c)
	rest := append([]*Node{}, n.Children[i+1:]...)
	n.Children = append(append(n.Children[:i], with...), rest...)
	c.parent = nil
	return true
}

// Retag turns n into a node of the given kind (keeping children and value)
func (n *Node) Retag(kind Kind) {
	n.Kind = kind
}

func (n *Node) indexOf(c *Node) int {
	for i, child := range n.Children {
		if child == c {
			return i
		}
	}

	return -1
}

// Position returns the source range covered by the node.  Nodes without any
// positioned leaf return nil.
func (n *Node) Position() *util.TextPosition {
	if n.Pos != nil {
		return n.Pos
	}

	var first, last *util.TextPosition
	for _, c := range n.Children {
		if p := c.Position(); p != nil {
			if first == nil {
				first = p
			}
			last = p
		}
	}

	if first == nil {
		return nil
	}

	return &util.TextPosition{StartLn: first.StartLn, StartCol: first.StartCol, EndLn: last.EndLn, EndCol: last.EndCol}
}

// String returns a one line description of the node: `[kind: 'value']`
func (n *Node) String() string {
	label := n.Kind.String()
	if n.Kind == Raw {
		label = n.Symbol
	}

	if n.Value == "" {
		return "[" + label + "]"
	}

	return "[" + label + ": '" + n.Value + "']"
}

// Linked reports whether every node below n points back at its parent
func (n *Node) Linked() bool {
	for _, c := range n.Children {
		if c.parent != n || !c.Linked() {
			return false
		}
	}

	return true
}
