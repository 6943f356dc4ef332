package lang

import (
	"fmt"
	"strings"

	"github.com/ComedicChimera/minimini/src/ast"
	"github.com/ComedicChimera/minimini/src/util"
)

// nonterminals of the language grammar
const (
	symProg  = "PROG"
	symDecl  = "DECL"
	symStmt  = "STMT"
	symExpr  = "EXPR"
	symCond  = "COND"
	symBinop = "BINOP"
	symComp  = "COMP"
)

// ShapeError is returned when a raw node does not have the shape of any
// production of the language grammar
type ShapeError struct {
	Symbol string
	Shape  string
	Pos    *util.TextPosition
}

func (se *ShapeError) Error() string {
	msg := fmt.Sprintf("unexpected `%s` node with children [%s]", se.Symbol, se.Shape)
	if se.Pos != nil {
		msg += fmt.Sprintf(" at (Ln: %d, Col: %d)", se.Pos.StartLn, se.Pos.StartCol+1)
	}

	return msg
}

func shapeError(n *ast.Node) error {
	return &ShapeError{Symbol: n.Symbol, Shape: shape(n), Pos: n.Position()}
}

// shape returns the grammar symbols of the children of a raw node
func shape(n *ast.Node) string {
	syms := make([]string, len(n.Children))
	for i, c := range n.Children {
		if c.IsRaw() {
			syms[i] = c.Symbol
		} else {
			syms[i] = c.Kind.String()
		}
	}

	return strings.Join(syms, " ")
}

// Canonicalize rewrites a raw parse tree into the canonical AST: a Program node
// holding a flat Decl node and a Block of statements.  Raw nodes are retagged
// and rewired in place and the returned root is the input root.  A tree that is
// already canonical is returned unchanged.
func Canonicalize(root *ast.Node) (*ast.Node, error) {
	if !root.IsRaw() {
		if root.Kind == ast.Program {
			return root, nil
		}

		return nil, fmt.Errorf("cannot canonicalize a detached `%s` node", root.Kind)
	}

	if root.Symbol != symProg || shape(root) != symDecl+" "+symStmt {
		return nil, shapeError(root)
	}

	decl, err := canonDecl(root.Child(0))
	if err != nil {
		return nil, err
	}

	body, err := canonStmt(root.Child(1))
	if err != nil {
		return nil, err
	}

	if body.Kind != ast.Block {
		body = ast.New(ast.Block, "", body)
	}

	rebuild(root, ast.Program, decl, body)
	tracer().Debugf("canonicalized program: %d declarations", len(decl.Children))
	return root, nil
}

// rebuild retags n and replaces its children by the given nodes
func rebuild(n *ast.Node, kind ast.Kind, children ...*ast.Node) *ast.Node {
	for len(n.Children) > 0 {
		n.RemoveChild(n.Children[len(n.Children)-1])
	}

	n.Retag(kind)
	for _, c := range children {
		n.AddChild(c)
	}

	return n
}

// flattenBlock splices the statements of every nested block into the block n
func flattenBlock(n *ast.Node) *ast.Node {
	for _, c := range append([]*ast.Node(nil), n.Children...) {
		if c.Kind == ast.Block {
			n.Splice(c, append([]*ast.Node(nil), c.Children...))
		}
	}

	return n
}

// canonDecl folds a declaration chain into one Decl node of names
func canonDecl(n *ast.Node) (*ast.Node, error) {
	if n.Kind == ast.Decl {
		return n, nil
	}

	var names []*ast.Node
	for curr := n; ; {
		if !curr.IsRaw() || curr.Symbol != symDecl {
			return nil, shapeError(curr)
		}

		switch shape(curr) {
		case NAME + " " + COMMA + " " + symDecl:
			names = append(names, leaf(curr.Child(0), ast.Name))
			curr = curr.Child(2)
			continue
		case NAME + " " + SEMICOLON:
			names = append(names, leaf(curr.Child(0), ast.Name))
		default:
			return nil, shapeError(curr)
		}

		break
	}

	return rebuild(n, ast.Decl, names...), nil
}

// leaf retags a terminal leaf
func leaf(n *ast.Node, kind ast.Kind) *ast.Node {
	n.Retag(kind)
	return n
}

// canonStmt canonicalizes a statement node
func canonStmt(n *ast.Node) (*ast.Node, error) {
	if !n.IsRaw() {
		return n, nil
	}

	if n.Symbol != symStmt {
		return nil, shapeError(n)
	}

	switch shape(n) {
	case symStmt + " " + symStmt:
		first, err := canonStmt(n.Child(0))
		if err != nil {
			return nil, err
		}

		rest, err := canonStmt(n.Child(1))
		if err != nil {
			return nil, err
		}

		return flattenBlock(rebuild(n, ast.Block, first, rest)), nil
	case NAME + " " + EQUAL + " " + symExpr + " " + SEMICOLON:
		expr, err := canonExpr(n.Child(2))
		if err != nil {
			return nil, err
		}

		return rebuild(n, ast.Assign, expr, leaf(n.Child(0), ast.Name)), nil
	case PRINT + " " + LPAREN + " " + symExpr + " " + RPAREN + " " + SEMICOLON:
		expr, err := canonExpr(n.Child(2))
		if err != nil {
			return nil, err
		}

		return rebuild(n, ast.Print, expr), nil
	case WHILE + " " + LPAREN + " " + symCond + " " + RPAREN + " " + symStmt:
		cond, err := canonCond(n.Child(2))
		if err != nil {
			return nil, err
		}

		body, trailing, err := canonBody(n.Child(4))
		if err != nil {
			return nil, err
		}

		if trailing != nil {
			return rebuild(n, ast.While, body, cond, trailing), nil
		}

		return rebuild(n, ast.While, body, cond), nil
	case IF + " " + LPAREN + " " + symCond + " " + RPAREN + " " + symStmt:
		cond, err := canonCond(n.Child(2))
		if err != nil {
			return nil, err
		}

		body, trailing, err := canonBody(n.Child(4))
		if err != nil {
			return nil, err
		}

		if trailing != nil {
			return rebuild(n, ast.If, cond, body, trailing), nil
		}

		return rebuild(n, ast.If, cond, body), nil
	case IF + " " + LPAREN + " " + symCond + " " + RPAREN + " " + symStmt + " " + ELSE + " " + symStmt:
		cond, err := canonCond(n.Child(2))
		if err != nil {
			return nil, err
		}

		body, err := canonStmt(n.Child(4))
		if err != nil {
			return nil, err
		}

		elseBody, trailing, err := canonBody(n.Child(6))
		if err != nil {
			return nil, err
		}

		// the else marker leaf becomes the else node
		elseNode := leaf(n.Child(5), ast.Else)
		elseNode.Value = ""
		if trailing != nil {
			rebuild(elseNode, ast.Else, elseBody, trailing)
		} else {
			rebuild(elseNode, ast.Else, elseBody)
		}

		return rebuild(n, ast.If, cond, body, elseNode), nil
	case LBRACE + " " + symStmt + " " + RBRACE:
		inner, err := canonStmt(n.Child(1))
		if err != nil {
			return nil, err
		}

		return flattenBlock(rebuild(n, ast.Block, inner)), nil
	}

	return nil, shapeError(n)
}

// canonBody canonicalizes the statement closing a while or an if.  Statements
// chain to the right, so a body followed by more statements arrives as a
// `STMT STMT` node: the first statement is the body and the rest trails it.
func canonBody(n *ast.Node) (body, trailing *ast.Node, err error) {
	if n.IsRaw() && shape(n) == symStmt+" "+symStmt {
		if body, err = canonStmt(n.Child(0)); err != nil {
			return
		}

		trailing, err = canonStmt(n.Child(1))
		return
	}

	body, err = canonStmt(n)
	return
}

var binops = map[string]ast.Kind{
	PLUS:  ast.Add,
	MINUS: ast.Sub,
	MUL:   ast.Mul,
	DIV:   ast.Div,
}

var comparisons = map[string]ast.Kind{
	DEQUAL:       ast.Eq,
	GREATEREQUAL: ast.Ge,
}

// canonExpr canonicalizes an expression.  Operator nodes hold their operands
// as [second, first].
func canonExpr(n *ast.Node) (*ast.Node, error) {
	if !n.IsRaw() {
		return n, nil
	}

	if n.Symbol != symExpr {
		return nil, shapeError(n)
	}

	switch shape(n) {
	case NUMBER:
		return leaf(n.Child(0), ast.Number), nil
	case NAME:
		return leaf(n.Child(0), ast.Name), nil
	case LPAREN + " " + symExpr + " " + RPAREN:
		return canonExpr(n.Child(1))
	case symExpr + " " + symBinop + " " + symExpr:
		kind, err := operator(n.Child(1), symBinop, binops)
		if err != nil {
			return nil, err
		}

		first, err := canonExpr(n.Child(0))
		if err != nil {
			return nil, err
		}

		second, err := canonExpr(n.Child(2))
		if err != nil {
			return nil, err
		}

		return rebuild(n, kind, second, first), nil
	}

	return nil, shapeError(n)
}

// canonCond canonicalizes a condition into a comparison node holding its
// operands as [second, first]
func canonCond(n *ast.Node) (*ast.Node, error) {
	if !n.IsRaw() {
		if !n.Kind.IsComparison() {
			return nil, fmt.Errorf("expected a comparison but got `%s`", n.Kind)
		}

		return n, nil
	}

	if n.Symbol != symCond {
		return nil, shapeError(n)
	}

	switch shape(n) {
	case LPAREN + " " + symCond + " " + RPAREN:
		return canonCond(n.Child(1))
	case symExpr + " " + symComp + " " + symExpr:
		kind, err := operator(n.Child(1), symComp, comparisons)
		if err != nil {
			return nil, err
		}

		first, err := canonExpr(n.Child(0))
		if err != nil {
			return nil, err
		}

		second, err := canonExpr(n.Child(2))
		if err != nil {
			return nil, err
		}

		return rebuild(n, kind, second, first), nil
	}

	return nil, shapeError(n)
}

// operator returns the kind of the operator wrapped by a BINOP or COMP node
func operator(n *ast.Node, sym string, kinds map[string]ast.Kind) (ast.Kind, error) {
	if n.IsRaw() && n.Symbol == sym && len(n.Children) == 1 {
		if kind, ok := kinds[n.Child(0).Symbol]; ok {
			return kind, nil
		}
	}

	return ast.Raw, shapeError(n)
}
