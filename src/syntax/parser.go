package syntax

import (
	"fmt"

	"github.com/ComedicChimera/minimini/src/ast"
)

// pendingGoto is pushed on the state stack after a reduction: the next step
// performs the goto on the reduced node instead of reading a token
const pendingGoto = -1

// Parser is a table-driven shift-reduce parser.  It is created once per
// parsing table and can be used for any number of parses (the table is never
// modified).
type Parser struct {
	table *ParsingTable
}

// NewParser creates a parser driven by the given table
func NewParser(table *ParsingTable) *Parser {
	return &Parser{table: table}
}

// Table returns the parsing table of the parser
func (p *Parser) Table() *ParsingTable {
	return p.table
}

// SyntaxError is returned when the table has no action for the next token.
// Position is the number of tokens consumed before the failure and Token is the
// offending token (nil if the input ran out).
type SyntaxError struct {
	Position int
	Token    *Token
}

func (se *SyntaxError) Error() string {
	if se.Token == nil {
		return fmt.Sprintf("unexpected end of input after %d tokens", se.Position)
	}

	if se.Token.Value == "" || se.Token.Value == se.Token.Kind {
		return fmt.Sprintf("unexpected token `%s`", se.Token.Kind)
	}

	return fmt.Sprintf("unexpected token `%s` (%s)", se.Token.Value, se.Token.Kind)
}

// Parse runs the table against a token stream (which should be closed by an
// end token) and returns the raw parse tree.  The root is labelled with the
// left-hand side of the start production and holds every node left on the
// node stack when the end token was accepted.
func (p *Parser) Parse(tokens []*Token) (*ast.Node, error) {
	states := []int{0}
	var nodes []*ast.Node
	pos := 0

	tracer().Debugf("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	for pos < len(tokens) || len(nodes) > 0 {
		var action Action
		top := states[len(states)-1]

		if top == pendingGoto {
			states = states[:len(states)-1]
			top = states[len(states)-1]
			action = p.table.Lookup(top, nodes[len(nodes)-1].Symbol)
		} else if pos < len(tokens) {
			action = p.table.Lookup(top, tokens[pos].Kind)
		} else {
			return nil, p.unexpectedToken(tokens, pos)
		}

		tracer().Debugf("action(%d)=%s", top, action)

		switch action.Kind {
		case AKShift:
			tok := tokens[pos]
			nodes = append(nodes, ast.NewRaw(tok.Kind, tok.Value, TextPositionOfToken(tok)))
			states = append(states, action.Operand)
			pos++
		case AKGoto:
			states = append(states, action.Operand)
		case AKReduce:
			rule := p.table.Rules[action.Operand]
			if rule.Count > len(nodes) || rule.Count > len(states)-1 {
				return nil, fmt.Errorf("reduce by rule %d needs %d nodes but %d are on the stack", action.Operand, rule.Count, len(nodes))
			}

			reduced := ast.New(ast.Raw, "", nodes[len(nodes)-rule.Count:]...)
			reduced.Symbol = rule.Name

			nodes = append(nodes[:len(nodes)-rule.Count], reduced)
			states = append(states[:len(states)-rule.Count], pendingGoto)

			tracer().Debugf("reduce %s/%d", rule.Name, rule.Count)
		case AKAccept:
			root := ast.New(ast.Raw, "", nodes...)
			root.Symbol = p.table.Rules[0].Name
			return root, nil
		default:
			return nil, p.unexpectedToken(tokens, pos)
		}
	}

	return nil, p.unexpectedToken(tokens, pos)
}

// reusable "factory" for syntax errors at the given token position
func (p *Parser) unexpectedToken(tokens []*Token, pos int) error {
	if pos < len(tokens) {
		return &SyntaxError{Position: pos, Token: tokens[pos]}
	}

	return &SyntaxError{Position: pos}
}
