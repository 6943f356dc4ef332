package syntax

import (
	"fmt"
	"strings"
)

// Symbol is a grammar symbol.  Terminal symbols are also the kinds of tokens
// fed to the parser.
type Symbol string

// SymbolKind tells whether a symbol is a terminal or a nonterminal
type SymbolKind int

// The two kinds of grammar symbols (the zero value is "unknown")
const (
	SKUnknown SymbolKind = iota
	SKTerminal
	SKNonterminal
)

// Production is a single alternative of a nonterminal.  Production ids are
// assigned in declaration order and production 0 is the start production.
type Production struct {
	ID  int
	LHS Symbol
	RHS []Symbol
}

func (p *Production) String() string {
	sb := strings.Builder{}
	sb.WriteString(string(p.LHS))
	sb.WriteString(" ->")

	for _, sym := range p.RHS {
		sb.WriteRune(' ')
		sb.WriteString(string(sym))
	}

	return sb.String()
}

// Grammar is a context-free grammar.  It is immutable once it has been created
// by NewGrammar: its fields must be treated as read-only.
type Grammar struct {
	// Productions is indexed by production id
	Productions []*Production

	// Terminals and Nonterminals are in order of first appearance
	Terminals    []Symbol
	Nonterminals []Symbol

	// End is the end-of-input terminal
	End Symbol

	kinds map[Symbol]SymbolKind
	byLHS map[Symbol][]*Production
}

// NewGrammar creates a new grammar from a list of productions.  Each production
// must carry its index in the list as its id.  Every left-hand side is a
// nonterminal and every other symbol (plus the end symbol) is a terminal.
func NewGrammar(prods []*Production, end Symbol) (*Grammar, error) {
	if len(prods) == 0 {
		return nil, fmt.Errorf("grammar has no start production")
	}

	if end == "" {
		return nil, fmt.Errorf("grammar has no end symbol")
	}

	g := &Grammar{
		Productions: make([]*Production, len(prods)),
		End:         end,
		kinds:       make(map[Symbol]SymbolKind),
		byLHS:       make(map[Symbol][]*Production),
	}

	for i, p := range prods {
		if p.ID != i {
			return nil, fmt.Errorf("production `%s` has id %d but is at index %d", p, p.ID, i)
		}

		if len(p.RHS) == 0 {
			return nil, fmt.Errorf("production %d of `%s` has an empty right-hand side", p.ID, p.LHS)
		}

		// copy so later changes to the caller's slices don't leak into the grammar
		g.Productions[i] = &Production{ID: p.ID, LHS: p.LHS, RHS: append([]Symbol(nil), p.RHS...)}

		if g.kinds[p.LHS] != SKNonterminal {
			g.kinds[p.LHS] = SKNonterminal
			g.Nonterminals = append(g.Nonterminals, p.LHS)
		}

		g.byLHS[p.LHS] = append(g.byLHS[p.LHS], g.Productions[i])
	}

	for _, p := range g.Productions {
		for _, sym := range p.RHS {
			if _, ok := g.kinds[sym]; !ok {
				g.kinds[sym] = SKTerminal
				g.Terminals = append(g.Terminals, sym)
			}
		}
	}

	switch g.kinds[end] {
	case SKNonterminal:
		return nil, fmt.Errorf("end symbol `%s` is defined as a nonterminal", end)
	case SKUnknown:
		g.kinds[end] = SKTerminal
		g.Terminals = append(g.Terminals, end)
	}

	return g, nil
}

// Production returns the production with the given id (nil if there is none)
func (g *Grammar) Production(id int) *Production {
	if id < 0 || id >= len(g.Productions) {
		return nil
	}

	return g.Productions[id]
}

// Start returns the start production
func (g *Grammar) Start() *Production {
	return g.Productions[0]
}

// KindOf returns the kind of a symbol (SKUnknown if it is not in the grammar)
func (g *Grammar) KindOf(sym Symbol) SymbolKind {
	return g.kinds[sym]
}

// ProductionsOf returns all productions whose left-hand side is nt in order
func (g *Grammar) ProductionsOf(nt Symbol) []*Production {
	return g.byLHS[nt]
}

// Symbols returns every grammar symbol: terminals first then nonterminals.  It
// is the order in which the automaton builder explores transitions.
func (g *Grammar) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(g.Terminals)+len(g.Nonterminals))
	syms = append(syms, g.Terminals...)
	return append(syms, g.Nonterminals...)
}
