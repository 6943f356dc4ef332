package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// ParsingTable is the shift-reduce table projected from the automaton along
// with all of the rules it can reduce by.  Row 0 is the start state.
type ParsingTable struct {
	Rows  []*PTableRow
	Rules []*PTableRule

	// End is the end-of-input terminal
	End string
}

// PTableRow is a particular row in the parsing table.  Any symbol for which
// there is no key in the action map is unexpected in that state.
type PTableRow struct {
	Actions map[string]*Action
}

// Action contains two items: a kind and an operand.  The operand is the state
// to shift or go to for shift and goto actions, the production id for reduce
// actions and nothing for accept actions.
type Action struct {
	// Kind should be one of the action kinds enumerated below (prefix AK)
	Kind int

	Operand int
}

// The action kinds.  AKNone is what a lookup returns for an absent entry.
const (
	AKNone = iota
	AKShift
	AKGoto
	AKReduce
	AKAccept
)

func (a Action) String() string {
	switch a.Kind {
	case AKShift:
		return fmt.Sprintf("s%d", a.Operand)
	case AKGoto:
		return fmt.Sprintf("g%d", a.Operand)
	case AKReduce:
		return fmt.Sprintf("r%d", a.Operand)
	case AKAccept:
		return "acc"
	default:
		return "-"
	}
}

// PTableRule is used to represent a given reduction pattern.  Since the actual
// elements of a rule are not useful at run time, we simply store the number of
// items to take into the new tree and its name.
type PTableRule struct {
	Name  string
	Count int
}

// BuildTable projects an automaton into a parsing table.  Transitions are
// recorded first and reductions then fill the terminals left over, so shift
// always wins over reduce.
func BuildTable(a *Automaton) *ParsingTable {
	g := a.Grammar
	pt := &ParsingTable{
		Rows:  make([]*PTableRow, len(a.States)),
		Rules: make([]*PTableRule, len(g.Productions)),
		End:   string(g.End),
	}

	for i, p := range g.Productions {
		pt.Rules[i] = &PTableRule{Name: string(p.LHS), Count: len(p.RHS)}
	}

	for i := range pt.Rows {
		pt.Rows[i] = &PTableRow{Actions: make(map[string]*Action)}
	}

	for _, t := range a.Transitions {
		var action *Action

		switch {
		case g.KindOf(t.Symbol) == SKNonterminal:
			action = &Action{Kind: AKGoto, Operand: t.To}
		case t.Symbol == g.End:
			action = &Action{Kind: AKAccept}
		default:
			action = &Action{Kind: AKShift, Operand: t.To}
		}

		pt.Rows[t.From].Actions[string(t.Symbol)] = action
	}

	for _, s := range a.States {
		if s.Reduce == nil {
			continue
		}

		shadowed := 0
		row := pt.Rows[s.ID]
		for _, term := range g.Terminals {
			if _, ok := row.Actions[string(term)]; ok {
				shadowed++
				continue
			}

			row.Actions[string(term)] = &Action{Kind: AKReduce, Operand: s.Reduce.ID}
		}

		if shadowed > 0 {
			tracer().Infof("state %d: shift preferred over reducing `%s` on %d terminal(s)", s.ID, s.Reduce, shadowed)
		}
	}

	return pt
}

// Lookup returns the action for a state and a symbol.  Absent entries and
// states out of range yield an action of kind AKNone.
func (pt *ParsingTable) Lookup(state int, sym string) Action {
	if state < 0 || state >= len(pt.Rows) {
		return Action{Kind: AKNone}
	}

	if action, ok := pt.Rows[state].Actions[sym]; ok {
		return *action
	}

	return Action{Kind: AKNone}
}

// String dumps the table one state per line with its entries sorted by symbol
func (pt *ParsingTable) String() string {
	sb := strings.Builder{}

	for i, row := range pt.Rows {
		syms := make([]string, 0, len(row.Actions))
		for sym := range row.Actions {
			syms = append(syms, sym)
		}
		sort.Strings(syms)

		sb.WriteString(fmt.Sprintf("%4d:", i))
		for _, sym := range syms {
			sb.WriteString(fmt.Sprintf(" %s=%s", sym, row.Actions[sym]))
		}
		sb.WriteRune('\n')
	}

	for i, r := range pt.Rules {
		sb.WriteString(fmt.Sprintf("r%d: %s/%d\n", i, r.Name, r.Count))
	}

	return sb.String()
}
