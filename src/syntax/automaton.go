package syntax

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Item is a production with a cursor.  Pos is the index of the right-hand
// symbol the cursor is placed BEFORE (so a complete item has a Pos equal to the
// length of the production).
type Item struct {
	Prod *Production
	Pos  int
}

// Complete reports whether the cursor is past the end of the production
func (it Item) Complete() bool {
	return it.Pos == len(it.Prod.RHS)
}

// Next returns the symbol after the cursor (false if the item is complete)
func (it Item) Next() (Symbol, bool) {
	if it.Complete() {
		return "", false
	}

	return it.Prod.RHS[it.Pos], true
}

func (it Item) String() string {
	sb := strings.Builder{}
	sb.WriteString(string(it.Prod.LHS))
	sb.WriteString(" ->")

	for i, sym := range it.Prod.RHS {
		if i == it.Pos {
			sb.WriteString(" .")
		}

		sb.WriteRune(' ')
		sb.WriteString(string(sym))
	}

	if it.Complete() {
		sb.WriteString(" .")
	}

	return sb.String()
}

// compare orders items by production id and then by cursor position
func compare(a, b Item) int {
	if a.Prod.ID != b.Prod.ID {
		if a.Prod.ID < b.Prod.ID {
			return -1
		}

		return 1
	}

	if a.Pos != b.Pos {
		if a.Pos < b.Pos {
			return -1
		}

		return 1
	}

	return 0
}

// State is a state of the characteristic automaton: a closed set of items kept
// in sorted order.  Reduce is the production of the complete item in the
// state (if any).
type State struct {
	ID    int
	Items []Item

	Reduce    *Production
	Accepting bool
}

// Key returns the canonical encoding of the state's item set.  Two states are
// the same state iff their keys are equal.
func (s *State) Key() string {
	return itemsKey(s.Items)
}

func itemsKey(items []Item) string {
	sb := strings.Builder{}

	for i, it := range items {
		if i > 0 {
			sb.WriteRune(';')
		}

		sb.WriteString(strconv.Itoa(it.Prod.ID))
		sb.WriteRune('.')
		sb.WriteString(strconv.Itoa(it.Pos))
	}

	return sb.String()
}

// Transition is an edge of the automaton
type Transition struct {
	From   int
	Symbol Symbol
	To     int
}

// Automaton is the deterministic characteristic automaton of a grammar.  The
// start state is always state 0.
type Automaton struct {
	Grammar     *Grammar
	States      []*State
	Transitions []Transition

	edges map[int]map[Symbol]int
}

// Target returns the state reached from `from` on sym
func (a *Automaton) Target(from int, sym Symbol) (int, bool) {
	to, ok := a.edges[from][sym]
	return to, ok
}

// Accepting returns the accepting states
func (a *Automaton) Accepting() []*State {
	var accepting []*State

	for _, s := range a.States {
		if s.Accepting {
			accepting = append(accepting, s)
		}
	}

	return accepting
}

// String dumps every state with its items and outgoing transitions
func (a *Automaton) String() string {
	sb := strings.Builder{}

	for _, s := range a.States {
		sb.WriteString(fmt.Sprintf("state %d", s.ID))
		if s.Accepting {
			sb.WriteString(" (accept)")
		} else if s.Reduce != nil {
			sb.WriteString(fmt.Sprintf(" (reduce r%d)", s.Reduce.ID))
		}
		sb.WriteRune('\n')

		for _, it := range s.Items {
			sb.WriteString("    ")
			sb.WriteString(it.String())
			sb.WriteRune('\n')
		}

		for _, t := range a.Transitions {
			if t.From == s.ID {
				sb.WriteString(fmt.Sprintf("    %s => %d\n", t.Symbol, t.To))
			}
		}
	}

	return sb.String()
}

// ConflictError is returned when a state holds two different complete items.
// Since no lookahead is tracked, such a grammar cannot be parsed by the table.
type ConflictError struct {
	State         int
	First, Second *Production
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("reduce/reduce conflict in state %d between `%s` and `%s`", ce.State, ce.First, ce.Second)
}

// automatonBuilder holds the state used to construct the automaton
type automatonBuilder struct {
	g *Grammar
	a *Automaton

	// known states by key
	known map[string]*State

	// states whose transitions have not been computed yet (FIFO)
	frontier []*State
}

// BuildAutomaton derives the characteristic automaton of g.  No lookahead is
// tracked: a state has at most one reduction and a state that would need two is
// reported as a *ConflictError.
func BuildAutomaton(g *Grammar) (*Automaton, error) {
	ab := &automatonBuilder{
		g:     g,
		a:     &Automaton{Grammar: g, edges: make(map[int]map[Symbol]int)},
		known: make(map[string]*State),
	}

	ab.stateOf(ab.closureOf([]Item{{Prod: g.Start(), Pos: 0}}))

	symbols := g.Symbols()
	for len(ab.frontier) > 0 {
		s := ab.frontier[0]
		ab.frontier = ab.frontier[1:]

		if err := ab.mark(s); err != nil {
			return nil, err
		}

		for _, sym := range symbols {
			kernel := ab.gotoKernel(s, sym)
			if len(kernel) == 0 {
				continue
			}

			target := ab.stateOf(ab.closureOf(kernel))
			ab.a.Transitions = append(ab.a.Transitions, Transition{From: s.ID, Symbol: sym, To: target.ID})

			if ab.a.edges[s.ID] == nil {
				ab.a.edges[s.ID] = make(map[Symbol]int)
			}
			ab.a.edges[s.ID][sym] = target.ID
		}
	}

	tracer().Infof("automaton: %d states, %d transitions", len(ab.a.States), len(ab.a.Transitions))
	return ab.a, nil
}

// stateOf returns the known state with the given (sorted) item set or creates
// a new one and adds it to the frontier
func (ab *automatonBuilder) stateOf(items []Item) *State {
	key := itemsKey(items)
	if s, ok := ab.known[key]; ok {
		return s
	}

	s := &State{ID: len(ab.a.States), Items: items}
	ab.a.States = append(ab.a.States, s)
	ab.known[key] = s
	ab.frontier = append(ab.frontier, s)

	tracer().Debugf("new state %d = {%s}", s.ID, key)
	return s
}

// mark sets the reduction production and the accepting flag of a state
func (ab *automatonBuilder) mark(s *State) error {
	for _, it := range s.Items {
		if !it.Complete() {
			continue
		}

		if s.Reduce != nil && s.Reduce != it.Prod {
			return &ConflictError{State: s.ID, First: s.Reduce, Second: it.Prod}
		}

		s.Reduce = it.Prod
	}

	if len(s.Items) == 1 && s.Items[0].Complete() {
		rhs := s.Items[0].Prod.RHS
		s.Accepting = rhs[len(rhs)-1] == ab.g.End
	}

	return nil
}

// gotoKernel advances the cursor of every item of s expecting sym
func (ab *automatonBuilder) gotoKernel(s *State, sym Symbol) []Item {
	var kernel []Item

	for _, it := range s.Items {
		if next, ok := it.Next(); ok && next == sym {
			kernel = append(kernel, Item{Prod: it.Prod, Pos: it.Pos + 1})
		}
	}

	return kernel
}

// closureOf adds, until nothing changes, the initial items of every
// nonterminal expected by an item of the set.  The result is sorted.
func (ab *automatonBuilder) closureOf(kernel []Item) []Item {
	type itemID struct{ prod, pos int }

	seen := make(map[itemID]struct{}, len(kernel))
	items := make([]Item, 0, len(kernel))

	for _, it := range kernel {
		if _, ok := seen[itemID{it.Prod.ID, it.Pos}]; !ok {
			seen[itemID{it.Prod.ID, it.Pos}] = struct{}{}
			items = append(items, it)
		}
	}

	// items grows while we walk it so every added item is expanded in turn
	for i := 0; i < len(items); i++ {
		next, ok := items[i].Next()
		if !ok || ab.g.KindOf(next) != SKNonterminal {
			continue
		}

		for _, p := range ab.g.ProductionsOf(next) {
			if _, ok := seen[itemID{p.ID, 0}]; !ok {
				seen[itemID{p.ID, 0}] = struct{}{}
				items = append(items, Item{Prod: p, Pos: 0})
			}
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return compare(items[i], items[j]) < 0
	})

	return items
}
