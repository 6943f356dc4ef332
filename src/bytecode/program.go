package bytecode

import (
	"fmt"
	"strings"
)

// Program is a compiled program: its instructions, its label table and the
// variables it declares (in declaration order)
type Program struct {
	Code   []Instruction
	Labels []int
	Vars   []string
}

// Listing returns the instructions one per line prefixed by their address
func (p *Program) Listing() string {
	sb := strings.Builder{}

	for i, ins := range p.Code {
		sb.WriteString(fmt.Sprintf("%4d: %s\n", i, ins))
	}

	return sb.String()
}

// LabelListing returns the label table one label per line
func (p *Program) LabelListing() string {
	sb := strings.Builder{}

	for i, addr := range p.Labels {
		sb.WriteString(fmt.Sprintf("L%d -> %d\n", i, addr))
	}

	return sb.String()
}

// Validate checks that every label is resolved to an address of the program,
// that every jump refers to an existing label and that the operand stack is
// balanced: the same depth on every path into an instruction, never popped
// below empty and empty when the program ends.
func (p *Program) Validate() error {
	for i, addr := range p.Labels {
		if addr < 0 || addr > len(p.Code) {
			return fmt.Errorf("label L%d is unresolved (%d)", i, addr)
		}
	}

	for i, ins := range p.Code {
		if ins.Op.IsJump() && (ins.Label < 0 || ins.Label >= len(p.Labels)) {
			return fmt.Errorf("%d: `%s` refers to an unknown label", i, ins)
		}
	}

	_, err := p.StackDepths()
	return err
}

// StackDepths computes the operand stack depth before each instruction (and,
// at index len(Code), when the program ends).  Unreachable addresses have a
// depth of -1.  The labels must be resolved.
func (p *Program) StackDepths() ([]int, error) {
	depths := make([]int, len(p.Code)+1)
	for i := range depths {
		depths[i] = -1
	}

	depths[0] = 0
	worklist := []int{0}

	for len(worklist) > 0 {
		ip := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if ip == len(p.Code) {
			continue
		}

		ins := p.Code[ip]
		pop, push := ins.Op.StackEffect()
		if depths[ip] < pop {
			return nil, fmt.Errorf("%d: `%s` pops %d values from a stack of %d", ip, ins, pop, depths[ip])
		}

		next := depths[ip] - pop + push

		var succs []int
		switch ins.Op {
		case Goto:
			succs = []int{p.Labels[ins.Label]}
		case ICmpE, ICmpGe:
			succs = []int{ip + 1, p.Labels[ins.Label]}
		default:
			succs = []int{ip + 1}
		}

		for _, s := range succs {
			if depths[s] == -1 {
				depths[s] = next
				worklist = append(worklist, s)
			} else if depths[s] != next {
				return nil, fmt.Errorf("%d: stack depth %d does not match depth %d on another path", s, next, depths[s])
			}
		}
	}

	if end := depths[len(p.Code)]; end > 0 {
		return nil, fmt.Errorf("program ends with %d values on the stack", end)
	}

	return depths, nil
}
