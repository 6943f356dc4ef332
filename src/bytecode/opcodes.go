package bytecode

import "fmt"

// Opcode is the operation of an instruction
type Opcode int

// The instruction set.  Stack effects are written `before -- after`.
const (
	IConst Opcode = iota // -- v           push the constant operand
	ILoad                // -- v           push the value of the named variable
	IStore               // v --           pop into the named variable
	IAdd                 // a b -- (a+b)
	ISub                 // a b -- (a-b)
	IMul                 // a b -- (a*b)
	IDiv                 // a b -- (a/b)   truncated
	Print                // v --           output v
	Goto                 // --             jump to the label operand
	ICmpE                // a b --         jump to the label operand unless a == b
	ICmpGe               // a b --         jump to the label operand if a > b
)

var opcodeNames = [...]string{
	IConst: "iconst",
	ILoad:  "iload",
	IStore: "istore",
	IAdd:   "iadd",
	ISub:   "isub",
	IMul:   "imul",
	IDiv:   "idiv",
	Print:  "print",
	Goto:   "goto",
	ICmpE:  "icmpe",
	ICmpGe: "icmpge",
}

func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}

	return opcodeNames[op]
}

// StackEffect returns how many values the opcode pops and pushes
func (op Opcode) StackEffect() (pop, push int) {
	switch op {
	case IConst, ILoad:
		return 0, 1
	case IStore, Print:
		return 1, 0
	case IAdd, ISub, IMul, IDiv:
		return 2, 1
	case ICmpE, ICmpGe:
		return 2, 0
	default:
		return 0, 0
	}
}

// IsJump reports whether the opcode takes a label operand
func (op Opcode) IsJump() bool {
	return op == Goto || op == ICmpE || op == ICmpGe
}

// Instruction is an opcode and its operand.  Only the operand used by the
// opcode is meaningful: Const for iconst, Name for iload and istore, Label for
// jumps.
type Instruction struct {
	Op    Opcode
	Const int64
	Name  string
	Label int
}

func (ins Instruction) String() string {
	switch {
	case ins.Op == IConst:
		return fmt.Sprintf("%s %d", ins.Op, ins.Const)
	case ins.Op == ILoad || ins.Op == IStore:
		return fmt.Sprintf("%s %s", ins.Op, ins.Name)
	case ins.Op.IsJump():
		return fmt.Sprintf("%s L%d", ins.Op, ins.Label)
	default:
		return ins.Op.String()
	}
}
