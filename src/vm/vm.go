// Package vm executes compiled programs on a stack machine.
package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/ComedicChimera/minimini/src/bytecode"
)

// Runtime faults.  They are always wrapped in a RuntimeError.
var (
	ErrUndeclared      = errors.New("undeclared variable")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrUnresolvedLabel = errors.New("unresolved label")
)

// RuntimeError is a fault raised by the instruction at IP
type RuntimeError struct {
	Op  bytecode.Instruction
	IP  int
	Err error
}

func (re *RuntimeError) Error() string {
	return fmt.Sprintf("runtime: %v at %d (`%s`)", re.Err, re.IP, re.Op)
}

func (re *RuntimeError) Unwrap() error {
	return re.Err
}

// Machine is the interpreter state of one program: its variables, the
// instruction pointer and the operand stack
type Machine struct {
	prog  *bytecode.Program
	vars  map[string]int64
	stack []int64
	ip    int
	out   io.Writer
}

// New creates a machine with every declared variable set to 0
func New(prog *bytecode.Program) *Machine {
	m := &Machine{
		prog: prog,
		vars: make(map[string]int64, len(prog.Vars)),
	}

	m.reset()
	return m
}

// Program returns the program the machine runs
func (m *Machine) Program() *bytecode.Program {
	return m.prog
}

// Variables returns a copy of the variable table
func (m *Machine) Variables() map[string]int64 {
	vars := make(map[string]int64, len(m.vars))
	for name, v := range m.vars {
		vars[name] = v
	}

	return vars
}

// Execute runs the program from the first instruction until it halts, writing
// one line to out per print.  It returns the variables as they were when the
// program halted.  Whether it halts or faults, the machine is reset afterward
// so the program can be executed again.
func (m *Machine) Execute(out io.Writer) (map[string]int64, error) {
	m.out = out
	defer m.reset()

	tracer().Debugf("executing %d instructions", len(m.prog.Code))

	steps := 0
	for m.ip < len(m.prog.Code) {
		if err := m.step(); err != nil {
			tracer().Errorf("%v", err)
			return nil, err
		}

		steps++
	}

	tracer().Infof("halted after %d steps", steps)
	return m.Variables(), nil
}

// reset zeroes every declared variable, the instruction pointer and the stack
func (m *Machine) reset() {
	for _, name := range m.prog.Vars {
		m.vars[name] = 0
	}

	m.stack = m.stack[:0]
	m.ip = 0
	m.out = nil
}

// step executes the instruction at ip
func (m *Machine) step() error {
	ins := m.prog.Code[m.ip]
	fault := func(err error) error {
		return &RuntimeError{Op: ins, IP: m.ip, Err: err}
	}

	pop, _ := ins.Op.StackEffect()
	if len(m.stack) < pop {
		return fault(ErrStackUnderflow)
	}

	next := m.ip + 1

	switch ins.Op {
	case bytecode.IConst:
		m.push(ins.Const)
	case bytecode.ILoad:
		v, ok := m.vars[ins.Name]
		if !ok {
			return fault(fmt.Errorf("%w `%s`", ErrUndeclared, ins.Name))
		}

		m.push(v)
	case bytecode.IStore:
		if _, ok := m.vars[ins.Name]; !ok {
			return fault(fmt.Errorf("%w `%s`", ErrUndeclared, ins.Name))
		}

		m.vars[ins.Name] = m.pop()
	case bytecode.IAdd, bytecode.ISub, bytecode.IMul, bytecode.IDiv:
		b, a := m.pop(), m.pop()

		switch ins.Op {
		case bytecode.IAdd:
			m.push(a + b)
		case bytecode.ISub:
			m.push(a - b)
		case bytecode.IMul:
			m.push(a * b)
		default:
			if b == 0 {
				return fault(ErrDivisionByZero)
			}

			m.push(a / b)
		}
	case bytecode.Print:
		v := m.pop()
		if m.out != nil {
			if _, err := fmt.Fprintln(m.out, v); err != nil {
				return fault(err)
			}
		}
	case bytecode.Goto:
		addr, err := m.resolve(ins.Label)
		if err != nil {
			return fault(err)
		}

		next = addr
	case bytecode.ICmpE, bytecode.ICmpGe:
		b, a := m.pop(), m.pop()

		var jump bool
		if ins.Op == bytecode.ICmpE {
			jump = a != b
		} else {
			jump = a > b
		}

		if jump {
			addr, err := m.resolve(ins.Label)
			if err != nil {
				return fault(err)
			}

			next = addr
		}
	default:
		return fault(fmt.Errorf("unknown opcode %s", ins.Op))
	}

	tracer().Debugf("%4d: %-12s %v", m.ip, ins, m.stack)
	m.ip = next
	return nil
}

// resolve looks up the address of a label
func (m *Machine) resolve(label int) (int, error) {
	if label < 0 || label >= len(m.prog.Labels) {
		return 0, fmt.Errorf("%w L%d", ErrUnresolvedLabel, label)
	}

	addr := m.prog.Labels[label]
	if addr < 0 || addr > len(m.prog.Code) {
		return 0, fmt.Errorf("%w L%d", ErrUnresolvedLabel, label)
	}

	return addr, nil
}

func (m *Machine) push(v int64) {
	m.stack = append(m.stack, v)
}

func (m *Machine) pop() int64 {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}
