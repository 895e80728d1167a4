package vm

import (
	"fmt"
	"strings"

	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
)

// InstKind tells what an instruction word holds.
type InstKind uint8

// Kinds of instruction words.
const (
	OpInst  InstKind = iota // an opcode
	ImmInst                 // an immediate operand or a branch offset
	SymInst                 // a symbol reference
)

// Inst is a word of a program: an opcode, an immediate or a symbol reference.
type Inst struct {
	Kind InstKind
	Op   Opcode
	Imm  int32
	Sym  *runtime.Symbol
}

func (inst Inst) String() string {
	switch inst.Kind {
	case ImmInst:
		return fmt.Sprintf("#%d", inst.Imm)
	case SymInst:
		if inst.Sym == nil {
			return "<nil-sym>"
		}
		if inst.Sym.Kind == runtime.Const {
			return inst.Sym.Value.String()
		}
		return inst.Sym.Name()
	}
	return inst.Op.String()
}

// Program is a compiled macro: an instruction sequence together with its
// local symbols and literal constants. Programs are immutable once built.
type Program struct {
	name    string
	code    []Inst
	locals  []*runtime.Symbol
	nLocals int
	consts  []*runtime.Symbol
}

// Name returns the name of the program. Programs installed as macro
// functions carry the name of their symbol.
func (p *Program) Name() string {
	return p.name
}

// Len returns the number of instruction words.
func (p *Program) Len() int {
	return len(p.code)
}

// At returns the instruction word at position pc.
func (p *Program) At(pc int) Inst {
	return p.code[pc]
}

// Locals returns the local symbols of the program, ordered by frame slot.
func (p *Program) Locals() []*runtime.Symbol {
	return p.locals
}

// NumLocals returns the number of local variable slots a frame for this
// program needs.
func (p *Program) NumLocals() int {
	return p.nLocals
}

// EachValue is part of interface value.RootSet: programs keep their
// constants alive.
func (p *Program) EachValue(f func(value.Value)) {
	for _, c := range p.consts {
		f(c.Value)
	}
}

func (p *Program) String() string {
	return fmt.Sprintf("<program %s[%d]>", p.name, len(p.code))
}

// Disassemble lists the program, one opcode with its operands per line.
// Branch targets are displayed as absolute positions.
func (p *Program) Disassemble() string {
	var b strings.Builder
	for pc := 0; pc < len(p.code); {
		inst := p.code[pc]
		fmt.Fprintf(&b, "%4d  %s", pc, inst)
		pc++
		if inst.Kind != OpInst {
			b.WriteString("  ; stray operand\n")
			continue
		}
		for _, k := range inst.Op.Operands() {
			if pc >= len(p.code) {
				break
			}
			if k == 'o' {
				fmt.Fprintf(&b, " ->%d", pc+int(p.code[pc].Imm))
			} else {
				fmt.Fprintf(&b, " %s", p.code[pc])
			}
			pc++
		}
		b.WriteByte('\n')
	}
	return b.String()
}
