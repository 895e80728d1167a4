package vm

import (
	"github.com/npillmayer/nedmacro"
	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
)

// context is the execution state of a macro invocation: operand stack,
// stack pointer, frame pointer and program counter, together with the
// documents the macro runs for. Positions are indexes, not pointers, so a
// context may be handed around freely while the macro is suspended.
type context struct {
	stack    []value.Value
	sp       int // index of the next free slot
	fp       int // index of the first local of the current frame
	prog     *Program
	pc       int
	runDoc   nedmacro.Document
	focusDoc nedmacro.Document
}

func newContext(size int, doc nedmacro.Document) *context {
	return &context{
		stack:    make([]value.Value, size),
		runDoc:   doc,
		focusDoc: doc,
	}
}

func (c *context) push(v value.Value) {
	if c.sp >= len(c.stack) {
		panic(stackOverflow{})
	}
	c.stack[c.sp] = v
	c.sp++
}

// base is the index of the lowest operand slot of the current frame.
// Operands below it belong to the frame words, the locals or the caller.
func (c *context) base() int {
	if c.prog == nil {
		return 0
	}
	return c.fp + c.prog.NumLocals()
}

func (c *context) pop() value.Value {
	if c.sp <= c.base() {
		panic(BytecodeError{Msg: "operand stack underflow", PC: c.pc})
	}
	c.sp--
	v := c.stack[c.sp]
	c.stack[c.sp] = value.None()
	return v
}

// peek returns the value n slots below the top of stack.
func (c *context) peek(n int) value.Value {
	if n < 0 || c.sp-n <= c.base() {
		panic(BytecodeError{Msg: "operand stack underflow", PC: c.pc})
	}
	return c.stack[c.sp-1-n]
}

// fetch reads the next instruction word and advances the program counter.
func (c *context) fetch(kind InstKind) Inst {
	if c.pc < 0 || c.pc >= len(c.prog.code) {
		panic(BytecodeError{Msg: "program counter out of range", PC: c.pc})
	}
	inst := c.prog.code[c.pc]
	if inst.Kind != kind {
		panic(BytecodeError{Msg: "unexpected instruction word " + inst.String(), PC: c.pc})
	}
	c.pc++
	return inst
}

func (c *context) fetchSym() *runtime.Symbol {
	inst := c.fetch(SymInst)
	if inst.Sym == nil {
		panic(BytecodeError{Msg: "nil symbol", PC: c.pc - 1})
	}
	return inst.Sym
}

func (c *context) fetchImm() int {
	return int(c.fetch(ImmInst).Imm)
}

// fetchBranch reads a branch offset and returns the absolute branch target.
func (c *context) fetchBranch() int {
	at := c.pc
	return at + int(c.fetch(ImmInst).Imm)
}

// nextIs is a predicate: is the next instruction word opcode op?
func (c *context) nextIs(op Opcode) bool {
	if c.pc >= len(c.prog.code) {
		return false
	}
	inst := c.prog.code[c.pc]
	return inst.Kind == OpInst && inst.Op == op
}

// EachValue is part of interface value.RootSet.
func (c *context) EachValue(f func(value.Value)) {
	for _, v := range c.stack[:c.sp] {
		f(v)
	}
	if c.prog != nil {
		c.prog.EachValue(f)
	}
}
