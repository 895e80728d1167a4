package vm

import (
	"errors"
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/nedmacro/runtime"
)

// ErrProgramTooLarge is returned by a builder if a program exceeds the
// configured maximum size.
var ErrProgramTooLarge = errors.New("macro too large")

// ErrNotInLoop is returned when adding a break or continue address without
// an enclosing loop.
var ErrNotInLoop = errors.New("break or continue outside of loop")

// Builder accumulates the instructions of a program. Creating a builder
// opens a program scope in the runtime environment, which receives the
// program's locals and literal constants; Finish closes it again.
//
// Builders may not be nested within the same runtime environment.
type Builder struct {
	rt      *runtime.Runtime
	scope   *runtime.Scope
	name    string
	code    []Inst
	maxSize int
	loops   *arraystack.Stack // of *loopAddrs
}

type loopAddrs struct {
	breaks    *arraylist.List // positions of branch offsets to patch
	continues *arraylist.List
}

// NewBuilder starts the creation of a program within runtime environment rt.
func NewBuilder(rt *runtime.Runtime, name string) *Builder {
	return &Builder{
		rt:      rt,
		scope:   rt.BeginProgram(name),
		name:    name,
		maxSize: DefaultProgramSize,
		loops:   arraystack.New(),
	}
}

// Runtime returns the runtime environment the builder installs symbols in.
func (b *Builder) Runtime() *runtime.Runtime {
	return b.rt
}

func (b *Builder) add(inst Inst) error {
	if len(b.code) >= b.maxSize {
		return ErrProgramTooLarge
	}
	b.code = append(b.code, inst)
	return nil
}

// AddOp appends an opcode.
func (b *Builder) AddOp(op Opcode) error {
	return b.add(Inst{Kind: OpInst, Op: op})
}

// AddSym appends a symbol reference.
func (b *Builder) AddSym(sym *runtime.Symbol) error {
	return b.add(Inst{Kind: SymInst, Sym: sym})
}

// AddImmediate appends an immediate operand.
func (b *Builder) AddImmediate(n int32) error {
	return b.add(Inst{Kind: ImmInst, Imm: n})
}

// AddBranchOffset appends a branch offset pointing to position to. A negative
// target appends a placeholder, to be patched with SetBranchOffset or
// FillLoopAddrs.
func (b *Builder) AddBranchOffset(to int) error {
	var offset int32
	if to >= 0 {
		offset = int32(to - len(b.code))
	}
	return b.add(Inst{Kind: ImmInst, Imm: offset})
}

// SetBranchOffset patches the branch offset at position at to point to
// position to.
func (b *Builder) SetBranchOffset(at, to int) {
	b.code[at] = Inst{Kind: ImmInst, Imm: int32(to - at)}
}

// PC returns the position of the next instruction word to be added.
func (b *Builder) PC() int {
	return len(b.code)
}

// SwapCode exchanges the adjacent code blocks [start,boundary) and
// [boundary,end).
func (b *Builder) SwapCode(start, boundary, end int) {
	reverse := func(l, h int) {
		for h--; l < h; l, h = l+1, h-1 {
			b.code[l], b.code[h] = b.code[h], b.code[l]
		}
	}
	reverse(start, boundary)
	reverse(boundary, end)
	reverse(start, end)
}

// StartLoopAddrList opens a new loop for collecting break and continue
// addresses. Loops may be nested.
func (b *Builder) StartLoopAddrList() {
	b.loops.Push(&loopAddrs{
		breaks:    arraylist.New(),
		continues: arraylist.New(),
	})
}

// AddBreakAddr registers the branch offset at position addr to be patched
// with the break address of the innermost loop.
func (b *Builder) AddBreakAddr(addr int) error {
	loop, ok := b.loops.Peek()
	if !ok {
		return ErrNotInLoop
	}
	loop.(*loopAddrs).breaks.Add(addr)
	return nil
}

// AddContinueAddr registers the branch offset at position addr to be patched
// with the continue address of the innermost loop.
func (b *Builder) AddContinueAddr(addr int) error {
	loop, ok := b.loops.Peek()
	if !ok {
		return ErrNotInLoop
	}
	loop.(*loopAddrs).continues.Add(addr)
	return nil
}

// FillLoopAddrs closes the innermost loop, patching its break and continue
// offsets.
func (b *Builder) FillLoopAddrs(breakAddr, continueAddr int) {
	top, ok := b.loops.Pop()
	if !ok {
		panic("attempt to close loop without open loop")
	}
	loop := top.(*loopAddrs)
	for _, a := range loop.breaks.Values() {
		b.SetBranchOffset(a.(int), breakAddr)
	}
	for _, a := range loop.continues.Values() {
		b.SetBranchOffset(a.(int), continueAddr)
	}
}

// InstallIteratorSymbol creates a hidden local for an array iteration.
func (b *Builder) InstallIteratorSymbol() *runtime.Symbol {
	return b.rt.InstallIteratorSymbol()
}

// Finish terminates the program with RETURN_NO_VAL, closes the program
// scope and returns the program.
func (b *Builder) Finish() (*Program, error) {
	if err := b.AddOp(OpReturnNoVal); err != nil {
		b.rt.FinishProgram()
		return nil, err
	}
	if b.loops.Size() > 0 {
		tracer().Errorf("program %s finished with %d open loops", b.name, b.loops.Size())
	}
	b.rt.FinishProgram()
	prog := &Program{
		name:    b.name,
		code:    b.code,
		nLocals: b.scope.LocalsCount(),
		consts:  b.scope.ConstSymbols(),
	}
	b.scope.Symbols().Each(func(_ string, sym *runtime.Symbol) {
		if sym.Kind == runtime.Local {
			prog.locals = append(prog.locals, sym)
		}
	})
	sort.Slice(prog.locals, func(i, j int) bool {
		return prog.locals[i].Index < prog.locals[j].Index
	})
	tracer().Debugf("finished program %s, %d words, %d locals", b.name, len(b.code), prog.nLocals)
	return prog, nil
}

// Abandon closes the program scope without creating a program.
func (b *Builder) Abandon() {
	b.rt.FinishProgram()
}
