package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBuilderLoops(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.vm")
	defer teardown()
	//
	m := NewMachine(Config{InstructionLimit: 1000})
	b := m.NewBuilder("loop")
	rt := b.Runtime()
	i, _ := rt.InstallSymbol("i", runtime.Local, value.None())
	// i = 0; while (1) { i++; if (i == 5) break; continue }; return i
	b.AddOp(OpPushSym)
	b.AddSym(rt.InstallIntConstSymbol(0))
	b.AddOp(OpAssign)
	b.AddSym(i)
	top := b.PC()
	b.StartLoopAddrList()
	b.AddOp(OpPushSym)
	b.AddSym(i)
	b.AddOp(OpIncr)
	b.AddOp(OpAssign)
	b.AddSym(i)
	b.AddOp(OpPushSym)
	b.AddSym(i)
	b.AddOp(OpPushSym)
	b.AddSym(rt.InstallIntConstSymbol(5))
	b.AddOp(OpEq)
	b.AddOp(OpBranchTrue)
	if err := b.AddBreakAddr(b.PC()); err != nil {
		t.Fatal(err)
	}
	b.AddBranchOffset(-1)
	b.AddOp(OpBranch)
	b.AddContinueAddr(b.PC())
	b.AddBranchOffset(-1)
	end := b.PC()
	b.FillLoopAddrs(end, top)
	b.AddOp(OpPushSym)
	b.AddSym(i)
	b.AddOp(OpReturn)
	prog, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("\n%s", prog.Disassemble())
	if prog.NumLocals() != 1 || prog.Locals()[0] != i {
		t.Errorf("expected local i, have %v", prog.Locals())
	}
	if m.Runtime().InProgram() {
		t.Error("expected program scope to be closed")
	}
	status, result, _, err := m.Execute(nil, prog, nil)
	if err != nil || status != MacroDone {
		t.Fatalf("expected MacroDone, have %s (%v)", status, err)
	}
	if n, _ := result.Int(); n != 5 {
		t.Errorf("expected loop to break at 5, have %s", result)
	}
}

func TestBuilderBreakOutsideLoop(t *testing.T) {
	b := NewBuilder(runtime.NewRuntimeEnvironment(), "noloop")
	defer b.Abandon()
	if err := b.AddBreakAddr(0); !errors.Is(err, ErrNotInLoop) {
		t.Errorf("expected break outside of loop to fail, have %v", err)
	}
}

func TestBuilderSwapCode(t *testing.T) {
	b := NewBuilder(runtime.NewRuntimeEnvironment(), "swap")
	defer b.Abandon()
	for _, op := range []Opcode{OpAdd, OpSub, OpMul, OpDiv, OpMod} {
		b.AddOp(op)
	}
	b.SwapCode(0, 2, 5)
	var ops []string
	for _, inst := range b.code {
		ops = append(ops, inst.Op.String())
	}
	if s := strings.Join(ops, " "); s != "MUL DIV MOD ADD SUB" {
		t.Errorf("unexpected code after swap: %s", s)
	}
}

func TestBuilderProgramTooLarge(t *testing.T) {
	m := NewMachine(Config{ProgramSize: 3})
	b := m.NewBuilder("big")
	for i := 0; i < 3; i++ {
		if err := b.AddOp(OpDup); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := b.AddOp(OpDup); !errors.Is(err, ErrProgramTooLarge) {
		t.Errorf("expected program to be too large, have %v", err)
	}
	if _, err := b.Finish(); err != ErrProgramTooLarge {
		t.Errorf("expected no room for final return, have %v", err)
	}
	if m.Runtime().InProgram() {
		t.Error("expected program scope to be closed")
	}
}

func TestOpcodeNames(t *testing.T) {
	for op := Opcode(0); op < NOps; op++ {
		if found, ok := OpcodeByName(op.String()); !ok || found != op {
			t.Errorf("opcode %s not found by name", op)
		}
	}
	if _, ok := OpcodeByName("NO_SUCH_OP"); ok {
		t.Error("expected unknown opcode name to fail")
	}
	if OpArrayIter.Operands() != "sso" || OpDup.Operands() != "" {
		t.Error("unexpected operand descriptions")
	}
}

func TestBytecodeError(t *testing.T) {
	m := NewMachine(Config{})
	b := m.NewBuilder("bad")
	b.AddOp(OpFetchRetVal)
	prog, _ := b.Finish()
	defer func() {
		r := recover()
		if _, ok := r.(BytecodeError); !ok {
			t.Errorf("expected bytecode error, have %v", r)
		}
	}()
	m.Execute(nil, prog, nil)
}

func TestOperandUnderflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.vm")
	defer teardown()
	//
	for _, test := range []struct {
		name   string
		locals int
		pushes int
		ops    []Opcode
	}{
		{"eq", 0, 1, []Opcode{OpEq, OpReturn}},
		{"not", 0, 0, []Opcode{OpNot, OpReturn}},
		{"add-local", 1, 1, []Opcode{OpAdd, OpReturn}},
	} {
		m := NewMachine(Config{})
		b := m.NewBuilder(test.name)
		rt := b.Runtime()
		for i := 0; i < test.locals; i++ {
			rt.InstallSymbol("l"+string(rune('a'+i)), runtime.Local, value.None())
		}
		for i := 0; i < test.pushes; i++ {
			b.AddOp(OpPushSym)
			b.AddSym(rt.InstallIntConstSymbol(1))
		}
		for _, op := range test.ops {
			b.AddOp(op)
		}
		prog, err := b.Finish()
		if err != nil {
			t.Fatal(err)
		}
		func() {
			defer func() {
				r := recover()
				berr, ok := r.(BytecodeError)
				if !ok || !strings.Contains(berr.Msg, "underflow") {
					t.Errorf("%s: expected operand stack underflow, have %v", test.name, r)
				}
			}()
			m.Execute(nil, prog, []value.Value{value.Int(7)})
		}()
	}
}

func TestConversionMessages(t *testing.T) {
	c := newContext(8, nil)
	x := &execution{context: c}
	for _, test := range []struct {
		v   value.Value
		pop func() error
		msg string
	}{
		{value.None(), func() error { _, err := x.popInt(); return err }, "can't convert value without type to integer"},
		{value.EmptyArray(), func() error { _, err := x.popInt(); return err }, "can't convert array to integer"},
		{value.None(), func() error { _, err := x.popString(); return err }, "can't convert value without type to string value"},
		{value.EmptyArray(), func() error { _, err := x.popString(); return err }, "can't convert array to string value"},
	} {
		c.push(test.v)
		err := test.pop()
		var xerr *ExecError
		if !errors.As(err, &xerr) || xerr.Msg != test.msg {
			t.Errorf("expected %q, have %v", test.msg, err)
		}
	}
}
