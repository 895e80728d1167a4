package vm

import (
	"errors"

	"github.com/npillmayer/nedmacro"
	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
)

// callSubroutine calls a built-in or a macro function.
//
// Before: Prog->  [subrSym], nArgs, next, ...
//         TheStack-> argN, ..., arg1, ...
// After:  Prog->  next, ...              -- built-in
//         Prog->  (first instruction of the macro function) -- macro
//
// A built-in's return value is pushed if the next instruction is
// FETCH_RET_VAL, which is skipped in this case.
func callSubroutine(x *execution) error {
	sym := x.fetchSym()
	nArgs := x.fetchImm()
	if nArgs < 0 || nArgs > x.sp-x.base() {
		panic(BytecodeError{Msg: "bad argument count", PC: x.opPC})
	}
	switch sym.Kind {
	case runtime.NativeFunction:
		fn, ok := sym.Value.Internal().(NativeFunc)
		if !ok {
			break
		}
		args := make([]value.Value, nArgs)
		copy(args, x.stack[x.sp-nArgs:x.sp])
		for i := 0; i < nArgs; i++ {
			x.pop()
		}
		ctx := &CallContext{x: x, name: sym.Name()}
		result, err := fn(ctx, args)
		ctx.x = nil
		if err != nil {
			return err
		}
		if ctx.suspended {
			x.suspend = true
		}
		if ctx.subrCalled {
			return nil
		}
		if x.nextIs(OpFetchRetVal) {
			if result.IsNone() {
				if !ctx.suspended {
					return execError("%s does not return a value", sym.Name())
				}
				result = value.String("")
			}
			x.push(x.m.rt.Pool.AllocCopy(result))
			x.pc++
		}
		return nil
	case runtime.MacroFunction:
		prog, ok := sym.Value.Internal().(*Program)
		if !ok {
			break
		}
		ret := value.Internal(returnAddress{prog: x.prog, pc: x.pc})
		x.pushFrame(prog, nArgs, ret)
		return nil
	}
	return execError("%s is not a function or subroutine", sym.Name())
}

// returnVal returns from a macro function with the value on top of stack.
func returnVal(x *execution) error {
	return x.returnFrame(x.pop(), true)
}

// returnNoVal returns from a macro function without a value.
func returnNoVal(x *execution) error {
	return x.returnFrame(value.None(), false)
}

// returnFrame pops the current frame. If the caller expects a value
// (its next instruction is FETCH_RET_VAL), v is pushed. Returning from the
// outermost frame completes the macro.
func (x *execution) returnFrame(v value.Value, withVal bool) error {
	callee := x.prog.Name()
	ra, ok := x.popFrame().Internal().(returnAddress)
	if !ok {
		x.done = true
		x.result = v
		return nil
	}
	x.prog, x.pc = ra.prog, ra.pc
	if x.nextIs(OpFetchRetVal) {
		if !withVal {
			return execError("using return value of %s which does not return a value", callee)
		}
		x.push(v)
		x.pc++
	}
	return nil
}

// fetchRetVal is consumed by subroutine calls and returns; executing it
// on its own is a bytecode error.
func fetchRetVal(x *execution) error {
	panic(BytecodeError{Msg: "FETCH_RET_VAL without subroutine call", PC: x.opPC})
}

// --- Call context ----------------------------------------------------------

// CallContext is handed to built-ins. It gives access to the machine state
// of the calling macro and is valid for the duration of the call only.
type CallContext struct {
	x          *execution
	name       string
	procValue  bool
	subrCalled bool
	suspended  bool
}

// Name returns the name under which the built-in has been called.
func (ctx *CallContext) Name() string {
	return ctx.name
}

// Machine returns the machine executing the calling macro.
func (ctx *CallContext) Machine() *Machine {
	return ctx.x.m
}

// Pool returns the string pool to allocate result strings from.
func (ctx *CallContext) Pool() *value.StringPool {
	return ctx.x.m.rt.Pool
}

// Document returns the document the macro operates on (the focus document).
func (ctx *CallContext) Document() nedmacro.Document {
	return ctx.x.focusDoc
}

// RunDocument returns the document the macro was started for.
func (ctx *CallContext) RunDocument() nedmacro.Document {
	return ctx.x.runDoc
}

// SetFocusDocument changes the document the macro operates on.
func (ctx *CallContext) SetFocusDocument(doc nedmacro.Document) {
	ctx.x.focusDoc = doc
}

// Suspend requests preemption of the calling macro as soon as the built-in
// returns. pending is handed to the host with the continuation
// (see Continuation.Pending), typically describing what the macro waits for.
//
// The value returned by the built-in is a placeholder; if it returns the
// no-value, an empty string is used. The host replaces it with
// Continuation.ModifyReturnedValue.
func (ctx *CallContext) Suspend(pending interface{}) {
	ctx.suspended = true
	ctx.x.m.pending = pending
}

// Preempt requests preemption of the calling macro as soon as the built-in
// returns, without pending host data.
func (ctx *CallContext) Preempt() {
	ctx.Suspend(nil)
}

// RunMacroAsSubrCall makes the calling macro call prog as a subroutine
// without arguments, as soon as the built-in returns. The return value of
// prog becomes the value of the built-in call; the value returned by the
// built-in itself is ignored.
func (ctx *CallContext) RunMacroAsSubrCall(prog *Program) error {
	if prog == nil {
		return ErrNoProgram
	}
	if ctx.procValue {
		return errors.New("cannot run a macro from a procedure value")
	}
	if ctx.subrCalled {
		return errors.New("only one macro may be run per built-in call")
	}
	x := ctx.x
	if x.sp+fpToArgsDist+prog.NumLocals() > len(x.stack) {
		return execError("macro stack overflow")
	}
	ret := value.Internal(returnAddress{prog: x.prog, pc: x.pc})
	x.pushFrame(prog, 0, ret)
	ctx.subrCalled = true
	return nil
}
