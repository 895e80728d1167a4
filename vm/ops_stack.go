package vm

import (
	"strconv"

	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
)

// lvalue returns the storage of a variable symbol.
func (x *execution) lvalue(sym *runtime.Symbol) (*value.Value, error) {
	switch sym.Kind {
	case runtime.Local:
		return x.local(sym.Index), nil
	case runtime.Global:
		return &sym.Value, nil
	case runtime.Arg:
		return nil, execError("assignment to function argument: %s", sym.Name())
	case runtime.ProcValue:
		return nil, execError("assignment to read-only variable: %s", sym.Name())
	}
	return nil, execError("assignment to non-variable: %s", sym.Name())
}

// pushSymVal pushes the value of a symbol.
//
// Before: Prog->  [sym], next, ...
// After:  TheStack-> symVal, ...
func pushSymVal(x *execution) error {
	sym := x.fetchSym()
	var v value.Value
	switch sym.Kind {
	case runtime.Local:
		v = *x.local(sym.Index)
	case runtime.Global, runtime.Const:
		v = sym.Value
	case runtime.Arg:
		if sym.Index < 0 || sym.Index >= x.argCount() {
			return execError("referenced undefined argument: %s", sym.Name())
		}
		v = x.arg(sym.Index)
	case runtime.ProcValue:
		fn, ok := sym.Value.Internal().(NativeFunc)
		if !ok {
			return execError("reading non-variable: %s", sym.Name())
		}
		ctx := &CallContext{x: x, name: sym.Name(), procValue: true}
		r, err := fn(ctx, nil)
		ctx.x = nil
		if err != nil {
			return err
		}
		if ctx.suspended {
			x.suspend = true
		}
		v = x.m.rt.Pool.AllocCopy(r)
	default:
		return execError("reading non-variable: %s", sym.Name())
	}
	if v.IsNone() {
		return execError("variable not set: %s", sym.Name())
	}
	x.push(v)
	return nil
}

func dupStack(x *execution) error {
	x.push(x.peek(0))
	return nil
}

// assign pops a value and stores it into a variable. Arrays are copied.
//
// Before: Prog->  [sym], next, ...
//         TheStack-> value, ...
func assign(x *execution) error {
	sym := x.fetchSym()
	slot, err := x.lvalue(sym)
	if err != nil {
		return err
	}
	*slot = x.pop().Copy()
	return nil
}

// --- Branches --------------------------------------------------------------

func branch(x *execution) error {
	x.pc = x.fetchBranch()
	return nil
}

func branchTrue(x *execution) error {
	n, err := x.popInt()
	if err != nil {
		return err
	}
	to := x.fetchBranch()
	if n != 0 {
		x.pc = to
	}
	return nil
}

func branchFalse(x *execution) error {
	n, err := x.popInt()
	if err != nil {
		return err
	}
	to := x.fetchBranch()
	if n == 0 {
		x.pc = to
	}
	return nil
}

// branchNever skips its offset. It is the placeholder for a branch whose
// target is not known yet.
func branchNever(x *execution) error {
	x.fetchBranch()
	return nil
}

// --- Arguments -------------------------------------------------------------

// pushArgVal pushes the argument selected by a 1-based index from the stack.
func pushArgVal(x *execution) error {
	n, err := x.popInt()
	if err != nil {
		return err
	}
	if n < 1 || int(n) > x.argCount() {
		return execError("referenced undefined argument: $args[%s]", strconv.Itoa(int(n)))
	}
	x.push(x.arg(int(n) - 1))
	return nil
}

func pushArgCount(x *execution) error {
	x.pushInt(int32(x.argCount()))
	return nil
}

// pushArgArray pushes all arguments as an array keyed "1" … "n". The array
// is created once per frame.
func pushArgArray(x *execution) error {
	cache := x.argArrayCache()
	if !cache.IsArray() {
		args := value.NewArray()
		arr, _ := args.Array()
		for i := 0; i < x.argCount(); i++ {
			key, _ := x.m.rt.Pool.Alloc(strconv.Itoa(i + 1)).Str()
			arr.Insert(key, x.arg(i))
		}
		*cache = args
	}
	x.push(*cache)
	return nil
}
