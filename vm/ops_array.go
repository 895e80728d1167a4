package vm

import (
	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
)

// makeArrayKey builds an array key from the nDim subscripts on top of the
// stack (first subscript deepest). If leave is false, the subscripts are
// popped.
func (x *execution) makeArrayKey(nDim int, leave bool) (string, error) {
	parts := make([]string, nDim)
	for i := 0; i < nDim; i++ {
		s, ok := value.ToString(x.peek(nDim - 1 - i))
		if !ok {
			return "", execError("can only index array with string or int.")
		}
		parts[i] = s
	}
	if !leave {
		for i := 0; i < nDim; i++ {
			x.pop()
		}
	}
	key, _ := x.m.rt.Pool.Alloc(value.MakeKey(parts...)).Str()
	return key, nil
}

// arrayRef looks up an array element. Without subscripts, the size of the
// array is pushed.
//
// Before: Prog->  [nDim], next, ...
//         TheStack-> indexN, ..., index1, array, ...
// After:  TheStack-> element, ...
func arrayRef(x *execution) error {
	nDim := x.fetchImm()
	if nDim > 0 {
		key, err := x.makeArrayKey(nDim, false)
		if err != nil {
			return err
		}
		arr, ok := x.pop().Array()
		if !ok {
			return execError("operator [] on non-array")
		}
		v, found := arr.Get(key)
		if !found {
			return execError("referenced array value not in array: %s", key)
		}
		x.push(v)
		return nil
	}
	arr, ok := x.pop().Array()
	if !ok {
		return execError("operator [] on non-array")
	}
	x.pushInt(int32(arr.Size()))
	return nil
}

// arrayAssign stores a value into an array element.
//
// Before: Prog->  [nDim], next, ...
//         TheStack-> value, indexN, ..., index1, array, ...
func arrayAssign(x *execution) error {
	nDim := x.fetchImm()
	if nDim <= 0 {
		return execError("empty operator []")
	}
	src := x.pop()
	key, err := x.makeArrayKey(nDim, false)
	if err != nil {
		return err
	}
	dst := x.pop()
	arr, ok := dst.UpdatableArray()
	if !ok {
		return execError("cannot assign array element of non-array")
	}
	arr.Insert(key, src.Copy())
	return nil
}

// arrayRefAndAssignSetup prepares an operator-assignment to an array element
// (e.g. a[i] += 2): the element's current value is pushed, leaving array
// and subscripts on the stack for a following ARRAY_ASSIGN.
//
// Before: Prog->  [binOp], nDim, next, ...
//         TheStack-> [rhs], indexN, ..., index1, array, ...
// After:  TheStack-> [rhs], element, indexN, ..., index1, array, ...
func arrayRefAndAssignSetup(x *execution) error {
	binaryOp := x.fetchImm()
	nDim := x.fetchImm()
	var rhs value.Value
	if binaryOp != 0 {
		rhs = x.pop()
	}
	if nDim <= 0 {
		return execError("array[] not an lvalue")
	}
	key, err := x.makeArrayKey(nDim, true)
	if err != nil {
		return err
	}
	arr, ok := x.peek(nDim).Array()
	if !ok {
		return execError("operator [] on non-array")
	}
	v, found := arr.Get(key)
	if !found {
		return execError("referenced array value not in array: %s", key)
	}
	x.push(v)
	if binaryOp != 0 {
		x.push(rhs)
	}
	return nil
}

// pushArraySymVal pushes the array held by a variable. If initEmpty is set,
// an unset variable is initialized to a new array first.
//
// Before: Prog->  [sym], initEmpty, next, ...
// After:  TheStack-> array, ...
func pushArraySymVal(x *execution) error {
	sym := x.fetchSym()
	initEmpty := x.fetchImm() != 0
	var slot *value.Value
	switch sym.Kind {
	case runtime.Local:
		slot = x.local(sym.Index)
	case runtime.Global:
		slot = &sym.Value
	default:
		return execError("assigning to non-lvalue array or non-array: %s", sym.Name())
	}
	if initEmpty {
		if slot.IsNone() {
			*slot = value.NewArray()
		} else {
			slot.UpdatableArray()
		}
	}
	if slot.IsNone() {
		return execError("variable not set: %s", sym.Name())
	}
	x.push(*slot)
	return nil
}

// inArray tests if a key is in an array. If the left operand is an array
// itself, all of its keys have to be present.
//
// Before: TheStack-> array, key, ...
// After:  TheStack-> 0|1, ...
func inArray(x *execution) error {
	arr, ok := x.pop().Array()
	if !ok {
		return execError("operator in on non-array")
	}
	if left := x.peek(0); left.IsArray() {
		x.pop()
		keys, _ := left.Array()
		in := true
		it := keys.Iterate()
		for in && it.Next() {
			in = arr.Has(it.Entry().Key)
		}
		x.pushInt(boolInt(in))
		return nil
	}
	key, err := x.popString()
	if err != nil {
		return err
	}
	x.pushInt(boolInt(arr.Has(key)))
	return nil
}

// deleteArrayElement deletes an element from an array, or all elements if
// no subscripts are given.
//
// Before: Prog->  [nDim], next, ...
//         TheStack-> indexN, ..., index1, array, ...
func deleteArrayElement(x *execution) error {
	nDim := x.fetchImm()
	var key string
	if nDim > 0 {
		var err error
		if key, err = x.makeArrayKey(nDim, false); err != nil {
			return err
		}
	}
	arr, ok := x.pop().Array()
	if !ok {
		return execError("attempt to delete from non-array")
	}
	if nDim > 0 {
		arr.Delete(key)
	} else {
		arr.DeleteAll()
	}
	return nil
}

// beginArrayIter starts an iteration over an array, storing the cursor in
// an iterator variable.
//
// Before: Prog->  [iter], next, ...
//         TheStack-> array, ...
func beginArrayIter(x *execution) error {
	iterSym := x.fetchSym()
	arr, ok := x.pop().Array()
	if !ok {
		return execError("can't iterate non-array")
	}
	slot, err := x.lvalue(iterSym)
	if err != nil {
		return err
	}
	*slot = value.Internal(arr.Iterate())
	return nil
}

// arrayIter assigns the next key of an iteration to the item variable, or
// branches if the iteration is exhausted.
//
// Before: Prog->  [item], iter, branchOffset, next, ...
func arrayIter(x *execution) error {
	item := x.fetchSym()
	iterSym := x.fetchSym()
	to := x.fetchBranch()
	itemSlot, err := x.lvalue(item)
	if err != nil {
		return err
	}
	iterSlot, err := x.lvalue(iterSym)
	if err != nil {
		return err
	}
	it, ok := iterSlot.Internal().(*value.Iterator)
	if !ok {
		panic(BytecodeError{Msg: "ARRAY_ITER without BEGIN_ARRAY_ITER", PC: x.opPC})
	}
	if !it.Next() {
		x.pc = to
		return nil
	}
	*itemSlot = x.m.rt.Pool.Alloc(it.Entry().Key)
	return nil
}
