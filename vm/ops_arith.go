package vm

import (
	"github.com/npillmayer/nedmacro/value"
)

// Arithmetic, comparison and logic operations. Integer arithmetic wraps
// around on overflow.

// binaryInt pops two integers (right operand on top) and pushes f(left, right).
func binaryInt(x *execution, f func(a, b int32) (int32, error)) error {
	b, err := x.popInt()
	if err != nil {
		return err
	}
	a, err := x.popInt()
	if err != nil {
		return err
	}
	r, err := f(a, b)
	if err != nil {
		return err
	}
	x.pushInt(r)
	return nil
}

// arrayOrInt handles the operators which are set operations on arrays.
//
// Before: TheStack-> right, left, ...
// After:  TheStack-> result, ...
func arrayOrInt(x *execution, setOp func(a, b *value.Array) *value.Array,
	f func(a, b int32) (int32, error)) error {
	//
	right := x.peek(0)
	if !right.IsArray() {
		return binaryInt(x, f)
	}
	if !x.peek(1).IsArray() {
		return execError("can't mix math with arrays and non-arrays")
	}
	b, _ := x.pop().Array()
	a, _ := x.pop().Array()
	x.push(value.FromArray(setOp(a, b)))
	return nil
}

func add(x *execution) error {
	return arrayOrInt(x, value.Union, func(a, b int32) (int32, error) {
		return a + b, nil
	})
}

func subtract(x *execution) error {
	return arrayOrInt(x, value.Difference, func(a, b int32) (int32, error) {
		return a - b, nil
	})
}

func multiply(x *execution) error {
	return binaryInt(x, func(a, b int32) (int32, error) {
		return a * b, nil
	})
}

func divide(x *execution) error {
	return binaryInt(x, func(a, b int32) (int32, error) {
		if b == 0 {
			return 0, execError("division by zero")
		}
		if b == -1 {
			return -a, nil
		}
		return a / b, nil
	})
}

func modulo(x *execution) error {
	return binaryInt(x, func(a, b int32) (int32, error) {
		if b == 0 {
			return 0, execError("modulo by zero")
		}
		if b == -1 {
			return 0, nil
		}
		return a % b, nil
	})
}

func bitAnd(x *execution) error {
	return arrayOrInt(x, value.Intersection, func(a, b int32) (int32, error) {
		return a & b, nil
	})
}

func bitOr(x *execution) error {
	return arrayOrInt(x, value.SymmetricDifference, func(a, b int32) (int32, error) {
		return a | b, nil
	})
}

func and(x *execution) error {
	return binaryInt(x, func(a, b int32) (int32, error) {
		return boolInt(a != 0 && b != 0), nil
	})
}

func or(x *execution) error {
	return binaryInt(x, func(a, b int32) (int32, error) {
		return boolInt(a != 0 || b != 0), nil
	})
}

// power raises left to the power of right. Negative exponents yield 0,
// except for bases 1 and -1.
func power(x *execution) error {
	return binaryInt(x, func(base, exp int32) (int32, error) {
		if exp < 0 {
			switch base {
			case 0:
				return 0, execError("attempt to raise 0 to negative power")
			case 1:
				return 1, nil
			case -1:
				if exp%2 == 0 {
					return 1, nil
				}
				return -1, nil
			}
			return 0, nil
		}
		r := int32(1)
		for ; exp > 0; exp >>= 1 {
			if exp&1 != 0 {
				r *= base
			}
			base *= base
		}
		return r, nil
	})
}

func unaryInt(x *execution, f func(int32) int32) error {
	n, err := x.popInt()
	if err != nil {
		return err
	}
	x.pushInt(f(n))
	return nil
}

func negate(x *execution) error {
	return unaryInt(x, func(n int32) int32 { return -n })
}

func increment(x *execution) error {
	return unaryInt(x, func(n int32) int32 { return n + 1 })
}

func decrement(x *execution) error {
	return unaryInt(x, func(n int32) int32 { return n - 1 })
}

func not(x *execution) error {
	return unaryInt(x, func(n int32) int32 { return boolInt(n == 0) })
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// --- Comparison ------------------------------------------------------------

// compare pops two operands and pushes the outcome of a relational operator.
// Operands are compared numerically if both are numbers (or strings
// convertible to numbers), otherwise as strings.
func compare(x *execution, rel func(c int) bool) error {
	right, left := x.pop(), x.pop()
	if left.IsArray() || right.IsArray() {
		return execError("can't compare arrays")
	}
	if a, ok := value.ToInt(left); ok {
		if b, ok := value.ToInt(right); ok {
			c := 0
			if a < b {
				c = -1
			} else if a > b {
				c = 1
			}
			x.pushInt(boolInt(rel(c)))
			return nil
		}
	}
	a, ok1 := value.ToString(left)
	b, ok2 := value.ToString(right)
	if !ok1 || !ok2 {
		return execError("invalid operand for comparison")
	}
	c := 0
	if a < b {
		c = -1
	} else if a > b {
		c = 1
	}
	x.pushInt(boolInt(rel(c)))
	return nil
}

func greaterThan(x *execution) error {
	return compare(x, func(c int) bool { return c > 0 })
}

func lessThan(x *execution) error {
	return compare(x, func(c int) bool { return c < 0 })
}

func greaterOrEqual(x *execution) error {
	return compare(x, func(c int) bool { return c >= 0 })
}

func lessOrEqual(x *execution) error {
	return compare(x, func(c int) bool { return c <= 0 })
}

// equalValues compares two values: integers numerically, strings byte-wise,
// arrays deeply. An integer and a string are equal if the string converts
// to the integer.
func equalValues(a, b value.Value) bool {
	switch {
	case a.IsInt() && b.IsString():
		n, _ := a.Int()
		m, ok := value.ToInt(b)
		return ok && n == m
	case a.IsString() && b.IsInt():
		return equalValues(b, a)
	}
	return a.Equal(b)
}

func equal(x *execution) error {
	b, a := x.pop(), x.pop()
	x.pushInt(boolInt(equalValues(a, b)))
	return nil
}

func notEqual(x *execution) error {
	b, a := x.pop(), x.pop()
	x.pushInt(boolInt(!equalValues(a, b)))
	return nil
}

// --- Strings ---------------------------------------------------------------

// concat concatenates two strings, converting integers.
func concat(x *execution) error {
	b, err := x.popString()
	if err != nil {
		return err
	}
	a, err := x.popString()
	if err != nil {
		return err
	}
	x.pushString(a + b)
	return nil
}
