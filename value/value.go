package value

import (
	"fmt"
	"strconv"
)

// Tag identifies the active member of a Value.
type Tag uint8

// Value tags. NoTag is used for slots which do not hold a macro-visible value.
const (
	NoTag Tag = iota
	IntTag
	StringTag
	ArrayTag
)

func (t Tag) String() string {
	switch t {
	case IntTag:
		return "int"
	case StringTag:
		return "string"
	case ArrayTag:
		return "array"
	}
	return "none"
}

// Value is a tagged dynamic value. The zero value is the canonical
// "no value" (NoTag, no payload).
//
// Values are small and are passed by value. Array values are handles: copying
// a Value does not copy the array it refers to, use Copy for that.
type Value struct {
	tag  Tag
	n    int32
	s    string
	arr  *Array
	data interface{}
}

// --- Constructors ----------------------------------------------------------

// None returns the canonical "no value".
func None() Value {
	return Value{}
}

// Int creates an integer value.
func Int(n int32) Value {
	return Value{tag: IntTag, n: n}
}

// Bool creates an integer value of 1 or 0.
func Bool(b bool) Value {
	if b {
		return Value{tag: IntTag, n: 1}
	}
	return Value{tag: IntTag}
}

// String creates a string value. Strings created this way are not
// registered with a pool; the virtual machine uses StringPool.Alloc.
func String(s string) Value {
	return Value{tag: StringTag, s: s}
}

// Bytes creates a string value from a copy of b.
func Bytes(b []byte) Value {
	return Value{tag: StringTag, s: string(b)}
}

// EmptyArray creates an array value without any storage attached.
// It behaves like an array with no entries.
func EmptyArray() Value {
	return Value{tag: ArrayTag}
}

// NewArray creates an array value with fresh, empty storage.
func NewArray() Value {
	return Value{tag: ArrayTag, arr: newArray()}
}

// FromArray wraps an existing array. The array is shared, not copied.
func FromArray(a *Array) Value {
	return Value{tag: ArrayTag, arr: a}
}

// Internal wraps an arbitrary datum into a value invisible to macros.
// The virtual machine uses internal values for return addresses, frame links,
// programs and iteration cursors.
func Internal(x interface{}) Value {
	return Value{tag: NoTag, data: x}
}

// --- Predicates ------------------------------------------------------------

// Tag returns the tag of a value.
func (v Value) Tag() Tag {
	return v.tag
}

// IsNone is true for values not visible to macros.
func (v Value) IsNone() bool {
	return v.tag == NoTag
}

// IsInt is true for integer values.
func (v Value) IsInt() bool {
	return v.tag == IntTag
}

// IsString is true for string values.
func (v Value) IsString() bool {
	return v.tag == StringTag
}

// IsArray is true for array values.
func (v Value) IsArray() bool {
	return v.tag == ArrayTag
}

// --- Checked accessors -----------------------------------------------------

// Int returns the integer payload and true, or 0 and false for non-integers.
func (v Value) Int() (int32, bool) {
	if v.tag != IntTag {
		return 0, false
	}
	return v.n, true
}

// Str returns the string payload and true, or "" and false for non-strings.
func (v Value) Str() (string, bool) {
	if v.tag != StringTag {
		return "", false
	}
	return v.s, true
}

// Array returns the array payload and true, or nil and false for non-arrays.
// An array value may carry a nil array, which is the empty array. All
// read operations of Array accept a nil receiver.
func (v Value) Array() (*Array, bool) {
	if v.tag != ArrayTag {
		return nil, false
	}
	return v.arr, true
}

// Internal returns the datum of an internal value, or nil.
func (v Value) Internal() interface{} {
	if v.tag != NoTag {
		return nil
	}
	return v.data
}

// UpdatableArray returns the array of an array value, attaching fresh storage
// first if the value does not have any. It returns false if v is not an array.
func (v *Value) UpdatableArray() (*Array, bool) {
	if v.tag != ArrayTag {
		return nil, false
	}
	if v.arr == nil {
		v.arr = newArray()
	}
	return v.arr, true
}

// Copy returns a copy of v. Arrays are copied deeply, other values are
// returned unchanged.
func (v Value) Copy() Value {
	if v.tag == ArrayTag {
		return Value{tag: ArrayTag, arr: v.arr.Copy()}
	}
	return v
}

// Equal compares two values: integers by number, strings byte-wise and arrays
// entry by entry. Values of different tags are never equal.
func (v Value) Equal(w Value) bool {
	if v.tag != w.tag {
		return false
	}
	switch v.tag {
	case IntTag:
		return v.n == w.n
	case StringTag:
		return v.s == w.s
	case ArrayTag:
		return v.arr.Equal(w.arr)
	}
	return v.data == nil && w.data == nil
}

// String is a debug Stringer for values.
func (v Value) String() string {
	switch v.tag {
	case IntTag:
		return strconv.Itoa(int(v.n))
	case StringTag:
		return strconv.Quote(v.s)
	case ArrayTag:
		return fmt.Sprintf("<array[%d]>", v.arr.Size())
	}
	if v.data == nil {
		return "<none>"
	}
	if s, ok := v.data.(fmt.Stringer); ok {
		return "<" + s.String() + ">"
	}
	return fmt.Sprintf("<%T>", v.data)
}
