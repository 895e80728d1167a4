package value

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestValueTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	if !None().IsNone() || None().Tag() != NoTag {
		t.Errorf("expected None to be the no-value")
	}
	if !Int(7).IsInt() || !String("x").IsString() || !NewArray().IsArray() {
		t.Errorf("constructor produced wrong tag")
	}
	if n, ok := Bool(true).Int(); !ok || n != 1 {
		t.Errorf("expected Bool(true) to be 1, is %d", n)
	}
	if _, ok := String("x").Int(); ok {
		t.Errorf("expected checked accessor to refuse string as int")
	}
	if _, ok := Int(1).Array(); ok {
		t.Errorf("expected checked accessor to refuse int as array")
	}
	if Internal(42).Internal() != 42 {
		t.Errorf("expected internal payload to be retrievable")
	}
	if Int(3).Internal() != nil {
		t.Errorf("expected int to have no internal payload")
	}
}

func TestBytesKeepNUL(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	b := []byte{'a', 0, 'b'}
	v := Bytes(b)
	b[0] = 'X'
	s, _ := v.Str()
	if len(s) != 3 || s[0] != 'a' || s[1] != 0 {
		t.Errorf("expected owned copy with embedded NUL, have %q", s)
	}
}

func TestStringToNum(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	cases := []struct {
		in string
		n  int32
		ok bool
	}{
		{"42", 42, true},
		{"  -17\t", -17, true},
		{"+5", 5, true},
		{"", 0, true},
		{"-", 0, true},
		{"4 2", 0, false},
		{"12a", 0, false},
		{"0x10", 0, false},
		{"2147483648", math.MinInt32, true},
	}
	for _, c := range cases {
		n, ok := StringToNum(c.in)
		if ok != c.ok || n != c.n {
			t.Errorf("StringToNum(%q) = %d,%v; expected %d,%v", c.in, n, ok, c.n, c.ok)
		}
	}
}

func TestCoercion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	if s, ok := ToString(Int(-3)); !ok || s != "-3" {
		t.Errorf("expected \"-3\", have %q", s)
	}
	if _, ok := ToInt(NewArray()); ok {
		t.Errorf("expected arrays not to convert to int")
	}
	if _, ok := ToString(EmptyArray()); ok {
		t.Errorf("expected arrays not to convert to string")
	}
	if !IsNumeric(String(" 12 ")) || IsNumeric(String("twelve")) {
		t.Errorf("numeric predicate is wrong")
	}
}

func TestValueEqualAndCopy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	if Int(1).Equal(String("1")) {
		t.Errorf("values of different tags must not be equal")
	}
	a := NewArray()
	arr, _ := a.Array()
	inner := NewArray()
	innerArr, _ := inner.Array()
	innerArr.Insert("x", Int(1))
	arr.Insert("in", inner)
	c := a.Copy()
	if !c.Equal(a) {
		t.Fatalf("expected copy to be equal")
	}
	innerArr.Insert("y", Int(2))
	if c.Equal(a) {
		t.Errorf("expected deep copy to be independent of nested array")
	}
	if !EmptyArray().Equal(NewArray()) {
		t.Errorf("expected empty array handle to equal new empty array")
	}
}

func TestUpdatableArray(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	v := EmptyArray()
	arr, ok := v.UpdatableArray()
	if !ok || arr == nil {
		t.Fatalf("expected storage to be attached")
	}
	arr.Insert("k", Int(1))
	if w, _ := v.Array(); w.Size() != 1 {
		t.Errorf("expected insert to be visible through value")
	}
	i := Int(1)
	if _, ok := i.UpdatableArray(); ok {
		t.Errorf("expected int not to be updatable as array")
	}
}
