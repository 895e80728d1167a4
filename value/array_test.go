package value

import (
	"fmt"
	"sort"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestArrayInsertGetDelete(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	a := newArray()
	a.Insert("a", Int(1))
	a.Insert("b", String("two"))
	a.Insert("a", Int(3))
	if a.Size() != 2 {
		t.Errorf("expected 2 entries, have %d", a.Size())
	}
	if v, ok := a.Get("a"); !ok || !v.Equal(Int(3)) {
		t.Errorf("expected overwritten value 3, have %v", v)
	}
	a.Delete("a")
	if _, ok := a.Get("a"); ok {
		t.Errorf("expected a to be deleted")
	}
	a.Delete("not-there")
	if a.Size() != 1 {
		t.Errorf("expected 1 entry, have %d", a.Size())
	}
	a.DeleteAll()
	if a.Size() != 0 {
		t.Errorf("expected empty array, have %d", a.Size())
	}
}

func TestArraySizeTracksLiveKeys(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	a := newArray()
	live := make(map[string]bool)
	for i := 0; i < 300; i++ {
		k := fmt.Sprintf("k%d", i%97)
		if i%3 == 0 {
			a.Delete(k)
			delete(live, k)
		} else {
			a.Insert(k, Int(int32(i)))
			live[k] = true
		}
		if a.Size() != len(live) {
			t.Fatalf("step %d: size %d, expected %d", i, a.Size(), len(live))
		}
	}
}

func TestNilArrayIsEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	var a *Array
	if a.Size() != 0 || a.Has("x") || len(a.Keys()) != 0 {
		t.Errorf("expected nil array to be empty")
	}
	if _, ok := a.IterateFirst(); ok {
		t.Errorf("expected no first entry in nil array")
	}
	a.Delete("x")
	if a.Copy().Size() != 0 {
		t.Errorf("expected copy of nil array to be empty")
	}
}

func TestArrayIteration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	for _, n := range []int{0, 1, 150} {
		a := newArray()
		var keys []string
		for i := 0; i < n; i++ {
			k := fmt.Sprintf("key-%d", (i*37)%n)
			a.Insert(k, Int(int32(i)))
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var visited []string
		it := a.Iterate()
		for it.Next() {
			visited = append(visited, it.Entry().Key)
		}
		if len(visited) != len(keys) {
			t.Fatalf("n=%d: visited %d entries, expected %d", n, len(visited), len(keys))
		}
		for i := range keys {
			if visited[i] != keys[i] {
				t.Errorf("n=%d: entry %d is %q, expected %q", n, i, visited[i], keys[i])
			}
		}
		if it.Next() {
			t.Errorf("n=%d: expected exhausted iterator to stay exhausted", n)
		}
	}
}

func TestArrayIterationUnderMutation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	a := newArray()
	for _, k := range []string{"a", "c", "e"} {
		a.Insert(k, Int(0))
	}
	var visited []string
	it := a.Iterate()
	for it.Next() {
		k := it.Entry().Key
		visited = append(visited, k)
		if k == "a" {
			a.Delete("a")
			a.Delete("c")
			a.Insert("d", Int(1))
		}
	}
	expected := []string{"a", "d", "e"}
	if fmt.Sprint(visited) != fmt.Sprint(expected) {
		t.Errorf("visited %v, expected %v", visited, expected)
	}
}

func TestMultiDimKeys(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	a := newArray()
	a.Insert(MakeKey("1", "2"), String("x"))
	if v, ok := a.Get(MakeKey("1", "2")); !ok || !v.Equal(String("x")) {
		t.Errorf("expected multi-dim key to round-trip")
	}
	if parts := SplitKey(MakeKey("1", "2")); len(parts) != 2 || parts[1] != "2" {
		t.Errorf("expected split into 2 parts, have %v", parts)
	}
	// a subscript containing the separator collides with a 2-dim key
	if _, ok := a.Get("1" + DimSeparator + "2"); !ok {
		t.Errorf("expected separator collision to address the same entry")
	}
}

func TestArraySetOperations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.value")
	defer teardown()
	//
	a, b := newArray(), newArray()
	a.Insert("x", Int(1))
	a.Insert("y", Int(2))
	b.Insert("y", Int(20))
	b.Insert("z", Int(30))
	check := func(name string, r *Array, expected string) {
		if s := fmt.Sprint(r.Keys()); s != expected {
			t.Errorf("%s: keys %s, expected %s", name, s, expected)
		}
	}
	u := Union(a, b)
	check("union", u, "[x y z]")
	if v, _ := u.Get("y"); !v.Equal(Int(2)) {
		t.Errorf("expected union to prefer left value, have %v", v)
	}
	check("difference", Difference(a, b), "[x]")
	check("intersection", Intersection(a, b), "[y]")
	check("symmetric difference", SymmetricDifference(a, b), "[x z]")
	if a.Size() != 2 || b.Size() != 2 {
		t.Errorf("expected operands to be unchanged")
	}
}
