package value

import (
	"strings"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// DimSeparator separates the subscripts of a multi-dimensional array key.
const DimSeparator = "\034"

// MakeKey joins subscripts into an array key. A single subscript is returned
// unchanged.
//
// Subscripts are not checked for an embedded DimSeparator; a subscript
// containing it may address the same entry as a multi-dimensional key.
func MakeKey(subscripts ...string) string {
	return strings.Join(subscripts, DimSeparator)
}

// SplitKey splits an array key into its subscripts.
func SplitKey(key string) []string {
	return strings.Split(key, DimSeparator)
}

// Entry is a key/value pair of an array.
type Entry struct {
	Key   string
	Value Value
}

// Array is an associative array with string keys, ordered by key.
//
// A nil *Array is a valid, empty, read-only array.
type Array struct {
	tree *redblacktree.Tree
}

func newArray() *Array {
	return &Array{tree: redblacktree.NewWithStringComparator()}
}

// Insert inserts a value under key, overwriting a previous value.
func (a *Array) Insert(key string, v Value) {
	a.tree.Put(key, v)
}

// Get returns the value stored under key and true, or false if key is not
// in the array.
func (a *Array) Get(key string) (Value, bool) {
	if a == nil {
		return None(), false
	}
	v, found := a.tree.Get(key)
	if !found {
		return None(), false
	}
	return v.(Value), true
}

// Has is a predicate: is key in the array?
func (a *Array) Has(key string) bool {
	_, found := a.Get(key)
	return found
}

// Delete removes key from the array. Deleting a key which is not present
// does nothing.
func (a *Array) Delete(key string) {
	if a == nil {
		return
	}
	a.tree.Remove(key)
}

// DeleteAll removes all entries.
func (a *Array) DeleteAll() {
	if a == nil {
		return
	}
	a.tree.Clear()
}

// Size returns the number of entries.
func (a *Array) Size() int {
	if a == nil {
		return 0
	}
	return a.tree.Size()
}

// Keys returns all keys in ascending order.
func (a *Array) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, 0, a.tree.Size())
	for _, k := range a.tree.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

// Copy creates a deep copy of an array: nested arrays are copied
// recursively. Copying a nil array results in a new, empty array.
func (a *Array) Copy() *Array {
	c := newArray()
	a.each(func(key string, v Value) {
		c.tree.Put(key, v.Copy())
	})
	return c
}

// Equal compares two arrays entry by entry.
func (a *Array) Equal(b *Array) bool {
	if a.Size() != b.Size() {
		return false
	}
	equal := true
	a.each(func(key string, v Value) {
		if !equal {
			return
		}
		w, found := b.Get(key)
		equal = found && v.Equal(w)
	})
	return equal
}

// each calls f for every entry in ascending key order.
func (a *Array) each(f func(string, Value)) {
	if a == nil {
		return
	}
	it := a.tree.Iterator()
	for it.Next() {
		f(it.Key().(string), it.Value().(Value))
	}
}

// --- Iteration -------------------------------------------------------------

// IterateFirst returns the entry with the smallest key, or false for an
// empty array.
func (a *Array) IterateFirst() (Entry, bool) {
	if a == nil {
		return Entry{}, false
	}
	node := a.tree.Left()
	if node == nil {
		return Entry{}, false
	}
	return entry(node), true
}

// IterateNext returns the entry with the smallest key greater than key,
// or false if there is none. key need not be present in the array.
func (a *Array) IterateNext(key string) (Entry, bool) {
	if a == nil {
		return Entry{}, false
	}
	var successor *redblacktree.Node
	node := a.tree.Root
	for node != nil {
		if key < node.Key.(string) {
			successor = node
			node = node.Left
		} else {
			node = node.Right
		}
	}
	if successor == nil {
		return Entry{}, false
	}
	return entry(successor), true
}

func entry(node *redblacktree.Node) Entry {
	return Entry{Key: node.Key.(string), Value: node.Value.(Value)}
}

// Iterator iterates over the entries of an array in ascending key order.
//
// An iterator remembers the last key it returned and continues with the
// next greater key. It is therefore well-defined if the array changes during
// iteration: deleted entries are not visited, entries inserted behind the
// current key are.
type Iterator struct {
	arr     *Array
	current Entry
	started bool
	done    bool
}

// Iterate creates an iterator, positioned before the first entry.
func (a *Array) Iterate() *Iterator {
	return &Iterator{arr: a}
}

// Next advances the iterator. It returns false when the iteration is exhausted.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	var e Entry
	var ok bool
	if !it.started {
		e, ok = it.arr.IterateFirst()
		it.started = true
	} else {
		e, ok = it.arr.IterateNext(it.current.Key)
	}
	if !ok {
		it.done = true
		it.current = Entry{}
		return false
	}
	it.current = e
	return true
}

// Entry returns the current entry.
func (it *Iterator) Entry() Entry {
	return it.current
}

// Array returns the array the iterator walks.
func (it *Iterator) Array() *Array {
	return it.arr
}

// EachValue makes an iterator a RootSet for string collection: the array it
// walks stays reachable while the iterator is.
func (it *Iterator) EachValue(f func(Value)) {
	f(FromArray(it.arr))
	if it.started && !it.done {
		f(String(it.current.Key))
	}
}

// --- Set operations --------------------------------------------------------

// Union returns a new array with all entries of a, plus the entries of b
// whose keys are not in a.
func Union(a, b *Array) *Array {
	r := a.Copy()
	b.each(func(key string, v Value) {
		if !a.Has(key) {
			r.tree.Put(key, v.Copy())
		}
	})
	return r
}

// Difference returns a new array with the entries of a whose keys are not in b.
func Difference(a, b *Array) *Array {
	r := newArray()
	a.each(func(key string, v Value) {
		if !b.Has(key) {
			r.tree.Put(key, v.Copy())
		}
	})
	return r
}

// Intersection returns a new array with the entries of a whose keys are in b.
func Intersection(a, b *Array) *Array {
	r := newArray()
	a.each(func(key string, v Value) {
		if b.Has(key) {
			r.tree.Put(key, v.Copy())
		}
	})
	return r
}

// SymmetricDifference returns a new array with the entries of a whose keys
// are not in b and the entries of b whose keys are not in a.
func SymmetricDifference(a, b *Array) *Array {
	r := Difference(a, b)
	b.each(func(key string, v Value) {
		if !a.Has(key) {
			r.tree.Put(key, v.Copy())
		}
	})
	return r
}
