package value

import (
	"github.com/emirpasic/gods/sets/hashset"
)

// StringPool interns the strings created while macros execute.
//
// Every string allocated from a pool is registered with it until a collection
// finds it unreachable. Allocating a string which is already registered
// returns the registered instance, therefore equal strings created from
// different places share their storage.
//
// A pool is not safe for concurrent use. Collect must not be called while an
// instruction of the virtual machine is executing.
type StringPool struct {
	strings   map[string]string // canonical instances
	allocated uint64            // total number of allocations
	collected uint64            // total number of reclaimed strings
}

// NewStringPool creates an empty string pool.
func NewStringPool() *StringPool {
	return &StringPool{
		strings: make(map[string]string),
	}
}

// Alloc returns a string value for s, registered with the pool.
func (p *StringPool) Alloc(s string) Value {
	return Value{tag: StringTag, s: p.intern(s)}
}

// AllocBytes returns a string value for a copy of b, registered with the pool.
func (p *StringPool) AllocBytes(b []byte) Value {
	if s, ok := p.strings[string(b)]; ok { // lookup does not allocate
		p.allocated++
		return Value{tag: StringTag, s: s}
	}
	return Value{tag: StringTag, s: p.intern(string(b))}
}

// AllocCopy returns a string value with the same content as v, registered
// with the pool. If v is not a string, it is returned unchanged.
func (p *StringPool) AllocCopy(v Value) Value {
	if v.tag != StringTag {
		return v
	}
	return p.Alloc(v.s)
}

// Contains is a predicate: is s currently registered with the pool?
func (p *StringPool) Contains(s string) bool {
	_, ok := p.strings[s]
	return ok
}

// Size returns the number of strings currently registered.
func (p *StringPool) Size() int {
	return len(p.strings)
}

// Stats returns the total number of allocations and of reclaimed strings.
func (p *StringPool) Stats() (allocated, collected uint64) {
	return p.allocated, p.collected
}

func (p *StringPool) intern(s string) string {
	p.allocated++
	if canonical, ok := p.strings[s]; ok {
		return canonical
	}
	p.strings[s] = s
	return s
}

// --- Garbage collection ----------------------------------------------------

// RootSet is a source of values which are reachable from outside the pool,
// e.g. an operand stack or a symbol table.
type RootSet interface {
	EachValue(func(Value))
}

// Roots adapts a function to the RootSet interface.
type Roots func(func(Value))

// EachValue is part of interface RootSet.
func (r Roots) EachValue(f func(Value)) {
	r(f)
}

// Collect reclaims every registered string which is not reachable from one
// of the root sets. Reachability extends into arrays (keys and values) and
// into internal values which are themselves root sets.
// Returns the number of strings reclaimed.
func (p *StringPool) Collect(roots ...RootSet) int {
	marked := hashset.New()
	var mark func(Value)
	mark = func(v Value) {
		switch v.tag {
		case StringTag:
			marked.Add(v.s)
		case ArrayTag:
			v.arr.each(func(key string, val Value) {
				marked.Add(key)
				mark(val)
			})
		case NoTag:
			if rs, ok := v.data.(RootSet); ok {
				rs.EachValue(mark)
			}
		}
	}
	for _, r := range roots {
		if r != nil {
			r.EachValue(mark)
		}
	}
	n := 0
	for s := range p.strings {
		if !marked.Contains(s) {
			delete(p.strings, s)
			n++
		}
	}
	p.collected += uint64(n)
	tracer().Debugf("string pool: %d reclaimed, %d live", n, len(p.strings))
	return n
}
