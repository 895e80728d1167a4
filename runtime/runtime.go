/*
Package runtime implements the compile- and run-time environment shared by
all macros of a virtual machine: scopes, symbols and the string pool.

Scope Tree

Symbols live in a tree of scopes. The outermost scope holds built-ins
(native functions, procedure values and named constants). Its child holds
global variables and macro functions. While a program is being built, a
program scope is pushed on top of the globals; it receives the program's
local variables and literal constants and is popped when the program is
finished.

Symbol lookup proceeds from the innermost scope outwards, so locals shadow
globals and globals shadow built-ins.

Runtime Context

A Runtime bundles the scope tree with the string pool. It replaces what
would otherwise be process-wide interpreter state; multiple runtimes are
independent of each other.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package runtime

import (
	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'nedmacro.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("nedmacro.runtime")
}

// Runtime is a type implementing a runtime environment for the macro
// virtual machine.
type Runtime struct {
	ScopeTree *ScopeTree        // builtins, globals and program scopes
	Pool      *value.StringPool // strings created during compilation and execution
	UData     interface{}       // extension point
}

// NewRuntimeEnvironment constructs a new runtime environment, initialized
// with an empty built-in scope and an empty global scope.
//
func NewRuntimeEnvironment() *Runtime {
	rt := &Runtime{}
	rt.ScopeTree = new(ScopeTree)
	rt.ScopeTree.PushNewScope("builtins")
	rt.ScopeTree.PushNewScope("globals")
	rt.Pool = value.NewStringPool()
	return rt
}

// Builtins returns the outermost scope.
func (rt *Runtime) Builtins() *Scope {
	return rt.ScopeTree.Base()
}

// Globals returns the scope of global variables and macro functions.
func (rt *Runtime) Globals() *Scope {
	sc := rt.ScopeTree.Current()
	for sc.Parent != nil && sc.Parent.Parent != nil {
		sc = sc.Parent
	}
	return sc
}

// InProgram is a predicate: is a program scope active?
func (rt *Runtime) InProgram() bool {
	return rt.ScopeTree.Current() != rt.Globals()
}

// BeginProgram pushes a new program scope.
func (rt *Runtime) BeginProgram(name string) *Scope {
	return rt.ScopeTree.PushNewScope(name)
}

// FinishProgram pops the current program scope. It panics if no program
// scope is active.
func (rt *Runtime) FinishProgram() *Scope {
	if !rt.InProgram() {
		panic("attempt to finish program without program scope")
	}
	return rt.ScopeTree.PopScope()
}

// LookupSymbol finds a symbol by name, searching the current program scope
// first, then the globals, then the built-ins. Returns nil if no symbol with
// this name exists. Literal constants are not found by name.
func (rt *Runtime) LookupSymbol(name string) *Symbol {
	sym, _ := rt.ScopeTree.Current().ResolveSymbol(name)
	return sym
}

// InstallSymbol creates a symbol and inserts it into the scope selected by
// its kind: constants, native functions and procedure values go to the
// built-ins, globals and macro functions to the globals, locals and
// arguments to the current program scope. A symbol with the same name in
// that scope is replaced.
// Returns the new symbol and the replaced one (or nil).
//
// Installing a local outside of a program scope is an error of the caller
// and will panic.
func (rt *Runtime) InstallSymbol(name string, kind Kind, v value.Value) (*Symbol, *Symbol) {
	var sc *Scope
	switch kind {
	case Const, ProcValue, NativeFunction:
		sc = rt.Builtins()
	case Global, MacroFunction:
		sc = rt.Globals()
	default:
		if !rt.InProgram() {
			panic("attempt to install local symbol outside of program scope")
		}
		sc = rt.ScopeTree.Current()
	}
	sym := NewSymbol(name, kind).WithValue(v)
	if kind == Local {
		sym.Index = sc.locals
		sc.locals++
	}
	old := sc.Symbols().InsertSymbol(sym)
	if old != nil {
		tracer().P("scope", sc.Name).Debugf("redefined %s", name)
	}
	return sym, old
}

// PromoteToGlobal rebinds a local symbol as a global one. If a global of
// the same name already exists, it is returned and sym is discarded from
// the program scope. Otherwise sym itself is moved to the global scope and
// turned into a global, initially unset.
// Symbols which are not locals are returned unchanged.
func (rt *Runtime) PromoteToGlobal(sym *Symbol) *Symbol {
	if sym == nil || sym.Kind != Local {
		return sym
	}
	for sc := rt.ScopeTree.Current(); sc != nil; sc = sc.Parent {
		if s := sc.Symbols().ResolveSymbol(sym.name); s == sym {
			sc.Symbols().Remove(sym.name)
			break
		}
	}
	globals := rt.Globals()
	if g := globals.Symbols().ResolveSymbol(sym.name); g != nil {
		return g
	}
	sym.Kind = Global
	sym.Index = 0
	sym.Value = value.None()
	globals.Symbols().InsertSymbol(sym)
	tracer().Debugf("promoted %s to global", sym.name)
	return sym
}

// InstallIteratorSymbol creates a fresh hidden local in the current program
// scope, used to hold the cursor of an array iteration.
func (rt *Runtime) InstallIteratorSymbol() *Symbol {
	sc := rt.ScopeTree.Current()
	name := iteratorName(sc.iterators)
	sc.iterators++
	sym, _ := rt.InstallSymbol(name, Local, value.None())
	return sym
}

// LookupStringConstSymbol finds the constant symbol for a string literal
// in the current compilation unit, or returns nil.
func (rt *Runtime) LookupStringConstSymbol(s string) *Symbol {
	return rt.ScopeTree.Current().strConsts[s]
}

// InstallStringConstSymbol returns the constant symbol for a string literal,
// creating it if it does not exist yet. Within a compilation unit, there is
// at most one constant symbol per distinct literal.
func (rt *Runtime) InstallStringConstSymbol(s string) *Symbol {
	sc := rt.ScopeTree.Current()
	if sym := sc.strConsts[s]; sym != nil {
		return sym
	}
	sym := NewSymbol(constName(sc.Constants.Size()), Const).WithValue(rt.Pool.Alloc(s))
	sc.strConsts[s] = sym
	sc.Constants.Add(sym)
	return sym
}

// InstallIntConstSymbol returns the constant symbol for an integer literal,
// creating it if it does not exist yet.
func (rt *Runtime) InstallIntConstSymbol(n int32) *Symbol {
	sc := rt.ScopeTree.Current()
	if sym := sc.intConsts[n]; sym != nil {
		return sym
	}
	sym := NewSymbol(constName(sc.Constants.Size()), Const).WithValue(value.Int(n))
	sc.intConsts[n] = sym
	sc.Constants.Add(sym)
	return sym
}

// EachValue is part of interface value.RootSet. It enumerates the values of
// all symbols and constants of the scopes on the scope stack.
func (rt *Runtime) EachValue(f func(value.Value)) {
	for sc := rt.ScopeTree.Current(); sc != nil; sc = sc.Parent {
		sc.EachValue(f)
	}
}
