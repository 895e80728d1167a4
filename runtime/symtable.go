package runtime

import (
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/nedmacro/value"
)

// Symbol table for macro symbols. Symbol tables are attached to scopes.
// Scopes are organized in a tree.
//

// --- Symbols ---------------------------------------------------------------

// Kind is the kind of a symbol.
type Kind int8

// Symbol kinds.
const (
	Const          Kind = iota // literal, owned by a compilation unit
	Global                     // global variable
	Local                      // local variable, frame-relative
	Arg                        // positional argument, frame-relative
	ProcValue                  // read-only value computed by a native routine
	NativeFunction             // built-in subroutine
	MacroFunction              // subroutine defined by a macro program
)

func (k Kind) String() string {
	switch k {
	case Const:
		return "const"
	case Global:
		return "global"
	case Local:
		return "local"
	case Arg:
		return "arg"
	case ProcValue:
		return "proc-value"
	case NativeFunction:
		return "native"
	case MacroFunction:
		return "macro"
	}
	return "?"
}

// Symbol is a named binding. Constants and globals hold their value
// directly; locals and arguments hold a frame-relative Index instead.
// Native functions, procedure values and macro functions carry their
// implementation as an internal value.
//
type Symbol struct {
	name  string
	Kind  Kind
	Value value.Value
	Index int
}

// NewSymbol creates a new symbol.
func NewSymbol(name string, kind Kind) *Symbol {
	return &Symbol{name: name, Kind: kind}
}

// WithValue sets the initial value of a symbol. Use as
//
//    sym := NewSymbol("x", Global).WithValue(value.Int(1))
//
func (s *Symbol) WithValue(v value.Value) *Symbol {
	s.Value = v
	return s
}

// Name gets the symbol's name.
func (s *Symbol) Name() string {
	return s.name
}

// String is a debug Stringer for symbols.
func (s *Symbol) String() string {
	switch s.Kind {
	case Local, Arg:
		return fmt.Sprintf("<%s %s#%d>", s.Kind, s.name, s.Index)
	}
	return fmt.Sprintf("<%s %s=%v>", s.Kind, s.name, s.Value)
}

func constName(n int) string {
	return "const#" + strconv.Itoa(n)
}

func iteratorName(n int) string {
	return "aryiter #" + strconv.Itoa(n)
}

// === Symbol Tables =========================================================

// SymbolTable is a symbol table to store symbols (map-like semantics).
type SymbolTable struct {
	Table map[string]*Symbol
}

// NewSymbolTable creates an empty symbol table.
//
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Table: make(map[string]*Symbol),
	}
}

// ResolveSymbol checks for a symbol in the symbol table.
// Returns a symbol or nil.
//
func (t *SymbolTable) ResolveSymbol(name string) *Symbol {
	return t.Table[name]
}

// InsertSymbol inserts a pre-created symbol, replacing a symbol with the same
// name. Returns the replaced symbol or nil.
func (t *SymbolTable) InsertSymbol(sym *Symbol) *Symbol {
	old := t.ResolveSymbol(sym.name)
	t.Table[sym.name] = sym
	return old
}

// Remove removes a symbol from the table.
func (t *SymbolTable) Remove(name string) {
	delete(t.Table, name)
}

// Size counts the symbols in a symbol table.
func (t *SymbolTable) Size() int {
	return len(t.Table)
}

// Each iterates over each symbol in the table, executing a mapper function.
func (t *SymbolTable) Each(mapper func(string, *Symbol)) {
	for k, v := range t.Table {
		mapper(k, v)
	}
}

// === Scopes ================================================================

// Scope is a named scope, which may contain symbol definitions. Scopes link
// back to a parent scope, forming a tree.
//
// Program scopes additionally own the literal constants of their
// compilation unit.
type Scope struct {
	Name      string
	Parent    *Scope
	Constants *arraylist.List // of *Symbol, in order of creation
	symtab    *SymbolTable
	strConsts map[string]*Symbol
	intConsts map[int32]*Symbol
	locals    int
	iterators int
}

// NewScope creates a new scope.
func NewScope(nm string, parent *Scope) *Scope {
	return &Scope{
		Name:      nm,
		Parent:    parent,
		Constants: arraylist.New(),
		symtab:    NewSymbolTable(),
		strConsts: make(map[string]*Symbol),
		intConsts: make(map[int32]*Symbol),
	}
}

// Prettyfied Stringer.
func (s *Scope) String() string {
	return fmt.Sprintf("<scope %s>", s.Name)
}

// Symbols returns the symbol table of a scope.
func (s *Scope) Symbols() *SymbolTable {
	return s.symtab
}

// LocalsCount returns the number of local variable slots allocated in
// this scope.
func (s *Scope) LocalsCount() int {
	return s.locals
}

// ConstSymbols returns the constants of a scope in order of creation.
func (s *Scope) ConstSymbols() []*Symbol {
	consts := make([]*Symbol, 0, s.Constants.Size())
	for _, c := range s.Constants.Values() {
		consts = append(consts, c.(*Symbol))
	}
	return consts
}

// ResolveSymbol finds a symbol. Returns the symbol (or nil) and a scope.
// The scope is the scope (of a scope-tree-path) the symbol was found in.
//
func (s *Scope) ResolveSymbol(name string) (*Symbol, *Scope) {
	for ; s != nil; s = s.Parent {
		if sym := s.symtab.ResolveSymbol(name); sym != nil {
			return sym, s
		}
	}
	return nil, nil
}

// EachValue is part of interface value.RootSet. It enumerates the values of
// the symbols and constants in this scope (not of its parents).
func (s *Scope) EachValue(f func(value.Value)) {
	for _, sym := range s.symtab.Table {
		f(sym.Value)
	}
	for _, c := range s.Constants.Values() {
		f(c.(*Symbol).Value)
	}
}

// ---------------------------------------------------------------------------

// ScopeTree can be treated as a stack during program construction, thus
// building a tree from scopes which are pushed and popped to/from the stack.
//
type ScopeTree struct {
	ScopeBase *Scope
	ScopeTOS  *Scope
}

// Current gets the current scope of a stack (TOS).
func (scst *ScopeTree) Current() *Scope {
	if scst.ScopeTOS == nil {
		panic("attempt to access scope from empty stack")
	}
	return scst.ScopeTOS
}

// Base gets the outermost scope.
func (scst *ScopeTree) Base() *Scope {
	if scst.ScopeBase == nil {
		panic("attempt to access base scope from empty stack")
	}
	return scst.ScopeBase
}

// PushNewScope pushes a scope onto the stack of scopes. A scope is
// constructed, including a symbol table for declarations.
func (scst *ScopeTree) PushNewScope(nm string) *Scope {
	scp := scst.ScopeTOS
	newsc := NewScope(nm, scp)
	if scp == nil {
		scst.ScopeBase = newsc
	}
	scst.ScopeTOS = newsc
	tracer().P("scope", newsc.Name).Debugf("pushing new scope")
	return newsc
}

// PopScope pops the top-most (recent) scope.
func (scst *ScopeTree) PopScope() *Scope {
	if scst.ScopeTOS == nil {
		panic("attempt to pop scope from empty stack")
	}
	sc := scst.ScopeTOS
	tracer().Debugf("popping scope [%s]", sc.Name)
	scst.ScopeTOS = scst.ScopeTOS.Parent
	return sc
}
