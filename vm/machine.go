package vm

import (
	"sync"
	"sync/atomic"

	"github.com/npillmayer/nedmacro"
	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
)

// NativeFunc is the signature of built-in subroutines. A built-in receives
// a call context and a private copy of its arguments. It either returns a
// value (the no-value if it does not produce one) or an error, which aborts
// the macro with MacroError.
//
// A built-in which has to wait for an external event calls Suspend on the
// call context and returns a placeholder value. The host injects the real
// value with Continuation.ModifyReturnedValue before resuming.
type NativeFunc func(ctx *CallContext, args []value.Value) (value.Value, error)

// Machine is a virtual machine for macros. It owns a runtime environment
// (built-ins, globals and string pool), which is shared by all macros
// executed and suspended on this machine.
//
// Execute, Continue, FreeContinuation, DefineMacro and Collect are
// serialized. They must not be called from within a built-in; built-ins use
// their CallContext.
type Machine struct {
	mu        sync.Mutex
	rt        *runtime.Runtime
	config    Config
	preempt   int32                      // atomic preemption request
	cur       *context                   // context of the macro executing
	suspended map[*Continuation]struct{} // live continuations
	pending   interface{}                // host data attached by Suspend
	steps     int                        // instructions since last collection
}

// NewMachine creates a virtual machine with an empty runtime environment.
func NewMachine(config Config) *Machine {
	if config.InstructionLimit <= 0 {
		config.InstructionLimit = DefaultInstructionLimit
	}
	if config.StackSize <= 0 {
		config.StackSize = DefaultStackSize
	}
	if config.ProgramSize <= 0 {
		config.ProgramSize = DefaultProgramSize
	}
	return &Machine{
		rt:        runtime.NewRuntimeEnvironment(),
		config:    config,
		suspended: make(map[*Continuation]struct{}),
	}
}

// Runtime returns the runtime environment of the machine.
func (m *Machine) Runtime() *runtime.Runtime {
	return m.rt
}

// Config returns the machine's parameters.
func (m *Machine) Config() Config {
	return m.config
}

// NewBuilder starts the creation of a program in the machine's runtime
// environment, limited to the configured program size.
func (m *Machine) NewBuilder(name string) *Builder {
	b := NewBuilder(m.rt, name)
	b.maxSize = m.config.ProgramSize
	return b
}

// RegisterNative installs a built-in subroutine under name.
func (m *Machine) RegisterNative(name string, fn NativeFunc) *runtime.Symbol {
	sym, _ := m.rt.InstallSymbol(name, runtime.NativeFunction, value.Internal(fn))
	return sym
}

// RegisterProcValue installs a read-only variable under name, whose value is
// computed by fn each time it is read. fn is called without arguments.
func (m *Machine) RegisterProcValue(name string, fn NativeFunc) *runtime.Symbol {
	sym, _ := m.rt.InstallSymbol(name, runtime.ProcValue, value.Internal(fn))
	return sym
}

// DefineMacro makes prog callable as a macro function under name. If a
// macro function of this name exists, its definition is replaced in place,
// so already compiled callers will call the new definition.
func (m *Machine) DefineMacro(name string, prog *Program) *runtime.Symbol {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prog.name == "" {
		prog.name = name
	}
	if sym := m.rt.Globals().Symbols().ResolveSymbol(name); sym != nil && sym.Kind == runtime.MacroFunction {
		sym.Value = value.Internal(prog)
		tracer().Infof("redefined macro %s", name)
		return sym
	}
	sym, _ := m.rt.InstallSymbol(name, runtime.MacroFunction, value.Internal(prog))
	tracer().Infof("defined macro %s", name)
	return sym
}

// LookupMacro returns the program of a macro function.
func (m *Machine) LookupMacro(name string) (*Program, error) {
	sym := m.rt.LookupSymbol(name)
	if sym == nil || sym.Kind != runtime.MacroFunction {
		return nil, ErrNotAMacro
	}
	return sym.Value.Internal().(*Program), nil
}

// Execute starts the execution of prog for document doc, with args as its
// arguments. It returns when the macro completes, fails, is preempted or
// exhausts its instruction budget. In the latter two cases a continuation is
// returned, which has to be handed to Continue or FreeContinuation.
//
// On MacroDone, the result is the value returned by the macro (the no-value
// if it did not return one). On MacroError, err is an *ExecError.
func (m *Machine) Execute(doc nedmacro.Document, prog *Program, args []value.Value) (
	ExecStatus, value.Value, *Continuation, error) {
	//
	if prog == nil {
		return MacroError, value.None(), nil, ErrNoProgram
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := newContext(m.config.StackSize, doc)
	if len(args)+fpToArgsDist+prog.NumLocals() > len(c.stack) {
		return MacroError, value.None(), nil, execError("macro stack overflow")
	}
	for _, a := range args {
		c.push(m.rt.Pool.AllocCopy(a))
	}
	c.pushFrame(prog, len(args), value.None())
	tracer().P("macro", prog.Name()).Infof("execute with %d arguments", len(args))
	return m.run(c)
}

// Continue resumes a macro where it has been suspended. The continuation is
// consumed: it may not be used again, not even if the macro is suspended
// again (a new continuation is returned in this case).
func (m *Machine) Continue(cont *Continuation) (ExecStatus, value.Value, *Continuation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.release(cont); err != nil {
		return MacroError, value.None(), nil, err
	}
	tracer().P("macro", cont.ctx.prog.Name()).Debugf("continue at %d", cont.ctx.pc)
	return m.run(cont.ctx)
}

// FreeContinuation abandons a suspended macro without resuming it.
func (m *Machine) FreeContinuation(cont *Continuation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.release(cont); err != nil {
		return err
	}
	tracer().P("macro", cont.ctx.prog.Name()).Infof("abandoned")
	cont.ctx.stack = nil
	return nil
}

// release invalidates a continuation, which has to be live.
func (m *Machine) release(cont *Continuation) error {
	if cont == nil || cont.used {
		return ErrContinuationUsed
	}
	if _, ok := m.suspended[cont]; !ok {
		return ErrContinuationUsed
	}
	delete(m.suspended, cont)
	cont.used = true
	return nil
}

// suspend wraps the current context into a continuation.
func (m *Machine) suspend(c *context, status ExecStatus) *Continuation {
	cont := &Continuation{ctx: c, status: status, pending: m.pending, m: m}
	m.pending = nil
	m.suspended[cont] = struct{}{}
	return cont
}

// PreemptMacro requests the suspension of the executing macro. It takes
// effect after the instruction currently executing has completed. It is
// safe to call PreemptMacro from any goroutine.
//
// A request is kept until it has been served: if no macro is executing,
// the next macro started or resumed on this machine is preempted after its
// first instruction.
func (m *Machine) PreemptMacro() {
	atomic.StoreInt32(&m.preempt, 1)
}

func (m *Machine) preemptRequested() bool {
	return atomic.SwapInt32(&m.preempt, 0) != 0
}

// Suspended returns the number of live continuations.
func (m *Machine) Suspended() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.suspended)
}

// --- Documents -------------------------------------------------------------

// RunDocument returns the document the executing macro was started for.
// It is meant to be called from built-ins and returns nil if no macro
// is executing.
func (m *Machine) RunDocument() nedmacro.Document {
	if m.cur == nil {
		return nil
	}
	return m.cur.runDoc
}

// FocusDocument returns the document the executing macro operates on. It is
// the run document unless a built-in changed the focus.
func (m *Machine) FocusDocument() nedmacro.Document {
	if m.cur == nil {
		return nil
	}
	return m.cur.focusDoc
}

// SetFocusDocument changes the document the executing macro operates on.
func (m *Machine) SetFocusDocument(doc nedmacro.Document) {
	if m.cur != nil {
		m.cur.focusDoc = doc
	}
}

// --- Garbage collection ----------------------------------------------------

// Collect reclaims the strings of the pool which are no longer reachable
// from the globals, the executing macro or any suspended macro. Returns the
// number of strings reclaimed.
func (m *Machine) Collect() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect()
}

func (m *Machine) collect() int {
	roots := []value.RootSet{m.rt}
	if m.cur != nil {
		roots = append(roots, m.cur)
	}
	for cont := range m.suspended {
		roots = append(roots, cont)
	}
	m.steps = 0
	return m.rt.Pool.Collect(roots...)
}
