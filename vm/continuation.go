package vm

import (
	"github.com/cnf/structhash"
	"github.com/npillmayer/nedmacro/value"
	"gopkg.in/yaml.v2"
)

// Continuation holds the execution state of a suspended macro: its operand
// stack with all call frames, the program counter and the documents it runs
// for. It is created by Execute or Continue and consumed by exactly one call
// to Continue or FreeContinuation.
type Continuation struct {
	ctx     *context
	status  ExecStatus
	pending interface{}
	used    bool
	m       *Machine
}

// Status tells why the macro has been suspended: MacroPreempt or
// MacroTimeLimit.
func (c *Continuation) Status() ExecStatus {
	return c.status
}

// Pending returns the data a built-in attached when it suspended the macro,
// or nil.
func (c *Continuation) Pending() interface{} {
	return c.pending
}

// Macro returns the name of the program executing when the macro was
// suspended.
func (c *Continuation) Macro() string {
	return c.ctx.prog.Name()
}

// Valid is a predicate: may the continuation still be resumed or freed?
func (c *Continuation) Valid() bool {
	return !c.used
}

// ModifyReturnedValue replaces the value returned by the built-in which
// suspended the macro, if the macro uses it. Strings are copied to the
// machine's string pool.
func (c *Continuation) ModifyReturnedValue(v value.Value) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if c.used {
		return
	}
	ctx := c.ctx
	if ctx.pc < 1 || ctx.sp < 1 {
		return
	}
	if inst := ctx.prog.code[ctx.pc-1]; inst.Kind == OpInst && inst.Op == OpFetchRetVal {
		ctx.stack[ctx.sp-1] = c.m.rt.Pool.AllocCopy(v)
	}
}

// Frames lists the call frames of the suspended macro, innermost first.
func (c *Continuation) Frames() []Frame {
	if c.used {
		return nil
	}
	return c.ctx.frames()
}

// EachValue is part of interface value.RootSet.
func (c *Continuation) EachValue(f func(value.Value)) {
	if !c.used {
		c.ctx.EachValue(f)
	}
}

// --- Debugging -------------------------------------------------------------

// Snapshot is a printable image of a suspended macro.
type Snapshot struct {
	Status   string          `yaml:"status"`
	Macro    string          `yaml:"macro"`
	PC       int             `yaml:"pc"`
	SP       int             `yaml:"sp"`
	FP       int             `yaml:"fp"`
	Document string          `yaml:"document,omitempty" hash:"-"`
	Frames   []FrameSnapshot `yaml:"frames"`
}

// FrameSnapshot is a printable image of a call frame.
type FrameSnapshot struct {
	Macro  string   `yaml:"macro"`
	PC     int      `yaml:"pc"`
	Args   []string `yaml:"args,flow"`
	Locals []string `yaml:"locals,flow"`
}

// Snapshot creates an image of the state of the suspended macro.
func (c *Continuation) Snapshot() Snapshot {
	snap := Snapshot{
		Status: c.status.String(),
		Macro:  c.ctx.prog.Name(),
		PC:     c.ctx.pc,
		SP:     c.ctx.sp,
		FP:     c.ctx.fp,
	}
	if c.ctx.runDoc != nil {
		snap.Document = c.ctx.runDoc.Name()
	}
	strs := func(vals []value.Value) []string {
		s := make([]string, len(vals))
		for i, v := range vals {
			s[i] = v.String()
		}
		return s
	}
	for _, f := range c.Frames() {
		snap.Frames = append(snap.Frames, FrameSnapshot{
			Macro:  f.Macro,
			PC:     f.PC,
			Args:   strs(f.Args),
			Locals: strs(f.Locals),
		})
	}
	return snap
}

// Fingerprint returns a hash of the state of the suspended macro. Two
// continuations with the same program position, frames and variable
// contents have the same fingerprint.
func (c *Continuation) Fingerprint() (string, error) {
	return structhash.Hash(c.Snapshot(), 1)
}

// Dump renders the state of the suspended macro as YAML.
func (c *Continuation) Dump() (string, error) {
	out, err := yaml.Marshal(c.Snapshot())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
