package vm

import (
	"github.com/npillmayer/nedmacro/value"
)

// Distances of the frame words from the frame pointer.
const (
	fpArgArray   = 1 // cache for $args
	fpArgCount   = 2 // number of arguments
	fpOldFP      = 3 // caller's frame pointer
	fpRetPC      = 4 // return address
	fpToArgsDist = 4 // frame words between arguments and locals
)

// returnAddress is the continuation point of a caller.
type returnAddress struct {
	prog *Program
	pc   int
}

// EachValue keeps the caller's program constants alive.
func (ra returnAddress) EachValue(f func(value.Value)) {
	ra.prog.EachValue(f)
}

// frameLink is a saved frame pointer.
type frameLink int

// pushFrame creates a frame for prog on top of nArgs arguments already on
// the stack and makes it current. ret is the return address, or the
// no-value for the outermost frame.
func (c *context) pushFrame(prog *Program, nArgs int, ret value.Value) {
	c.push(ret)
	c.push(value.Internal(frameLink(c.fp)))
	c.push(value.Int(int32(nArgs)))
	c.push(value.None())
	c.fp = c.sp
	for i := 0; i < prog.NumLocals(); i++ {
		c.push(value.None())
	}
	c.prog = prog
	c.pc = 0
}

// popFrame removes the current frame including its arguments and returns the
// return address stored in it. The caller's frame becomes current.
func (c *context) popFrame() value.Value {
	nArgs := c.argCount()
	ret := c.stack[c.fp-fpRetPC]
	oldFP := int(c.stack[c.fp-fpOldFP].Internal().(frameLink))
	for c.sp > c.fp-fpToArgsDist-nArgs {
		c.sp--
		c.stack[c.sp] = value.None()
	}
	c.fp = oldFP
	return ret
}

func (c *context) argCount() int {
	n, _ := c.stack[c.fp-fpArgCount].Int()
	return int(n)
}

// arg returns the argument with 0-based index i of the current frame.
func (c *context) arg(i int) value.Value {
	return c.stack[c.fp-fpToArgsDist-c.argCount()+i]
}

func (c *context) argArrayCache() *value.Value {
	return &c.stack[c.fp-fpArgArray]
}

// local returns the slot of the local variable with index i.
func (c *context) local(i int) *value.Value {
	if i < 0 || c.fp+i >= c.sp {
		panic(BytecodeError{Msg: "local variable slot out of frame", PC: c.pc})
	}
	return &c.stack[c.fp+i]
}

// Frame describes a call frame of a macro, for debugging.
type Frame struct {
	Macro  string        // name of the program executing in this frame
	PC     int           // position of the next instruction
	Args   []value.Value // actual arguments
	Locals []value.Value // local variables, in slot order
}

// frames lists the call frames of a context, innermost first.
func (c *context) frames() []Frame {
	var frames []Frame
	prog, pc, fp := c.prog, c.pc, c.fp
	for prog != nil && fp >= fpToArgsDist {
		n, _ := c.stack[fp-fpArgCount].Int()
		nArgs := int(n)
		frame := Frame{Macro: prog.Name(), PC: pc}
		frame.Args = append(frame.Args, c.stack[fp-fpToArgsDist-nArgs:fp-fpToArgsDist]...)
		for i := 0; i < prog.NumLocals() && fp+i < c.sp; i++ {
			frame.Locals = append(frame.Locals, c.stack[fp+i])
		}
		frames = append(frames, frame)
		ra, ok := c.stack[fp-fpRetPC].Internal().(returnAddress)
		if !ok {
			break
		}
		prog, pc = ra.prog, ra.pc
		fp = int(c.stack[fp-fpOldFP].Internal().(frameLink))
	}
	return frames
}
