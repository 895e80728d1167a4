/*
Package vm implements the virtual machine executing editor macros.

Macros are compiled to programs for a small stack machine. A program is a
sequence of instructions, each of which is either an opcode, an immediate
operand or a reference to a symbol. Opcodes consume their operands from the
instruction stream and pop their arguments from an operand stack.

Call Frames

Subroutine calls keep their frames on the operand stack. A frame has the
following layout, with the frame pointer denoting the first local variable:

    arg 1 … arg n | return address | caller's frame pointer | n | $args cache | local 1 … local k
                                                                                ^ frame pointer

Native subroutines (built-ins) do not get a frame: they receive their
arguments as a slice and return a value to the machine.

Preemption

A macro may be suspended between any two instructions, either because a
built-in asked for it (e.g., to wait for a shell command or a dialog) or
because the machine executed its instruction budget. In both cases the
machine returns a Continuation, which holds the complete execution state.
The host resumes the macro by handing the continuation back to the machine.
Continuations are one-shot: they may be resumed or freed exactly once.

Hosts may request preemption from any goroutine with Machine.PreemptMacro.
A request stays pending until a macro has executed its next instruction,
so a request issued while a macro is suspended takes effect right after
the macro has been resumed.

Garbage Collection

Strings created during execution are allocated from the string pool of the
machine's runtime environment. The machine collects the pool between
instructions only, treating the operand stacks of the running macro and of
all suspended macros, the global symbols and the literal constants of
reachable programs as roots.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package vm

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'nedmacro.vm'.
func tracer() tracing.Trace {
	return tracing.Select("nedmacro.vm")
}
