/*
Package asm implements a textual assembler for macro programs.

The assembler reads a line-oriented notation of the virtual machine's
instruction set and produces programs for package vm. It is meant for tests,
for the interactive REPL and for hosts which store pre-compiled macros as
text.

Syntax

Every line holds at most one instruction: an opcode name followed by its
operands. Comments start with a semicolon and extend to the end of the line.

    ; count down from 3
    define countdown
      local n
      PUSH_SYM 3
      ASSIGN n
    @loop:
      PUSH_SYM n
      BRANCH_FALSE @done
      PUSH_SYM n
      DECR
      ASSIGN n
      BRANCH @loop
    @done:
      PUSH_SYM n
      RETURN
    end

    SUBR_CALL countdown 0
    FETCH_RET_VAL
    RETURN

Operands are, depending on the opcode, symbols, immediates or branch
targets. A symbol operand is a string literal, an integer literal, an
argument reference $1, $2, … or an identifier. Identifiers are resolved
against locals, globals and built-ins, in this order; unknown identifiers
become globals. Immediates are integer literals. Branch targets are labels
(@name), defined by "@name:" at the beginning of a line, or integer offsets
relative to the operand.

"define name … end" blocks create macro functions. They may call each other
regardless of the order of definition. "local name" declares a local
variable of the enclosing block, "global name" makes a name global, even if
it has been declared local. Lines outside of define blocks form the
top-level program. Every program is terminated by an implicit
RETURN_NO_VAL.

String literals are enclosed in double quotes and may contain the escapes
\n, \t, \", \\ and \034 (the array subscript separator).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package asm

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'nedmacro.asm'.
func tracer() tracing.Trace {
	return tracing.Select("nedmacro.asm")
}
