/*
Command nmrepl is an interactive command line tool for macro programs in
assembler notation (see package asm). It serves as a sandbox for
experiments with the macro virtual machine.

Input is collected until it forms complete units: a single instruction line
or a define … end block. Top-level code is executed right away against a
scratch document, define blocks install macro functions. Macros suspended by
the instruction limit are resumed automatically, shell commands requested by
macros are run and their output is handed back to the macro. Pressing
<ctrl>C while a macro is running preempts and abandons it.

Commands start with a colon:

    :globals      list global variables and macro functions
    :gc           collect unused strings
    :doc [text]   show the scratch document, or replace its text
    :stack        show the frames of the most recent suspension
    :dis name     disassemble a macro function
    :quit         leave nmrepl

Configuration is read from NestedText files at the standard configuration
locations for the tag "nmrepl" (e.g. ~/.config/nmrepl/config.nt). Keys are
those of vm.ConfigFrom, plus "trace.<tracer-key>" for trace levels.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'nedmacro.repl'
func tracer() tracing.Trace {
	return tracing.Select("nedmacro.repl")
}
