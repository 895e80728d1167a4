/*
Package nedmacro is the macro interpreter of a programmer's text editor.

NEdMacro runs the small macro language of the NEdit family of editors on a
stack-based virtual machine. Macros may be long-running: a macro waiting for a
shell command or for a dialog answer is suspended, handed to the host as a
continuation, and resumed later without losing its stack or its call frames.
Package structure is as follows:

■ value: Package value implements the tagged dynamic values of the macro language,
the interned string pool with its garbage collector, and associative arrays.

■ runtime: Package runtime provides the symbol table and the runtime context
which is shared by all macro invocations of an editor session.

■ vm: Package vm implements programs, the program builder, the interpreter loop
and the preemption/continuation machinery.

■ asm: Package asm implements a textual assembler for macro programs.

■ builtins: Package builtins provides a standard library of native subroutines,
including preempting ones, and an in-memory document for hosts and tests.

■ cmd/nmrepl: An interactive command line tool to assemble and run macros.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package nedmacro
