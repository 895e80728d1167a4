/*
Package builtins implements a standard library of built-in subroutines for
macros: string functions, access to the host document and built-ins which
suspend a macro until the host has answered a request.

Built-ins are installed into a virtual machine with Install:

    m := vm.NewMachine(vm.DefaultConfig())
    env := builtins.Install(m, builtins.WithOutput(os.Stderr))

Document Access

Document functions operate on the focus document of the calling macro,
which is the document the macro has been started for unless a built-in
changed the focus. focus_document switches the focus to the run document
or to a document made known with WithDocuments or Env.AddDocument. The
focus stays with the macro while it is suspended. TextDocument is a simple
in-memory document suitable for tests and for the REPL.

Suspending Built-ins

shell_command and wait_for cannot be answered by the virtual machine
itself. They suspend the calling macro and attach a request (ShellCommand
or WaitRequest) to the continuation. The host fulfills the request,
injects the answer with Continuation.ModifyReturnedValue and resumes the
macro. Env.RunShellCommand runs shell commands for hosts which allow it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package builtins

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'nedmacro.builtins'.
func tracer() tracing.Trace {
	return tracing.Select("nedmacro.builtins")
}
