/*
Package value implements the dynamic values of the macro language.

A Value is a tagged variant: an integer, a string, an array, or an internal
datum which is never visible to macros (program references, return
addresses, iteration cursors). The active member is determined by the tag
and can only be read through checked accessors.

Strings

Strings are immutable byte strings with an explicit length; NUL bytes are
ordinary content. Strings created during macro execution are allocated from a
StringPool, which interns them. A pool is garbage collected by a simple
mark-and-sweep pass between execution steps of the virtual machine.

Arrays

Arrays are associative arrays with string keys, backed by a red-black tree.
Iteration visits keys in ascending byte-wise order. Multi-dimensional
subscripts are joined into a single key, separated by byte 034
(see MakeKey). This is a compatibility convention of the macro language:
a subscript containing the separator byte may collide with a
multi-dimensional key.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package value

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'nedmacro.value'.
func tracer() tracing.Trace {
	return tracing.Select("nedmacro.value")
}
