package nedmacro

import "fmt"

// --- Host documents --------------------------------------------------------

// Document is the capability a host editor hands to the macro machinery.
// The virtual machine does not look into documents, it merely tracks which
// document a macro has been started from and which one has the focus.
// Native subroutines use a document to read and modify text.
//
// Positions are byte offsets into the document's text, starting at 0.
// Ranges are half-open: [from…to).
type Document interface {
	Name() string                            // a name to identify the document
	Length() int                             // text length in bytes
	Range(from, to int) (string, error)      // get a range of text
	Replace(from, to int, text string) error // replace a range of text
	Cursor() int                             // current cursor position
	SetCursor(pos int) error                 // move the cursor
}

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. We do not define any constants here, as
// it is up to applications to define them.
type TokType int

// Tokens represent input tokens of textual macro programs.
// They are produced by the assembler's scanner.
type Token interface {
	TokType() TokType
	Lexeme() string
	Span() Span
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a run of input positions. Diagnostics
// for textual macro programs carry a span to point to the offending
// input. A span denotes a start position and the position just
// behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull is a predicate: is this the zero span?
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns the smallest span covering both s and other.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
