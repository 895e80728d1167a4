package builtins

import (
	"errors"
	"fmt"
	"sync"

	"github.com/npillmayer/nedmacro"
	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/nedmacro/vm"
)

// TextDocument is an in-memory document. It is safe for concurrent use.
type TextDocument struct {
	mu     sync.RWMutex
	name   string
	text   []byte
	cursor int
}

var _ nedmacro.Document = (*TextDocument)(nil)

// ErrRange is returned for positions outside of a document.
var ErrRange = errors.New("position out of range")

// NewTextDocument creates a document with an initial text. The cursor is
// placed at the beginning.
func NewTextDocument(name string, text string) *TextDocument {
	return &TextDocument{name: name, text: []byte(text)}
}

// Name is part of interface nedmacro.Document.
func (d *TextDocument) Name() string {
	return d.name
}

// Length is part of interface nedmacro.Document.
func (d *TextDocument) Length() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Text returns the complete text of the document.
func (d *TextDocument) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return string(d.text)
}

// Range is part of interface nedmacro.Document.
func (d *TextDocument) Range(from, to int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if from < 0 || to < from || to > len(d.text) {
		return "", ErrRange
	}
	return string(d.text[from:to]), nil
}

// Replace is part of interface nedmacro.Document. A cursor behind the
// replaced range moves with the text.
func (d *TextDocument) Replace(from, to int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if from < 0 || to < from || to > len(d.text) {
		return ErrRange
	}
	t := make([]byte, 0, len(d.text)-(to-from)+len(text))
	t = append(t, d.text[:from]...)
	t = append(t, text...)
	t = append(t, d.text[to:]...)
	d.text = t
	switch {
	case d.cursor >= to:
		d.cursor += len(text) - (to - from)
	case d.cursor > from:
		d.cursor = from
	}
	return nil
}

// Cursor is part of interface nedmacro.Document.
func (d *TextDocument) Cursor() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cursor
}

// SetCursor is part of interface nedmacro.Document.
func (d *TextDocument) SetCursor(pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pos < 0 || pos > len(d.text) {
		return ErrRange
	}
	d.cursor = pos
	return nil
}

func (d *TextDocument) String() string {
	return fmt.Sprintf("<document %s[%d]>", d.name, d.Length())
}

// --- Document built-ins ----------------------------------------------------

func document(ctx *vm.CallContext) (nedmacro.Document, error) {
	doc := ctx.Document()
	if doc == nil {
		return nil, fmt.Errorf("%s: no document", ctx.Name())
	}
	return doc, nil
}

// docRange reads a pair of positions, clamped to the document and ordered.
func docRange(ctx *vm.CallContext, doc nedmacro.Document, args []value.Value) (int, int, error) {
	from, err := intArg(ctx, args, 0)
	if err != nil {
		return 0, 0, err
	}
	to, err := intArg(ctx, args, 1)
	if err != nil {
		return 0, 0, err
	}
	if from > to {
		from, to = to, from
	}
	n := doc.Length()
	return clamp(from, 0, n), clamp(to, 0, n), nil
}

// get_range(from, to)
func getRange(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 2, 2); err != nil {
		return value.None(), err
	}
	doc, err := document(ctx)
	if err != nil {
		return value.None(), err
	}
	from, to, err := docRange(ctx, doc, args)
	if err != nil {
		return value.None(), err
	}
	s, err := doc.Range(from, to)
	if err != nil {
		return value.None(), err
	}
	return ctx.Pool().Alloc(s), nil
}

// replace_range(from, to, text)
func replaceRange(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 3, 3); err != nil {
		return value.None(), err
	}
	doc, err := document(ctx)
	if err != nil {
		return value.None(), err
	}
	from, to, err := docRange(ctx, doc, args)
	if err != nil {
		return value.None(), err
	}
	text, err := strArg(ctx, args, 2)
	if err != nil {
		return value.None(), err
	}
	tracer().P("doc", doc.Name()).Debugf("replace_range(%d, %d)", from, to)
	return value.None(), doc.Replace(from, to, text)
}

// insert_string(text) inserts at the cursor and moves the cursor behind
// the inserted text.
func insertString(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 1, 1); err != nil {
		return value.None(), err
	}
	doc, err := document(ctx)
	if err != nil {
		return value.None(), err
	}
	text, err := strArg(ctx, args, 0)
	if err != nil {
		return value.None(), err
	}
	pos := doc.Cursor()
	if err = doc.Replace(pos, pos, text); err != nil {
		return value.None(), err
	}
	return value.None(), doc.SetCursor(pos + len(text))
}

// get_character(pos)
func getCharacter(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 1, 1); err != nil {
		return value.None(), err
	}
	doc, err := document(ctx)
	if err != nil {
		return value.None(), err
	}
	pos, err := intArg(ctx, args, 0)
	if err != nil {
		return value.None(), err
	}
	if pos < 0 || pos >= doc.Length() {
		return value.None(), fmt.Errorf("%s: position %d out of range", ctx.Name(), pos)
	}
	s, err := doc.Range(pos, pos+1)
	if err != nil {
		return value.None(), err
	}
	return ctx.Pool().Alloc(s), nil
}

// AddDocument makes a document known to focus_document. A document with the
// same name is replaced.
func (env *Env) AddDocument(doc nedmacro.Document) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.docs[doc.Name()] = doc
}

// focus_document(name) moves the focus of the calling macro to the document
// called name and returns its name. If no such document is known, the focus
// is left unchanged and the result is "".
func (env *Env) focusDocument(ctx *vm.CallContext, args []value.Value) (value.Value, error) {
	if err := checkArgs(ctx, args, 1, 1); err != nil {
		return value.None(), err
	}
	name, err := strArg(ctx, args, 0)
	if err != nil {
		return value.None(), err
	}
	m := ctx.Machine()
	doc := m.RunDocument()
	if doc == nil || doc.Name() != name {
		env.mu.Lock()
		doc = env.docs[name]
		env.mu.Unlock()
	}
	if doc == nil {
		tracer().Debugf("focus_document: unknown document %q", name)
		return ctx.Pool().Alloc(""), nil
	}
	m.SetFocusDocument(doc)
	return ctx.Pool().Alloc(m.FocusDocument().Name()), nil
}

// --- Procedure values ------------------------------------------------------

func cursorPV(ctx *vm.CallContext, _ []value.Value) (value.Value, error) {
	doc, err := document(ctx)
	if err != nil {
		return value.None(), err
	}
	return value.Int(int32(doc.Cursor())), nil
}

func textLengthPV(ctx *vm.CallContext, _ []value.Value) (value.Value, error) {
	doc, err := document(ctx)
	if err != nil {
		return value.None(), err
	}
	return value.Int(int32(doc.Length())), nil
}

func fileNamePV(ctx *vm.CallContext, _ []value.Value) (value.Value, error) {
	doc, err := document(ctx)
	if err != nil {
		return value.None(), err
	}
	return ctx.Pool().Alloc(doc.Name()), nil
}

func emptyArrayPV(*vm.CallContext, []value.Value) (value.Value, error) {
	return value.EmptyArray(), nil
}

func subSepPV(ctx *vm.CallContext, _ []value.Value) (value.Value, error) {
	return ctx.Pool().Alloc(value.DimSeparator), nil
}
