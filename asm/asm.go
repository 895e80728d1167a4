package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/nedmacro"
	"github.com/npillmayer/nedmacro/runtime"
	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/nedmacro/vm"
)

// SyntaxError is returned for malformed assembler input.
type SyntaxError struct {
	Line int           // line number, starting at 1
	Span nedmacro.Span // byte positions of the offending input
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func syntaxError(tok token, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Line: tok.line,
		Span: tok.span,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Assemble translates the text of a macro program for machine m. Define
// blocks are installed as macro functions of m, the top-level code is
// returned as a program with the given name.
//
// If assembly fails, macro functions defined by earlier blocks of the input
// stay installed.
func Assemble(m *vm.Machine, name string, text string) (*vm.Program, error) {
	lines, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	top, defs, err := split(lines)
	if err != nil {
		return nil, err
	}
	// make all macros known before assembling any block, allowing forward
	// references and recursion
	for _, def := range defs {
		if _, err := m.LookupMacro(def.name); err == nil {
			continue
		}
		placeholder, err := m.NewBuilder(def.name).Finish()
		if err != nil {
			return nil, err
		}
		m.DefineMacro(def.name, placeholder)
	}
	for _, def := range defs {
		prog, err := assembleUnit(m, def)
		if err != nil {
			return nil, err
		}
		m.DefineMacro(def.name, prog)
	}
	top.name = name
	return assembleUnit(m, top)
}

// line is a non-empty line of input tokens.
type line []token

// unit is a sequence of lines compiled into a single program.
type unit struct {
	name  string
	lines []line
}

// tokenize splits the input into lines of tokens, dropping empty lines.
func tokenize(text string) ([]line, error) {
	lm, err := adapter()
	if err != nil {
		return nil, err
	}
	scanner, err := lm.scanner(text)
	if err != nil {
		return nil, err
	}
	var lines []line
	var cur line
	for {
		tok := scanner.nextToken()
		if scanner.err != nil {
			return nil, &SyntaxError{Line: scanner.line, Msg: scanner.err.Error()}
		}
		if tok.typ == tokNewline || tok.typ == tokEOF {
			if len(cur) > 0 {
				lines = append(lines, cur)
				cur = nil
			}
			if tok.typ == tokEOF {
				break
			}
			continue
		}
		cur = append(cur, tok)
	}
	tracer().Debugf("scanned %d lines", len(lines))
	return lines, nil
}

// split separates define blocks from top-level code.
func split(lines []line) (unit, []unit, error) {
	var top unit
	var defs []unit
	var def *unit
	for _, l := range lines {
		first := l[0]
		switch {
		case first.typ == tokIdent && first.lexeme == "define":
			if def != nil {
				return top, nil, syntaxError(first, "nested define")
			}
			if len(l) != 2 || l[1].typ != tokIdent {
				return top, nil, syntaxError(first, "define expects a macro name")
			}
			def = &unit{name: l[1].lexeme}
		case first.typ == tokIdent && first.lexeme == "end":
			if def == nil {
				return top, nil, syntaxError(first, "end without define")
			}
			if len(l) != 1 {
				return top, nil, syntaxError(l[1], "unexpected %s after end", tokenNames[l[1].typ])
			}
			defs = append(defs, *def)
			def = nil
		case def != nil:
			def.lines = append(def.lines, l)
		default:
			top.lines = append(top.lines, l)
		}
	}
	if def != nil {
		return top, nil, &SyntaxError{Msg: fmt.Sprintf("define %s is missing its end", def.name)}
	}
	return top, defs, nil
}

// --- Assembling a unit -----------------------------------------------------

type assembler struct {
	b      *vm.Builder
	rt     *runtime.Runtime
	labels map[string]int
	fixups []fixup
}

// fixup is a branch offset waiting for its label to be defined.
type fixup struct {
	at    int
	label token
}

func assembleUnit(m *vm.Machine, u unit) (*vm.Program, error) {
	a := &assembler{
		b:      m.NewBuilder(u.name),
		rt:     m.Runtime(),
		labels: make(map[string]int),
	}
	for _, l := range u.lines {
		if err := a.line(l); err != nil {
			a.b.Abandon()
			return nil, err
		}
	}
	for _, f := range a.fixups {
		target, ok := a.labels[f.label.lexeme]
		if !ok {
			a.b.Abandon()
			return nil, syntaxError(f.label, "undefined label %s", f.label.lexeme)
		}
		a.b.SetBranchOffset(f.at, target)
	}
	return a.b.Finish()
}

func (a *assembler) line(l line) error {
	if l[0].typ == tokLabel && strings.HasSuffix(l[0].lexeme, ":") {
		label := strings.TrimSuffix(l[0].lexeme, ":")
		if _, dup := a.labels[label]; dup {
			return syntaxError(l[0], "label %s defined twice", label)
		}
		a.labels[label] = a.b.PC()
		l = l[1:]
		if len(l) == 0 {
			return nil
		}
	}
	head := l[0]
	if head.typ != tokIdent {
		return syntaxError(head, "expected opcode, got %s", tokenNames[head.typ])
	}
	switch head.lexeme {
	case "local":
		return a.declare(l, runtime.Local)
	case "global":
		return a.declare(l, runtime.Global)
	}
	op, ok := vm.OpcodeByName(strings.ToUpper(head.lexeme))
	if !ok || op == vm.NOps {
		return syntaxError(head, "unknown opcode %s", head.lexeme)
	}
	kinds := op.Operands()
	if len(l)-1 != len(kinds) {
		return syntaxError(head, "%s expects %d operand(s), has %d", op, len(kinds), len(l)-1)
	}
	if err := a.b.AddOp(op); err != nil {
		return fmt.Errorf("line %d: %w", head.line, err)
	}
	for i, k := range kinds {
		var err error
		switch k {
		case 's':
			err = a.symbol(l[i+1])
		case 'i':
			err = a.immediate(l[i+1])
		case 'o':
			err = a.offset(l[i+1])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// declare handles "local x" and "global x".
func (a *assembler) declare(l line, kind runtime.Kind) error {
	if len(l) != 2 || l[1].typ != tokIdent {
		return syntaxError(l[0], "%s expects a variable name", l[0].lexeme)
	}
	name := l[1].lexeme
	sym := a.rt.LookupSymbol(name)
	if kind == runtime.Local {
		if sym != nil && sym.Kind == runtime.Local {
			return syntaxError(l[1], "local %s declared twice", name)
		}
		a.rt.InstallSymbol(name, runtime.Local, value.None())
		return nil
	}
	switch {
	case sym == nil:
		a.rt.InstallSymbol(name, runtime.Global, value.None())
	case sym.Kind == runtime.Local:
		a.rt.PromoteToGlobal(sym)
	case sym.Kind != runtime.Global:
		return syntaxError(l[1], "%s is not a variable", name)
	}
	return nil
}

func (a *assembler) symbol(tok token) error {
	var sym *runtime.Symbol
	switch tok.typ {
	case tokString:
		sym = a.rt.InstallStringConstSymbol(unquote(tok.lexeme))
	case tokInt:
		n, err := strconv.ParseInt(tok.lexeme, 10, 32)
		if err != nil {
			return syntaxError(tok, "integer out of range: %s", tok.lexeme)
		}
		sym = a.rt.InstallIntConstSymbol(int32(n))
	case tokArg:
		n, err := strconv.Atoi(tok.lexeme[1:])
		if err != nil || n < 1 {
			return syntaxError(tok, "invalid argument reference %s", tok.lexeme)
		}
		if sym = a.rt.LookupSymbol(tok.lexeme); sym == nil {
			sym, _ = a.rt.InstallSymbol(tok.lexeme, runtime.Arg, value.None())
			sym.Index = n - 1
		}
	case tokIdent:
		if sym = a.rt.LookupSymbol(tok.lexeme); sym == nil {
			sym, _ = a.rt.InstallSymbol(tok.lexeme, runtime.Global, value.None())
		}
	default:
		return syntaxError(tok, "expected symbol, got %s", tokenNames[tok.typ])
	}
	if err := a.b.AddSym(sym); err != nil {
		return fmt.Errorf("line %d: %w", tok.line, err)
	}
	return nil
}

func (a *assembler) immediate(tok token) error {
	if tok.typ != tokInt {
		return syntaxError(tok, "expected integer, got %s", tokenNames[tok.typ])
	}
	n, err := strconv.ParseInt(tok.lexeme, 10, 32)
	if err != nil {
		return syntaxError(tok, "integer out of range: %s", tok.lexeme)
	}
	if err := a.b.AddImmediate(int32(n)); err != nil {
		return fmt.Errorf("line %d: %w", tok.line, err)
	}
	return nil
}

func (a *assembler) offset(tok token) error {
	var err error
	switch {
	case tok.typ == tokInt:
		return a.immediate(tok)
	case tok.typ == tokLabel && !strings.HasSuffix(tok.lexeme, ":"):
		a.fixups = append(a.fixups, fixup{at: a.b.PC(), label: tok})
		err = a.b.AddBranchOffset(-1)
	default:
		return syntaxError(tok, "expected branch target, got %s", tokenNames[tok.typ])
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", tok.line, err)
	}
	return nil
}

var escapes = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\n`, "\n", `\t`, "\t", `\034`, value.DimSeparator)

// unquote strips the quotes off a string literal and resolves escapes.
func unquote(lexeme string) string {
	return escapes.Replace(lexeme[1 : len(lexeme)-1])
}
