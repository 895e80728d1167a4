package asm

import (
	"sync"

	"github.com/npillmayer/nedmacro"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token types of the assembler notation.
const (
	tokEOF nedmacro.TokType = iota
	tokNewline
	tokString
	tokInt
	tokArg
	tokIdent
	tokLabel
)

var tokenNames = map[nedmacro.TokType]string{
	tokEOF:     "end of input",
	tokNewline: "end of line",
	tokString:  "string",
	tokInt:     "integer",
	tokArg:     "argument",
	tokIdent:   "identifier",
	tokLabel:   "label",
}

// token is the token type produced by the scanner.
type token struct {
	typ    nedmacro.TokType
	lexeme string
	span   nedmacro.Span
	line   int
}

var _ nedmacro.Token = token{}

func (t token) TokType() nedmacro.TokType { return t.typ }
func (t token) Lexeme() string            { return t.lexeme }
func (t token) Span() nedmacro.Span       { return t.span }

// lexmachine adapter

// lmAdapter holds a compiled lexmachine DFA for the assembler notation.
type lmAdapter struct {
	lexer *lexmachine.Lexer
}

var (
	theAdapter  *lmAdapter
	adapterErr  error
	adapterOnce sync.Once
)

// adapter returns the lexer, compiling it on first use.
func adapter() (*lmAdapter, error) {
	adapterOnce.Do(func() {
		lexer := lexmachine.NewLexer()
		lexer.Add([]byte(`;[^\n]*`), skip)
		lexer.Add([]byte(`( |\t|\r)+`), skip)
		lexer.Add([]byte(`\n`), makeToken(tokNewline))
		lexer.Add([]byte(`\"([^"\\\n]|\\[^\n])*\"`), makeToken(tokString))
		lexer.Add([]byte(`\-?[0-9]+`), makeToken(tokInt))
		lexer.Add([]byte(`\$[0-9]+`), makeToken(tokArg))
		lexer.Add([]byte(`\$?([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken(tokIdent))
		lexer.Add([]byte(`@([a-z]|[A-Z]|[0-9]|_)+:?`), makeToken(tokLabel))
		if err := lexer.Compile(); err != nil {
			tracer().Errorf("error compiling DFA: %v", err)
			adapterErr = err
			return
		}
		theAdapter = &lmAdapter{lexer: lexer}
	})
	return theAdapter, adapterErr
}

// scanner creates a scanner for a given input.
func (lm *lmAdapter) scanner(input string) (*lmScanner, error) {
	s, err := lm.lexer.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	return &lmScanner{scanner: s, line: 1}, nil
}

// lmScanner is a scanner type for lexmachine scanners.
type lmScanner struct {
	scanner *lexmachine.Scanner
	line    int   // current line, counted by newline tokens
	err     error // first scanner error
}

// nextToken returns the next token of the input. Unconsumable input is
// reported once and skipped.
func (lms *lmScanner) nextToken() token {
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		if lms.err == nil {
			lms.err = err
		}
		tracer().Errorf("scanner error: %v", err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lms.scanner.TC = ui.FailTC
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		return token{typ: tokEOF, line: lms.line}
	}
	t := tok.(*lexmachine.Token)
	tk := token{
		typ:    nedmacro.TokType(t.Type),
		lexeme: string(t.Lexeme),
		span:   nedmacro.Span{uint64(t.TC), uint64(t.TC + len(t.Lexeme))},
		line:   lms.line,
	}
	if tk.typ == tokNewline { // no other token spans lines
		lms.line++
	}
	return tk
}

// skip is an action which ignores the scanned match.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// makeToken is an action which wraps a scanned match into a token.
func makeToken(id nedmacro.TokType) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(id), string(m.Bytes), m), nil
	}
}
