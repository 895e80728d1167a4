package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/nedmacro/vm"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func newMachine() *vm.Machine {
	return vm.NewMachine(vm.Config{InstructionLimit: 10000})
}

func TestScanner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	lines, err := tokenize(`@l1: PUSH_SYM "a b" ; comment
	  SUBR_CALL $f 2

	BRANCH @l1 $3 -7`)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, have %d", len(lines))
	}
	expect := [][]string{
		{"label", "identifier", "string"},
		{"identifier", "identifier", "integer"},
		{"identifier", "label", "argument", "integer"},
	}
	for i, l := range lines {
		if len(l) != len(expect[i]) {
			t.Fatalf("line %d: expected %d tokens, have %d", i+1, len(expect[i]), len(l))
		}
		for j, tok := range l {
			if tokenNames[tok.typ] != expect[i][j] {
				t.Errorf("line %d: expected %s, have %s for %q", i+1, expect[i][j],
					tokenNames[tok.typ], tok.lexeme)
			}
		}
	}
	if lines[2][0].line != 4 {
		t.Errorf("expected BRANCH on line 4, is on %d", lines[2][0].line)
	}
	if lines[0][2].lexeme != `"a b"` {
		t.Errorf("unexpected string lexeme %s", lines[0][2].lexeme)
	}
}

func TestUnquote(t *testing.T) {
	for in, out := range map[string]string{
		`""`:           "",
		`"abc"`:        "abc",
		`"a\nb"`:       "a\nb",
		`"\\n"`:        `\n`,
		`"x\034y"`:     "x\034y",
		`"tab\there"`:  "tab\there",
		`"say \"hi\""`: `say "hi"`,
		`"\\\""`:       `\"`,
	} {
		if s := unquote(in); s != out {
			t.Errorf("unquote(%s): expected %q, have %q", in, out, s)
		}
	}
}

func TestEmbeddedQuotes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	m := newMachine()
	prog, err := Assemble(m, "quotes", `PUSH_SYM "say \"hi\"" ; a "comment"
RETURN`)
	if err != nil {
		t.Fatal(err)
	}
	_, result, _, err := m.Execute(nil, prog, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := result.Str(); s != `say "hi"` {
		t.Errorf("expected embedded quotes to survive, have %q", s)
	}
}

const countdown = `
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
`

func TestAssembleCountdown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	m := newMachine()
	prog, err := Assemble(m, "main", countdown)
	if err != nil {
		t.Fatal(err)
	}
	cd, err := m.LookupMacro("countdown")
	if err != nil {
		t.Fatalf("countdown not defined: %v", err)
	}
	if cd.NumLocals() != 1 {
		t.Errorf("expected countdown to have 1 local, has %d", cd.NumLocals())
	}
	t.Logf("countdown:\n%s", cd.Disassemble())
	status, result, _, err := m.Execute(nil, prog, nil)
	if err != nil || status != vm.MacroDone {
		t.Fatalf("expected MacroDone, have %s (%v)", status, err)
	}
	if n, ok := result.Int(); !ok || n != 0 {
		t.Errorf("expected result 0, have %s", result)
	}
}

func TestAssembleArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	m := newMachine()
	prog, err := Assemble(m, "main", `
PUSH_SYM $1
PUSH_SYM $2
CONCAT
PUSH_SYM "!"
CONCAT
RETURN`)
	if err != nil {
		t.Fatal(err)
	}
	status, result, _, err := m.Execute(nil, prog, []value.Value{value.String("hello, "), value.String("world")})
	if err != nil || status != vm.MacroDone {
		t.Fatalf("expected MacroDone, have %s (%v)", status, err)
	}
	if s, _ := result.Str(); s != "hello, world!" {
		t.Errorf("unexpected result %q", s)
	}
}

func TestForwardReferences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	m := newMachine()
	prog, err := Assemble(m, "main", `
define first
  PUSH_SYM $1
  SUBR_CALL second 1
  FETCH_RET_VAL
  RETURN
end
define second
  PUSH_SYM $1
  PUSH_SYM 2
  MUL
  RETURN
end
PUSH_SYM 21
SUBR_CALL first 1
FETCH_RET_VAL
RETURN`)
	if err != nil {
		t.Fatal(err)
	}
	_, result, _, err := m.Execute(nil, prog, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := result.Int(); n != 42 {
		t.Errorf("expected 42, have %s", result)
	}
}

func TestGlobalDirective(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	m := newMachine()
	prog, err := Assemble(m, "main", `
define setter
  local g
  global g
  PUSH_SYM "set"
  ASSIGN g
end
SUBR_CALL setter 0
PUSH_SYM g
RETURN`)
	if err != nil {
		t.Fatal(err)
	}
	_, result, _, err := m.Execute(nil, prog, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := result.Str(); s != "set" {
		t.Errorf("expected global g to be set, is %s", result)
	}
}

func TestSyntaxErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	for src, line := range map[string]int{
		"PUSH_SYM 1\nFROBNICATE":         2,
		"PUSH_SYM":                       1,
		"\n\nBRANCH @nowhere":            3,
		"@a:\n@a: RETURN_NO_VAL":         2,
		"end":                            1,
		"define x\ndefine y\nend\nend":   2,
		"local x\nlocal x":               2,
		"PUSH_SYM 99999999999":           1,
		"ARRAY_REF \"not an immediate\"": 1,
		"BRANCH \"not a label\"":         1,
	} {
		m := newMachine()
		_, err := Assemble(m, "bad", src)
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("expected syntax error for %q, have %v", src, err)
			continue
		}
		if serr.Line != line {
			t.Errorf("%q: expected error on line %d, have %v", src, line, serr)
		}
		if m.Runtime().InProgram() {
			t.Errorf("%q: program scope left open", src)
		}
	}
}

func TestMissingEnd(t *testing.T) {
	_, err := Assemble(newMachine(), "bad", "define x\nRETURN_NO_VAL")
	if err == nil || !strings.Contains(err.Error(), "missing its end") {
		t.Errorf("expected error for missing end, have %v", err)
	}
}

func TestProgramTooLarge(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "nedmacro.asm")
	defer teardown()
	//
	m := vm.NewMachine(vm.Config{ProgramSize: 8})
	src := strings.Repeat("PUSH_SYM 1\n", 5)
	_, err := Assemble(m, "big", src)
	if !errors.Is(err, vm.ErrProgramTooLarge) {
		t.Errorf("expected program to be too large, have %v", err)
	}
	if m.Runtime().InProgram() {
		t.Error("program scope left open")
	}
}

func TestBranchOffsets(t *testing.T) {
	m := newMachine()
	prog, err := Assemble(m, "offsets", `
@top:
  BRANCH @bottom
  BRANCH @top
@bottom:`)
	if err != nil {
		t.Fatal(err)
	}
	// BRANCH at 0, offset at 1 -> 4; BRANCH at 2, offset at 3 -> 0
	if imm := prog.At(1).Imm; imm != 3 {
		t.Errorf("expected forward offset 3, have %d", imm)
	}
	if imm := prog.At(3).Imm; imm != -3 {
		t.Errorf("expected backward offset -3, have %d", imm)
	}
	if prog.At(4).Op != vm.OpReturnNoVal {
		t.Errorf("expected program to end with RETURN_NO_VAL, have %s", prog.At(4))
	}
}
