package vm

import (
	"errors"
	"fmt"
)

// Errors for misuse of the machine's API.
var (
	ErrContinuationUsed = errors.New("continuation has already been resumed or freed")
	ErrNotAMacro        = errors.New("symbol is not a macro function")
	ErrNoProgram        = errors.New("no program to execute")
)

// ExecError is a runtime error of a macro, e.g. a type error or division by
// zero. It aborts the macro, but leaves the machine in a consistent state.
type ExecError struct {
	Msg   string // error message
	Macro string // name of the macro function executing, if any
	PC    int    // position of the failing instruction
}

func (e *ExecError) Error() string {
	if e.Macro == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Macro, e.Msg)
}

// execError creates a runtime error with a formatted message.
func execError(format string, args ...interface{}) error {
	return &ExecError{Msg: fmt.Sprintf(format, args...)}
}

// BytecodeError signals corrupt bytecode, such as a stack underflow or an
// operand of the wrong kind. Bytecode errors are bugs of the program's
// producer: the machine panics with a BytecodeError instead of returning it.
type BytecodeError struct {
	Msg string
	PC  int
}

func (e BytecodeError) Error() string {
	return fmt.Sprintf("corrupt bytecode at %d: %s", e.PC, e.Msg)
}

// stackOverflow is raised by pushes on a full operand stack. The interpreter
// converts it into an ExecError.
type stackOverflow struct{}
