package vm

import (
	"github.com/npillmayer/nedmacro/value"
	"github.com/npillmayer/schuko/tracing"
)

// execution drives a context through the instruction loop.
type execution struct {
	*context
	m       *Machine
	opPC    int         // position of the instruction executing
	done    bool        // outermost frame has returned
	suspend bool        // a built-in asked to suspend the macro
	result  value.Value // return value of the outermost frame
	trace   bool
}

type opFunc func(x *execution) error

var opTable [NOps]opFunc

func init() {
	opTable = [NOps]opFunc{
		OpReturnNoVal:         returnNoVal,
		OpReturn:              returnVal,
		OpPushSym:             pushSymVal,
		OpDup:                 dupStack,
		OpAdd:                 add,
		OpSub:                 subtract,
		OpMul:                 multiply,
		OpDiv:                 divide,
		OpMod:                 modulo,
		OpNegate:              negate,
		OpIncr:                increment,
		OpDecr:                decrement,
		OpGt:                  greaterThan,
		OpLt:                  lessThan,
		OpGe:                  greaterOrEqual,
		OpLe:                  lessOrEqual,
		OpEq:                  equal,
		OpNe:                  notEqual,
		OpBitAnd:              bitAnd,
		OpBitOr:               bitOr,
		OpAnd:                 and,
		OpOr:                  or,
		OpNot:                 not,
		OpPower:               power,
		OpConcat:              concat,
		OpAssign:              assign,
		OpSubrCall:            callSubroutine,
		OpFetchRetVal:         fetchRetVal,
		OpBranch:              branch,
		OpBranchTrue:          branchTrue,
		OpBranchFalse:         branchFalse,
		OpBranchNever:         branchNever,
		OpArrayRef:            arrayRef,
		OpArrayAssign:         arrayAssign,
		OpBeginArrayIter:      beginArrayIter,
		OpArrayIter:           arrayIter,
		OpInArray:             inArray,
		OpArrayDelete:         deleteArrayElement,
		OpPushArraySym:        pushArraySymVal,
		OpArrayRefAssignSetup: arrayRefAndAssignSetup,
		OpPushArg:             pushArgVal,
		OpPushArgCount:        pushArgCount,
		OpPushArgArray:        pushArgArray,
	}
}

// run executes instructions of context c until the macro completes, fails,
// is preempted or the instruction budget is exhausted.
func (m *Machine) run(c *context) (status ExecStatus, result value.Value, cont *Continuation, err error) {
	x := &execution{
		context: c,
		m:       m,
		trace:   tracer().GetTraceLevel() >= tracing.LevelDebug,
	}
	m.cur = c
	defer func() {
		m.cur = nil
		m.pending = nil
	}()
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(stackOverflow); !ok {
				panic(r)
			}
			status, result, cont = MacroError, value.None(), nil
			err = x.annotate(execError("macro stack overflow"))
			tracer().Errorf("%v", err)
		}
	}()
	for count := 0; ; {
		if err := x.step(); err != nil {
			err = x.annotate(err)
			tracer().Errorf("%v", err)
			return MacroError, value.None(), nil, err
		}
		if x.done {
			tracer().Infof("macro done, result = %v", x.result)
			return MacroDone, x.result, nil, nil
		}
		if x.suspend || m.preemptRequested() {
			x.suspend = false
			tracer().P("macro", c.prog.Name()).Infof("preempted at %d", c.pc)
			return MacroPreempt, value.None(), m.suspend(c, MacroPreempt), nil
		}
		if m.config.GCInterval > 0 {
			if m.steps++; m.steps >= m.config.GCInterval {
				m.collect()
			}
		}
		if count++; count >= m.config.InstructionLimit {
			return MacroTimeLimit, value.None(), m.suspend(c, MacroTimeLimit), nil
		}
	}
}

// step executes a single instruction.
func (x *execution) step() error {
	x.opPC = x.pc
	inst := x.fetch(OpInst)
	if inst.Op >= NOps {
		panic(BytecodeError{Msg: "illegal opcode", PC: x.opPC})
	}
	if x.trace {
		tracer().Debugf("%4d %-16s sp=%d fp=%d", x.opPC, inst.Op, x.sp, x.fp)
	}
	return opTable[inst.Op](x)
}

// annotate attaches the position of the failing instruction to an error.
func (x *execution) annotate(err error) error {
	e, ok := err.(*ExecError)
	if !ok {
		e = &ExecError{Msg: err.Error()}
	}
	if e.Macro == "" && x.prog != nil {
		e.Macro = x.prog.Name()
	}
	e.PC = x.opPC
	return e
}

// --- Operand helpers -------------------------------------------------------

const stringToNumberMsg = "string could not be converted to number"

// popInt pops an integer, converting strings.
func (x *execution) popInt() (int32, error) {
	v := x.pop()
	switch {
	case v.IsInt():
		n, _ := v.Int()
		return n, nil
	case v.IsString():
		if n, ok := value.ToInt(v); ok {
			return n, nil
		}
		return 0, execError(stringToNumberMsg)
	case v.IsArray():
		return 0, execError("can't convert array to integer")
	}
	return 0, execError("can't convert value without type to integer")
}

// popString pops a string, converting integers.
func (x *execution) popString() (string, error) {
	v := x.pop()
	if s, ok := value.ToString(v); ok {
		return s, nil
	}
	if v.IsArray() {
		return "", execError("can't convert array to string value")
	}
	return "", execError("can't convert value without type to string value")
}

func (x *execution) pushInt(n int32) {
	x.push(value.Int(n))
}

func (x *execution) pushString(s string) {
	x.push(x.m.rt.Pool.Alloc(s))
}
