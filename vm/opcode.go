package vm

// Opcode is the operation of an instruction.
type Opcode uint8

//go:generate stringer -type=Opcode,ExecStatus -linecomment -output=opcode_string.go

// Opcodes of the virtual machine. Operands following an opcode in the
// instruction stream are listed in brackets.
const (
	OpReturnNoVal         Opcode = iota // RETURN_NO_VAL
	OpReturn                            // RETURN
	OpPushSym                           // PUSH_SYM
	OpDup                               // DUP
	OpAdd                               // ADD
	OpSub                               // SUB
	OpMul                               // MUL
	OpDiv                               // DIV
	OpMod                               // MOD
	OpNegate                            // NEGATE
	OpIncr                              // INCR
	OpDecr                              // DECR
	OpGt                                // GT
	OpLt                                // LT
	OpGe                                // GE
	OpLe                                // LE
	OpEq                                // EQ
	OpNe                                // NE
	OpBitAnd                            // BIT_AND
	OpBitOr                             // BIT_OR
	OpAnd                               // AND
	OpOr                                // OR
	OpNot                               // NOT
	OpPower                             // POWER
	OpConcat                            // CONCAT
	OpAssign                            // ASSIGN
	OpSubrCall                          // SUBR_CALL
	OpFetchRetVal                       // FETCH_RET_VAL
	OpBranch                            // BRANCH
	OpBranchTrue                        // BRANCH_TRUE
	OpBranchFalse                       // BRANCH_FALSE
	OpBranchNever                       // BRANCH_NEVER
	OpArrayRef                          // ARRAY_REF
	OpArrayAssign                       // ARRAY_ASSIGN
	OpBeginArrayIter                    // BEGIN_ARRAY_ITER
	OpArrayIter                         // ARRAY_ITER
	OpInArray                           // IN_ARRAY
	OpArrayDelete                       // ARRAY_DELETE
	OpPushArraySym                      // PUSH_ARRAY_SYM
	OpArrayRefAssignSetup               // ARRAY_REF_ASSIGN_SETUP
	OpPushArg                           // PUSH_ARG
	OpPushArgCount                      // PUSH_ARG_COUNT
	OpPushArgArray                      // PUSH_ARG_ARRAY
	NOps                                // N_OPS
)

// operands lists the kinds of the operands of each opcode.
var operands = [NOps]string{
	OpPushSym:             "s",
	OpAssign:              "s",
	OpSubrCall:            "si",
	OpBranch:              "o",
	OpBranchTrue:          "o",
	OpBranchFalse:         "o",
	OpBranchNever:         "o",
	OpArrayRef:            "i",
	OpArrayAssign:         "i",
	OpBeginArrayIter:      "s",
	OpArrayIter:           "sso",
	OpArrayDelete:         "i",
	OpPushArraySym:        "si",
	OpArrayRefAssignSetup: "ii",
}

// Operands returns a string describing the operands an opcode expects in the
// instruction stream: 's' for a symbol, 'i' for an immediate and 'o' for a
// branch offset.
func (op Opcode) Operands() string {
	if op >= NOps {
		return ""
	}
	return operands[op]
}

// OpcodeByName finds an opcode by its name, e.g. "SUBR_CALL".
func OpcodeByName(name string) (Opcode, bool) {
	for op := Opcode(0); op < NOps; op++ {
		if op.String() == name {
			return op, true
		}
	}
	return 0, false
}

// ExecStatus is the outcome of executing or continuing a macro.
type ExecStatus int

// Return codes of Execute and Continue.
const (
	MacroTimeLimit ExecStatus = iota // MACRO_TIME_LIMIT
	MacroPreempt                     // MACRO_PREEMPT
	MacroDone                        // MACRO_DONE
	MacroError                       // MACRO_ERROR
)
