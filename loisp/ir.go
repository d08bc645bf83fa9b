package loisp

import (
	"github.com/HatsuSixty/loisp/parser/token"
)

// Op identifies an IR instruction.
type Op uint

// The IR opcode set.  Compile-time forms (macro, expand, include, defun,
// increment, reset) never reach the IR: they either resolve to nothing or
// fold into one of the opcodes below.
const (
	OpNop Op = iota

	OpPushInt
	OpPushStr

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe

	OpShl
	OpShr
	OpBitAnd
	OpBitOr
	OpNot

	OpLoad8
	OpLoad16
	OpLoad32
	OpLoad64
	OpStore8
	OpStore16
	OpStore32
	OpStore64

	OpCastInt
	OpCastPtr

	OpPrint
	OpSyscall

	OpSetVar
	OpGetVar
	OpChVar
	OpPtrTo
	OpGetMem

	OpWhile
	OpIf
	OpBlock

	OpPop
	OpCall

	OpArgc
	OpArgv
	OpEnvp

	numOps
)

var opStrings = [numOps]string{
	OpNop:     "nop",
	OpPushInt: "push-int",
	OpPushStr: "push-str",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpMod:     "%",
	OpEq:      "=",
	OpNe:      "!=",
	OpLt:      "<",
	OpGt:      ">",
	OpLe:      "<=",
	OpGe:      ">=",
	OpShl:     "<<",
	OpShr:     ">>",
	OpBitAnd:  "&",
	OpBitOr:   "|",
	OpNot:     "!",
	OpLoad8:   "load8",
	OpLoad16:  "load16",
	OpLoad32:  "load32",
	OpLoad64:  "load64",
	OpStore8:  "store8",
	OpStore16: "store16",
	OpStore32: "store32",
	OpStore64: "store64",
	OpCastInt: "castint",
	OpCastPtr: "castptr",
	OpPrint:   "print",
	OpSyscall: "syscall",
	OpSetVar:  "setvar",
	OpGetVar:  "getvar",
	OpChVar:   "chvar",
	OpPtrTo:   "ptrto",
	OpGetMem:  "getmem",
	OpWhile:   "while",
	OpIf:      "if",
	OpBlock:   "block",
	OpPop:     "pop",
	OpCall:    "call",
	OpArgc:    "argc",
	OpArgv:    "argv",
	OpEnvp:    "envp",
}

func (op Op) String() string {
	if op >= numOps {
		return "INVALID"
	}
	return opStrings[op]
}

// Instr is one resolved IR instruction.  The IR is a tree mirroring the
// surface expression after resolution: operands are themselves instructions.
type Instr struct {
	Op  Op
	Loc *token.Location

	Int int64  // integer literal, or syscall operand count
	Str string // string literal bytes

	Var *Variable   // setvar/getvar/chvar/ptrto/pop target
	Mem *Allocation // getmem target
	Fun *Function   // call target

	Args []*Instr // operand subtrees; the condition of if/while is Args[0]
	Body []*Instr // while body, if consequent, block expressions
	Else []*Instr // if alternative
}

// ResultKind reports the runtime kind an instruction leaves on the value
// stack, or KindNothing.
func (in *Instr) ResultKind() ValueKind {
	switch in.Op {
	case OpPushInt, OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpEq, OpNe, OpLt, OpGt, OpLe, OpGe,
		OpShl, OpShr, OpBitAnd, OpBitOr, OpNot,
		OpLoad8, OpLoad16, OpLoad32, OpLoad64,
		OpCastInt, OpSyscall, OpArgc:
		return KindInt
	case OpPushStr:
		return KindString
	case OpCastPtr, OpPtrTo, OpGetMem, OpArgv, OpEnvp:
		return KindPtr
	case OpGetVar:
		return in.Var.Kind
	case OpCall:
		return in.Fun.Ret
	case OpBlock:
		if len(in.Body) == 0 {
			return KindNothing
		}
		return in.Body[len(in.Body)-1].ResultKind()
	default:
		return KindNothing
	}
}
