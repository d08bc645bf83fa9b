package loisp

import (
	"bufio"
	"fmt"
	"io"
)

// Registers receiving syscall arguments, in the SysV order.
var syscallRegs = [6]string{"rdi", "rsi", "rdx", "r10", "r8", "r9"}

var compareSets = map[Op]string{
	OpEq: "sete",
	OpNe: "setne",
	OpLt: "setl",
	OpGt: "setg",
	OpLe: "setle",
	OpGe: "setge",
}

var loadSizes = map[Op]string{
	OpLoad8:  "movzx rbx, byte [rax]",
	OpLoad16: "movzx rbx, word [rax]",
	OpLoad32: "mov ebx, dword [rax]",
	OpLoad64: "mov rbx, qword [rax]",
}

var storeSizes = map[Op]string{
	OpStore8:  "mov byte [rax], bl",
	OpStore16: "mov word [rax], bx",
	OpStore32: "mov dword [rax], ebx",
	OpStore64: "mov qword [rax], rbx",
}

// emitter lowers resolved IR to flat-assembler x86-64 source.  Every value
// instruction leaves its result on top of the machine stack; labels are
// numbered in emission order so output is a deterministic function of the
// source.
type emitter struct {
	w      *bufio.Writer
	env    *Env
	labels int
}

// WriteAssembly lowers the translation unit to flat-assembler source and
// writes it to w.
func WriteAssembly(env *Env, instrs []*Instr, w io.Writer) error {
	e := &emitter{w: bufio.NewWriter(w), env: env}
	e.prelude()
	e.printf("_start:\n")
	e.printf("mov [args_ptr], rsp\n")
	for _, in := range instrs {
		e.stmt(in)
	}
	e.printf("mov rax, 60\n")
	e.printf("mov rdi, 0\n")
	e.printf("syscall\n")
	for _, f := range env.FunOrder {
		e.function(f)
	}
	e.data()
	if err := e.w.Flush(); err != nil {
		return Errorf(ErrIO, nil, "cannot write assembly: %v", err)
	}
	return nil
}

func (e *emitter) printf(format string, v ...interface{}) {
	fmt.Fprintf(e.w, format, v...)
}

func (e *emitter) newLabel() int {
	n := e.labels
	e.labels++
	return n
}

func (e *emitter) prelude() {
	e.printf("format ELF64 executable 3\n")
	e.printf("entry _start\n")
	e.printf("segment readable executable\n")

	// Formats a signed 64-bit integer from rdi in decimal, followed by a
	// newline, and writes it to stdout.
	e.printf("print:\n")
	e.printf("sub rsp, 40\n")
	e.printf("mov byte [rsp+31], 10\n")
	e.printf("lea rcx, [rsp+30]\n")
	e.printf("mov r10, 0\n")
	e.printf("mov rax, rdi\n")
	e.printf("test rax, rax\n")
	e.printf("jns .convert\n")
	e.printf("neg rax\n")
	e.printf("mov r10, 1\n")
	e.printf(".convert:\n")
	e.printf("xor rdx, rdx\n")
	e.printf("mov rbx, 10\n")
	e.printf("div rbx\n")
	e.printf("add rdx, 48\n")
	e.printf("mov [rcx], dl\n")
	e.printf("dec rcx\n")
	e.printf("test rax, rax\n")
	e.printf("jnz .convert\n")
	e.printf("test r10, r10\n")
	e.printf("jz .write\n")
	e.printf("mov byte [rcx], 45\n")
	e.printf("dec rcx\n")
	e.printf(".write:\n")
	e.printf("lea rsi, [rcx+1]\n")
	e.printf("lea rdx, [rsp+32]\n")
	e.printf("sub rdx, rsi\n")
	e.printf("mov rax, 1\n")
	e.printf("mov rdi, 1\n")
	e.printf("syscall\n")
	e.printf("add rsp, 40\n")
	e.printf("ret\n")
}

// stmt emits in and discards the value it leaves behind, if any, so that
// loops, branches and blocks stay balanced.
func (e *emitter) stmt(in *Instr) {
	e.expr(in)
	if in.ResultKind() != KindNothing {
		e.printf("add rsp, 8\n")
	}
}

func (e *emitter) expr(in *Instr) {
	e.printf(";; -- %s --\n", in.Op)
	switch in.Op {
	case OpNop:
	case OpPushInt:
		e.printf("mov rax, %d\n", in.Int)
		e.printf("push rax\n")
	case OpPushStr:
		e.printf("push str_%d\n", in.Int)
	case OpAdd, OpSub, OpMul, OpBitAnd, OpBitOr:
		e.binary(in, map[Op]string{
			OpAdd:    "add rax, rbx",
			OpSub:    "sub rax, rbx",
			OpMul:    "imul rax, rbx",
			OpBitAnd: "and rax, rbx",
			OpBitOr:  "or rax, rbx",
		}[in.Op])
	case OpDiv, OpMod:
		e.args(in)
		e.printf("pop rbx\n")
		e.printf("pop rax\n")
		e.printf("cqo\n")
		e.printf("idiv rbx\n")
		if in.Op == OpDiv {
			e.printf("push rax\n")
		} else {
			e.printf("push rdx\n")
		}
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		e.args(in)
		e.printf("pop rbx\n")
		e.printf("pop rax\n")
		e.printf("mov rcx, 0\n")
		e.printf("cmp rax, rbx\n")
		e.printf("%s cl\n", compareSets[in.Op])
		e.printf("push rcx\n")
	case OpShl, OpShr:
		e.args(in)
		e.printf("pop rcx\n")
		e.printf("pop rax\n")
		if in.Op == OpShl {
			e.printf("shl rax, cl\n")
		} else {
			e.printf("shr rax, cl\n")
		}
		e.printf("push rax\n")
	case OpNot:
		e.args(in)
		e.printf("pop rax\n")
		e.printf("mov rcx, 0\n")
		e.printf("test rax, rax\n")
		e.printf("setz cl\n")
		e.printf("push rcx\n")
	case OpLoad8, OpLoad16, OpLoad32, OpLoad64:
		e.args(in)
		e.printf("pop rax\n")
		e.printf("%s\n", loadSizes[in.Op])
		e.printf("push rbx\n")
	case OpStore8, OpStore16, OpStore32, OpStore64:
		e.args(in)
		e.printf("pop rbx\n")
		e.printf("pop rax\n")
		e.printf("%s\n", storeSizes[in.Op])
	case OpCastInt, OpCastPtr:
		e.expr(in.Args[0])
	case OpPrint:
		e.args(in)
		e.printf("pop rdi\n")
		e.printf("call print\n")
	case OpSyscall:
		e.args(in)
		for i := len(in.Args) - 2; i >= 0; i-- {
			e.printf("pop %s\n", syscallRegs[i])
		}
		e.printf("pop rax\n")
		e.printf("syscall\n")
		e.printf("push rax\n")
	case OpSetVar, OpChVar:
		e.args(in)
		e.printf("pop rax\n")
		e.printf("mov qword [vars+%d], rax\n", in.Var.Slot*8)
	case OpGetVar:
		e.printf("mov rax, qword [vars+%d]\n", in.Var.Slot*8)
		e.printf("push rax\n")
	case OpPtrTo:
		e.printf("mov rax, vars+%d\n", in.Var.Slot*8)
		e.printf("push rax\n")
	case OpGetMem:
		e.printf("push mem_%d\n", in.Mem.Label)
	case OpPop:
		e.printf("pop rax\n")
		e.printf("mov qword [vars+%d], rax\n", in.Var.Slot*8)
	case OpArgc:
		e.printf("mov rax, [args_ptr]\n")
		e.printf("mov rax, qword [rax]\n")
		e.printf("push rax\n")
	case OpArgv:
		e.printf("mov rax, [args_ptr]\n")
		e.printf("add rax, 8\n")
		e.printf("push rax\n")
	case OpEnvp:
		e.printf("mov rax, [args_ptr]\n")
		e.printf("mov rbx, qword [rax]\n")
		e.printf("lea rax, [rax+rbx*8+16]\n")
		e.printf("push rax\n")
	case OpWhile:
		head := e.newLabel()
		exit := e.newLabel()
		e.printf("addr_%d:\n", head)
		e.expr(in.Args[0])
		e.printf("pop rax\n")
		e.printf("test rax, rax\n")
		e.printf("jz addr_%d\n", exit)
		for _, b := range in.Body {
			e.stmt(b)
		}
		e.printf("jmp addr_%d\n", head)
		e.printf("addr_%d:\n", exit)
	case OpIf:
		alt := e.newLabel()
		end := e.newLabel()
		e.expr(in.Args[0])
		e.printf("pop rax\n")
		e.printf("test rax, rax\n")
		e.printf("jz addr_%d\n", alt)
		for _, b := range in.Body {
			e.stmt(b)
		}
		e.printf("jmp addr_%d\n", end)
		e.printf("addr_%d:\n", alt)
		for _, b := range in.Else {
			e.stmt(b)
		}
		e.printf("addr_%d:\n", end)
	case OpBlock:
		for i, b := range in.Body {
			if i == len(in.Body)-1 {
				e.expr(b)
			} else {
				e.stmt(b)
			}
		}
	case OpCall:
		e.args(in)
		ret := e.newLabel()
		e.printf("mov rax, addr_%d\n", ret)
		e.printf("mov rbx, [ret_count]\n")
		e.printf("mov [ret_stack+rbx*8], rax\n")
		e.printf("add qword [ret_count], 1\n")
		e.printf("jmp fun_%d\n", in.Fun.Label)
		e.printf("addr_%d:\n", ret)
	}
}

func (e *emitter) binary(in *Instr, op string) {
	e.args(in)
	e.printf("pop rbx\n")
	e.printf("pop rax\n")
	e.printf("%s\n", op)
	e.printf("push rax\n")
}

func (e *emitter) args(in *Instr) {
	for _, a := range in.Args {
		e.expr(a)
	}
}

func (e *emitter) function(f *Function) {
	e.printf(";; -- defun %s --\n", f.Name)
	e.printf("fun_%d:\n", f.Label)
	for i, in := range f.Body {
		if i == len(f.Body)-1 && f.Ret != KindNothing {
			e.expr(in)
		} else {
			e.stmt(in)
		}
	}
	e.printf("sub qword [ret_count], 1\n")
	e.printf("mov rbx, [ret_count]\n")
	e.printf("mov rax, [ret_stack+rbx*8]\n")
	e.printf("jmp rax\n")
}

func (e *emitter) data() {
	e.printf("segment readable writeable\n")
	for i, s := range e.env.Strings.Strings() {
		e.printf("str_%d: db ", i)
		for _, b := range []byte(s) {
			e.printf("%d,", b)
		}
		e.printf("0\n")
	}
	if e.env.VarSlots > 0 {
		e.printf("vars: rq %d\n", e.env.VarSlots)
	}
	for _, m := range e.env.MemOrder {
		e.printf("mem_%d: rb %d\n", m.Label, m.Size)
	}
	e.printf("args_ptr: rq 1\n")
	e.printf("ret_stack: rq 65536\n")
	e.printf("ret_count: rq 1\n")
}
