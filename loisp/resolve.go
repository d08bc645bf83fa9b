package loisp

import (
	"os"
	"path/filepath"
)

// resolveFunc maps one surface form to an IR instruction.  Forms that leave
// no runtime code (definitions, and includes or expansions that resolve to
// nothing) return a nil instruction.
type resolveFunc func(env *Env, op Op, form *SExpr) (*Instr, error)

type langForm struct {
	name    string
	op      Op
	resolve resolveFunc
}

var langForms = []*langForm{
	{"+", OpAdd, resolveBinary},
	{"-", OpSub, resolveBinary},
	{"*", OpMul, resolveBinary},
	{"/", OpDiv, resolveBinary},
	{"%", OpMod, resolveBinary},
	{"=", OpEq, resolveBinary},
	{"!=", OpNe, resolveBinary},
	{"<", OpLt, resolveBinary},
	{">", OpGt, resolveBinary},
	{"<=", OpLe, resolveBinary},
	{">=", OpGe, resolveBinary},
	{"<<", OpShl, resolveBinary},
	{">>", OpShr, resolveBinary},
	{"&", OpBitAnd, resolveBinary},
	{"|", OpBitOr, resolveBinary},
	{"!", OpNot, resolveUnary},
	{"load8", OpLoad8, resolveUnary},
	{"load16", OpLoad16, resolveUnary},
	{"load32", OpLoad32, resolveUnary},
	{"load64", OpLoad64, resolveUnary},
	{"store8", OpStore8, resolveBinary},
	{"store16", OpStore16, resolveBinary},
	{"store32", OpStore32, resolveBinary},
	{"store64", OpStore64, resolveBinary},
	{"castint", OpCastInt, resolveUnary},
	{"castptr", OpCastPtr, resolveUnary},
	{"print", OpPrint, resolveUnary},
	{"syscall", OpSyscall, resolveSyscall},
	{"setvar", OpSetVar, resolveSetVar},
	{"getvar", OpGetVar, resolveGetVar},
	{"chvar", OpChVar, resolveChVar},
	{"ptrto", OpPtrTo, resolveGetVar},
	{"alloc", OpNop, resolveAlloc},
	{"getmem", OpGetMem, resolveGetMem},
	{"while", OpWhile, resolveWhile},
	{"if", OpIf, resolveIf},
	{"block", OpBlock, resolveBlock},
	{"pop", OpPop, resolvePop},
	{"macro", OpNop, resolveMacro},
	{"expand", OpNop, resolveExpand},
	{"defun", OpNop, resolveDefun},
	{"call", OpCall, resolveCall},
	{"include", OpNop, resolveInclude},
	{"increment", OpPushInt, resolveIncrement},
	{"reset", OpPushInt, resolveReset},
	{"argc", OpArgc, resolveNullary},
	{"argv", OpArgv, resolveNullary},
	{"envp", OpEnvp, resolveNullary},
}

var formTable = make(map[string]*langForm)

func init() {
	for _, form := range langForms {
		formTable[form.name] = form
	}
}

// Resolve converts a sequence of top-level expressions into IR, mutating the
// environment as definitions are encountered.  Resolution is single-pass,
// top-to-bottom, left-to-right.
func Resolve(env *Env, exprs []*SExpr) ([]*Instr, error) {
	var instrs []*Instr
	for _, s := range exprs {
		in, err := resolveExpr(env, s)
		if err != nil {
			return nil, err
		}
		if in != nil {
			instrs = append(instrs, in)
		}
	}
	return instrs, nil
}

func resolveExpr(env *Env, s *SExpr) (*Instr, error) {
	switch s.Type {
	case SInt, SChar:
		return &Instr{Op: OpPushInt, Loc: s.Loc, Int: s.Int}, nil
	case SStr:
		idx := env.Strings.Intern(s.Str)
		return &Instr{Op: OpPushStr, Loc: s.Loc, Int: int64(idx), Str: s.Str}, nil
	case SWord:
		return nil, Errorf(ErrResolve, s.Loc, "bare word `%s` is not an expression", s.Str)
	case SList:
		head := s.Head()
		if head == nil {
			return nil, Errorf(ErrResolve, s.Loc, "empty expression")
		}
		if head.Type != SWord {
			return nil, Errorf(ErrResolve, head.Loc, "expected instruction name to be a word, got %s", head.Type)
		}
		if form, ok := formTable[head.Str]; ok {
			return form.resolve(env, form.op, s)
		}
		// Unknown heads may name a user macro or function.
		if _, ok := env.Macros[head.Str]; ok {
			return expandMacro(env, head.Str, s)
		}
		if _, ok := env.Funs[head.Str]; ok {
			return resolveCallNamed(env, head.Str, s.Args(), s)
		}
		return nil, Errorf(ErrResolve, head.Loc, "unknown instruction: `%s`", head.Str)
	default:
		return nil, Errorf(ErrResolve, s.Loc, "invalid expression")
	}
}

// resolveValues resolves argument expressions, rejecting compile-time forms
// that produce no instruction.
func resolveValues(env *Env, args []*SExpr) ([]*Instr, error) {
	instrs := make([]*Instr, 0, len(args))
	for _, a := range args {
		in, err := resolveExpr(env, a)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, Errorf(ErrResolve, a.Loc, "expression produces no value")
		}
		instrs = append(instrs, in)
	}
	return instrs, nil
}

// resolveBody resolves statement expressions, dropping compile-time forms.
func resolveBody(env *Env, exprs []*SExpr) ([]*Instr, error) {
	return Resolve(env, exprs)
}

func checkArgCount(form *SExpr, min, max int) error {
	head := form.Head()
	n := len(form.Args())
	if n < min {
		return Errorf(ErrResolve, head.Loc, "not enough parameters for `%s` (expected %d, got %d)", head.Str, min, n)
	}
	if max >= 0 && n > max {
		return Errorf(ErrResolve, head.Loc, "too many parameters for `%s` (expected %d, got %d)", head.Str, max, n)
	}
	return nil
}

func wordArg(form *SExpr, i int) (*SExpr, error) {
	arg := form.Args()[i]
	if arg.Type != SWord {
		return nil, Errorf(ErrResolve, arg.Loc, "parameter %d of `%s` must be a word, got %s", i+1, form.Head().Str, arg.Type)
	}
	return arg, nil
}

func resolveNullary(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 0, 0); err != nil {
		return nil, err
	}
	return &Instr{Op: op, Loc: form.Head().Loc}, nil
}

func resolveUnary(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, 1); err != nil {
		return nil, err
	}
	args, err := resolveValues(env, form.Args())
	if err != nil {
		return nil, err
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Args: args}, nil
}

func resolveBinary(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 2, 2); err != nil {
		return nil, err
	}
	args, err := resolveValues(env, form.Args())
	if err != nil {
		return nil, err
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Args: args}, nil
}

func resolveSyscall(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, -1); err != nil {
		return nil, err
	}
	args, err := resolveValues(env, form.Args())
	if err != nil {
		return nil, err
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Int: int64(len(args)), Args: args}, nil
}

func resolveSetVar(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 2, 2); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	if env.Defined(name.Str) {
		return nil, Errorf(ErrResolve, name.Loc, "redefinition of `%s`", name.Str)
	}
	args, err := resolveValues(env, form.Args()[1:])
	if err != nil {
		return nil, err
	}
	v := env.defineVar(name.Str, args[0].ResultKind(), name.Loc)
	return &Instr{Op: op, Loc: form.Head().Loc, Var: v, Args: args}, nil
}

func resolveChVar(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 2, 2); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	v, ok := env.Vars[name.Str]
	if !ok {
		return nil, Errorf(ErrResolve, name.Loc, "variable not found: `%s`", name.Str)
	}
	args, err := resolveValues(env, form.Args()[1:])
	if err != nil {
		return nil, err
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Var: v, Args: args}, nil
}

func resolveGetVar(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, 1); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	v, ok := env.Vars[name.Str]
	if !ok {
		return nil, Errorf(ErrResolve, name.Loc, "variable not found: `%s`", name.Str)
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Var: v}, nil
}

func resolveAlloc(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 2, 2); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	if env.Defined(name.Str) {
		return nil, Errorf(ErrResolve, name.Loc, "redefinition of `%s`", name.Str)
	}
	size, err := evalConstInt(env, form.Args()[1])
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, Errorf(ErrResolve, form.Args()[1].Loc, "allocation size must be positive (got %d)", size)
	}
	env.defineMem(name.Str, size, name.Loc)
	return nil, nil
}

func resolveGetMem(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, 1); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	m, ok := env.Mems[name.Str]
	if !ok {
		return nil, Errorf(ErrResolve, name.Loc, "memory region not found: `%s`", name.Str)
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Mem: m}, nil
}

func resolveWhile(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, -1); err != nil {
		return nil, err
	}
	cond, err := resolveValues(env, form.Args()[:1])
	if err != nil {
		return nil, err
	}
	body, err := resolveBody(env, form.Args()[1:])
	if err != nil {
		return nil, err
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Args: cond, Body: body}, nil
}

func resolveIf(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 2, 3); err != nil {
		return nil, err
	}
	args := form.Args()
	cond, err := resolveValues(env, args[:1])
	if err != nil {
		return nil, err
	}
	then, err := resolveBody(env, args[1:2])
	if err != nil {
		return nil, err
	}
	in := &Instr{Op: op, Loc: form.Head().Loc, Args: cond, Body: then}
	if len(args) == 3 {
		in.Else, err = resolveBody(env, args[2:3])
		if err != nil {
			return nil, err
		}
	}
	return in, nil
}

func resolveBlock(env *Env, op Op, form *SExpr) (*Instr, error) {
	body, err := resolveBody(env, form.Args())
	if err != nil {
		return nil, err
	}
	return &Instr{Op: op, Loc: form.Loc, Body: body}, nil
}

func resolvePop(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, 1); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	v, ok := env.Vars[name.Str]
	if !ok {
		return nil, Errorf(ErrResolve, name.Loc, "variable not found: `%s`", name.Str)
	}
	return &Instr{Op: op, Loc: form.Head().Loc, Var: v}, nil
}

func resolveMacro(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 2, -1); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	if env.Defined(name.Str) {
		return nil, Errorf(ErrResolve, name.Loc, "redefinition of `%s`", name.Str)
	}
	env.Macros[name.Str] = &Macro{Name: name.Str, Body: form.Args()[1:], Loc: name.Loc}
	return nil, nil
}

func resolveExpand(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, 1); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	if _, ok := env.Macros[name.Str]; !ok {
		return nil, Errorf(ErrResolve, name.Loc, "macro not found: `%s`", name.Str)
	}
	return expandMacro(env, name.Str, form)
}

// expandMacro splices the macro body in at the expand site, resolving it as
// if its expressions appeared there.  Expansion depth is bounded to detect
// cycles deterministically.
func expandMacro(env *Env, name string, form *SExpr) (*Instr, error) {
	mac := env.Macros[name]
	if env.expandDepth >= env.maxExpandDepth {
		return nil, Errorf(ErrMacroRecursion, form.Loc, "expansion of macro `%s` exceeds depth %d", name, env.maxExpandDepth)
	}
	env.expandDepth++
	defer func() { env.expandDepth-- }()

	instrs, err := Resolve(env, mac.Body)
	if err != nil {
		return nil, err
	}
	switch len(instrs) {
	case 0:
		return nil, nil
	case 1:
		return instrs[0], nil
	default:
		return &Instr{Op: OpBlock, Loc: form.Loc, Body: instrs}, nil
	}
}

func resolveDefun(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 2, -1); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	if env.Defined(name.Str) {
		return nil, Errorf(ErrResolve, name.Loc, "redefinition of `%s`", name.Str)
	}
	// Install the function before resolving the body so that it may call
	// itself.  Arity and return kind settle once the body is resolved; the
	// type checker validates recursive call sites afterwards.
	f := env.defineFun(name.Str, name.Loc)
	body, err := resolveBody(env, form.Args()[1:])
	if err != nil {
		return nil, err
	}
	f.Body = body
	f.Arity = countPops(body)
	if len(body) > 0 {
		f.Ret = body[len(body)-1].ResultKind()
	}
	return nil, nil
}

func resolveCall(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, -1); err != nil {
		return nil, err
	}
	name, err := wordArg(form, 0)
	if err != nil {
		return nil, err
	}
	return resolveCallNamed(env, name.Str, form.Args()[1:], form)
}

func resolveCallNamed(env *Env, name string, args []*SExpr, form *SExpr) (*Instr, error) {
	f, ok := env.Funs[name]
	if !ok {
		return nil, Errorf(ErrResolve, form.Loc, "function not found: `%s`", name)
	}
	instrs, err := resolveValues(env, args)
	if err != nil {
		return nil, err
	}
	return &Instr{Op: OpCall, Loc: form.Loc, Fun: f, Args: instrs}, nil
}

func resolveInclude(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, 1); err != nil {
		return nil, err
	}
	arg := form.Args()[0]
	if arg.Type != SStr {
		return nil, Errorf(ErrResolve, arg.Loc, "parameter of `include` must be a string")
	}
	if env.Reader == nil {
		return nil, Errorf(ErrInclude, form.Loc, "no reader configured for includes")
	}
	path := arg.Str
	if !filepath.IsAbs(path) && form.Loc != nil {
		path = filepath.Join(filepath.Dir(form.Loc.File), path)
	}
	if env.included(path) {
		return nil, nil
	}
	if env.includeDepth >= env.maxIncludeDepth {
		return nil, Errorf(ErrInclude, form.Loc, "include depth exceeds %d", env.maxIncludeDepth)
	}
	env.markIncluded(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, Errorf(ErrInclude, arg.Loc, "cannot open include file %q: %v", arg.Str, err)
	}
	defer f.Close()

	exprs, err := env.Reader.Read(path, f)
	if err != nil {
		return nil, err
	}

	env.includeDepth++
	defer func() { env.includeDepth-- }()
	instrs, err := Resolve(env, exprs)
	if err != nil {
		return nil, err
	}
	if len(instrs) == 0 {
		return nil, nil
	}
	return &Instr{Op: OpBlock, Loc: form.Loc, Body: instrs}, nil
}

func resolveIncrement(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 1, 1); err != nil {
		return nil, err
	}
	n, err := evalConstInt(env, form.Args()[0])
	if err != nil {
		return nil, err
	}
	prev := env.Iota
	env.Iota += n
	return &Instr{Op: OpPushInt, Loc: form.Head().Loc, Int: prev}, nil
}

func resolveReset(env *Env, op Op, form *SExpr) (*Instr, error) {
	if err := checkArgCount(form, 0, 0); err != nil {
		return nil, err
	}
	prev := env.Iota
	env.Iota = 0
	return &Instr{Op: OpPushInt, Loc: form.Head().Loc, Int: prev}, nil
}

// evalConstInt evaluates a compile-time integer expression: an integer or
// character literal, `increment`/`reset`, or the expansion of a macro whose
// body is itself a compile-time integer expression.
func evalConstInt(env *Env, s *SExpr) (int64, error) {
	switch s.Type {
	case SInt, SChar:
		return s.Int, nil
	case SList:
		head := s.Head()
		if head == nil || head.Type != SWord {
			break
		}
		switch head.Str {
		case "increment":
			if err := checkArgCount(s, 1, 1); err != nil {
				return 0, err
			}
			n, err := evalConstInt(env, s.Args()[0])
			if err != nil {
				return 0, err
			}
			prev := env.Iota
			env.Iota += n
			return prev, nil
		case "reset":
			if err := checkArgCount(s, 0, 0); err != nil {
				return 0, err
			}
			prev := env.Iota
			env.Iota = 0
			return prev, nil
		case "expand":
			if err := checkArgCount(s, 1, 1); err != nil {
				return 0, err
			}
			name, err := wordArg(s, 0)
			if err != nil {
				return 0, err
			}
			return evalConstMacro(env, name.Str, s)
		default:
			if _, ok := env.Macros[head.Str]; ok {
				return evalConstMacro(env, head.Str, s)
			}
		}
	}
	return 0, Errorf(ErrResolve, s.Loc, "compile-time integer expression required")
}

func evalConstMacro(env *Env, name string, site *SExpr) (int64, error) {
	mac, ok := env.Macros[name]
	if !ok {
		return 0, Errorf(ErrResolve, site.Loc, "macro not found: `%s`", name)
	}
	if env.expandDepth >= env.maxExpandDepth {
		return 0, Errorf(ErrMacroRecursion, site.Loc, "expansion of macro `%s` exceeds depth %d", name, env.maxExpandDepth)
	}
	if len(mac.Body) != 1 {
		return 0, Errorf(ErrResolve, site.Loc, "macro `%s` is not a compile-time integer expression", name)
	}
	env.expandDepth++
	defer func() { env.expandDepth-- }()
	return evalConstInt(env, mac.Body[0])
}

func countPops(instrs []*Instr) int {
	n := 0
	for _, in := range instrs {
		if in == nil {
			continue
		}
		if in.Op == OpPop {
			n++
		}
		n += countPops(in.Args)
		n += countPops(in.Body)
		n += countPops(in.Else)
	}
	return n
}
