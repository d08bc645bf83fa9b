package loisp

import (
	"io"
	"os"
	"path/filepath"

	"github.com/HatsuSixty/loisp/parser/token"
)

// Default limits guarding recursive compile-time expansion.
const (
	DefaultMaxExpandDepth  = 1024
	DefaultMaxIncludeDepth = 256
)

// Macro is a named sequence of unresolved expressions spliced in at each
// expand site.
type Macro struct {
	Name string
	Body []*SExpr
	Loc  *token.Location
}

// Function is a named sequence of resolved instructions invoked by label.
// Arity is the number of values the body pops from the runtime value stack.
type Function struct {
	Name  string
	Body  []*Instr
	Loc   *token.Location
	Label int
	Arity int
	Ret   ValueKind
}

// Variable is a named 8-byte slot in the process-wide variable region.
type Variable struct {
	Name string
	Slot int
	Kind ValueKind
	Loc  *token.Location
}

// Allocation is a named static buffer reserved in uninitialized data.
type Allocation struct {
	Name  string
	Size  int64
	Label int
	Loc   *token.Location
}

// StringPool is the insertion-ordered set of string literals of a
// translation unit.  Each entry is emitted null-terminated under a label
// derived from its index.
type StringPool struct {
	strs  []string
	index map[string]int
}

// Intern adds s to the pool if it is not already present and returns its
// index.
func (p *StringPool) Intern(s string) int {
	if i, ok := p.index[s]; ok {
		return i
	}
	if p.index == nil {
		p.index = make(map[string]int)
	}
	i := len(p.strs)
	p.strs = append(p.strs, s)
	p.index[s] = i
	return i
}

// Strings returns the pooled literals in insertion order.
func (p *StringPool) Strings() []string {
	return p.strs
}

// Env is the compile-time environment of a single translation unit.  It is
// mutated by resolution and read-only afterwards.
type Env struct {
	Macros map[string]*Macro
	Funs   map[string]*Function
	Vars   map[string]*Variable
	Mems   map[string]*Allocation

	// Definition order, for deterministic emission.
	FunOrder []*Function
	MemOrder []*Allocation

	Strings  StringPool
	VarSlots int
	Iota     int64

	Reader Reader
	Stderr io.Writer

	includes        map[string]bool
	includeDepth    int
	expandDepth     int
	maxExpandDepth  int
	maxIncludeDepth int
}

// Config is a function that configures an environment.
type Config func(env *Env)

// WithReader returns a Config that makes the environment use r to parse
// source streams pulled in by include directives.
func WithReader(r Reader) Config {
	return func(env *Env) { env.Reader = r }
}

// WithStderr returns a Config that makes the environment write diagnostics
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *Env) { env.Stderr = w }
}

// WithMaximumExpandDepth returns a Config bounding recursive macro
// expansion.
func WithMaximumExpandDepth(n int) Config {
	return func(env *Env) { env.maxExpandDepth = n }
}

// WithMaximumIncludeDepth returns a Config bounding nested includes.
func WithMaximumIncludeDepth(n int) Config {
	return func(env *Env) { env.maxIncludeDepth = n }
}

// NewEnv initializes and returns a new Env.
func NewEnv(cfg ...Config) *Env {
	env := &Env{
		Macros:          make(map[string]*Macro),
		Funs:            make(map[string]*Function),
		Vars:            make(map[string]*Variable),
		Mems:            make(map[string]*Allocation),
		includes:        make(map[string]bool),
		Stderr:          os.Stderr,
		maxExpandDepth:  DefaultMaxExpandDepth,
		maxIncludeDepth: DefaultMaxIncludeDepth,
	}
	for _, fn := range cfg {
		fn(env)
	}
	return env
}

// Defined reports whether name is taken in the flat namespace shared by
// macros, functions, variables and allocations.
func (env *Env) Defined(name string) bool {
	if _, ok := env.Macros[name]; ok {
		return true
	}
	if _, ok := env.Funs[name]; ok {
		return true
	}
	if _, ok := env.Vars[name]; ok {
		return true
	}
	_, ok := env.Mems[name]
	return ok
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (env *Env) markIncluded(path string) {
	env.includes[canonicalPath(path)] = true
}

func (env *Env) included(path string) bool {
	return env.includes[canonicalPath(path)]
}

func (env *Env) defineVar(name string, kind ValueKind, loc *token.Location) *Variable {
	v := &Variable{Name: name, Slot: env.VarSlots, Kind: kind, Loc: loc}
	env.VarSlots++
	env.Vars[name] = v
	return v
}

func (env *Env) defineMem(name string, size int64, loc *token.Location) *Allocation {
	m := &Allocation{Name: name, Size: size, Label: len(env.MemOrder), Loc: loc}
	env.Mems[name] = m
	env.MemOrder = append(env.MemOrder, m)
	return m
}

func (env *Env) defineFun(name string, loc *token.Location) *Function {
	// Ret settles after the body resolves; a self-recursive tail call sees
	// KindNothing in the meantime.
	f := &Function{Name: name, Loc: loc, Label: len(env.FunOrder), Ret: KindNothing}
	env.Funs[name] = f
	env.FunOrder = append(env.FunOrder, f)
	return f
}
