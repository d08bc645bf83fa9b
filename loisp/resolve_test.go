package loisp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/parser"
)

func resolveErr(t *testing.T, source string) *loisp.Error {
	t.Helper()
	env := loisp.NewEnv(loisp.WithReader(parser.NewReader()))
	exprs, err := parser.Parse("test.loisp", []byte(source))
	require.NoError(t, err)
	instrs, err := loisp.Resolve(env, exprs)
	if err == nil {
		err = loisp.Check(env, instrs)
	}
	require.Error(t, err)
	lerr, ok := err.(*loisp.Error)
	require.True(t, ok, "diagnostic is not a *loisp.Error: %v", err)
	return lerr
}

// Every diagnostic points at a resolvable location in the input.
func TestDiagnosticLocations(t *testing.T) {
	tests := []struct {
		source string
		kind   loisp.ErrKind
	}{
		{`(nosuchthing)`, loisp.ErrResolve},
		{`(setvar x 1) (setvar x 2)`, loisp.ErrResolve},
		{`(print (getvar missing))`, loisp.ErrResolve},
		{`(macro A (expand A)) (expand A)`, loisp.ErrMacroRecursion},
		{`(+ 1 "s")`, loisp.ErrType},
		{`(include "missing.loisp")`, loisp.ErrInclude},
	}
	for _, tt := range tests {
		lerr := resolveErr(t, tt.source)
		assert.Equal(t, tt.kind, lerr.Kind, "source %q", tt.source)
		require.NotNil(t, lerr.Loc, "source %q", tt.source)
		assert.Equal(t, "test.loisp", lerr.Loc.File)
		assert.Greater(t, lerr.Loc.Line, 0)
		assert.Greater(t, lerr.Loc.Col, 0)
	}
}

// The type error for a mismatched operand names the offending argument.
func TestTypeErrorPointsAtArgument(t *testing.T) {
	lerr := resolveErr(t, `(+ 1 "s")`)
	assert.Equal(t, loisp.ErrType, lerr.Kind)
	// the string literal sits at column 6
	assert.Equal(t, 6, lerr.Loc.Col)
	assert.Contains(t, lerr.Msg, "string")
}

// Variables live in a single flat namespace for the whole translation unit.
func TestFlatScope(t *testing.T) {
	env := loisp.NewEnv()
	exprs, err := parser.Parse("test.loisp", []byte(`
		(defun set9 (chvar x 9))
		(setvar y (block (setvar x 1) (getvar x)))
		(print (getvar x))`))
	require.NoError(t, err)
	_, rerr := loisp.Resolve(env, exprs)
	// x is defined inside a block but resolvable at top level afterwards;
	// the function referencing it before definition fails instead.
	require.Error(t, rerr)

	exprs, err = parser.Parse("test.loisp", []byte(`
		(setvar x (block (setvar inner 5) (getvar inner)))
		(print (getvar inner))`))
	require.NoError(t, err)
	instrs, rerr := loisp.Resolve(env, exprs)
	require.NoError(t, rerr)
	require.NoError(t, loisp.Check(env, instrs))
	assert.True(t, env.Defined("inner"))
	assert.True(t, env.Defined("x"))
}

func TestForwardFunctionReference(t *testing.T) {
	lerr := resolveErr(t, `(print (call f 1)) (defun f (setvar n 0) (pop n) (getvar n))`)
	assert.Equal(t, loisp.ErrResolve, lerr.Kind)
	assert.Contains(t, lerr.Msg, "function not found")
}

func TestSelfRecursiveFunctionResolves(t *testing.T) {
	env := loisp.NewEnv()
	exprs, err := parser.Parse("test.loisp", []byte(`
		(defun spin (setvar n 0) (pop n)
			(if (> (getvar n) 0) (call spin (- (getvar n) 1)) (block)))
		(call spin 3)`))
	require.NoError(t, err)
	instrs, rerr := loisp.Resolve(env, exprs)
	require.NoError(t, rerr)
	require.NoError(t, loisp.Check(env, instrs))
}

func TestIotaFoldsToLiterals(t *testing.T) {
	env := loisp.NewEnv()
	exprs, err := parser.Parse("test.loisp", []byte(`(print (increment 4)) (print (reset))`))
	require.NoError(t, err)
	instrs, rerr := loisp.Resolve(env, exprs)
	require.NoError(t, rerr)
	require.Len(t, instrs, 2)
	assert.Equal(t, loisp.OpPushInt, instrs[0].Args[0].Op)
	assert.Equal(t, int64(0), instrs[0].Args[0].Int)
	assert.Equal(t, int64(4), instrs[1].Args[0].Int)
	assert.Equal(t, int64(0), env.Iota)
}

func TestAllocSizeIsCompileTime(t *testing.T) {
	env := loisp.NewEnv()
	exprs, err := parser.Parse("test.loisp", []byte(`(macro size 32) (alloc buf (expand size))`))
	require.NoError(t, err)
	_, rerr := loisp.Resolve(env, exprs)
	require.NoError(t, rerr)
	require.Len(t, env.MemOrder, 1)
	assert.Equal(t, int64(32), env.MemOrder[0].Size)

	lerr := resolveErr(t, `(setvar n 8) (alloc buf (getvar n))`)
	assert.Contains(t, lerr.Msg, "compile-time")
}

func TestNamespaceSharedAcrossDefinitionKinds(t *testing.T) {
	lerr := resolveErr(t, `(macro x 1) (setvar x 2)`)
	assert.Contains(t, lerr.Msg, "redefinition")
	lerr = resolveErr(t, `(alloc f 8) (defun f (block))`)
	assert.Contains(t, lerr.Msg, "redefinition")
}
