// Package loisptest provides utilities for testing the behavior of compiled
// loisp programs.  Programs run under the IR emulator so that suites observe
// real program I/O without an assembler on PATH.
package loisptest

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/parser"
)

// Program is a self-contained source program and its expected behavior.
// When Err is non-empty the program must fail, either to compile or during
// emulation, with an error containing it, and Stdout is ignored.
type Program struct {
	Name   string
	Source string
	Input  string
	Args   []string
	Stdout string
	Err    string
}

// TestSuite is a sequence of programs executed independently.
type TestSuite []Program

// RunTestSuite runs each program in the suite as a subtest.
func RunTestSuite(t *testing.T, suite TestSuite) {
	for _, p := range suite {
		p := p
		t.Run(p.Name, func(t *testing.T) {
			stdout, err := RunProgram(p)
			if p.Err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), p.Err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, p.Stdout, stdout)
		})
	}
}

// RunProgram compiles p.Source and executes it, returning everything the
// program wrote to stdout.  Compile diagnostics and emulation failures are
// returned as the error.
func RunProgram(p Program) (string, error) {
	env := loisp.NewEnv(loisp.WithReader(parser.NewReader()))
	instrs, err := Compile(env, p.Name+".loisp", p.Source)
	if err != nil {
		return "", err
	}
	var stdout bytes.Buffer
	emu := loisp.NewEmulator(env)
	emu.Stdin = strings.NewReader(p.Input)
	emu.Stdout = &stdout
	emu.Stderr = io.Discard
	emu.Args = append([]string{p.Name}, p.Args...)
	if err := emu.Run(instrs); err != nil {
		return stdout.String(), err
	}
	return stdout.String(), nil
}

func newTestEmulator(env *loisp.Env) *loisp.Emulator {
	emu := loisp.NewEmulator(env)
	emu.Stdin = strings.NewReader("")
	emu.Stdout = &bytes.Buffer{}
	emu.Stderr = io.Discard
	emu.Args = []string{"test"}
	return emu
}

// Compile parses, resolves and type checks source against env.
func Compile(env *loisp.Env, name, source string) ([]*loisp.Instr, error) {
	exprs, err := parser.Parse(name, []byte(source))
	if err != nil {
		return nil, err
	}
	instrs, err := loisp.Resolve(env, exprs)
	if err != nil {
		return nil, err
	}
	if err := loisp.Check(env, instrs); err != nil {
		return nil, err
	}
	return instrs, nil
}
