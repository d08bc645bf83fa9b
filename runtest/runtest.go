// Package runtest records and replays the observable behavior of loisp
// programs.  Expected outputs live next to each program in a `.conf` file;
// comparisons are over program I/O, never over generated assembly.
package runtest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/parser"
)

const sourceExtension = ".loisp"

// Stats summarizes a test run.
type Stats struct {
	Passed  int
	Failed  int
	Ignored int
}

// Runner executes every loisp program in a folder, either recording its
// behavior or comparing it against the stored expectation.
type Runner struct {
	// Info receives progress output.  Defaults to os.Stdout.
	Info io.Writer

	// Execute runs one program and reports its observed behavior along
	// with whether it compiled.  Defaults to Emulate.
	Execute func(path string, args []string) (*Case, bool)
}

func (r *Runner) info() io.Writer {
	if r.Info == nil {
		return os.Stdout
	}
	return r.Info
}

func (r *Runner) execute(path string, args []string) (*Case, bool) {
	if r.Execute != nil {
		return r.Execute(path, args)
	}
	return Emulate(path, args)
}

// Emulate compiles path and runs it under the IR emulator, capturing the
// program's output.  Compile diagnostics become the case's stderr.
func Emulate(path string, args []string) (*Case, bool) {
	var stdout, stderr bytes.Buffer
	env := loisp.NewEnv(loisp.WithReader(parser.NewReader()), loisp.WithStderr(&stderr))
	c := &Case{Args: args}

	instrs, err := loisp.CompileFile(env, path)
	if err != nil {
		fmt.Fprintln(&stderr, err)
		c.Stderr = strings.TrimSpace(stderr.String())
		return c, false
	}

	emu := loisp.NewEmulator(env)
	emu.Stdin = strings.NewReader("")
	emu.Stdout = &stdout
	emu.Stderr = &stderr
	emu.Args = append([]string{path}, args...)
	ok := true
	if err := emu.Run(instrs); err != nil {
		fmt.Fprintln(&stderr, err)
		ok = false
	}
	if emu.Exited() && emu.ExitCode != 0 {
		ok = false
	}
	c.Stdout = strings.TrimSpace(stdout.String())
	c.Stderr = strings.TrimSpace(stderr.String())
	return c, ok
}

func (r *Runner) sources(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, ent := range entries {
		if !ent.IsDir() && strings.HasSuffix(ent.Name(), sourceExtension) {
			paths = append(paths, filepath.Join(folder, ent.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func confPath(source string) string {
	return strings.TrimSuffix(source, sourceExtension) + ".conf"
}

// SaveDir records the behavior of every program in folder into sibling
// `.conf` files.
func (r *Runner) SaveDir(folder string) error {
	fmt.Fprintf(r.info(), "[INFO] Saving tests for folder `%s`\n", folder)
	paths, err := r.sources(folder)
	if err != nil {
		return err
	}
	for _, p := range paths {
		got, _ := r.execute(p, nil)
		out := confPath(p)
		fmt.Fprintf(r.info(), "[INFO] Saving output to `%s`\n", out)
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := FormatCase(f, got); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// RunDir replays every program in folder against its stored expectation.
// Programs with no stored expectation are only checked to compile.
func (r *Runner) RunDir(folder string) (Stats, error) {
	fmt.Fprintf(r.info(), "[INFO] Running tests for folder `%s`\n", folder)
	var stats Stats
	paths, err := r.sources(folder)
	if err != nil {
		return stats, err
	}
	for _, p := range paths {
		expectedPath := confPath(p)
		data, err := os.ReadFile(expectedPath)
		if os.IsNotExist(err) {
			fmt.Fprintf(r.info(), "[WARN] No output found for `%s`, only testing if it compiles\n", p)
			if _, ok := r.execute(p, nil); !ok {
				fmt.Fprintf(r.info(), "[ERROR] Test failed: `%s` did not compile\n", p)
				stats.Failed++
			} else {
				stats.Passed++
			}
			stats.Ignored++
			continue
		}
		if err != nil {
			return stats, err
		}
		expected, err := ParseCase(data)
		if err != nil {
			return stats, fmt.Errorf("%s: %v", expectedPath, err)
		}
		got, _ := r.execute(p, expected.Args)
		if !expected.Equal(got) {
			fmt.Fprintf(r.info(), "[ERROR] Test failed: `%s`\n    Expected: %+v\n    Got: %+v\n", p, expected, got)
			stats.Failed++
		} else {
			stats.Passed++
		}
	}
	fmt.Fprintf(r.info(), "[STAT] passed: %d, failed: %d, ignored: %d\n", stats.Passed, stats.Failed, stats.Ignored)
	return stats, nil
}
