package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/parser"
)

// RunRepl reads forms from the terminal and executes them against a
// persistent environment through the IR emulator.  Definitions accumulate
// across lines the way they would across a translation unit.
func RunRepl(prompt string) {
	env := loisp.NewEnv(loisp.WithReader(parser.NewReader()))
	emu := loisp.NewEmulator(env)
	emu.Args = []string{"<repl>"}

	rl, err := readline.New(prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()
	contPrompt := strings.Repeat(" ", len(prompt)) // prompt had better be ascii...

	var buf []byte
	for {
		var line []byte
		line, err = rl.ReadSlice()
		if err != nil && err != readline.ErrInterrupt {
			break
		}
		if err == readline.ErrInterrupt {
			line = nil
			buf = nil
			rl.SetPrompt(prompt)
		}
		if len(buf) != 0 {
			buf = append(buf, '\n')
			line = append(buf, line...)
			buf = nil
			rl.SetPrompt(prompt)
		}
		if len(line) == 0 {
			continue
		}
		exprs, err := parser.Parse("<repl>", line)
		if err != nil {
			if parser.IsIncomplete(err) {
				buf = line
				rl.SetPrompt(contPrompt)
				continue
			}
			errln(err)
			continue
		}
		run(env, emu, exprs)
		if emu.Exited() {
			os.Exit(emu.ExitCode)
		}
	}
	if err != io.EOF && err != nil {
		errln(err)
		return
	}
}

func run(env *loisp.Env, emu *loisp.Emulator, exprs []*loisp.SExpr) {
	instrs, err := loisp.Resolve(env, exprs)
	if err != nil {
		errln(err)
		return
	}
	if err := loisp.Check(env, instrs); err != nil {
		errln(err)
		return
	}
	if err := emu.Run(instrs); err != nil {
		errln(err)
	}
}

func errln(v interface{}) {
	fmt.Fprintln(os.Stderr, v)
}
