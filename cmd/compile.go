package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/parser"
)

// compileCmd represents the compile command
var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a loisp file into an executable",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info("Compiling `%s`", args[0])
		_, err := buildExecutable(args[0])
		fail(err)
	},
}

// buildExecutable compiles input, writes the assembly next to the chosen
// output name and assembles it.  It returns the executable's path.
func buildExecutable(input string) (string, error) {
	env := loisp.NewEnv(loisp.WithReader(parser.NewReader()))
	instrs, err := loisp.CompileFile(env, input)
	if err != nil {
		return "", err
	}
	asm := rootOutput + ".asm"
	if err := loisp.BuildAssemblyFile(env, instrs, asm); err != nil {
		return "", err
	}
	var echo io.Writer
	if !rootSilent {
		echo = os.Stdout
	}
	if err := loisp.Assemble(asm, rootOutput, echo); err != nil {
		return "", err
	}
	return rootOutput, nil
}

func init() {
	rootCmd.AddCommand(compileCmd)
}
