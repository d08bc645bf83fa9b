package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/parser"
)

// emulateCmd represents the emulate command
var emulateCmd = &cobra.Command{
	Use:   "emulate <file> [args...]",
	Short: "Run a loisp file under the IR emulator",
	Long: `Compile a loisp file to IR and interpret it directly, without
invoking the assembler.  Program output and exit status match the compiled
executable.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := loisp.NewEnv(loisp.WithReader(parser.NewReader()))
		instrs, err := loisp.CompileFile(env, args[0])
		fail(err)
		emu := loisp.NewEmulator(env)
		emu.Args = args
		if err := emu.Run(instrs); err != nil {
			fail(loisp.Errorf(loisp.ErrToolchain, nil, "emulation failed: %v", err))
		}
		os.Exit(emu.ExitCode)
	},
}

func init() {
	rootCmd.AddCommand(emulateCmd)
}
