package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HatsuSixty/loisp/loisp"
	"github.com/HatsuSixty/loisp/repl"
)

var (
	rootSilent bool
	rootOutput string
)

// rootCmd represents the bare loisp invocation, which starts the REPL.
var rootCmd = &cobra.Command{
	Use:   "loisp",
	Short: "The loisp compiler",
	Long: `Loisp is an ahead-of-time compiler for an S-expression language
targeting x86-64 Linux through the flat assembler.  Without a subcommand it
starts an interactive session backed by the IR emulator.`,
	Run: func(cmd *cobra.Command, args []string) {
		repl.RunRepl("loisp> ")
	},
}

// Execute runs the command tree and exits the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootSilent, "silent", "s", false,
		"Do not show any output except errors")
	rootCmd.PersistentFlags().StringVarP(&rootOutput, "output", "o", "output",
		"Name of the executable that gets generated")
}

func fail(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(loisp.ExitCode(err))
}

func info(format string, v ...interface{}) {
	if rootSilent {
		return
	}
	fmt.Printf("[INFO] "+format+"\n", v...)
}
