package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/HatsuSixty/loisp/loisp"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <file> [args...]",
	Short: "Compile a loisp file and run the generated executable",
	Long: `Compile a loisp file into an executable and run it, forwarding any
remaining arguments.  The child's exit status becomes loisp's exit status.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info("Compiling `%s`", args[0])
		bin, err := buildExecutable(args[0])
		fail(err)
		var echo io.Writer
		if !rootSilent {
			echo = os.Stdout
		}
		status, err := loisp.RunBinary("./"+bin, args[1:], echo)
		fail(err)
		os.Exit(status)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
