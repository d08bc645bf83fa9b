package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HatsuSixty/loisp/runtest"
)

// runTestCmd represents the run-test command
var runTestCmd = &cobra.Command{
	Use:   "run-test <folder>",
	Short: "Run tests for each loisp file in a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		r := &runtest.Runner{}
		stats, err := r.RunDir(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if stats.Failed > 0 {
			os.Exit(1)
		}
	},
}

// saveTestCmd represents the save-test command
var saveTestCmd = &cobra.Command{
	Use:   "save-test <folder>",
	Short: "Save test cases for each loisp file in a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		r := &runtest.Runner{}
		if err := r.SaveDir(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runTestCmd)
	rootCmd.AddCommand(saveTestCmd)
}
