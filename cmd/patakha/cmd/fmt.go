package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fmtWrite bool
var fmtCheck bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <source>",
	Short: "Format a .bhai file (not implemented in this build)",
	Long: `A Patakha source formatter is an external collaborator to this
compiler (see Non-goals); this subcommand only reserves the CLI surface
so scripts invoking "patakha fmt" do not fail with an unknown-command
error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("fmt: not implemented in this build")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to source file instead of stdout (not implemented)")
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "exit non-zero if the file is not formatted (not implemented)")
}
