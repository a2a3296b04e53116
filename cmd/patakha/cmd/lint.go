package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lintStrict bool

var lintCmd = &cobra.Command{
	Use:   "lint <source>",
	Short: "Lint a .bhai file (not implemented in this build)",
	Long: `A standalone linter is an external collaborator to this compiler
(see Non-goals); the diagnostics this compiler already emits (unused
symbols, write-never-read locals) are the closest thing available today.
This subcommand only reserves the CLI surface.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("lint: not implemented in this build")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "treat warnings as errors (not implemented)")
}
