package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session (not implemented in this build)",
	Long: `An interactive REPL is an external collaborator to this compiler
(see Non-goals). A readline-based session over the reference interpreter
(internal/interp), in the style of akashmaji946-go-mix's repl.go, is the
natural implementation; this subcommand only reserves the CLI surface.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("repl: not implemented in this build")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
