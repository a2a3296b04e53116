// Package cmd implements the patakha CLI: one cobra subcommand per
// spec.md §6 entry. compile is a thin wrapper over internal/compiler; lex
// and parse drive the lexer and parser directly to dump their output.
package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "patakha [source]",
	Short: "Patakha compiler",
	Long: `patakha is the compiler for the Patakha language -- a small
Hinglish-keyword imperative language compiled to either portable C or a
textual stack-machine assembly.

Invoking patakha with a bare source file compiles it, identically to
"patakha compile <source>".`,
	Version:      Version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runCompile(args[0])
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging")
	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	})

	addCompileFlags(rootCmd)
}
