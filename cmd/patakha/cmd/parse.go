package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/parser"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse <source>",
	Short: "Parse a .bhai file and print its AST",
	Long: `Parse runs the lexer and parser only, printing the resulting AST
(or reporting syntax errors) without running semantic analysis or code
generation.

Examples:
  patakha parse prog.bhai
  patakha parse -e "shuru bol(1) bass"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var src, filename string
		switch {
		case parseEval != "":
			src, filename = parseEval, "<eval>"
		case len(args) == 1:
			filename = args[0]
			content, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("reading %s: %w", filename, err)
			}
			src = string(content)
		default:
			return fmt.Errorf("provide a source file or use -e for inline code")
		}

		sink := diag.NewSink()
		lex := lexer.New(src, filename)
		prog := parser.Parse(lex, sink)

		fmt.Print(dumpAST(prog))
		if sink.HasErrors() {
			sink.WriteAll(os.Stderr, !color.NoColor)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from a file")
}
