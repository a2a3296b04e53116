package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/token"
)

var lexEval string

var lexCmd = &cobra.Command{
	Use:   "lex <source>",
	Short: "Tokenize a .bhai file and print its token stream",
	Long: `Lex runs only the scanner, printing one line per token. This is
useful for debugging the lexer or inspecting how a construct tokenizes
without running the rest of the pipeline.

Examples:
  patakha lex prog.bhai
  patakha lex -e "bhai x = 2 + 3"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var src, filename string
		switch {
		case lexEval != "":
			src, filename = lexEval, "<eval>"
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
		fmt.Print(dumpTokens(src, filename))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from a file")
}

// dumpTokens renders every token src produces, one per line, used by both
// the lex subcommand and compile's --emit-tokens artifact.
func dumpTokens(src, filename string) string {
	var b strings.Builder
	lex := lexer.New(src, filename)
	for {
		tok := lex.NextToken()
		printToken(&b, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return b.String()
}

func printToken(b *strings.Builder, tok token.Token) {
	fmt.Fprintf(b, "[%-10s] %q @%d:%d\n", tok.Type, tok.Literal, tok.Pos.Line, tok.Pos.Column)
}
