package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/patakha-lang/patakha/internal/compiler"
)

var (
	flagBackend      string
	flagGcc          bool
	flagEmitWarnings bool
	flagEmitTokens   bool
	flagEmitRawIR    bool
	flagEmitIR       bool
	flagEmitStack    bool
	flagDumpAST      bool
	flagDumpASTDot   bool
	flagDumpSymbols  bool
	flagDumpCFG      bool
	flagDumpCFGDot   bool
	flagDumpLL1      bool
	flagDumpSLR      bool
)

// addCompileFlags registers every spec.md §6 compile flag on cmd, shared
// between the root command (bare "patakha <source>") and the explicit
// "compile" subcommand so both accept the identical flag set.
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagBackend, "backend", "c", "code generator: c or stack")
	cmd.Flags().BoolVar(&flagGcc, "gcc", false, "invoke gcc (or $CC) on the emitted .c file to produce an executable")
	cmd.Flags().BoolVar(&flagEmitWarnings, "emit-warnings", false, "write collected warnings to <source>.warnings.txt")
	cmd.Flags().BoolVar(&flagEmitTokens, "emit-tokens", false, "write the token stream to <source>.tokens.txt")
	cmd.Flags().BoolVar(&flagEmitRawIR, "emit-raw-ir", false, "write pre-optimization IR to <source>.raw.ir")
	cmd.Flags().BoolVar(&flagEmitIR, "emit-ir", false, "write optimized IR to <source>.ir")
	cmd.Flags().BoolVar(&flagEmitStack, "emit-stack", false, "write stack-machine assembly to <source>.stk")
	cmd.Flags().BoolVar(&flagDumpAST, "dump-ast", false, "write the parsed AST to <source>.ast.txt")
	cmd.Flags().BoolVar(&flagDumpASTDot, "dump-ast-dot", false, "write the parsed AST as Graphviz dot to <source>.ast.dot")
	cmd.Flags().BoolVar(&flagDumpSymbols, "dump-symbols", false, "write resolved symbols to <source>.symbols.txt")
	cmd.Flags().BoolVar(&flagDumpCFG, "dump-cfg", false, "write the control-flow graph to <source>.cfg.txt")
	cmd.Flags().BoolVar(&flagDumpCFGDot, "dump-cfg-dot", false, "write the control-flow graph as Graphviz dot to <source>.cfg.dot")
	cmd.Flags().BoolVar(&flagDumpLL1, "dump-ll1", false, "print a note that the parser has no LL(1) table to dump")
	cmd.Flags().BoolVar(&flagDumpSLR, "dump-slr", false, "print a note that the parser has no SLR table to dump")
}

var compileCmd = &cobra.Command{
	Use:   "compile <source>",
	Short: "Compile a .bhai source file",
	Long: `Compile runs the full pipeline -- lex, parse, resolve imports,
type-check, build IR, optimize, and generate code -- writing the chosen
backend's output next to the source file.

Examples:
  patakha compile prog.bhai
  patakha compile --backend stack prog.bhai
  patakha compile --gcc prog.bhai`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(args[0])
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	addCompileFlags(compileCmd)
}

func buildConfig() compiler.Config {
	cfg := compiler.DefaultConfig()
	if flagBackend == string(compiler.BackendStack) {
		cfg.Backend = compiler.BackendStack
	}
	cfg.Gcc = flagGcc
	cfg.EmitWarnings = flagEmitWarnings
	cfg.EmitTokens = flagEmitTokens
	cfg.EmitRawIR = flagEmitRawIR
	cfg.EmitIR = flagEmitIR
	cfg.EmitStack = flagEmitStack
	cfg.DumpAST = flagDumpAST
	cfg.DumpASTDot = flagDumpASTDot
	cfg.DumpSymbols = flagDumpSymbols
	cfg.DumpCFG = flagDumpCFG
	cfg.DumpCFGDot = flagDumpCFGDot
	cfg.DumpLL1 = flagDumpLL1
	cfg.DumpSLR = flagDumpSLR
	cfg.Log = log
	return cfg
}

func runCompile(path string) error {
	if flagBackend != "c" && flagBackend != "stack" {
		return fmt.Errorf("unknown backend %q (want c or stack)", flagBackend)
	}

	cfg := buildConfig()
	res, err := compiler.Compile(path, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "patakha: %s\n", err)
		os.Exit(3)
	}

	if flagDumpLL1 {
		fmt.Println("patakha's parser is hand-written recursive descent; there is no LL(1) table to dump.")
	}
	if flagDumpSLR {
		fmt.Println("patakha's parser is hand-written recursive descent; there is no SLR table to dump.")
	}

	if err := writeArtifacts(path, res, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "patakha: %s\n", err)
		os.Exit(3)
	}

	res.Sink.WriteAll(os.Stderr, !color.NoColor)
	if !res.Ok() {
		os.Exit(1)
	}

	if cfg.Backend == compiler.BackendC {
		outPath := withExt(path, ".c")
		if err := os.WriteFile(outPath, []byte(res.Output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "patakha: %s\n", err)
			os.Exit(3)
		}
		fmt.Printf("wrote %s\n", outPath)
		if flagGcc {
			return runGcc(outPath, withExt(path, ".exe"))
		}
	} else {
		outPath := withExt(path, ".stk")
		if err := os.WriteFile(outPath, []byte(res.Output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "patakha: %s\n", err)
			os.Exit(3)
		}
		fmt.Printf("wrote %s\n", outPath)
	}
	return nil
}

// writeArtifacts writes every --dump-*/--emit-* side artifact spec.md §6
// names (besides the backend's own primary output, handled by the caller).
func writeArtifacts(path string, res *compiler.Result, cfg compiler.Config) error {
	if cfg.EmitRawIR {
		if err := os.WriteFile(withExt(path, ".raw.ir"), []byte(res.RawIR), 0o644); err != nil {
			return err
		}
	}
	if cfg.EmitIR && res.IR != "" {
		if err := os.WriteFile(withExt(path, ".ir"), []byte(res.IR), 0o644); err != nil {
			return err
		}
	}
	if cfg.EmitStack && res.StackOutput != "" {
		if err := os.WriteFile(withExt(path, ".stk"), []byte(res.StackOutput), 0o644); err != nil {
			return err
		}
	}
	if cfg.DumpCFG {
		if err := os.WriteFile(withExt(path, ".cfg.txt"), []byte(res.CFGText), 0o644); err != nil {
			return err
		}
	}
	if cfg.DumpCFGDot {
		if err := os.WriteFile(withExt(path, ".cfg.dot"), []byte(res.CFGDot), 0o644); err != nil {
			return err
		}
	}
	if cfg.DumpSymbols {
		if err := os.WriteFile(withExt(path, ".symbols.txt"), []byte(res.Symbols), 0o644); err != nil {
			return err
		}
	}
	if cfg.DumpAST {
		if prog := res.Program(); prog != nil {
			if err := os.WriteFile(withExt(path, ".ast.txt"), []byte(dumpAST(prog)), 0o644); err != nil {
				return err
			}
		}
	}
	if cfg.DumpASTDot {
		if prog := res.Program(); prog != nil {
			if err := os.WriteFile(withExt(path, ".ast.dot"), []byte(dumpASTDot(prog)), 0o644); err != nil {
				return err
			}
		}
	}
	if cfg.EmitTokens {
		src, err := os.ReadFile(path)
		if err == nil {
			if err := os.WriteFile(withExt(path, ".tokens.txt"), []byte(dumpTokens(string(src), path)), 0o644); err != nil {
				return err
			}
		}
	}
	if cfg.EmitWarnings {
		var b strings.Builder
		for _, d := range res.Sink.All() {
			if d.Severity.String() == "warning" {
				b.WriteString(d.Message)
				b.WriteString("\n")
			}
		}
		if err := os.WriteFile(withExt(path, ".warnings.txt"), []byte(b.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// withExt replaces path's extension with ext, preserving its directory and
// base name (spec.md §6: "generated artifacts written next to the source").
func withExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}

func runGcc(cFile, exeFile string) error {
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "gcc"
	}
	cmd := exec.Command(cc, cFile, "-o", exeFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s exited with a non-zero status compiling %s", cc, cFile)
		}
		return fmt.Errorf("could not invoke %s: %w", cc, err)
	}
	fmt.Printf("wrote %s\n", exeFile)
	return nil
}
