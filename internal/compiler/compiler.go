// Package compiler orchestrates the full pipeline named across spec.md §2
// and §9 -- lex, parse, recursive import resolution, semantic analysis, IR
// construction, optimization, and code generation -- gating each stage on
// the shared diag.Sink exactly the way the teacher's bytecode.Compiler
// gates on its own error list between passes. cmd/patakha's compile
// subcommand is a thin wrapper over this package; its lex and parse
// subcommands call the lexer and parser directly.
package compiler

import (
	"fmt"

	"github.com/patakha-lang/patakha/internal/ast"
	"github.com/patakha-lang/patakha/internal/cfgopt"
	"github.com/patakha-lang/patakha/internal/codegen/cbackend"
	"github.com/patakha-lang/patakha/internal/codegen/stackbackend"
	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/ir"
	"github.com/patakha-lang/patakha/internal/semantic"
)

// Result collects every artifact a cmd/patakha subcommand might need to
// print or write, populated as far as the pipeline got before either
// finishing or a stage reporting an error to Sink.
type Result struct {
	Sink *diag.Sink

	rootUnit *unit

	RawIR   string // ir.DumpString before cfgopt.Optimize
	IR      string // ir.DumpString after cfgopt.Optimize
	CFGText string
	CFGDot  string
	Symbols string

	Backend     Backend
	Output      string // primary backend's generated source
	StackOutput string // stack-machine assembly, populated when cfg.EmitStack is set and Backend != BackendStack
}

// Ok reports whether the pipeline reached code generation without any
// stage recording an error diagnostic.
func (r *Result) Ok() bool { return r != nil && !r.Sink.HasErrors() }

// Program returns the root file's parsed AST, or nil if the root file
// never made it past parsing (spec.md §9 "the importer's main block...
// is authoritative"; the AST a CLI subcommand dumps is always the root's).
func (r *Result) Program() *ast.Program {
	if r == nil || r.rootUnit == nil {
		return nil
	}
	return r.rootUnit.prog
}

// Compile runs the full pipeline over path under cfg, returning as much of
// Result as was reachable. A non-nil error indicates an I/O failure (spec.md
// §6 exit code 3: file not found / unreadable); every other kind of failure
// is reported through Result.Sink instead, per spec.md §7's "stages never
// throw for expected errors" design.
func Compile(path string, cfg Config) (*Result, error) {
	sink := diag.NewSink()
	res := &Result{Sink: sink, Backend: cfg.Backend}

	var log logger
	if cfg.Log != nil {
		log = cfg.Log
	}
	ld := newLoader(sink, log)

	root, err := ld.load(path)
	if err != nil {
		return res, err
	}
	if root == nil {
		return res, nil // diagnostics already recorded
	}
	res.rootUnit = root

	merged := ld.merge(path, root.ir)
	res.RawIR = ir.DumpString(merged)
	res.CFGText = cfgopt.DumpText(merged)
	res.CFGDot = cfgopt.DumpDot(merged)
	res.Symbols = dumpSymbols(root)

	if sink.HasErrors() {
		return res, nil
	}

	cfgopt.Optimize(merged, sink, cfg.Log)
	res.IR = ir.DumpString(merged)
	if sink.HasErrors() {
		return res, nil
	}

	switch cfg.Backend {
	case BackendStack:
		res.Output = stackbackend.EmitString(merged)
	default:
		res.Output = cbackend.EmitString(merged)
		if cfg.EmitStack {
			res.StackOutput = stackbackend.EmitString(merged)
		}
	}
	return res, nil
}

// dumpSymbols renders the root file's resolved public signatures, for
// --dump-symbols (spec.md §6 Supplemented features: "renders the
// post-semantic-analysis public signatures map").
func dumpSymbols(u *unit) string {
	out := ""
	for _, sym := range u.result.Global.All() {
		out += fmt.Sprintf("%s %s: %s\n", symbolKindName(sym.Kind), sym.Name, sym.Type)
	}
	return out
}

func symbolKindName(k semantic.SymbolKind) string {
	// mirrors semantic.SymbolKind's declaration order
	names := []string{"var", "param", "func", "type", "field"}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}
