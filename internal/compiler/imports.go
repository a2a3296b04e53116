package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patakha-lang/patakha/internal/ast"
	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/ir"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/parser"
	"github.com/patakha-lang/patakha/internal/semantic"
	"github.com/patakha-lang/patakha/internal/token"
)

// unit is one file's fully-analyzed state: AST, semantic result, and its
// own (not-yet-merged) IR, plus the public surface imports of this file
// hand to importers.
type unit struct {
	path     string
	prog     *ast.Program
	result   *semantic.Result
	ir       *ir.Program
	exported *semantic.Imported
}

// loader resolves a source file's import graph recursively (spec.md §2:
// "resolved by recursively invoking L→S on imported files before
// continuing S on the importer"), caching each distinct file so a diamond
// import is only compiled once, and detecting cycles via an in-progress
// stack (spec.md §9: "a single diagnostic naming all cycle participants").
type loader struct {
	sink  *diag.Sink
	log   logger
	cache map[string]*unit
	stack []string
	order []string // dependency-before-dependent load completion order
}

type logger interface {
	Debugf(format string, args ...any)
}

func newLoader(sink *diag.Sink, log logger) *loader {
	return &loader{sink: sink, log: log, cache: map[string]*unit{}}
}

// load resolves path, returning the cached unit if already compiled, a nil
// unit with no error if a cycle or upstream failure already reported a
// diagnostic (the caller should just skip that import and keep going so
// the sink collects every independent error in one pass), or an I/O error
// for a missing file (spec.md §6 exit code 3).
func (l *loader) load(path string) (*unit, error) {
	if u, ok := l.cache[path]; ok {
		return u, nil
	}
	for i, s := range l.stack {
		if s == path {
			cycle := append(append([]string{}, l.stack[i:]...), path)
			l.sink.Errorf(token.Position{File: path}, "import cycle: %s", strings.Join(cycle, " -> "))
			return nil, nil
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if l.log != nil {
		l.log.Debugf("compiler: loading %s", path)
	}

	l.stack = append(l.stack, path)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	lex := lexer.New(string(src), path)
	prog := parser.Parse(lex, l.sink)
	if l.sink.HasErrors() {
		return nil, nil
	}

	var imports []*semantic.Imported
	for _, decl := range prog.Decls {
		imp, ok := decl.(*ast.ImportDecl)
		if !ok {
			continue
		}
		depPath := resolveImportPath(path, imp.Path)
		dep, err := l.load(depPath)
		if err != nil {
			return nil, err
		}
		if dep != nil {
			imports = append(imports, dep.exported)
		}
	}
	if l.sink.HasErrors() {
		return nil, nil
	}

	result := semantic.Analyze(prog, l.sink, imports)
	if l.sink.HasErrors() {
		return nil, nil
	}

	built := ir.Build(prog, l.sink)
	if l.sink.HasErrors() {
		return nil, nil
	}

	u := &unit{path: path, prog: prog, result: result, ir: built, exported: result.Exported(path)}
	l.cache[path] = u
	l.order = append(l.order, path)
	return u, nil
}

// resolveImportPath resolves an import string (spec.md §6: "string paths
// resolved relative to the importing file") against the file that names it.
func resolveImportPath(fromFile, importPath string) string {
	if filepath.IsAbs(importPath) {
		return filepath.Clean(importPath)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(fromFile), importPath))
}

// merge flattens every dependency's IR into root (spec.md §4.4: "Imports
// contribute their top-level declarations... into the same IR namespace"),
// skipping a dependency's own main (its shuru…bass block is never reachable
// from the importer) and chaining its global initializer, if any, so it
// still runs before the root's own main.
func (l *loader) merge(rootPath string, root *ir.Program) *ir.Program {
	seenFuncs := map[string]bool{}
	for _, fn := range root.Functions {
		seenFuncs[fn.Name] = true
	}
	seenGlobals := map[string]bool{}
	for _, g := range root.Globals {
		seenGlobals[g.Name] = true
	}

	var depInits []string
	for _, path := range l.order {
		if path == rootPath {
			continue
		}
		dep := l.cache[path]
		for _, g := range dep.ir.Globals {
			if !seenGlobals[g.Name] {
				root.Globals = append(root.Globals, g)
				seenGlobals[g.Name] = true
			}
		}
		for _, fn := range dep.ir.Functions {
			if fn.Name == dep.ir.MainName {
				continue
			}
			if fn.Name == dep.ir.InitName {
				renamed := "$init$" + sanitizeName(path)
				fn.Name = renamed
				if !seenFuncs[renamed] {
					root.Functions = append(root.Functions, fn)
					seenFuncs[renamed] = true
					depInits = append(depInits, renamed)
				}
				continue
			}
			if !seenFuncs[fn.Name] {
				root.Functions = append(root.Functions, fn)
				seenFuncs[fn.Name] = true
			}
		}
	}
	if len(depInits) > 0 {
		ensureInit(root)
		// Prepending in reverse leaves the calls in load-completion order.
		for i := len(depInits) - 1; i >= 0; i-- {
			prependCall(root, root.InitName, depInits[i])
		}
	}
	return root
}

// ensureInit guarantees prog has a $init function to chain dependency
// initializers into, synthesizing a trivial one if the root file itself
// declared no global with an initializer.
func ensureInit(prog *ir.Program) {
	if prog.InitName != "" {
		return
	}
	fn := &ir.Function{
		Name:   "$init",
		Blocks: []*ir.Block{{Label: "entry", Instrs: []ir.Instr{{Op: ir.OpReturnVoid}}}},
	}
	prog.Functions = append(prog.Functions, fn)
	prog.InitName = "$init"
}

// prependCall inserts a call to callee as the very first instruction of
// initName's entry block, ahead of whatever that function already does, so
// dependency initializers run before the importer's own global inits.
func prependCall(prog *ir.Program, initName, callee string) {
	fn := prog.FindFunction(initName)
	if fn == nil || len(fn.Blocks) == 0 {
		return
	}
	entry := fn.Blocks[0]
	call := ir.Instr{Op: ir.OpCall, Name: callee}
	entry.Instrs = append([]ir.Instr{call}, entry.Instrs...)
}

func sanitizeName(path string) string {
	return strings.NewReplacer("/", "_", ".", "_", "-", "_", " ", "_").Replace(path)
}
