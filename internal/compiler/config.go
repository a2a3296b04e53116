package compiler

import "github.com/sirupsen/logrus"

// Backend selects which code generator Compile targets (spec.md §6
// "--backend {c|stack}").
type Backend string

const (
	BackendC     Backend = "c"
	BackendStack Backend = "stack"
)

// Config carries every compile-time toggle, populated from cobra flags in
// cmd/patakha/cmd/compile.go and threaded by value down the pipeline
// exactly the way the teacher threads its bytecode optimizeConfig (spec.md
// §9: "no global mutable state").
type Config struct {
	Backend Backend
	Gcc     bool

	EmitWarnings bool
	EmitTokens   bool
	EmitRawIR    bool
	EmitIR       bool
	EmitStack    bool
	DumpAST      bool
	DumpASTDot   bool
	DumpSymbols  bool
	DumpCFG      bool
	DumpCFGDot   bool
	DumpLL1      bool
	DumpSLR      bool

	Log *logrus.Logger
}

// DefaultConfig returns spec.md §6's documented defaults: C backend, every
// emit/dump toggle off.
func DefaultConfig() Config {
	return Config{Backend: BackendC}
}
