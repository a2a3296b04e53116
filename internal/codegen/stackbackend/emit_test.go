package stackbackend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patakha-lang/patakha/internal/cfgopt"
	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/ir"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/parser"
	"github.com/patakha-lang/patakha/internal/semantic"
)

func compile(t *testing.T, src string) *ir.Program {
	t.Helper()
	sink := diag.NewSink()
	lex := lexer.New(src, "test.bhai")
	prog := parser.Parse(lex, sink)
	require.False(t, sink.HasErrors())
	semantic.Analyze(prog, sink, nil)
	require.False(t, sink.HasErrors())
	built := ir.Build(prog, sink)
	cfgopt.Optimize(built, sink, nil)
	return built
}

func TestEmitMainHasLabel(t *testing.T) {
	p := compile(t, `shuru
bol(1)
bass
`)
	out := EmitString(p)
	assert.True(t, strings.HasPrefix(out, "MAIN\n"))
	assert.Contains(t, out, "PRINT")
}

func TestEmitFunctionWrappedInFnEnd(t *testing.T) {
	p := compile(t, `bhai add(bhai a, bhai b) {
  nikal a + b
}
shuru
bhai r = add(1, 2)
bol(r)
bass
`)
	out := EmitString(p)
	assert.Contains(t, out, "FN add/2")
	assert.Contains(t, out, "END")
	assert.Contains(t, out, "CALL add/2")
}

func TestEmitConditionalBranchUsesJzAndJmp(t *testing.T) {
	p := compile(t, `bhai pick(bhai x) {
  agar (x > 0) {
    bol(1)
  } nahi {
    bol(2)
  }
  nikal x
}
shuru
bol(pick(1))
bass
`)
	out := EmitString(p)
	assert.Contains(t, out, "JZ ")
	assert.Contains(t, out, "JMP ")
}

func TestEmitGlobalInitCalledBeforeMain(t *testing.T) {
	p := compile(t, `bhai counter = 1
shuru
bol(counter)
bass
`)
	out := EmitString(p)
	mainIdx := strings.Index(out, "MAIN")
	initCallIdx := strings.Index(out, "CALL $init/0")
	require.GreaterOrEqual(t, initCallIdx, 0)
	assert.Greater(t, initCallIdx, mainIdx)
}
