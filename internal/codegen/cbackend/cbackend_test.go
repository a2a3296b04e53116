package cbackend

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

func TestEmitHasIncludesAndMain(t *testing.T) {
	p := compile(t, `shuru
bol(1)
bass
`)
	out := EmitString(p)
	assert.True(t, strings.HasPrefix(out, "#include <stdio.h>"))
	assert.Contains(t, out, "int main(void) {")
	assert.Contains(t, out, "return 0;")
}

func TestEmitFunctionGetsForwardDeclAndDefinition(t *testing.T) {
	p := compile(t, `bhai add(bhai a, bhai b) {
  nikal a + b
}
shuru
bhai r = add(1, 2)
bol(r)
bass
`)
	out := EmitString(p)
	assert.Contains(t, out, "int add(int")
	assert.Contains(t, out, "add(")
	assert.Contains(t, out, "return ")
}

func TestEmitConditionalUsesGoto(t *testing.T) {
	p := compile(t, `shuru
bhai x = 1
agar (x > 0) {
  bol(1)
} nahi {
  bol(2)
}
bass
`)
	out := EmitString(p)
	assert.Contains(t, out, "goto L_main_")
	assert.Contains(t, out, "if (")
}

func TestEmitStructDeclaresCStruct(t *testing.T) {
	p := compile(t, `struct Point {
  bhai x
  bhai y
}
shuru
Point p
p.x = 1
bol(p.x)
bass
`)
	out := EmitString(p)
	assert.Contains(t, out, "struct pk_Point {")
	assert.Contains(t, out, "pk_x")
}

func TestEmitGlobalInitializerRunsBeforeMainBody(t *testing.T) {
	p := compile(t, `bhai counter = 1
shuru
bol(counter)
bass
`)
	out := EmitString(p)
	assert.Contains(t, out, "g_counter")
	initIdx := strings.Index(out, "L_init_")
	mainIdx := strings.Index(out, "L_main_")
	require.GreaterOrEqual(t, initIdx, 0)
	require.GreaterOrEqual(t, mainIdx, 0)
	assert.Less(t, initIdx, mainIdx)
}

func TestEmitPrintDispatchesByType(t *testing.T) {
	p := compile(t, `shuru
bol(1.5)
bol(sahi)
bol("hi")
bass
`)
	out := EmitString(p)
	assert.Contains(t, out, "pk_print_float")
	assert.Contains(t, out, "pk_print_bool")
	assert.Contains(t, out, "pk_print_string")
}
