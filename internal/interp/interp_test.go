package interp

import (
	"bytes"
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

func build(t *testing.T, src string) *ir.Program {
	t.Helper()
	sink := diag.NewSink()
	lex := lexer.New(src, "test.bhai")
	prog := parser.Parse(lex, sink)
	require.False(t, sink.HasErrors())
	semantic.Analyze(prog, sink, nil)
	require.False(t, sink.HasErrors())
	return ir.Build(prog, sink)
}

func run(t *testing.T, src string) string {
	t.Helper()
	built := build(t, src)
	var out bytes.Buffer
	err := New(built, &out, strings.NewReader(""), nil).Run()
	require.NoError(t, err)
	return out.String()
}

func TestRunArithmeticAndPrint(t *testing.T) {
	out := run(t, `shuru
bol(2 + 3 * 4)
bass
`)
	assert.Equal(t, "14\n", out)
}

func TestRunCountedForLoopSums(t *testing.T) {
	out := run(t, `shuru
bhai sum = 0
jabtak (i = 0; i < 5; i++) {
  sum += i
}
bol(sum)
bass
`)
	assert.Equal(t, "10\n", out)
}

func TestRunFunctionCallReturnsValue(t *testing.T) {
	out := run(t, `bhai add(bhai a, bhai b) {
  nikal a + b
}
shuru
bol(add(3, 4))
bass
`)
	assert.Equal(t, "7\n", out)
}

func TestRunFloatCastPrintsDecimal(t *testing.T) {
	out := run(t, `shuru
bhai x = 3
decimal y = decimal(x) / decimal(2)
bol(y)
bass
`)
	assert.Equal(t, "1.5\n", out)
}

func TestRunBoolPrintsSahiGalat(t *testing.T) {
	out := run(t, `shuru
bol(sahi)
bol(galat)
bass
`)
	assert.Equal(t, "sahi\ngalat\n", out)
}

func TestRunStructFieldReadWrite(t *testing.T) {
	out := run(t, `struct Point {
  bhai x
  bhai y
}
shuru
Point p
p.x = 1
p.y = 2
bol(p.x + p.y)
bass
`)
	assert.Equal(t, "3\n", out)
}

func TestRunInputEchoesLine(t *testing.T) {
	built := build(t, `shuru
text name = bata()
bol(name)
bass
`)
	var out bytes.Buffer
	err := New(built, &out, strings.NewReader("amit\n"), nil).Run()
	require.NoError(t, err)
	assert.Equal(t, "amit\n", out.String())
}

func TestRunIntegerDivisionByZeroErrors(t *testing.T) {
	built := build(t, `shuru
bhai a = 1
bhai b = 0
bol(a / b)
bass
`)
	var out bytes.Buffer
	err := New(built, &out, strings.NewReader(""), nil).Run()
	assert.Error(t, err)
}

// TestRunOptimizerPreservesObservableBehavior exercises spec.md §8's
// optimizer-correctness property directly: running the reference
// interpreter before and against after cfgopt.Optimize on the same program
// must print the same thing.
func TestRunOptimizerPreservesObservableBehavior(t *testing.T) {
	src := `bhai sum = 0
shuru
jabtak (i = 0; i < 8; i++) {
  agar (i == 4) {
    sum = sum + 100
  } nahi {
    sum = sum + i
  }
}
bol(sum)
bass
`
	unopt := build(t, src)
	var unoptOut bytes.Buffer
	require.NoError(t, New(unopt, &unoptOut, strings.NewReader(""), nil).Run())

	opt := build(t, src)
	cfgopt.Optimize(opt, diag.NewSink(), nil)
	var optOut bytes.Buffer
	require.NoError(t, New(opt, &optOut, strings.NewReader(""), nil).Run())

	assert.Equal(t, unoptOut.String(), optOut.String())
}
