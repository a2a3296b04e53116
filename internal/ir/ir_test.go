package ir

import (
	"testing"

	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/parser"
	"github.com/patakha-lang/patakha/internal/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSource(t *testing.T, src string) *Program {
	t.Helper()
	sink := diag.NewSink()
	lex := lexer.New(src, "test.bhai")
	prog := parser.Parse(lex, sink)
	require.False(t, sink.HasErrors(), "parse errors: %v", sink.All())
	semantic.Analyze(prog, sink, nil)
	require.False(t, sink.HasErrors(), "semantic errors: %v", sink.All())
	return Build(prog, sink)
}

func allInstrs(fn *Function) []Instr {
	var out []Instr
	for _, b := range fn.Blocks {
		out = append(out, b.Instrs...)
	}
	return out
}

func countOp(instrs []Instr, op Op) int {
	n := 0
	for _, in := range instrs {
		if in.Op == op {
			n++
		}
	}
	return n
}

func TestBuildConstantArithmetic(t *testing.T) {
	p := buildSource(t, `shuru
bhai x = 2 + 3 * 4
bol(x)
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	assert.GreaterOrEqual(t, countOp(instrs, OpMul), 1)
	assert.GreaterOrEqual(t, countOp(instrs, OpAdd), 1)
	assert.Equal(t, 1, countOp(instrs, OpPrint))
}

func TestBuildCountedForLoopHasBackEdge(t *testing.T) {
	p := buildSource(t, `shuru
bhai sum = 0
bhai i
jabtak (i = 0; i < 5; i++) {
  sum += i
}
bol(sum)
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	foundHeaderLabel := false
	for _, b := range main.Blocks {
		if b.Label == "for.header.1" {
			foundHeaderLabel = true
		}
	}
	assert.True(t, foundHeaderLabel)
	instrs := allInstrs(main)
	assert.GreaterOrEqual(t, countOp(instrs, OpLt), 1)
	assert.GreaterOrEqual(t, countOp(instrs, OpAdd), 2) // i++ and sum += i
}

func TestBuildEveryBlockTerminated(t *testing.T) {
	p := buildSource(t, `bhai add(bhai a, bhai b) {
  agar (a > b) {
    nikal a
  }
  nikal b
}
shuru
bhai r = add(1, 2)
bol(r)
bass
`)
	for _, fn := range p.Functions {
		for _, b := range fn.Blocks {
			term := b.Terminator()
			require.NotNil(t, term, "block %s in %s has no terminator", b.Label, fn.Name)
			switch term.Op {
			case OpReturn, OpReturnVoid, OpBr, OpCondBr:
			default:
				t.Fatalf("block %s in %s ends in non-terminator op %s", b.Label, fn.Name, term.Op)
			}
		}
	}
}

func TestBuildShortCircuitAndProducesBoolTemp(t *testing.T) {
	p := buildSource(t, `shuru
bhai x = 1
bhai y = 2
agar (x > 0 && y > 0) {
  bol(x)
}
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	assert.GreaterOrEqual(t, countOp(instrs, OpCondBr), 2) // the && branch plus the if branch
}

func TestBuildSwitchLowersToEqualityChain(t *testing.T) {
	p := buildSource(t, `shuru
bhai x = 2
switch (x) {
case 1:
  bol(1)
case 2:
  bol(2)
default:
  bol(0)
}
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	assert.Equal(t, 2, countOp(instrs, OpEq))
	assert.Equal(t, 3, countOp(instrs, OpPrint))
}

func TestBuildGlobalInitializerUsesInitFunction(t *testing.T) {
	p := buildSource(t, `bhai counter = 41
shuru
counter = counter + 1
bol(counter)
bass
`)
	assert.Equal(t, "$init", p.InitName)
	initFn := p.FindFunction("$init")
	require.NotNil(t, initFn)
	instrs := allInstrs(initFn)
	assert.Equal(t, 1, countOp(instrs, OpGlobalStore))
}

func TestBuildNoGlobalInitializerSkipsInitFunction(t *testing.T) {
	p := buildSource(t, `bhai counter
shuru
counter = 1
bass
`)
	assert.Empty(t, p.InitName)
	assert.Nil(t, p.FindFunction("$init"))
}

func TestBuildPostIncrementYieldsPreUpdateValue(t *testing.T) {
	p := buildSource(t, `shuru
bhai i = 0
bhai snapshot = i++
bol(snapshot)
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	// The expression form i++ lowers to an add (the increment) plus a sub
	// (the inverse that reconstructs the pre-update value).
	assert.GreaterOrEqual(t, countOp(instrs, OpAdd), 1)
	assert.GreaterOrEqual(t, countOp(instrs, OpSub), 1)
}
