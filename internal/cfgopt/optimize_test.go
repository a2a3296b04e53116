package cfgopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/ir"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/parser"
	"github.com/patakha-lang/patakha/internal/semantic"
)

func buildOptimized(t *testing.T, src string) *ir.Program {
	t.Helper()
	sink := diag.NewSink()
	lex := lexer.New(src, "test.bhai")
	prog := parser.Parse(lex, sink)
	require.False(t, sink.HasErrors())
	semantic.Analyze(prog, sink, nil)
	require.False(t, sink.HasErrors())
	built := ir.Build(prog, sink)
	Optimize(built, sink, nil)
	return built
}

func allInstrs(fn *ir.Function) []ir.Instr {
	var out []ir.Instr
	for _, b := range fn.Blocks {
		out = append(out, b.Instrs...)
	}
	return out
}

func countOp(instrs []ir.Instr, op ir.Op) int {
	n := 0
	for _, in := range instrs {
		if in.Op == op {
			n++
		}
	}
	return n
}

func TestOptimizeFoldsConstantArithmetic(t *testing.T) {
	p := buildOptimized(t, `shuru
bhai x = 2 + 3 * 4
bol(x)
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	assert.Equal(t, 0, countOp(instrs, ir.OpAdd))
	assert.Equal(t, 0, countOp(instrs, ir.OpMul))
}

func TestOptimizeSimplifiesConstantBranch(t *testing.T) {
	p := buildOptimized(t, `shuru
agar (sahi) {
  bol(1)
} nahi {
  bol(2)
}
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	assert.Equal(t, 0, countOp(instrs, ir.OpCondBr))
	// only the taken branch's print should remain reachable.
	assert.Equal(t, 1, countOp(instrs, ir.OpPrint))
}

func TestOptimizeEliminatesDeadStore(t *testing.T) {
	p := buildOptimized(t, `shuru
bhai x = 1
bhai y = 2
bhai unused = x + y
bol(x)
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	assert.Equal(t, 0, countOp(instrs, ir.OpAdd))
}

func TestOptimizeEveryBlockStaysTerminated(t *testing.T) {
	p := buildOptimized(t, `bhai add(bhai a, bhai b) {
  agar (a > b) {
    nikal a
  }
  nikal b
}
shuru
bhai sum = 0
bhai i
jabtak (i = 0; i < 10; i++) {
  sum += add(i, 1)
}
bol(sum)
bass
`)
	for _, fn := range p.Functions {
		for _, b := range fn.Blocks {
			term := b.Terminator()
			require.NotNil(t, term, "block %s in %s lost its terminator", b.Label, fn.Name)
		}
	}
}

func TestOptimizeLocalCSEReusesComputation(t *testing.T) {
	p := buildOptimized(t, `shuru
bhai a = 3
bhai x = a + 1
bhai y = a + 1
bol(x)
bol(y)
bass
`)
	main := p.FindFunction("main")
	require.NotNil(t, main)
	instrs := allInstrs(main)
	assert.LessOrEqual(t, countOp(instrs, ir.OpAdd), 1)
}
