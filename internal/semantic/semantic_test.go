package semantic

import (
	"testing"

	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSource(t *testing.T, src string) *diag.Sink {
	t.Helper()
	sink := diag.NewSink()
	lex := lexer.New(src, "test.bhai")
	prog := parser.Parse(lex, sink)
	require.False(t, sink.HasErrors(), "parse errors: %v", sink.All())
	Analyze(prog, sink, nil)
	return sink
}

func TestSemanticAcceptsWellTypedProgram(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai x = 2 + 3 * 4
bol(x)
nikal 0
bass
`)
	assert.False(t, sink.HasErrors())
}

func TestSemanticRejectsIntFloatMix(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai x = 1
decimal y = 2.0
bhai z = x + y
bass
`)
	assert.True(t, sink.HasErrors())
}

func TestSemanticAllowsExplicitCast(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai x = 1
decimal y = 2.0
decimal z = decimal(x) + y
bass
`)
	assert.False(t, sink.HasErrors())
}

func TestSemanticRejectsStringConcat(t *testing.T) {
	sink := analyzeSource(t, `shuru
text a = "hi"
text b = "there"
text c = a + b
bass
`)
	assert.True(t, sink.HasErrors())
}

func TestSemanticRejectsUndeclaredName(t *testing.T) {
	sink := analyzeSource(t, `shuru
bol(y)
bass
`)
	assert.True(t, sink.HasErrors())
}

func TestSemanticDetectsUnusedVariable(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai x = 5
bass
`)
	found := false
	for _, d := range sink.All() {
		if d.Severity == diag.Warning {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSemanticFunctionArityAndReturnType(t *testing.T) {
	sink := analyzeSource(t, `bhai add(bhai a, bhai b) {
  nikal a + b
}
shuru
bhai r = add(1, 2, 3)
bass
`)
	assert.True(t, sink.HasErrors())
}

func TestSemanticRejectsBadLValue(t *testing.T) {
	sink := analyzeSource(t, `shuru
1 = 2
bass
`)
	assert.True(t, sink.HasErrors())
}

func TestSemanticIfConditionMustBeBool(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai x = 1
agar (x) {
  bol(x)
}
bass
`)
	assert.True(t, sink.HasErrors())
}

func TestSemanticCountedForLoop(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai sum = 0
bhai i
jabtak (i = 0; i < 5; i++) {
  sum += i
}
bol(sum)
bass
`)
	assert.False(t, sink.HasErrors())
}

func TestSemanticCountedForLoopImplicitlyDeclaresCounter(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai sum = 0
jabtak (i = 0; i < 5; i++) {
  sum += i
}
bol(sum)
bass
`)
	assert.False(t, sink.HasErrors())
}

func TestSemanticBreakOutsideLoopIsError(t *testing.T) {
	sink := analyzeSource(t, `shuru
tod
bass
`)
	assert.True(t, sink.HasErrors())
}

func TestSemanticAggregateFieldAccess(t *testing.T) {
	sink := analyzeSource(t, `struct Point {
  bhai x
  bhai y
}
shuru
Point p
p.x = 1
bol(p.x)
bass
`)
	assert.False(t, sink.HasErrors())
}

func TestSemanticSwitchRequiresConstantLabels(t *testing.T) {
	sink := analyzeSource(t, `shuru
bhai x = 1
bhai y = 2
switch (x) {
case y:
  bol(x)
}
bass
`)
	assert.True(t, sink.HasErrors())
}
