package parser

import (
	"testing"

	"github.com/patakha-lang/patakha/internal/ast"
	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	lex := lexer.New(src, "test.bhai")
	prog := Parse(lex, sink)
	return prog, sink
}

func TestParseMinimalMain(t *testing.T) {
	prog, sink := parseSource(t, "shuru\nbass\n")
	require.False(t, sink.HasErrors())
	require.NotNil(t, prog.Main)
	assert.Empty(t, prog.Main.Statements)
}

func TestParseVarDeclAndAssignment(t *testing.T) {
	src := `shuru
bhai x = 5
x = x + 1
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Main.Statements, 2)

	decl, ok := prog.Main.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	lit, ok := decl.Init.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 5, lit.Value)

	assign, ok := prog.Main.Statements[1].(*ast.AssignStmt)
	require.True(t, ok)
	bin, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)
}

func TestParseCompoundAssignDesugars(t *testing.T) {
	src := `shuru
bhai x = 0
x += 2
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	assign, ok := prog.Main.Statements[1].(*ast.AssignStmt)
	require.True(t, ok)
	bin, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)
	assert.IsType(t, &ast.Identifier{}, bin.Left)
}

func TestParseCountedForLoop(t *testing.T) {
	src := `shuru
bhai i
jabtak (i = 0; i < 10; i++) {
  bol(i)
}
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	forStmt, ok := prog.Main.Statements[1].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Condition)
	require.NotNil(t, forStmt.Post)
	require.Len(t, forStmt.Body.Statements, 1)
}

func TestParseIfElseIfChain(t *testing.T) {
	src := `shuru
bhai x = 1
agar (x == 1) {
  bol(x)
} nahi agar (x == 2) {
  bol(x)
} nahi {
  bol(x)
}
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	ifStmt, ok := prog.Main.Statements[1].(*ast.IfStmt)
	require.True(t, ok)
	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	require.True(t, ok)
	_, ok = elseIf.Else.(*ast.BlockStmt)
	require.True(t, ok)
}

func TestParseSwitchStatement(t *testing.T) {
	src := `shuru
bhai x = 1
switch (x) {
case 1:
  bol(x)
default:
  bol(x)
}
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	sw, ok := prog.Main.Statements[1].(*ast.SwitchStmt)
	require.True(t, ok)
	require.Len(t, sw.Cases, 2)
	assert.True(t, sw.Cases[1].IsDefault)
}

func TestParseFunctionDecl(t *testing.T) {
	src := `bhai add(bhai a, bhai b) {
  nikal a + b
}
shuru
bol(add(1, 2))
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Decls, 1)
	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Len(t, fn.Params, 2)
}

func TestParseRecoversFromSyntaxError(t *testing.T) {
	src := `shuru
bhai x = )
bol(x)
bass
`
	prog, sink := parseSource(t, src)
	require.True(t, sink.HasErrors())
	require.NotNil(t, prog.Main)
	// Recovery should still surface the later print statement.
	var sawPrint bool
	for _, s := range prog.Main.Statements {
		if _, ok := s.(*ast.PrintStmt); ok {
			sawPrint = true
		}
	}
	assert.True(t, sawPrint)
}

func TestParseMissingTerminatorIsError(t *testing.T) {
	src := "shuru\nbhai x = 1 bhai y = 2\nbass\n"
	_, sink := parseSource(t, src)
	assert.True(t, sink.HasErrors())
}

func TestParseAggregateDecl(t *testing.T) {
	src := `struct Point {
  bhai x
  bhai y
}
shuru
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	agg, ok := prog.Decls[0].(*ast.AggregateDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", agg.Name)
	assert.Len(t, agg.Fields, 2)
}

func TestParseImportDecl(t *testing.T) {
	src := "laao \"util.bhai\"\nshuru\nbass\n"
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	imp, ok := prog.Decls[0].(*ast.ImportDecl)
	require.True(t, ok)
	assert.Equal(t, "util.bhai", imp.Path)
}

func TestParsePostfixAndPrefixIncDec(t *testing.T) {
	src := `shuru
bhai x = 0
x++
++x
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	post, ok := prog.Main.Statements[1].(*ast.IncDecStmt)
	require.True(t, ok)
	assert.Equal(t, "++", post.Operator)
	pre, ok := prog.Main.Statements[2].(*ast.IncDecStmt)
	require.True(t, ok)
	assert.Equal(t, "++", pre.Operator)
}

func TestParseCastExpression(t *testing.T) {
	src := `shuru
decimal x = decimal(5)
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	decl := prog.Main.Statements[0].(*ast.VarDecl)
	cast, ok := decl.Init.(*ast.CastExpr)
	require.True(t, ok)
	assert.Equal(t, "decimal", cast.Target)
}

func TestParseIndexAndFieldAccessAssignment(t *testing.T) {
	src := `shuru
p.x = 1
arr[0] = 2
bass
`
	prog, sink := parseSource(t, src)
	require.False(t, sink.HasErrors())
	a1 := prog.Main.Statements[0].(*ast.AssignStmt)
	assert.IsType(t, &ast.FieldExpr{}, a1.Target)
	a2 := prog.Main.Statements[1].(*ast.AssignStmt)
	assert.IsType(t, &ast.IndexExpr{}, a2.Target)
}
