package ast

import (
	"testing"

	"github.com/patakha-lang/patakha/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestIsLValue(t *testing.T) {
	ident := &Identifier{Tok: token.New(token.IDENT, "x", token.Position{}), Value: "x"}
	lit := &IntegerLiteral{Tok: token.New(token.INT, "1", token.Position{}), Value: 1}

	assert.True(t, IsLValue(ident))
	assert.False(t, IsLValue(lit))
}

func TestErrorNodeShortCircuits(t *testing.T) {
	var n Node = &ErrorNode{Tok: token.New(token.ILLEGAL, "?", token.Position{}), Msg: "bad token"}
	assert.True(t, IsError(n))
	assert.Nil(t, n.(*ErrorNode).Typed())
}

func TestBlockStmtString(t *testing.T) {
	b := &BlockStmt{
		Tok: token.New(token.LBRACE, "{", token.Position{}),
		Statements: []Statement{
			&BreakStmt{Tok: token.New(token.TOD, "tod", token.Position{})},
		},
	}
	assert.Contains(t, b.String(), "tod")
}
