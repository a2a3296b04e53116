package ast

import (
	"bytes"
	"strings"

	"github.com/patakha-lang/patakha/internal/token"
)

// Identifier is a name reference (spec.md §3 "name reference").
type Identifier struct {
	typed
	Tok   token.Token
	Value string
}

func (i *Identifier) expressionNode()        {}
func (i *Identifier) TokenLiteral() string   { return i.Tok.Literal }
func (i *Identifier) Pos() token.Position    { return i.Tok.Pos }
func (i *Identifier) String() string         { return i.Value }

// IntegerLiteral is an integer literal (spec.md §3).
type IntegerLiteral struct {
	typed
	Tok   token.Token
	Value int64
}

func (l *IntegerLiteral) expressionNode()      {}
func (l *IntegerLiteral) TokenLiteral() string { return l.Tok.Literal }
func (l *IntegerLiteral) Pos() token.Position  { return l.Tok.Pos }
func (l *IntegerLiteral) String() string       { return l.Tok.Literal }

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	typed
	Tok   token.Token
	Value float64
}

func (l *FloatLiteral) expressionNode()      {}
func (l *FloatLiteral) TokenLiteral() string { return l.Tok.Literal }
func (l *FloatLiteral) Pos() token.Position  { return l.Tok.Pos }
func (l *FloatLiteral) String() string       { return l.Tok.Literal }

// StringLiteral is a string literal.
type StringLiteral struct {
	typed
	Tok   token.Token
	Value string
}

func (l *StringLiteral) expressionNode()      {}
func (l *StringLiteral) TokenLiteral() string { return l.Tok.Literal }
func (l *StringLiteral) Pos() token.Position  { return l.Tok.Pos }
func (l *StringLiteral) String() string       { return "\"" + l.Value + "\"" }

// BoolLiteral is a boolean literal.
type BoolLiteral struct {
	typed
	Tok   token.Token
	Value bool
}

func (l *BoolLiteral) expressionNode()      {}
func (l *BoolLiteral) TokenLiteral() string { return l.Tok.Literal }
func (l *BoolLiteral) Pos() token.Position  { return l.Tok.Pos }
func (l *BoolLiteral) String() string       { return l.Tok.Literal }

// BinaryExpr is a binary arithmetic/relational/equality operation.
type BinaryExpr struct {
	typed
	Tok      token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpr) expressionNode()      {}
func (b *BinaryExpr) TokenLiteral() string { return b.Tok.Literal }
func (b *BinaryExpr) Pos() token.Position  { return b.Tok.Pos }
func (b *BinaryExpr) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" " + b.Operator + " ")
	out.WriteString(b.Right.String())
	out.WriteString(")")
	return out.String()
}

// LogicalExpr is a short-circuit logical and/or (spec.md §3, §4.2), kept
// distinct from BinaryExpr so later passes never treat it as arithmetic.
type LogicalExpr struct {
	typed
	Tok      token.Token
	Left     Expression
	Operator string // "&&" or "||"
	Right    Expression
}

func (l *LogicalExpr) expressionNode()      {}
func (l *LogicalExpr) TokenLiteral() string { return l.Tok.Literal }
func (l *LogicalExpr) Pos() token.Position  { return l.Tok.Pos }
func (l *LogicalExpr) String() string {
	return "(" + l.Left.String() + " " + l.Operator + " " + l.Right.String() + ")"
}

// UnaryExpr is a prefix unary operation (-x, !b).
type UnaryExpr struct {
	typed
	Tok      token.Token
	Operator string
	Right    Expression
}

func (u *UnaryExpr) expressionNode()      {}
func (u *UnaryExpr) TokenLiteral() string { return u.Tok.Literal }
func (u *UnaryExpr) Pos() token.Position  { return u.Tok.Pos }
func (u *UnaryExpr) String() string       { return "(" + u.Operator + u.Right.String() + ")" }

// IncDecExpr is a pre/post increment or decrement used in expression
// position (spec.md §3, §9 open question on pre/post value semantics).
type IncDecExpr struct {
	typed
	Tok      token.Token
	Target   Expression // l-value: name, index, or field access
	Operator string     // "++" or "--"
	Prefix   bool
}

func (i *IncDecExpr) expressionNode()      {}
func (i *IncDecExpr) TokenLiteral() string { return i.Tok.Literal }
func (i *IncDecExpr) Pos() token.Position  { return i.Tok.Pos }
func (i *IncDecExpr) String() string {
	if i.Prefix {
		return i.Operator + i.Target.String()
	}
	return i.Target.String() + i.Operator
}

// CastExpr converts a value to a target primitive type (spec.md §4.3:
// bhai(x), decimal(x), bool(x)).
type CastExpr struct {
	typed
	Tok    token.Token
	Target string // primitive type keyword
	Inner  Expression
}

func (c *CastExpr) expressionNode()      {}
func (c *CastExpr) TokenLiteral() string { return c.Tok.Literal }
func (c *CastExpr) Pos() token.Position  { return c.Tok.Pos }
func (c *CastExpr) String() string       { return c.Target + "(" + c.Inner.String() + ")" }

// CallExpr is a function call.
type CallExpr struct {
	typed
	Tok      token.Token
	Callee   string
	Args     []Expression
}

func (c *CallExpr) expressionNode()      {}
func (c *CallExpr) TokenLiteral() string { return c.Tok.Literal }
func (c *CallExpr) Pos() token.Position  { return c.Tok.Pos }
func (c *CallExpr) String() string {
	var parts []string
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return c.Callee + "(" + strings.Join(parts, ", ") + ")"
}

// IndexExpr is an array-element access (spec.md §3).
type IndexExpr struct {
	typed
	Tok   token.Token
	Array Expression
	Index Expression
}

func (i *IndexExpr) expressionNode()      {}
func (i *IndexExpr) TokenLiteral() string { return i.Tok.Literal }
func (i *IndexExpr) Pos() token.Position  { return i.Tok.Pos }
func (i *IndexExpr) String() string       { return i.Array.String() + "[" + i.Index.String() + "]" }

// FieldExpr is a struct/class field access.
type FieldExpr struct {
	typed
	Tok    token.Token
	Object Expression
	Field  string
}

func (f *FieldExpr) expressionNode()      {}
func (f *FieldExpr) TokenLiteral() string { return f.Tok.Literal }
func (f *FieldExpr) Pos() token.Position  { return f.Tok.Pos }
func (f *FieldExpr) String() string       { return f.Object.String() + "." + f.Field }

// InputExpr is the `bata` input-read expression (spec.md §3).
type InputExpr struct {
	typed
	Tok token.Token
}

func (i *InputExpr) expressionNode()      {}
func (i *InputExpr) TokenLiteral() string { return i.Tok.Literal }
func (i *InputExpr) Pos() token.Position  { return i.Tok.Pos }
func (i *InputExpr) String() string       { return "bata()" }
