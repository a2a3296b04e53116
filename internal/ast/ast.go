// Package ast defines Patakha's abstract syntax tree (spec.md §3). Nodes
// form a parent-owned tree; the semantic analyzer mutates it once in place
// to attach resolved types and insert implicit casts, exactly the way the
// teacher's AST carries a settable *TypeAnnotation on every expression node.
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/patakha-lang/patakha/internal/token"
	"github.com/patakha-lang/patakha/internal/types"
)

// Node is the base interface every AST node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Expression is any node that produces a value. Typed() is nil until the
// semantic analyzer assigns a resolved type (spec.md §3, §8 invariant 4).
type Expression interface {
	Node
	expressionNode()
	Typed() *types.Type
	SetTyped(*types.Type)
}

// Statement is any node that performs an action without producing a value.
type Statement interface {
	Node
	statementNode()
}

// Decl is a top-level or nested declaration.
type Decl interface {
	Node
	declNode()
}

// typed is embedded by every concrete expression to implement the
// Typed/SetTyped half of the Expression interface once, not per node.
type typed struct {
	Type *types.Type
}

func (t *typed) Typed() *types.Type     { return t.Type }
func (t *typed) SetTyped(ty *types.Type) { t.Type = ty }

// ---- Program -------------------------------------------------------------

// Program is the AST root: the declarations preceding shuru…bass plus the
// main block itself (spec.md §6 "Source file surface").
type Program struct {
	Decls []Decl
	Main  *BlockStmt // the shuru…bass block; nil only on a fatal parse
}

func (p *Program) TokenLiteral() string { return "program" }
func (p *Program) Pos() token.Position {
	if len(p.Decls) > 0 {
		return p.Decls[0].Pos()
	}
	if p.Main != nil {
		return p.Main.Pos()
	}
	return token.Position{Line: 1, Column: 1}
}
func (p *Program) String() string {
	var b bytes.Buffer
	for _, d := range p.Decls {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	if p.Main != nil {
		b.WriteString("shuru\n")
		b.WriteString(p.Main.String())
		b.WriteString("\nbass\n")
	}
	return b.String()
}

// ---- Error placeholder -----------------------------------------------------

// ErrorNode stands in for a subtree the parser could not recover (spec.md
// §4.2: "The AST may contain 'error' nodes as placeholders"). Later passes
// must short-circuit type checks on any subtree containing one.
type ErrorNode struct {
	Tok token.Token
	Msg string
}

func (e *ErrorNode) expressionNode()        {}
func (e *ErrorNode) statementNode()         {}
func (e *ErrorNode) declNode()              {}
func (e *ErrorNode) TokenLiteral() string   { return e.Tok.Literal }
func (e *ErrorNode) Pos() token.Position    { return e.Tok.Pos }
func (e *ErrorNode) String() string         { return "<error: " + e.Msg + ">" }
func (e *ErrorNode) Typed() *types.Type     { return nil }
func (e *ErrorNode) SetTyped(*types.Type)   {}

// IsError reports whether n itself is an error placeholder; child nodes are
// not inspected.
func IsError(n Node) bool {
	_, ok := n.(*ErrorNode)
	return ok
}

// ---- Declarations ----------------------------------------------------------

// TypeRef is a parsed type reference: either a primitive keyword spelling or
// a named aggregate.
type TypeRef struct {
	Tok  token.Token
	Name string // canonical spelling, e.g. "bhai", "decimal", or an aggregate name
}

func (t *TypeRef) String() string { return t.Name }

// VarDecl declares a variable with an optional initializer (spec.md §3).
// ArrayLen is nonzero for a fixed-size array declaration (`bhai arr[10]`),
// an extension documented in types.Type's KArray doc comment.
type VarDecl struct {
	Tok      token.Token
	Type     *TypeRef
	Name     string
	ArrayLen int
	Init     Expression // nil if uninitialized
	Resolved *types.Type
}

func (d *VarDecl) declNode()            {}
func (d *VarDecl) statementNode()       {}
func (d *VarDecl) TokenLiteral() string { return d.Tok.Literal }
func (d *VarDecl) Pos() token.Position  { return d.Tok.Pos }
func (d *VarDecl) String() string {
	s := d.Type.String() + " " + d.Name
	if d.ArrayLen > 0 {
		s += fmt.Sprintf("[%d]", d.ArrayLen)
	}
	if d.Init != nil {
		s += " = " + d.Init.String()
	}
	return s
}

// Param is one function parameter.
type Param struct {
	Type *TypeRef
	Name string
}

// FuncDecl declares a function (spec.md §3).
type FuncDecl struct {
	Tok        token.Token
	ReturnType *TypeRef
	Name       string
	Params     []Param
	Body       *BlockStmt
}

func (d *FuncDecl) declNode()            {}
func (d *FuncDecl) TokenLiteral() string { return d.Tok.Literal }
func (d *FuncDecl) Pos() token.Position  { return d.Tok.Pos }
func (d *FuncDecl) String() string {
	var parts []string
	for _, p := range d.Params {
		parts = append(parts, p.Type.String()+" "+p.Name)
	}
	return d.ReturnType.String() + " " + d.Name + "(" + strings.Join(parts, ", ") + ") " + d.Body.String()
}

// AggregateDecl declares a struct or class (spec.md §3: "behaviorally
// identical to struct"). IsClass only affects source round-tripping.
type AggregateDecl struct {
	Tok     token.Token
	Name    string
	Fields  []Param
	IsClass bool
}

func (d *AggregateDecl) declNode()            {}
func (d *AggregateDecl) TokenLiteral() string { return d.Tok.Literal }
func (d *AggregateDecl) Pos() token.Position  { return d.Tok.Pos }
func (d *AggregateDecl) String() string {
	kw := "struct"
	if d.IsClass {
		kw = "kaksha"
	}
	var parts []string
	for _, f := range d.Fields {
		parts = append(parts, f.Type.String()+" "+f.Name)
	}
	return kw + " " + d.Name + " { " + strings.Join(parts, "; ") + " }"
}

// ImportDecl is a top-level `import "path"` / `laao "path"` statement
// (spec.md §3, §4.2).
type ImportDecl struct {
	Tok  token.Token
	Path string
}

func (d *ImportDecl) declNode()            {}
func (d *ImportDecl) statementNode()       {}
func (d *ImportDecl) TokenLiteral() string { return d.Tok.Literal }
func (d *ImportDecl) Pos() token.Position  { return d.Tok.Pos }
func (d *ImportDecl) String() string       { return "import \"" + d.Path + "\"" }
