// Package types implements Patakha's small, closed type system (spec.md §3):
// five primitives plus named aggregates (struct/class), structurally
// equivalent by name (spec.md §9 open question: struct and kaksha are
// identical aggregate declarations in this revision).
package types

import "fmt"

// Kind distinguishes primitive from aggregate types.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KBool
	KString
	KVoid
	KAggregate
	KArray
)

// Type is Patakha's resolved type value, attached to every typed AST
// expression after semantic analysis (spec.md §3: "Every typed expression
// carries a resolved type after semantic analysis").
//
// Fixed-size arrays are a thin extension: the data model names index
// load/store among the IR instructions and array helpers among the stack
// backend's opcodes without ever introducing array declaration syntax, so
// this revision declares one: `<type> name[N]` in a var-decl (see
// ast.VarDecl.ArrayLen), resolving to a KArray type carrying its Elem and
// fixed Len.
type Type struct {
	Kind Kind
	Name string // keyword spelling for primitives, declared name for aggregates; empty for arrays
	Agg  *Aggregate
	Elem *Type // element type, set only when Kind == KArray
	Len  int   // fixed length, set only when Kind == KArray
}

var (
	Int    = &Type{Kind: KInt, Name: "bhai"}
	Float  = &Type{Kind: KFloat, Name: "decimal"}
	Bool   = &Type{Kind: KBool, Name: "bool"}
	String = &Type{Kind: KString, Name: "text"}
	Void   = &Type{Kind: KVoid, Name: "khali"}
)

// Field is one member of an aggregate type, in declaration order.
type Field struct {
	Name string
	Type *Type
}

// Aggregate is a user-defined struct/class declaration: an ordered list of
// named, typed fields (GLOSSARY: "Aggregate").
type Aggregate struct {
	Name   string
	Fields []Field
}

// FieldIndex returns the declaration-order index of a field, or -1.
func (a *Aggregate) FieldIndex(name string) int {
	for i, f := range a.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// NewAggregateType wraps an Aggregate declaration as a Type value.
func NewAggregateType(agg *Aggregate) *Type {
	return &Type{Kind: KAggregate, Name: agg.Name, Agg: agg}
}

// NewArrayType builds a fixed-size array type of elem with the given length.
func NewArrayType(elem *Type, length int) *Type {
	return &Type{Kind: KArray, Elem: elem, Len: length}
}

// IsNumeric reports whether t is int or float.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == KInt || t.Kind == KFloat)
}

// Equal reports structural-by-name type equality.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == KAggregate {
		return t.Name == o.Name
	}
	if t.Kind == KArray {
		return t.Len == o.Len && t.Elem.Equal(o.Elem)
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}
	if t.Kind == KArray {
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Len)
	}
	return t.Name
}

// ParsePrimitive maps a cast-target keyword spelling to its primitive type,
// used when resolving cast expressions like bhai(x), decimal(x), bool(x)
// (spec.md §4.3).
func ParsePrimitive(name string) (*Type, bool) {
	switch name {
	case "bhai":
		return Int, true
	case "decimal":
		return Float, true
	case "bool":
		return Bool, true
	case "text":
		return String, true
	case "khali":
		return Void, true
	default:
		return nil, false
	}
}

// Describe returns a human-readable description for diagnostics, e.g. for
// arity/type-mismatch messages.
func Describe(t *Type) string {
	if t == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s", t)
}
