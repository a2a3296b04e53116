package interp

import (
	"strconv"

	"github.com/patakha-lang/patakha/internal/types"
)

// Value is a runtime value of the interpreter, a generalization of
// ir.Operand's tagged-constant shape (internal/ir/ir.go) carrying actual
// composite state (Elems/Fields) rather than just the four scalar constant
// kinds the IR needs inline. Patakha's type system is small and closed
// (spec.md §3), so one tagged struct covers every Kind without an interface
// hierarchy.
type Value struct {
	Kind types.Kind

	I int64
	F float64
	B bool
	S string

	Elems  []Value          // KArray
	Fields map[string]Value // KAggregate
}

// IntValue/FloatValue/BoolValue/StringValue build scalar values.
func IntValue(v int64) Value    { return Value{Kind: types.KInt, I: v} }
func FloatValue(v float64) Value { return Value{Kind: types.KFloat, F: v} }
func BoolValue(v bool) Value    { return Value{Kind: types.KBool, B: v} }
func StringValue(v string) Value { return Value{Kind: types.KString, S: v} }

// ZeroValue builds t's default value: 0 / 0.0 / galat / "" for primitives,
// recursively zeroed elements/fields for composites.
func ZeroValue(t *types.Type) Value {
	if t == nil {
		return IntValue(0)
	}
	switch t.Kind {
	case types.KFloat:
		return FloatValue(0)
	case types.KBool:
		return BoolValue(false)
	case types.KString:
		return StringValue("")
	case types.KArray:
		elems := make([]Value, t.Len)
		for i := range elems {
			elems[i] = ZeroValue(t.Elem)
		}
		return Value{Kind: types.KArray, Elems: elems}
	case types.KAggregate:
		fields := make(map[string]Value, len(t.Agg.Fields))
		for _, f := range t.Agg.Fields {
			fields[f.Name] = ZeroValue(f.Type)
		}
		return Value{Kind: types.KAggregate, Fields: fields}
	default:
		return IntValue(0)
	}
}

// String renders v the way bol() prints it. Ints, bools and strings match
// cbackend's pk_print_* output; floats use Go's shortest round-trip 'g'
// form, which differs from C's %g for values needing more than six
// significant digits.
func (v Value) String() string {
	switch v.Kind {
	case types.KFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case types.KBool:
		if v.B {
			return "sahi"
		}
		return "galat"
	case types.KString:
		return v.S
	default:
		return strconv.FormatInt(v.I, 10)
	}
}
