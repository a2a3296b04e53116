// Package interp implements a tree-walking reference interpreter over
// Patakha's IR (spec.md §8, testable property 6: "for a reference
// interpreter of the IR, observable behavior ... is identical before and
// after the optimizer"), used as the oracle both the optimizer and the two
// backends are checked against. It walks ir.Program directly rather than the
// AST, since the property it exists to check is specifically about the IR.
//
// Grounded on the shape of CWBudde-go-dws's interp.Interpreter (an
// io.Writer-sinked evaluator carrying its own environment and call stack),
// scoped down to Patakha's much smaller surface: no classes, exceptions, or
// units, just scalars, arrays/structs, and straight-line functions wired
// together by block jumps.
package interp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/patakha-lang/patakha/internal/ir"
	"github.com/patakha-lang/patakha/internal/types"
)

// Interpreter executes one ir.Program. Create with New and run with Run.
type Interpreter struct {
	prog *ir.Program
	out  io.Writer
	in   *bufio.Reader
	log  *logrus.Logger

	globals          map[string]Value
	globalComposites map[string]*Value

	callStack []string
}

// New creates an Interpreter for prog, printing to out and reading bata()
// input from in. log may be nil; when present it traces function calls the
// way the optimizer traces pass rounds.
func New(prog *ir.Program, out io.Writer, in io.Reader, log *logrus.Logger) *Interpreter {
	it := &Interpreter{
		prog:             prog,
		out:              out,
		in:               bufio.NewReader(in),
		log:              log,
		globals:          map[string]Value{},
		globalComposites: map[string]*Value{},
	}
	for _, g := range prog.Globals {
		if g.Type != nil && (g.Type.Kind == types.KArray || g.Type.Kind == types.KAggregate) {
			v := ZeroValue(g.Type)
			it.globalComposites[g.Name] = &v
		} else {
			it.globals[g.Name] = ZeroValue(g.Type)
		}
	}
	return it
}

// Run executes $init (if present) followed by main, returning the error
// from the first runtime fault encountered (undefined function, division by
// zero, array index out of range), or nil on a clean finish.
func (it *Interpreter) Run() error {
	if it.prog.InitName != "" {
		if _, err := it.callByName(it.prog.InitName, nil); err != nil {
			return err
		}
	}
	_, err := it.callByName(it.prog.MainName, nil)
	return err
}

func (it *Interpreter) callByName(name string, args []Value) (Value, error) {
	fn := it.prog.FindFunction(name)
	if fn == nil {
		return Value{}, fmt.Errorf("interp: undefined function %q", name)
	}
	return it.call(fn, args)
}

// frame holds one function activation's temp registers and named local
// composite storage.
type frame struct {
	temps      []Value
	composites map[string]*Value
}

func newFrame(fn *ir.Function, args []Value) *frame {
	f := &frame{
		temps:      make([]Value, fn.NumTemps),
		composites: map[string]*Value{},
	}
	for i, t := range fn.ParamTemps {
		if i < len(args) {
			f.temps[t] = args[i]
		}
	}
	for _, s := range fn.LocalComposites {
		v := ZeroValue(s.Type)
		f.composites[s.Name] = &v
	}
	return f
}

func (it *Interpreter) call(fn *ir.Function, args []Value) (Value, error) {
	if it.log != nil {
		it.log.WithField("function", fn.Name).WithField("depth", len(it.callStack)).Debug("interp: call")
	}
	it.callStack = append(it.callStack, fn.Name)
	defer func() { it.callStack = it.callStack[:len(it.callStack)-1] }()

	blocks := make(map[string]*ir.Block, len(fn.Blocks))
	for _, b := range fn.Blocks {
		blocks[b.Label] = b
	}
	fr := newFrame(fn, args)

	cur := fn.Blocks[0]
	for {
		next, returned, retVal, err := it.execBlock(fn, cur, fr)
		if err != nil {
			return Value{}, err
		}
		if returned {
			return retVal, nil
		}
		b, ok := blocks[next]
		if !ok {
			return Value{}, fmt.Errorf("interp: %s: undefined block %q", fn.Name, next)
		}
		cur = b
	}
}

// execBlock runs a block's straight-line instructions up to its terminator,
// reporting either the label to jump to next or a function return value.
func (it *Interpreter) execBlock(fn *ir.Function, b *ir.Block, fr *frame) (next string, returned bool, retVal Value, err error) {
	for _, in := range b.Instrs {
		switch in.Op {
		case ir.OpBr:
			return in.Label, false, Value{}, nil
		case ir.OpCondBr:
			cond := it.operand(in.A, fr)
			if cond.B {
				return in.Label, false, Value{}, nil
			}
			return in.B.StrVal, false, Value{}, nil
		case ir.OpReturn:
			return "", true, it.operand(in.A, fr), nil
		case ir.OpReturnVoid:
			return "", true, Value{}, nil
		default:
			if err := it.execInstr(fn, in, fr); err != nil {
				return "", false, Value{}, err
			}
		}
	}
	return "", false, Value{}, fmt.Errorf("interp: %s: block %q falls off its end without a terminator", fn.Name, b.Label)
}

func (it *Interpreter) operand(op ir.Operand, fr *frame) Value {
	if op.IsTemp {
		return fr.temps[op.Temp]
	}
	switch op.ConstKind {
	case ir.ConstFloat:
		return FloatValue(op.FloatVal)
	case ir.ConstBool:
		return BoolValue(op.BoolVal)
	case ir.ConstString:
		return StringValue(op.StrVal)
	default:
		return IntValue(op.IntVal)
	}
}

func (it *Interpreter) composite(name string, global bool, fr *frame) (*Value, error) {
	if global {
		c, ok := it.globalComposites[name]
		if !ok {
			return nil, fmt.Errorf("interp: undefined global composite %q", name)
		}
		return c, nil
	}
	c, ok := fr.composites[name]
	if !ok {
		return nil, fmt.Errorf("interp: undefined local composite %q", name)
	}
	return c, nil
}

func (it *Interpreter) execInstr(fn *ir.Function, in ir.Instr, fr *frame) error {
	switch in.Op {
	case ir.OpConst, ir.OpCopy:
		fr.temps[in.Dst] = it.operand(in.A, fr)
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		a, b := it.operand(in.A, fr), it.operand(in.B, fr)
		v, err := arith(in.Op, a, b)
		if err != nil {
			return err
		}
		fr.temps[in.Dst] = v
	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		fr.temps[in.Dst] = compare(in.Op, it.operand(in.A, fr), it.operand(in.B, fr))
	case ir.OpNeg:
		a := it.operand(in.A, fr)
		if a.Kind == types.KFloat {
			fr.temps[in.Dst] = FloatValue(-a.F)
		} else {
			fr.temps[in.Dst] = IntValue(-a.I)
		}
	case ir.OpNot:
		fr.temps[in.Dst] = BoolValue(!it.operand(in.A, fr).B)
	case ir.OpCastI2F:
		fr.temps[in.Dst] = FloatValue(float64(it.operand(in.A, fr).I))
	case ir.OpCastF2I:
		fr.temps[in.Dst] = IntValue(int64(it.operand(in.A, fr).F))
	case ir.OpCastI2B:
		fr.temps[in.Dst] = BoolValue(it.operand(in.A, fr).I != 0)
	case ir.OpCastB2I:
		a := it.operand(in.A, fr)
		if a.B {
			fr.temps[in.Dst] = IntValue(1)
		} else {
			fr.temps[in.Dst] = IntValue(0)
		}
	case ir.OpGlobalLoad:
		fr.temps[in.Dst] = it.globals[in.Name]
	case ir.OpGlobalStore:
		it.globals[in.Name] = it.operand(in.A, fr)
	case ir.OpIndexLoad:
		c, err := it.composite(in.Name, in.Global, fr)
		if err != nil {
			return err
		}
		idx := it.operand(in.B, fr).I
		if idx < 0 || int(idx) >= len(c.Elems) {
			return fmt.Errorf("interp: %s: index %d out of range for %q[%d]", fn.Name, idx, in.Name, len(c.Elems))
		}
		fr.temps[in.Dst] = c.Elems[idx]
	case ir.OpIndexStore:
		c, err := it.composite(in.Name, in.Global, fr)
		if err != nil {
			return err
		}
		idx := it.operand(in.B, fr).I
		if idx < 0 || int(idx) >= len(c.Elems) {
			return fmt.Errorf("interp: %s: index %d out of range for %q[%d]", fn.Name, idx, in.Name, len(c.Elems))
		}
		c.Elems[idx] = it.operand(in.A, fr)
	case ir.OpFieldLoad:
		c, err := it.composite(in.Name, in.Global, fr)
		if err != nil {
			return err
		}
		fr.temps[in.Dst] = c.Fields[in.Field]
	case ir.OpFieldStore:
		c, err := it.composite(in.Name, in.Global, fr)
		if err != nil {
			return err
		}
		c.Fields[in.Field] = it.operand(in.A, fr)
	case ir.OpCall:
		args := make([]Value, len(in.ArgTemp))
		for i, t := range in.ArgTemp {
			args[i] = fr.temps[t]
		}
		ret, err := it.callByName(in.Name, args)
		if err != nil {
			return err
		}
		if in.HasDst {
			fr.temps[in.Dst] = ret
		}
	case ir.OpPrint:
		fmt.Fprintln(it.out, it.operand(in.A, fr).String())
	case ir.OpInput:
		line, _ := it.in.ReadString('\n')
		line = trimNewline(line)
		fr.temps[in.Dst] = StringValue(line)
	default:
		return fmt.Errorf("interp: %s: unhandled opcode %s", fn.Name, in.Op)
	}
	return nil
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	n = len(s)
	if n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

// arith evaluates a scalar arithmetic op, promoting to float when either
// operand is a float (the semantic analyzer only ever pairs same-typed
// operands by the time IR is built, except for the explicit cast sites it
// inserts, so this just mirrors the operand's own kind rather than doing
// real mixed-type coercion).
func arith(op ir.Op, a, b Value) (Value, error) {
	if a.Kind == types.KFloat || b.Kind == types.KFloat {
		x, y := toFloat(a), toFloat(b)
		switch op {
		case ir.OpAdd:
			return FloatValue(x + y), nil
		case ir.OpSub:
			return FloatValue(x - y), nil
		case ir.OpMul:
			return FloatValue(x * y), nil
		case ir.OpDiv:
			if y == 0 {
				return Value{}, fmt.Errorf("interp: float division by zero")
			}
			return FloatValue(x / y), nil
		case ir.OpMod:
			return Value{}, fmt.Errorf("interp: mod is not defined on decimal operands")
		}
	}
	x, y := a.I, b.I
	switch op {
	case ir.OpAdd:
		return IntValue(x + y), nil
	case ir.OpSub:
		return IntValue(x - y), nil
	case ir.OpMul:
		return IntValue(x * y), nil
	case ir.OpDiv:
		if y == 0 {
			return Value{}, fmt.Errorf("interp: integer division by zero")
		}
		return IntValue(x / y), nil
	case ir.OpMod:
		if y == 0 {
			return Value{}, fmt.Errorf("interp: modulo by zero")
		}
		return IntValue(x % y), nil
	}
	return Value{}, fmt.Errorf("interp: unreachable arithmetic opcode %s", op)
}

func toFloat(v Value) float64 {
	if v.Kind == types.KFloat {
		return v.F
	}
	return float64(v.I)
}

func compare(op ir.Op, a, b Value) Value {
	if a.Kind == types.KFloat || b.Kind == types.KFloat {
		x, y := toFloat(a), toFloat(b)
		switch op {
		case ir.OpEq:
			return BoolValue(x == y)
		case ir.OpNe:
			return BoolValue(x != y)
		case ir.OpLt:
			return BoolValue(x < y)
		case ir.OpLe:
			return BoolValue(x <= y)
		case ir.OpGt:
			return BoolValue(x > y)
		case ir.OpGe:
			return BoolValue(x >= y)
		}
	}
	switch a.Kind {
	case types.KBool:
		switch op {
		case ir.OpEq:
			return BoolValue(a.B == b.B)
		case ir.OpNe:
			return BoolValue(a.B != b.B)
		}
	case types.KString:
		switch op {
		case ir.OpEq:
			return BoolValue(a.S == b.S)
		case ir.OpNe:
			return BoolValue(a.S != b.S)
		case ir.OpLt:
			return BoolValue(a.S < b.S)
		case ir.OpLe:
			return BoolValue(a.S <= b.S)
		case ir.OpGt:
			return BoolValue(a.S > b.S)
		case ir.OpGe:
			return BoolValue(a.S >= b.S)
		}
	}
	x, y := a.I, b.I
	switch op {
	case ir.OpEq:
		return BoolValue(x == y)
	case ir.OpNe:
		return BoolValue(x != y)
	case ir.OpLt:
		return BoolValue(x < y)
	case ir.OpLe:
		return BoolValue(x <= y)
	case ir.OpGt:
		return BoolValue(x > y)
	case ir.OpGe:
		return BoolValue(x >= y)
	}
	return BoolValue(false)
}
