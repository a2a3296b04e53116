// Package cbackend emits a single C11 translation unit for a Patakha
// program (spec.md §4.6), mirroring the structural shape of
// stackbackend.Emitter (block-sequential instruction walk, io.Writer sink)
// but targeting C source text instead of stack assembly.
package cbackend

import (
	"fmt"
	"io"
	"strings"

	"github.com/patakha-lang/patakha/internal/ir"
	"github.com/patakha-lang/patakha/internal/types"
)

// Emitter writes C11 source for one ir.Program at a time.
type Emitter struct {
	w    io.Writer
	fn   *ir.Function // function currently being emitted, for temp-type lookups
	unit string       // disambiguates temp/label names when two IR functions
	                   // (the synthesized $init and main) share a single C
	                   // function body, since C goto labels have function
	                   // scope and would otherwise collide.
}

// New creates an Emitter writing to w.
func New(w io.Writer) *Emitter { return &Emitter{w: w} }

const prelude = `#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <stdbool.h>

typedef struct {
	char data[256];
} pk_string;

static pk_string pk_read_line(void) {
	pk_string s;
	s.data[0] = '\0';
	if (fgets(s.data, sizeof(s.data), stdin) != NULL) {
		size_t n = strlen(s.data);
		if (n > 0 && s.data[n-1] == '\n') {
			s.data[n-1] = '\0';
		}
	}
	return s;
}

static void pk_print_int(int v) { printf("%d\n", v); }
static void pk_print_float(double v) { printf("%g\n", v); }
static void pk_print_bool(bool v) { printf("%s\n", v ? "sahi" : "galat"); }
static void pk_print_string(pk_string v) { printf("%s\n", v.data); }
`

// Emit writes the whole program: runtime prelude, aggregate struct
// declarations, global storage, forward declarations, function bodies, and
// an int main(void) wrapping the shuru…bass block (spec.md §4.6).
func (e *Emitter) Emit(prog *ir.Program) {
	fmt.Fprint(e.w, prelude)

	aggs := collectAggregates(prog)
	if len(aggs) > 0 {
		fmt.Fprintln(e.w)
		for _, agg := range aggs {
			fmt.Fprintf(e.w, "struct pk_%s {\n", agg.Name)
			for _, f := range agg.Fields {
				fmt.Fprintf(e.w, "\t%s;\n", cDeclare("pk_"+f.Name, f.Type))
			}
			fmt.Fprintln(e.w, "};")
		}
	}

	if len(prog.Globals) > 0 {
		fmt.Fprintln(e.w)
		for _, g := range prog.Globals {
			fmt.Fprintf(e.w, "static %s;\n", cDeclare(e.storageName(g.Name, true), g.Type))
		}
	}

	fmt.Fprintln(e.w)
	for _, fn := range prog.Functions {
		if fn.Name == prog.MainName || fn.Name == prog.InitName {
			continue
		}
		fmt.Fprintf(e.w, "%s;\n", e.signature(fn))
	}

	for _, fn := range prog.Functions {
		if fn.Name == prog.MainName || fn.Name == prog.InitName {
			continue
		}
		fmt.Fprintln(e.w)
		e.emitFunction(fn, false)
	}

	fmt.Fprintln(e.w)
	fmt.Fprintln(e.w, "int main(void) {")
	if initFn := prog.FindFunction(prog.InitName); initFn != nil {
		e.fn = initFn
		e.unit = "init"
		e.emitLocals(initFn)
		e.emitBody(initFn, true)
		fmt.Fprintln(e.w, "L_init_done:;")
	}
	if mainFn := prog.FindFunction(prog.MainName); mainFn != nil {
		e.fn = mainFn
		e.unit = "main"
		e.emitLocals(mainFn)
		e.emitBody(mainFn, true)
	}
	fmt.Fprintln(e.w, "\treturn 0;")
	fmt.Fprintln(e.w, "}")
}

func (e *Emitter) signature(fn *ir.Function) string {
	ret := "void"
	if fn.ReturnType != nil && fn.ReturnType.Kind != types.KVoid {
		ret = cType(fn.ReturnType)
	}
	var params []string
	for _, t := range fn.ParamTemps {
		params = append(params, cDeclare(e.tempName(t), typeOfTemp(fn, t)))
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	return fmt.Sprintf("%s %s(%s)", ret, fn.Name, strings.Join(params, ", "))
}

func (e *Emitter) emitFunction(fn *ir.Function, asMain bool) {
	e.fn = fn
	e.unit = ""
	fmt.Fprintf(e.w, "%s {\n", e.signature(fn))
	e.emitLocals(fn)
	e.emitBody(fn, asMain)
	fmt.Fprintln(e.w, "}")
}

// emitLocals declares every temp not already bound as a parameter, and every
// named local array/struct, at the top of the function (C89-style
// declarations up front, matching the teacher's preference for simple,
// unsurprising C over mixed declarations-and-code).
func (e *Emitter) emitLocals(fn *ir.Function) {
	isParam := make(map[int]bool, len(fn.ParamTemps))
	for _, t := range fn.ParamTemps {
		isParam[t] = true
	}
	for id := 0; id < fn.NumTemps; id++ {
		if isParam[id] {
			continue
		}
		fmt.Fprintf(e.w, "\t%s = %s;\n", cDeclare(e.tempName(id), typeOfTemp(fn, id)), zeroLiteral(typeOfTemp(fn, id)))
	}
	for _, s := range fn.LocalComposites {
		fmt.Fprintf(e.w, "\t%s;\n", cDeclare(e.storageName(s.Name, false), s.Type))
	}
}

func (e *Emitter) emitBody(fn *ir.Function, asMain bool) {
	for _, b := range fn.Blocks {
		fmt.Fprintf(e.w, "%s:;\n", e.blockLabel(b.Label))
		for _, in := range b.Instrs {
			e.emitInstr(in, asMain)
		}
	}
}

// blockLabel and tempName carry e.unit as a prefix because $init and main
// are lowered as independent IR functions with their own 0-based temp and
// label spaces, but both land in the same C main() body; C goto labels and
// locals have function scope, so without this prefix their names would
// collide.
func (e *Emitter) blockLabel(label string) string {
	return "L_" + e.unit + "_" + strings.NewReplacer(".", "_", "-", "_").Replace(label)
}

func (e *Emitter) tempName(id int) string { return fmt.Sprintf("t_%s%d", e.unit, id) }

// storageName disambiguates a module-scope name from a function-local one
// sharing a spelling, the C-identifier counterpart of stackbackend's
// "g:"/"l:" qualification.
func (e *Emitter) storageName(name string, global bool) string {
	if global {
		return "g_" + name
	}
	return "l_" + e.unit + "_" + name
}

func typeOfTemp(fn *ir.Function, id int) *types.Type {
	if id >= 0 && id < len(fn.TempTypes) && fn.TempTypes[id] != nil {
		return fn.TempTypes[id]
	}
	return types.Int
}

func cType(t *types.Type) string {
	if t == nil {
		return "int"
	}
	switch t.Kind {
	case types.KFloat:
		return "double"
	case types.KBool:
		return "bool"
	case types.KString:
		return "pk_string"
	case types.KAggregate:
		return "struct pk_" + t.Name
	case types.KArray:
		return cType(t.Elem)
	default:
		return "int"
	}
}

// cDeclare renders a full C declaration for name, handling the array-suffix
// syntax a plain cType(t)+" "+name can't express.
func cDeclare(name string, t *types.Type) string {
	if t != nil && t.Kind == types.KArray {
		return fmt.Sprintf("%s %s[%d]", cType(t.Elem), name, t.Len)
	}
	return fmt.Sprintf("%s %s", cType(t), name)
}

func zeroLiteral(t *types.Type) string {
	if t == nil {
		return "0"
	}
	switch t.Kind {
	case types.KFloat:
		return "0.0"
	case types.KBool:
		return "false"
	case types.KString:
		return "{ .data = \"\" }"
	default:
		return "0"
	}
}

func collectAggregates(prog *ir.Program) []*types.Aggregate {
	seen := map[string]bool{}
	var out []*types.Aggregate
	add := func(t *types.Type) {
		agg := aggregateOf(t)
		if agg != nil && !seen[agg.Name] {
			seen[agg.Name] = true
			out = append(out, agg)
		}
	}
	for _, g := range prog.Globals {
		add(g.Type)
	}
	for _, fn := range prog.Functions {
		for _, s := range fn.LocalComposites {
			add(s.Type)
		}
	}
	return out
}

func aggregateOf(t *types.Type) *types.Aggregate {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case types.KAggregate:
		return t.Agg
	case types.KArray:
		return aggregateOf(t.Elem)
	default:
		return nil
	}
}

func (e *Emitter) operand(op ir.Operand) string {
	if op.IsTemp {
		return e.tempName(op.Temp)
	}
	switch op.ConstKind {
	case ir.ConstInt:
		return fmt.Sprintf("%d", op.IntVal)
	case ir.ConstFloat:
		return fmt.Sprintf("%g", op.FloatVal)
	case ir.ConstBool:
		if op.BoolVal {
			return "true"
		}
		return "false"
	case ir.ConstString:
		return fmt.Sprintf("(pk_string){ .data = %q }", op.StrVal)
	default:
		return "0"
	}
}

var binMnemonic = map[ir.Op]string{
	ir.OpAdd: "+", ir.OpSub: "-", ir.OpMul: "*", ir.OpDiv: "/", ir.OpMod: "%",
	ir.OpEq: "==", ir.OpNe: "!=", ir.OpLt: "<", ir.OpLe: "<=", ir.OpGt: ">", ir.OpGe: ">=",
}

func (e *Emitter) emitInstr(in ir.Instr, asMain bool) {
	w := e.w
	switch in.Op {
	case ir.OpConst, ir.OpCopy:
		fmt.Fprintf(w, "\t%s = %s;\n", e.tempName(in.Dst), e.operand(in.A))
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		fmt.Fprintf(w, "\t%s = %s %s %s;\n", e.tempName(in.Dst), e.operand(in.A), binMnemonic[in.Op], e.operand(in.B))
	case ir.OpNeg:
		fmt.Fprintf(w, "\t%s = -%s;\n", e.tempName(in.Dst), e.operand(in.A))
	case ir.OpNot:
		fmt.Fprintf(w, "\t%s = !%s;\n", e.tempName(in.Dst), e.operand(in.A))
	case ir.OpCastI2F:
		fmt.Fprintf(w, "\t%s = (double)%s;\n", e.tempName(in.Dst), e.operand(in.A))
	case ir.OpCastF2I:
		fmt.Fprintf(w, "\t%s = (int)%s;\n", e.tempName(in.Dst), e.operand(in.A))
	case ir.OpCastI2B:
		fmt.Fprintf(w, "\t%s = (bool)%s;\n", e.tempName(in.Dst), e.operand(in.A))
	case ir.OpCastB2I:
		fmt.Fprintf(w, "\t%s = (int)%s;\n", e.tempName(in.Dst), e.operand(in.A))
	case ir.OpGlobalLoad:
		fmt.Fprintf(w, "\t%s = %s;\n", e.tempName(in.Dst), e.storageName(in.Name, true))
	case ir.OpGlobalStore:
		fmt.Fprintf(w, "\t%s = %s;\n", e.storageName(in.Name, true), e.operand(in.A))
	case ir.OpIndexLoad:
		fmt.Fprintf(w, "\t%s = %s[%s];\n", e.tempName(in.Dst), e.storageName(in.Name, in.Global), e.operand(in.B))
	case ir.OpIndexStore:
		fmt.Fprintf(w, "\t%s[%s] = %s;\n", e.storageName(in.Name, in.Global), e.operand(in.B), e.operand(in.A))
	case ir.OpFieldLoad:
		fmt.Fprintf(w, "\t%s = %s.pk_%s;\n", e.tempName(in.Dst), e.storageName(in.Name, in.Global), in.Field)
	case ir.OpFieldStore:
		fmt.Fprintf(w, "\t%s.pk_%s = %s;\n", e.storageName(in.Name, in.Global), in.Field, e.operand(in.A))
	case ir.OpCall:
		var args []string
		for _, t := range in.ArgTemp {
			args = append(args, e.tempName(t))
		}
		call := fmt.Sprintf("%s(%s)", in.Name, strings.Join(args, ", "))
		if in.HasDst {
			fmt.Fprintf(w, "\t%s = %s;\n", e.tempName(in.Dst), call)
		} else {
			fmt.Fprintf(w, "\t%s;\n", call)
		}
	case ir.OpPrint:
		fmt.Fprintf(w, "\t%s(%s);\n", printHelper(e.operandType(in.A)), e.operand(in.A))
	case ir.OpInput:
		fmt.Fprintf(w, "\t%s = pk_read_line();\n", e.tempName(in.Dst))
	case ir.OpBr:
		fmt.Fprintf(w, "\tgoto %s;\n", e.blockLabel(in.Label))
	case ir.OpCondBr:
		fmt.Fprintf(w, "\tif (%s) goto %s; else goto %s;\n", e.operand(in.A), e.blockLabel(in.Label), e.blockLabel(in.B.StrVal))
	case ir.OpReturn:
		if asMain && e.unit == "init" {
			fmt.Fprintln(w, "\tgoto L_init_done;")
		} else if asMain {
			fmt.Fprintln(w, "\treturn 0;")
		} else {
			fmt.Fprintf(w, "\treturn %s;\n", e.operand(in.A))
		}
	case ir.OpReturnVoid:
		if asMain && e.unit == "init" {
			fmt.Fprintln(w, "\tgoto L_init_done;")
		} else if asMain {
			fmt.Fprintln(w, "\treturn 0;")
		} else {
			fmt.Fprintln(w, "\treturn;")
		}
	}
}

func (e *Emitter) operandType(op ir.Operand) *types.Type {
	if op.IsTemp {
		return typeOfTemp(e.fn, op.Temp)
	}
	switch op.ConstKind {
	case ir.ConstFloat:
		return types.Float
	case ir.ConstBool:
		return types.Bool
	case ir.ConstString:
		return types.String
	default:
		return types.Int
	}
}

func printHelper(t *types.Type) string {
	if t == nil {
		return "pk_print_int"
	}
	switch t.Kind {
	case types.KFloat:
		return "pk_print_float"
	case types.KBool:
		return "pk_print_bool"
	case types.KString:
		return "pk_print_string"
	default:
		return "pk_print_int"
	}
}

// EmitString is a convenience wrapper returning the emitted program as a
// single string, used by the CLI's default (C) backend and by tests.
func EmitString(prog *ir.Program) string {
	var b strings.Builder
	New(&b).Emit(prog)
	return b.String()
}
