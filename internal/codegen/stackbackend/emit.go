// Package stackbackend emits textual assembly for Patakha's stack virtual
// machine (spec.md §4.7), translating the IR's three-address instructions
// into push/pop sequences over named temp slots.
package stackbackend

import (
	"fmt"
	"io"
	"strings"

	"github.com/patakha-lang/patakha/internal/ir"
)

// Emitter writes one function's worth of stack assembly at a time, mirroring
// the teacher's Disassembler's Fprintf-to-io.Writer shape
// (CWBudde-go-dws/internal/bytecode/disasm.go) run in the opposite
// direction: structured instructions in, text out.
type Emitter struct {
	w io.Writer
}

// New creates an Emitter writing to w.
func New(w io.Writer) *Emitter { return &Emitter{w: w} }

// Emit writes the whole program: every function as FN/END, globals
// initialized by a call to $init (if present) before the labeled MAIN
// entry point (spec.md §4.7 "Main body is labeled MAIN; execution starts
// there").
func (e *Emitter) Emit(prog *ir.Program) {
	for _, fn := range prog.Functions {
		if fn.Name == prog.MainName {
			continue
		}
		e.emitFunction(fn)
	}
	fmt.Fprintln(e.w, "MAIN")
	if prog.InitName != "" {
		fmt.Fprintf(e.w, "\tCALL %s/0\n", prog.InitName)
	}
	if main := prog.FindFunction(prog.MainName); main != nil {
		e.emitBody(main)
	}
}

func (e *Emitter) emitFunction(fn *ir.Function) {
	fmt.Fprintf(e.w, "FN %s/%d\n", fn.Name, len(fn.ParamTemps))
	for i := len(fn.ParamTemps) - 1; i >= 0; i-- {
		fmt.Fprintf(e.w, "\tSTORE %s\n", tempSlot(fn.ParamTemps[i]))
	}
	e.emitBody(fn)
	fmt.Fprintln(e.w, "END")
}

func (e *Emitter) emitBody(fn *ir.Function) {
	for _, b := range fn.Blocks {
		fmt.Fprintf(e.w, "%s:\n", b.Label)
		for _, in := range b.Instrs {
			e.emitInstr(in)
		}
	}
}

func tempSlot(id int) string { return fmt.Sprintf("%%t%d", id) }

func (e *Emitter) push(op ir.Operand) {
	if op.IsTemp {
		fmt.Fprintf(e.w, "\tLOAD %s\n", tempSlot(op.Temp))
		return
	}
	fmt.Fprintf(e.w, "\tPUSH %s\n", constText(op))
}

func constText(op ir.Operand) string {
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
		return fmt.Sprintf("%q", op.StrVal)
	default:
		return "0"
	}
}

func (e *Emitter) store(dst int) { fmt.Fprintf(e.w, "\tSTORE %s\n", tempSlot(dst)) }

var binMnemonic = map[ir.Op]string{
	ir.OpAdd: "ADD", ir.OpSub: "SUB", ir.OpMul: "MUL", ir.OpDiv: "DIV", ir.OpMod: "MOD",
	ir.OpEq: "EQ", ir.OpNe: "NE", ir.OpLt: "LT", ir.OpLe: "LE", ir.OpGt: "GT", ir.OpGe: "GE",
}

var unaryMnemonic = map[ir.Op]string{
	ir.OpNeg: "NEG", ir.OpNot: "NOT",
	ir.OpCastI2F: "I2F", ir.OpCastF2I: "F2I", ir.OpCastI2B: "I2B", ir.OpCastB2I: "B2I",
}

func (e *Emitter) emitInstr(in ir.Instr) {
	switch in.Op {
	case ir.OpConst:
		e.push(in.A)
		e.store(in.Dst)
	case ir.OpCopy:
		e.push(in.A)
		e.store(in.Dst)
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		e.push(in.A)
		e.push(in.B)
		fmt.Fprintf(e.w, "\t%s\n", binMnemonic[in.Op])
		e.store(in.Dst)
	case ir.OpNeg, ir.OpNot, ir.OpCastI2F, ir.OpCastF2I, ir.OpCastI2B, ir.OpCastB2I:
		e.push(in.A)
		fmt.Fprintf(e.w, "\t%s\n", unaryMnemonic[in.Op])
		e.store(in.Dst)
	case ir.OpGlobalLoad:
		fmt.Fprintf(e.w, "\tLOAD %s\n", in.Name)
		e.store(in.Dst)
	case ir.OpGlobalStore:
		e.push(in.A)
		fmt.Fprintf(e.w, "\tSTORE %s\n", in.Name)
	case ir.OpIndexLoad:
		e.push(in.B)
		fmt.Fprintf(e.w, "\tAGET %s\n", qualify(in.Name, in.Global))
		e.store(in.Dst)
	case ir.OpIndexStore:
		e.push(in.A)
		e.push(in.B)
		fmt.Fprintf(e.w, "\tASET %s\n", qualify(in.Name, in.Global))
	case ir.OpFieldLoad:
		fmt.Fprintf(e.w, "\tFGET %s.%s\n", qualify(in.Name, in.Global), in.Field)
		e.store(in.Dst)
	case ir.OpFieldStore:
		e.push(in.A)
		fmt.Fprintf(e.w, "\tFSET %s.%s\n", qualify(in.Name, in.Global), in.Field)
	case ir.OpCall:
		for _, t := range in.ArgTemp {
			fmt.Fprintf(e.w, "\tLOAD %s\n", tempSlot(t))
		}
		fmt.Fprintf(e.w, "\tCALL %s/%d\n", in.Name, len(in.ArgTemp))
		if in.HasDst {
			e.store(in.Dst)
		} else {
			fmt.Fprintln(e.w, "\tPOP")
		}
	case ir.OpPrint:
		e.push(in.A)
		fmt.Fprintln(e.w, "\tPRINT")
	case ir.OpInput:
		fmt.Fprintln(e.w, "\tREAD TEXT")
		e.store(in.Dst)
	case ir.OpBr:
		fmt.Fprintf(e.w, "\tJMP %s\n", in.Label)
	case ir.OpCondBr:
		// in.Label is the taken (condition-true) target; the not-taken
		// target rides in in.B as a ConstString (see ir.Instr.Label's doc
		// comment). JZ jumps when the popped condition is false/zero.
		e.push(in.A)
		fmt.Fprintf(e.w, "\tJZ %s\n", in.B.StrVal)
		fmt.Fprintf(e.w, "\tJMP %s\n", in.Label)
	case ir.OpReturn:
		e.push(in.A)
		fmt.Fprintln(e.w, "\tRET")
	case ir.OpReturnVoid:
		fmt.Fprintln(e.w, "\tRET")
	}
}

// qualify prefixes an aggregate/array base name with its storage class so
// the VM can tell a module-scope array from a function-local one sharing a
// spelling (spec.md §4.7 "field/array helpers").
func qualify(name string, global bool) string {
	if global {
		return "g:" + name
	}
	return "l:" + name
}

// EmitString is a convenience wrapper returning the emitted program as a
// single string, used by the CLI's --emit-stack flag and by tests.
func EmitString(prog *ir.Program) string {
	var b strings.Builder
	New(&b).Emit(prog)
	return b.String()
}
