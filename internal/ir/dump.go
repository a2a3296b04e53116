package ir

import (
	"fmt"
	"io"
	"strings"
)

// Dumper prints a human-readable textual rendition of an ir.Program, used
// for the compiler's --emit-raw-ir/--emit-ir CLI output (spec.md §6).
// Grounded on bytecode.Disassembler's shape (offset-indexed instruction
// listing with a constants/globals header) but walking blocks and temps
// instead of a flat bytecode array.
type Dumper struct {
	w io.Writer
}

// NewDumper creates a Dumper writing to w.
func NewDumper(w io.Writer) *Dumper { return &Dumper{w: w} }

// Dump writes every global, then every function's blocks and instructions.
func (d *Dumper) Dump(prog *Program) {
	if len(prog.Globals) > 0 {
		fmt.Fprintln(d.w, "Globals:")
		for _, g := range prog.Globals {
			fmt.Fprintf(d.w, "  %s %s\n", g.Name, g.Type)
		}
		fmt.Fprintln(d.w)
	}
	for _, fn := range prog.Functions {
		d.dumpFunction(fn)
	}
}

func (d *Dumper) dumpFunction(fn *Function) {
	fmt.Fprintf(d.w, "== %s (%d temps) ==\n", fn.Name, fn.NumTemps)
	if len(fn.ParamNames) > 0 {
		var params []string
		for i, n := range fn.ParamNames {
			params = append(params, fmt.Sprintf("%s=t%d", n, fn.ParamTemps[i]))
		}
		fmt.Fprintf(d.w, "params: %s\n", strings.Join(params, ", "))
	}
	for _, s := range fn.LocalComposites {
		fmt.Fprintf(d.w, "local: %s %s\n", s.Name, s.Type)
	}
	for _, b := range fn.Blocks {
		fmt.Fprintf(d.w, "%s:\n", b.Label)
		for _, in := range b.Instrs {
			fmt.Fprintf(d.w, "  %s\n", dumpInstr(in))
		}
	}
	fmt.Fprintln(d.w)
}

func dumpInstr(in Instr) string {
	var b strings.Builder
	if in.HasDst {
		fmt.Fprintf(&b, "t%d = ", in.Dst)
	}
	fmt.Fprint(&b, in.Op.String())
	switch in.Op {
	case OpCall:
		fmt.Fprintf(&b, " %s(", in.Name)
		for i, t := range in.ArgTemp {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "t%d", t)
		}
		b.WriteString(")")
	case OpGlobalLoad, OpGlobalStore:
		fmt.Fprintf(&b, " %s", in.Name)
		if in.Op == OpGlobalStore {
			fmt.Fprintf(&b, " <- %s", in.A)
		}
	case OpIndexLoad:
		fmt.Fprintf(&b, " %s[%s]", in.Name, in.B)
	case OpIndexStore:
		fmt.Fprintf(&b, " %s[%s] <- %s", in.Name, in.B, in.A)
	case OpFieldLoad:
		fmt.Fprintf(&b, " %s.%s", in.Name, in.Field)
	case OpFieldStore:
		fmt.Fprintf(&b, " %s.%s <- %s", in.Name, in.Field, in.A)
	case OpBr:
		fmt.Fprintf(&b, " %s", in.Label)
	case OpCondBr:
		fmt.Fprintf(&b, " %s ? %s : %s", in.A, in.Label, in.B.StrVal)
	case OpReturn:
		fmt.Fprintf(&b, " %s", in.A)
	case OpReturnVoid, OpLabel:
		// no operands
	default:
		fmt.Fprintf(&b, " %s", in.A)
		if in.Op != OpNeg && in.Op != OpNot && in.Op != OpConst && in.Op != OpCopy &&
			in.Op != OpCastI2F && in.Op != OpCastF2I && in.Op != OpCastI2B && in.Op != OpCastB2I &&
			in.Op != OpPrint && in.Op != OpInput {
			fmt.Fprintf(&b, ", %s", in.B)
		}
	}
	return b.String()
}

// DumpString is a convenience wrapper returning the dump as a string.
func DumpString(prog *Program) string {
	var b strings.Builder
	NewDumper(&b).Dump(prog)
	return b.String()
}
