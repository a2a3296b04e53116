package cfgopt

import (
	"fmt"
	"strings"

	"github.com/patakha-lang/patakha/internal/ir"
)

// DumpText renders every function's CFG as an indented block/successor
// listing, used for the compiler's --dump-cfg output (spec.md §6).
func DumpText(prog *ir.Program) string {
	var b strings.Builder
	for _, fn := range prog.Functions {
		Build(fn) // populates b.Succs on every block
		fmt.Fprintf(&b, "== %s ==\n", fn.Name)
		for _, blk := range fn.Blocks {
			fmt.Fprintf(&b, "%s -> %s\n", blk.Label, strings.Join(blk.Succs, ", "))
		}
	}
	return b.String()
}

// DumpDot renders every function's CFG as a Graphviz dot graph, used for
// --dump-cfg-dot (spec.md §6 generated artifact ".cfg.dot").
func DumpDot(prog *ir.Program) string {
	var b strings.Builder
	b.WriteString("digraph cfg {\n")
	for _, fn := range prog.Functions {
		Build(fn)
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n    label=%q;\n", sanitize(fn.Name), fn.Name)
		for _, blk := range fn.Blocks {
			node := fn.Name + "_" + blk.Label
			fmt.Fprintf(&b, "    %q [label=%q];\n", sanitize(node), blk.Label)
		}
		for _, blk := range fn.Blocks {
			from := sanitize(fn.Name + "_" + blk.Label)
			for _, s := range blk.Succs {
				to := sanitize(fn.Name + "_" + s)
				fmt.Fprintf(&b, "    %q -> %q;\n", from, to)
			}
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func sanitize(s string) string {
	return strings.NewReplacer(".", "_", "-", "_", "$", "_").Replace(s)
}
