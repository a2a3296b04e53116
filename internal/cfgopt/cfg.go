// Package cfgopt builds a control-flow graph over a function's basic blocks
// and runs the optimizer passes described in spec.md §4.5: constant
// propagation, dead-store elimination, local CSE, and conservative
// loop-invariant code motion, applied to a fixpoint, followed by
// unreachable-block removal.
package cfgopt

import (
	"github.com/patakha-lang/patakha/internal/ir"
)

// CFG indexes a function's blocks by label and carries dominance/loop
// information derived from it (spec.md §4.5 "Builds a CFG from each
// function's instruction list by computing leaders... and grouping").
// Patakha's IR builder already groups instructions into leader-delimited
// blocks, so construction here is limited to linking successors/
// predecessors and computing dominance, rather than re-discovering leaders
// from a flat instruction stream the way a bytecode-first compiler would.
type CFG struct {
	Fn      *ir.Function
	byLabel map[string]*ir.Block
	order   []*ir.Block // reverse postorder from entry, for dataflow iteration
	preds   map[string][]string

	idom map[string]string // immediate dominator label, "" for entry
}

// successors returns the labels a block's terminator can transfer control
// to, honoring the OpCondBr operand convention documented on ir.Instr.Label.
func successors(term *ir.Instr) []string {
	if term == nil {
		return nil
	}
	switch term.Op {
	case ir.OpBr:
		return []string{term.Label}
	case ir.OpCondBr:
		out := []string{term.Label}
		if term.B.ConstKind == ir.ConstString {
			out = append(out, term.B.StrVal)
		}
		return out
	default:
		return nil
	}
}

// Build links a function's blocks into a graph and computes dominance.
func Build(fn *ir.Function) *CFG {
	c := &CFG{Fn: fn, byLabel: map[string]*ir.Block{}, preds: map[string][]string{}}
	for _, b := range fn.Blocks {
		c.byLabel[b.Label] = b
	}
	for _, b := range fn.Blocks {
		b.Succs = successors(b.Terminator())
		for _, s := range b.Succs {
			c.preds[s] = append(c.preds[s], b.Label)
		}
	}
	c.order = c.reversePostorder()
	c.computeDominance()
	return c
}

func (c *CFG) reversePostorder() []*ir.Block {
	if len(c.Fn.Blocks) == 0 {
		return nil
	}
	entry := c.Fn.Blocks[0]
	visited := map[string]bool{}
	var post []*ir.Block
	var visit func(b *ir.Block)
	visit = func(b *ir.Block) {
		if b == nil || visited[b.Label] {
			return
		}
		visited[b.Label] = true
		for _, s := range b.Succs {
			visit(c.byLabel[s])
		}
		post = append(post, b)
	}
	visit(entry)
	out := make([]*ir.Block, len(post))
	for i, b := range post {
		out[len(post)-1-i] = b
	}
	return out
}

// Reachable reports the set of block labels reachable from the entry block,
// used by unreachable-block removal after branch folding (spec.md §4.5).
func (c *CFG) Reachable() map[string]bool {
	out := map[string]bool{}
	for _, b := range c.order {
		out[b.Label] = true
	}
	return out
}

// computeDominance runs the standard iterative dominator algorithm (Cooper,
// Harvey & Kennedy) over the reverse-postorder block list.
func (c *CFG) computeDominance() {
	if len(c.order) == 0 {
		return
	}
	entry := c.order[0]
	c.idom = map[string]string{entry.Label: entry.Label}
	indexOf := map[string]int{}
	for i, b := range c.order {
		indexOf[b.Label] = i
	}

	changed := true
	for changed {
		changed = false
		for _, b := range c.order[1:] {
			var newIdom string
			first := true
			for _, p := range c.preds[b.Label] {
				if _, ok := c.idom[p]; !ok {
					continue
				}
				if first {
					newIdom = p
					first = false
					continue
				}
				newIdom = c.intersect(p, newIdom, indexOf)
			}
			if newIdom != "" && c.idom[b.Label] != newIdom {
				c.idom[b.Label] = newIdom
				changed = true
			}
		}
	}
}

func (c *CFG) intersect(a, b string, indexOf map[string]int) string {
	for a != b {
		for indexOf[a] < indexOf[b] {
			a = c.idom[a]
		}
		for indexOf[b] < indexOf[a] {
			b = c.idom[b]
		}
	}
	return a
}

// Dominates reports whether block a dominates block b.
func (c *CFG) Dominates(a, b string) bool {
	for {
		if a == b {
			return true
		}
		next, ok := c.idom[b]
		if !ok || next == b {
			return a == b
		}
		b = next
	}
}

// Loop is a natural loop: a header dominating every block in Body, reached
// via a back edge from Latch.
type Loop struct {
	Header string
	Latch  string
	Body   map[string]bool
}

// NaturalLoops finds every back edge (an edge whose target dominates its
// source) and computes the natural loop it defines (spec.md §4.5d).
func (c *CFG) NaturalLoops() []*Loop {
	var loops []*Loop
	for _, b := range c.order {
		for _, s := range b.Succs {
			if c.Dominates(s, b.Label) {
				loops = append(loops, c.buildLoop(s, b.Label))
			}
		}
	}
	return loops
}

func (c *CFG) buildLoop(header, latch string) *Loop {
	body := map[string]bool{header: true}
	stack := []string{latch}
	body[latch] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range c.preds[n] {
			if !body[p] {
				body[p] = true
				stack = append(stack, p)
			}
		}
	}
	return &Loop{Header: header, Latch: latch, Body: body}
}

// SingleExternalPred reports the sole predecessor of label that lies
// outside body, or "", false if there is more than one (or none). Used by
// LICM's safe-approximation rule: only hoist into a loop with one entry
// point, never synthesizing a new pre-header block (spec.md §4.5d).
func (c *CFG) SingleExternalPred(label string, body map[string]bool) (string, bool) {
	var out string
	count := 0
	for _, p := range c.preds[label] {
		if !body[p] {
			count++
			out = p
		}
	}
	if count == 1 {
		return out, true
	}
	return "", false
}

func (c *CFG) Block(label string) *ir.Block { return c.byLabel[label] }
