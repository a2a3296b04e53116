package cfgopt

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"

	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/ir"
)

// Optimize runs the fixed-order pass pipeline to a fixpoint over every
// function in prog, then removes blocks no longer reachable after branch
// folding (spec.md §4.5). log may be nil; when present it traces pass
// activity the way the teacher's bytecode optimizer traces chunk rewrites.
func Optimize(prog *ir.Program, sink *diag.Sink, log *logrus.Logger) {
	for _, fn := range prog.Functions {
		optimizeFunction(fn, log)
	}
}

func optimizeFunction(fn *ir.Function, log *logrus.Logger) {
	entry := fmt.Sprintf("function=%s", fn.Name)
	for round := 0; ; round++ {
		cfg := Build(fn)
		changed := false
		for _, b := range fn.Blocks {
			if constantPropagateBlock(b) {
				changed = true
			}
		}
		if deadStoreEliminate(fn, cfg) {
			changed = true
		}
		for _, b := range fn.Blocks {
			if localCSE(b) {
				changed = true
			}
		}
		if licm(fn, Build(fn)) {
			changed = true
		}
		if log != nil {
			log.WithField("pass", entry).WithField("round", round).Debug("optimizer fixpoint iteration")
		}
		if !changed {
			break
		}
	}
	removeUnreachable(fn)
}

// ---- 1. constant propagation ----------------------------------------------

// constantPropagateBlock tracks per-block constant values for each temp,
// folds pure arithmetic/comparison on constant operands, and simplifies a
// conditional branch whose condition resolved to a constant bool (spec.md
// §4.5 pass 1). Knowledge does not survive a block boundary: builder-
// emitted loops redefine a variable's temp on every iteration, so carrying
// a "constant" value across a back edge would be unsound without a full
// reaching-definitions dataflow this pass intentionally does not build.
func constantPropagateBlock(b *ir.Block) bool {
	changed := false
	known := map[int]ir.Operand{}
	for i := range b.Instrs {
		in := &b.Instrs[i]
		if in.A.IsTemp {
			if c, ok := known[in.A.Temp]; ok {
				in.A = c
				changed = true
			}
		}
		if in.B.IsTemp {
			if c, ok := known[in.B.Temp]; ok {
				in.B = c
				changed = true
			}
		}
		if folded, ok := foldConst(in); ok {
			in.Op = ir.OpConst
			in.A = folded
			in.B = ir.Operand{}
			changed = true
		}
		if in.HasDst {
			if (in.Op == ir.OpConst || in.Op == ir.OpCopy) && !in.A.IsTemp {
				known[in.Dst] = in.A
			} else {
				delete(known, in.Dst)
			}
		}
	}
	if simplifyBranch(b) {
		changed = true
	}
	return changed
}

func simplifyBranch(b *ir.Block) bool {
	term := b.Terminator()
	if term == nil || term.Op != ir.OpCondBr {
		return false
	}
	if term.A.IsTemp || term.A.ConstKind != ir.ConstBool {
		return false
	}
	taken := term.Label
	if !term.A.BoolVal && term.B.ConstKind == ir.ConstString {
		taken = term.B.StrVal
	}
	term.Op = ir.OpBr
	term.Label = taken
	term.A = ir.Operand{}
	term.B = ir.Operand{}
	return true
}

func foldConst(in *ir.Instr) (ir.Operand, bool) {
	if !isPure(in.Op) || in.Op == ir.OpConst || in.Op == ir.OpCopy {
		return ir.Operand{}, false
	}
	if in.A.IsTemp {
		return ir.Operand{}, false
	}
	needsB := binaryArith(in.Op)
	if needsB && in.B.IsTemp {
		return ir.Operand{}, false
	}
	switch in.Op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		return foldArith(in.Op, in.A, in.B)
	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		return foldCompare(in.Op, in.A, in.B)
	case ir.OpNeg:
		if in.A.ConstKind == ir.ConstInt {
			return ir.IntOperand(-in.A.IntVal), true
		}
		if in.A.ConstKind == ir.ConstFloat {
			return ir.FloatOperand(-in.A.FloatVal), true
		}
	case ir.OpNot:
		if in.A.ConstKind == ir.ConstBool {
			return ir.BoolOperand(!in.A.BoolVal), true
		}
	case ir.OpCastI2F:
		if in.A.ConstKind == ir.ConstInt {
			return ir.FloatOperand(float64(in.A.IntVal)), true
		}
	case ir.OpCastF2I:
		if in.A.ConstKind == ir.ConstFloat {
			return ir.IntOperand(int64(in.A.FloatVal)), true
		}
	case ir.OpCastI2B:
		if in.A.ConstKind == ir.ConstInt {
			return ir.BoolOperand(in.A.IntVal != 0), true
		}
	case ir.OpCastB2I:
		if in.A.ConstKind == ir.ConstBool {
			v := int64(0)
			if in.A.BoolVal {
				v = 1
			}
			return ir.IntOperand(v), true
		}
	}
	return ir.Operand{}, false
}

func binaryArith(op ir.Op) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		return true
	default:
		return false
	}
}

func foldArith(op ir.Op, a, b ir.Operand) (ir.Operand, bool) {
	if a.ConstKind == ir.ConstInt && b.ConstKind == ir.ConstInt {
		x, y := a.IntVal, b.IntVal
		switch op {
		case ir.OpAdd:
			return ir.IntOperand(x + y), true
		case ir.OpSub:
			return ir.IntOperand(x - y), true
		case ir.OpMul:
			return ir.IntOperand(x * y), true
		case ir.OpDiv:
			if y == 0 {
				return ir.Operand{}, false
			}
			return ir.IntOperand(x / y), true
		case ir.OpMod:
			if y == 0 {
				return ir.Operand{}, false
			}
			return ir.IntOperand(x % y), true
		}
	}
	if a.ConstKind == ir.ConstFloat && b.ConstKind == ir.ConstFloat {
		x, y := a.FloatVal, b.FloatVal
		switch op {
		case ir.OpAdd:
			return ir.FloatOperand(x + y), true
		case ir.OpSub:
			return ir.FloatOperand(x - y), true
		case ir.OpMul:
			return ir.FloatOperand(x * y), true
		case ir.OpDiv:
			if y == 0 {
				return ir.Operand{}, false
			}
			return ir.FloatOperand(x / y), true
		}
	}
	return ir.Operand{}, false
}

func foldCompare(op ir.Op, a, b ir.Operand) (ir.Operand, bool) {
	if a.ConstKind == ir.ConstInt && b.ConstKind == ir.ConstInt {
		return ir.BoolOperand(compareInt(op, a.IntVal, b.IntVal)), true
	}
	if a.ConstKind == ir.ConstFloat && b.ConstKind == ir.ConstFloat {
		return ir.BoolOperand(compareFloat(op, a.FloatVal, b.FloatVal)), true
	}
	if a.ConstKind == ir.ConstBool && b.ConstKind == ir.ConstBool && (op == ir.OpEq || op == ir.OpNe) {
		eq := a.BoolVal == b.BoolVal
		if op == ir.OpEq {
			return ir.BoolOperand(eq), true
		}
		return ir.BoolOperand(!eq), true
	}
	return ir.Operand{}, false
}

func compareInt(op ir.Op, x, y int64) bool {
	switch op {
	case ir.OpEq:
		return x == y
	case ir.OpNe:
		return x != y
	case ir.OpLt:
		return x < y
	case ir.OpLe:
		return x <= y
	case ir.OpGt:
		return x > y
	case ir.OpGe:
		return x >= y
	}
	return false
}

func compareFloat(op ir.Op, x, y float64) bool {
	switch op {
	case ir.OpEq:
		return x == y
	case ir.OpNe:
		return x != y
	case ir.OpLt:
		return x < y
	case ir.OpLe:
		return x <= y
	case ir.OpGt:
		return x > y
	case ir.OpGe:
		return x >= y
	}
	return false
}

// isPure reports whether op has no side effect and always produces the same
// result given the same operands (spec.md §4.5c's purity test, reused here
// for constant folding eligibility).
func isPure(op ir.Op) bool {
	switch op {
	case ir.OpGlobalLoad, ir.OpGlobalStore, ir.OpIndexLoad, ir.OpIndexStore,
		ir.OpFieldLoad, ir.OpFieldStore, ir.OpCall, ir.OpPrint, ir.OpInput,
		ir.OpBr, ir.OpCondBr, ir.OpReturn, ir.OpReturnVoid:
		return false
	default:
		return true
	}
}

func sideEffecting(op ir.Op) bool { return !isPure(op) }

// ---- 2. dead-store elimination ---------------------------------------------

// deadStoreEliminate removes instructions whose result temp is never used
// and which have no side effect, using a conservative inter-block live-out
// set computed by the standard backward dataflow fixpoint (spec.md §4.5
// pass 2). Liveness bitsets are indexed by temp id up to fn.NumTemps,
// following go-corset's use of bits-and-blooms/bitset for dataflow sets.
func deadStoreEliminate(fn *ir.Function, cfg *CFG) bool {
	if fn.NumTemps == 0 {
		return false
	}
	use := map[string]*bitset.BitSet{}
	def := map[string]*bitset.BitSet{}
	for _, b := range fn.Blocks {
		u, d := bitset.New(uint(fn.NumTemps)), bitset.New(uint(fn.NumTemps))
		markIfNotYetDefined := func(op ir.Operand) {
			if op.IsTemp && !d.Test(uint(op.Temp)) {
				u.Set(uint(op.Temp))
			}
		}
		for _, in := range b.Instrs {
			markIfNotYetDefined(in.A)
			markIfNotYetDefined(in.B)
			for _, t := range in.ArgTemp {
				if !d.Test(uint(t)) {
					u.Set(uint(t))
				}
			}
			if in.HasDst {
				d.Set(uint(in.Dst))
			}
		}
		use[b.Label], def[b.Label] = u, d
	}

	liveIn := map[string]*bitset.BitSet{}
	liveOut := map[string]*bitset.BitSet{}
	for _, b := range fn.Blocks {
		liveIn[b.Label] = bitset.New(uint(fn.NumTemps))
		liveOut[b.Label] = bitset.New(uint(fn.NumTemps))
	}
	changed := true
	for changed {
		changed = false
		for i := len(cfg.order) - 1; i >= 0; i-- {
			b := cfg.order[i]
			out := bitset.New(uint(fn.NumTemps))
			for _, s := range b.Succs {
				out.InPlaceUnion(liveIn[s])
			}
			in := out.Clone()
			notDef := def[b.Label].Complement()
			in.InPlaceIntersection(notDef)
			in.InPlaceUnion(use[b.Label])
			if !in.Equal(liveIn[b.Label]) || !out.Equal(liveOut[b.Label]) {
				liveIn[b.Label] = in
				liveOut[b.Label] = out
				changed = true
			}
		}
	}

	removedAny := false
	for _, b := range fn.Blocks {
		live := liveOut[b.Label].Clone()
		kept := make([]ir.Instr, 0, len(b.Instrs))
		for i := len(b.Instrs) - 1; i >= 0; i-- {
			in := b.Instrs[i]
			if in.HasDst && !live.Test(uint(in.Dst)) && !sideEffecting(in.Op) {
				removedAny = true
				continue
			}
			if in.HasDst {
				live.Clear(uint(in.Dst))
			}
			if in.A.IsTemp {
				live.Set(uint(in.A.Temp))
			}
			if in.B.IsTemp {
				live.Set(uint(in.B.Temp))
			}
			for _, t := range in.ArgTemp {
				live.Set(uint(t))
			}
			kept = append(kept, in)
		}
		for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
			kept[i], kept[j] = kept[j], kept[i]
		}
		b.Instrs = kept
	}
	return removedAny
}

// ---- 3. local common subexpression elimination ----------------------------

// localCSE maintains a map from canonicalized (opcode, operands) to the
// defining temp within one block, replacing a later identical pure
// expression with a copy from the earlier temp; the map is invalidated at
// any call, store, or block boundary (spec.md §4.5 pass 3).
func localCSE(b *ir.Block) bool {
	changed := false
	seen := map[string]int{}
	for i := range b.Instrs {
		in := &b.Instrs[i]
		if !isPure(in.Op) {
			seen = map[string]int{}
			continue
		}
		if !in.HasDst || in.Op == ir.OpConst {
			continue
		}
		key := cseKey(in)
		if prior, ok := seen[key]; ok {
			in.Op = ir.OpCopy
			in.A = ir.Temp(prior)
			in.B = ir.Operand{}
			changed = true
			continue
		}
		seen[key] = in.Dst
	}
	return changed
}

func cseKey(in *ir.Instr) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%t", in.Op, in.A, in.B, in.Name, in.Field, in.Global)
}

// ---- 4. conservative loop-invariant code motion ----------------------------

// licm hoists a pure instruction out of a natural loop's body into the
// block preceding its header when: every operand is defined outside the
// loop (or already hoisted this pass), the instruction is pure, and the
// loop has a single entry whose sole external predecessor is available as
// a hoist target (spec.md §4.5 pass 4's safe approximation; this builder
// never synthesizes a new pre-header block, it only reuses an existing
// single predecessor).
func licm(fn *ir.Function, cfg *CFG) bool {
	changed := false
	for _, loop := range cfg.NaturalLoops() {
		preheaderLabel, ok := cfg.SingleExternalPred(loop.Header, loop.Body)
		if !ok {
			continue
		}
		preheader := cfg.Block(preheaderLabel)
		if preheader == nil || preheader.Terminator() == nil {
			continue
		}
		// loopDefs counts every definition of each temp the loop body writes;
		// such a temp is never an invariant operand, and an instruction is
		// hoisted only when it is its destination's sole definition.
		loopDefs := map[int]int{}
		for _, b := range fn.Blocks {
			if !loop.Body[b.Label] {
				continue
			}
			for _, in := range b.Instrs {
				if in.HasDst {
					loopDefs[in.Dst]++
				}
			}
		}
		definedOutside := map[int]bool{}
		for _, b := range fn.Blocks {
			if loop.Body[b.Label] {
				continue
			}
			for _, in := range b.Instrs {
				if !in.HasDst {
					continue
				}
				if _, inLoop := loopDefs[in.Dst]; inLoop {
					loopDefs[in.Dst]++
				} else {
					definedOutside[in.Dst] = true
				}
			}
		}
		for _, b := range fn.Blocks {
			if !loop.Body[b.Label] || b.Label == loop.Header {
				continue
			}
			if !cfg.Dominates(b.Label, loop.Latch) {
				continue
			}
			var kept []ir.Instr
			for _, in := range b.Instrs {
				if in.HasDst && isPure(in.Op) && in.Op != ir.OpConst && loopDefs[in.Dst] == 1 &&
					operandHoistable(in.A, definedOutside) && operandHoistable(in.B, definedOutside) {
					insertBeforeTerminator(preheader, in)
					definedOutside[in.Dst] = true
					changed = true
					continue
				}
				kept = append(kept, in)
			}
			b.Instrs = kept
		}
	}
	return changed
}

func operandHoistable(op ir.Operand, definedOutside map[int]bool) bool {
	if !op.IsTemp {
		return true
	}
	return definedOutside[op.Temp]
}

func insertBeforeTerminator(b *ir.Block, in ir.Instr) {
	if len(b.Instrs) == 0 {
		b.Instrs = append(b.Instrs, in)
		return
	}
	last := len(b.Instrs) - 1
	b.Instrs = append(b.Instrs, ir.Instr{})
	copy(b.Instrs[last+1:], b.Instrs[last:])
	b.Instrs[last] = in
}

// ---- unreachable-block removal ---------------------------------------------

// removeUnreachable drops blocks no longer reachable from the entry after
// branch folding collapsed a conditional into an unconditional jump
// (spec.md §4.5 "Unreachable-block removal runs after constant propagation
// to clean folded branches"); run once more here, after the full fixpoint,
// since later passes can fold additional branches that constant
// propagation alone left dangling.
func removeUnreachable(fn *ir.Function) {
	cfg := Build(fn)
	reachable := cfg.Reachable()
	var kept []*ir.Block
	for _, b := range fn.Blocks {
		if reachable[b.Label] {
			kept = append(kept, b)
		}
	}
	fn.Blocks = kept
}
