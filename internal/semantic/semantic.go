// Package semantic implements Patakha's two-pass semantic analyzer
// (spec.md §4.3): hoist function/type signatures, then check bodies,
// annotating every expression with its resolved type and collecting the
// warning set alongside hard errors.
package semantic

import (
	"github.com/patakha-lang/patakha/internal/ast"
	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/token"
	"github.com/patakha-lang/patakha/internal/types"
)

// Imported carries the already-analyzed public surface of one imported file
// (spec.md §2: "resolved by recursively invoking L→S on imported files
// before continuing S on the importer"). The compiler package builds these
// from a recursive analysis pass and feeds them back in here.
type Imported struct {
	File       string
	Funcs      []*Symbol
	Aggregates []*types.Aggregate
}

// Result is the analyzer's output: the (now-annotated) AST, plus the
// resolved global scope handed to the IR builder for signature lookups, and
// every aggregate declared in this file (for building this file's Imported
// record, when it is imported elsewhere).
type Result struct {
	Program    *ast.Program
	Global     *Scope
	Aggregates []*types.Aggregate
}

// Exported builds this analysis's Imported record (spec.md §2: recursive
// L→S resolution of import targets), carrying every function symbol and
// aggregate in file's global scope -- its own declarations plus those it
// took from its own imports -- so importers can seed their own global scope
// from it.
func (r *Result) Exported(file string) *Imported {
	imp := &Imported{File: file, Aggregates: r.Aggregates}
	for _, sym := range r.Global.All() {
		if sym.Kind == SymFunc {
			imp.Funcs = append(imp.Funcs, sym)
		}
	}
	return imp
}

// Analyzer carries the mutable state of one analysis pass.
type Analyzer struct {
	sink          *diag.Sink
	global        *Scope
	aggregates    map[string]*types.Aggregate
	currentReturn *types.Type
	currentVoid   bool
	loopDepth     int
}

// Analyze runs the full two-pass analysis over prog, seeding the global
// scope from any already-analyzed imports first.
func Analyze(prog *ast.Program, sink *diag.Sink, imports []*Imported) *Result {
	a := &Analyzer{
		sink:       sink,
		global:     newScope(nil),
		aggregates: make(map[string]*types.Aggregate),
	}

	for _, imp := range imports {
		for _, agg := range imp.Aggregates {
			if _, exists := a.aggregates[agg.Name]; !exists {
				a.aggregates[agg.Name] = agg
			}
		}
		for _, fn := range imp.Funcs {
			if _, exists := a.global.lookupLocal(fn.Name); !exists {
				a.global.define(fn)
			}
		}
	}

	a.hoist(prog)
	a.checkDecls(prog)

	if prog.Main != nil {
		mainScope := newScope(a.global)
		terminated := a.checkBlock(prog.Main, mainScope)
		_ = terminated
		a.checkUnused(mainScope, false)
	}

	aggs := make([]*types.Aggregate, 0, len(a.aggregates))
	for _, agg := range a.aggregates {
		aggs = append(aggs, agg)
	}
	return &Result{Program: prog, Global: a.global, Aggregates: aggs}
}

// ---- pass 1: hoist function and type signatures ----------------------------

// hoist runs in two internal sub-passes so a function signature may
// reference an aggregate type declared later in the same file: aggregates
// are registered before any function signature is resolved.
func (a *Analyzer) hoist(prog *ast.Program) {
	for _, decl := range prog.Decls {
		if d, ok := decl.(*ast.AggregateDecl); ok {
			a.hoistAggregate(d)
		}
	}
	for _, decl := range prog.Decls {
		if d, ok := decl.(*ast.FuncDecl); ok {
			a.hoistFunc(d)
		}
	}
}

func (a *Analyzer) hoistAggregate(d *ast.AggregateDecl) {
	if _, exists := a.aggregates[d.Name]; exists {
		a.sink.Errorf(d.Pos(), "redeclaration of type %q", d.Name)
		return
	}
	agg := &types.Aggregate{Name: d.Name}
	seen := map[string]bool{}
	for _, f := range d.Fields {
		if seen[f.Name] {
			a.sink.Errorf(d.Pos(), "duplicate field %q in %q", f.Name, d.Name)
			continue
		}
		seen[f.Name] = true
		ft := a.resolveTypeRef(f.Type)
		agg.Fields = append(agg.Fields, types.Field{Name: f.Name, Type: ft})
	}
	a.aggregates[d.Name] = agg
	a.global.define(&Symbol{Kind: SymType, Name: d.Name, Type: types.NewAggregateType(agg), Pos: d.Pos()})
}

func (a *Analyzer) hoistFunc(d *ast.FuncDecl) {
	if _, exists := a.global.lookupLocal(d.Name); exists {
		a.sink.Errorf(d.Pos(), "redeclaration of function %q", d.Name)
		return
	}
	sym := &Symbol{Kind: SymFunc, Name: d.Name, Pos: d.Pos(), ReturnType: a.resolveTypeRef(d.ReturnType)}
	for _, p := range d.Params {
		sym.Params = append(sym.Params, a.resolveTypeRef(p.Type))
	}
	a.global.define(sym)
}

func (a *Analyzer) resolveTypeRef(t *ast.TypeRef) *types.Type {
	if t == nil {
		return nil
	}
	if prim, ok := types.ParsePrimitive(t.Name); ok {
		return prim
	}
	if agg, ok := a.aggregates[t.Name]; ok {
		return types.NewAggregateType(agg)
	}
	a.sink.Errorf(t.Tok.Pos, "unknown type %q", t.Name)
	return nil
}

// ---- pass 2: check declaration bodies and global initializers --------------

func (a *Analyzer) checkDecls(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			a.checkFunc(d)
		case *ast.VarDecl:
			a.checkGlobalVar(d)
		case *ast.ImportDecl:
			// Resolved by the compiler's import loader before Analyze runs.
		}
	}
}

func (a *Analyzer) checkGlobalVar(d *ast.VarDecl) {
	declared := a.varDeclType(d)
	if d.Init != nil {
		initType := a.checkExpr(d.Init, a.global)
		a.requireAssignable(d.Pos(), declared, initType)
	}
	if _, exists := a.global.lookupLocal(d.Name); exists {
		a.sink.Errorf(d.Pos(), "redeclaration of %q in the same scope", d.Name)
		return
	}
	a.global.define(&Symbol{Kind: SymVar, Name: d.Name, Type: declared, Pos: d.Pos(), Initialized: d.Init != nil, Writes: boolToInt(d.Init != nil)})
	d.Resolved = declared
}

func (a *Analyzer) varDeclType(d *ast.VarDecl) *types.Type {
	base := a.resolveTypeRef(d.Type)
	if d.ArrayLen > 0 {
		return types.NewArrayType(base, d.ArrayLen)
	}
	return base
}

func (a *Analyzer) checkFunc(d *ast.FuncDecl) {
	fnScope := newScope(a.global)
	for _, p := range d.Params {
		pt := a.resolveTypeRef(p.Type)
		if _, exists := fnScope.lookupLocal(p.Name); exists {
			a.sink.Errorf(d.Pos(), "duplicate parameter %q", p.Name)
			continue
		}
		fnScope.define(&Symbol{Kind: SymParam, Name: p.Name, Type: pt, Pos: d.Pos(), Initialized: true})
	}

	prevReturn, prevVoid := a.currentReturn, a.currentVoid
	a.currentReturn = a.resolveTypeRef(d.ReturnType)
	a.currentVoid = a.currentReturn != nil && a.currentReturn.Kind == types.KVoid
	a.checkBlock(d.Body, fnScope)
	a.currentReturn, a.currentVoid = prevReturn, prevVoid

	a.checkUnused(fnScope, true)
}

// ---- statements --------------------------------------------------------

// checkBlock opens no new scope of its own for the statement list beyond
// the one the caller already opened (matching teacher style: callers pick
// whether a construct gets its own frame). It returns whether the block is
// guaranteed to transfer control away (return/break/continue), for dead
// code detection in the enclosing block.
func (a *Analyzer) checkBlock(b *ast.BlockStmt, scope *Scope) bool {
	terminated := false
	for _, stmt := range b.Statements {
		if terminated {
			a.sink.Warningf(stmt.Pos(), "unreachable code")
			terminated = false // only warn once per block
		}
		if a.checkStatement(stmt, scope) {
			terminated = true
		}
	}
	return terminated
}

func (a *Analyzer) checkStatement(stmt ast.Statement, scope *Scope) bool {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		a.checkLocalVar(s, scope)
	case *ast.AssignStmt:
		a.checkAssign(s, scope)
	case *ast.IncDecStmt:
		a.checkIncDecTarget(s.Target, scope)
	case *ast.IfStmt:
		a.requireBool(s.Condition, scope, "if condition")
		thenScope := newScope(scope)
		thenTerm := a.checkBlock(s.Then, thenScope)
		a.checkUnused(thenScope, false)
		elseTerm := false
		if s.Else != nil {
			switch e := s.Else.(type) {
			case *ast.BlockStmt:
				elseScope := newScope(scope)
				elseTerm = a.checkBlock(e, elseScope)
				a.checkUnused(elseScope, false)
			case *ast.IfStmt:
				elseTerm = a.checkStatement(e, scope)
			}
		}
		return thenTerm && elseTerm && s.Else != nil
	case *ast.WhileStmt:
		a.requireBool(s.Condition, scope, "while condition")
		bodyScope := newScope(scope)
		a.loopDepth++
		a.checkBlock(s.Body, bodyScope)
		a.loopDepth--
		a.checkUnused(bodyScope, false)
	case *ast.ForStmt:
		forScope := newScope(scope)
		if s.Init != nil {
			a.checkForInit(s.Init, forScope)
		}
		if s.Condition != nil {
			a.requireBool(s.Condition, forScope, "for condition")
		}
		bodyScope := newScope(forScope)
		a.loopDepth++
		a.checkBlock(s.Body, bodyScope)
		if s.Post != nil {
			a.checkStatement(s.Post, forScope)
		}
		a.loopDepth--
		a.checkUnused(bodyScope, false)
		a.checkUnused(forScope, false)
	case *ast.DoWhileStmt:
		bodyScope := newScope(scope)
		a.loopDepth++
		a.checkBlock(s.Body, bodyScope)
		a.loopDepth--
		a.requireBool(s.Condition, scope, "do-while condition")
		a.checkUnused(bodyScope, false)
	case *ast.SwitchStmt:
		a.checkSwitch(s, scope)
	case *ast.BreakStmt:
		if a.loopDepth == 0 {
			a.sink.Errorf(s.Pos(), "'tod' outside a loop")
		}
		return true
	case *ast.ContinueStmt:
		if a.loopDepth == 0 {
			a.sink.Errorf(s.Pos(), "'jari' outside a loop")
		}
		return true
	case *ast.ReturnStmt:
		a.checkReturn(s, scope)
		return true
	case *ast.PrintStmt:
		a.checkExpr(s.Value, scope)
	case *ast.ExprStmt:
		if s.Expr != nil {
			a.checkExpr(s.Expr, scope)
		}
	case *ast.BlockStmt:
		nested := newScope(scope)
		term := a.checkBlock(s, nested)
		a.checkUnused(nested, false)
		return term
	case *ast.ErrorNode:
		// Parser already reported the underlying syntax error.
	}
	return false
}

func (a *Analyzer) checkLocalVar(d *ast.VarDecl, scope *Scope) {
	declared := a.varDeclType(d)
	var initType *types.Type
	if d.Init != nil {
		initType = a.checkExpr(d.Init, scope)
		a.requireAssignable(d.Pos(), declared, initType)
	}
	if _, exists := scope.lookupLocal(d.Name); exists {
		a.sink.Errorf(d.Pos(), "redeclaration of %q in the same scope", d.Name)
		return
	}
	if _, shadowed := scope.lookup(d.Name); shadowed {
		a.sink.Warningf(d.Pos(), "declaration of %q shadows an outer-scope name", d.Name)
	}
	scope.define(&Symbol{Kind: SymVar, Name: d.Name, Type: declared, Pos: d.Pos(), Initialized: d.Init != nil, Writes: boolToInt(d.Init != nil)})
	d.Resolved = declared
}

// checkForInit type-checks a counted-for loop's init clause. The counted-for
// form writes its counter directly in the init clause ("jabtak (i = 0; ...)")
// with no preceding declaration, so a bare assignment to an identifier not
// yet in scope implicitly declares it in the loop's own scope instead of
// reporting it undeclared. An init clause that assigns to an already
// declared name (or isn't a plain assignment) type-checks the normal way.
func (a *Analyzer) checkForInit(init ast.Statement, scope *Scope) {
	assign, ok := init.(*ast.AssignStmt)
	if !ok {
		a.checkStatement(init, scope)
		return
	}
	id, ok := assign.Target.(*ast.Identifier)
	if !ok {
		a.checkStatement(init, scope)
		return
	}
	if _, found := scope.lookup(id.Value); found {
		a.checkStatement(init, scope)
		return
	}
	valueType := a.checkExpr(assign.Value, scope)
	scope.define(&Symbol{Kind: SymVar, Name: id.Value, Type: valueType, Pos: id.Pos(), Initialized: true, Writes: 1})
	id.SetTyped(valueType)
}

func (a *Analyzer) checkAssign(s *ast.AssignStmt, scope *Scope) {
	if !ast.IsLValue(s.Target) {
		a.sink.Errorf(s.Pos(), "invalid assignment target")
	}
	targetType := a.checkExpr(s.Target, scope)
	valueType := a.checkExpr(s.Value, scope)
	a.requireAssignable(s.Pos(), targetType, valueType)
	a.markWrite(s.Target, scope)
}

func (a *Analyzer) checkIncDecTarget(target ast.Expression, scope *Scope) *types.Type {
	t := a.checkExpr(target, scope)
	if t != nil && !t.IsNumeric() {
		a.sink.Errorf(target.Pos(), "operand of increment/decrement must be numeric, got %s", types.Describe(t))
	}
	a.markWrite(target, scope)
	a.markRead(target, scope)
	return t
}

func (a *Analyzer) checkReturn(s *ast.ReturnStmt, scope *Scope) {
	if a.currentVoid {
		if s.Value != nil {
			a.sink.Errorf(s.Pos(), "void function must not return a value")
			a.checkExpr(s.Value, scope)
		}
		return
	}
	if s.Value == nil {
		a.sink.Errorf(s.Pos(), "missing return value, function returns %s", types.Describe(a.currentReturn))
		return
	}
	got := a.checkExpr(s.Value, scope)
	if a.currentReturn != nil && got != nil && !a.currentReturn.Equal(got) {
		a.sink.Errorf(s.Pos(), "return type mismatch: expected %s, got %s", types.Describe(a.currentReturn), types.Describe(got))
	}
}

func (a *Analyzer) checkSwitch(s *ast.SwitchStmt, scope *Scope) {
	discType := a.checkExpr(s.Discriminant, scope)
	if discType != nil && discType.Kind != types.KInt && discType.Kind != types.KString && discType.Kind != types.KBool {
		a.sink.Errorf(s.Pos(), "switch discriminant must be int, text, or bool, got %s", types.Describe(discType))
	}
	seen := map[string]bool{}
	for _, c := range s.Cases {
		if !c.IsDefault {
			if !isConstantExpr(c.Label) {
				a.sink.Errorf(c.Label.Pos(), "case label must be a constant expression")
			}
			labelType := a.checkExpr(c.Label, scope)
			if discType != nil && labelType != nil && !discType.Equal(labelType) {
				a.sink.Errorf(c.Label.Pos(), "case label type %s does not match discriminant type %s", types.Describe(labelType), types.Describe(discType))
			}
			key := c.Label.String()
			if seen[key] {
				a.sink.Errorf(c.Label.Pos(), "duplicate case label %s", key)
			}
			seen[key] = true
		}
		caseScope := newScope(scope)
		for _, stmt := range c.Body {
			a.checkStatement(stmt, caseScope)
		}
		a.checkUnused(caseScope, false)
	}
}

// isConstantExpr reports whether e is a literal or a unary-minus applied to
// one, the only constant forms Patakha accepts as a case label.
func isConstantExpr(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral:
		return true
	case *ast.UnaryExpr:
		return v.Operator == "-" && isConstantExpr(v.Right)
	default:
		return false
	}
}

// ---- expressions --------------------------------------------------------

func (a *Analyzer) checkExpr(e ast.Expression, scope *Scope) *types.Type {
	if e == nil || ast.IsError(e) {
		return nil
	}
	var t *types.Type
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		t = types.Int
	case *ast.FloatLiteral:
		t = types.Float
	case *ast.StringLiteral:
		t = types.String
	case *ast.BoolLiteral:
		t = types.Bool
	case *ast.InputExpr:
		t = types.String
	case *ast.Identifier:
		sym, ok := scope.lookup(v.Value)
		if !ok {
			a.sink.Errorf(v.Pos(), "undeclared name %q", v.Value)
			break
		}
		sym.Reads++
		t = sym.Type
	case *ast.BinaryExpr:
		t = a.checkBinary(v, scope)
	case *ast.LogicalExpr:
		lt := a.checkExpr(v.Left, scope)
		rt := a.checkExpr(v.Right, scope)
		if lt != nil && lt.Kind != types.KBool {
			a.sink.Errorf(v.Left.Pos(), "left operand of %q must be bool, got %s", v.Operator, types.Describe(lt))
		}
		if rt != nil && rt.Kind != types.KBool {
			a.sink.Errorf(v.Right.Pos(), "right operand of %q must be bool, got %s", v.Operator, types.Describe(rt))
		}
		t = types.Bool
	case *ast.UnaryExpr:
		rt := a.checkExpr(v.Right, scope)
		switch v.Operator {
		case "-":
			if rt != nil && !rt.IsNumeric() {
				a.sink.Errorf(v.Pos(), "unary '-' requires a numeric operand, got %s", types.Describe(rt))
			}
			t = rt
		case "!":
			if rt != nil && rt.Kind != types.KBool {
				a.sink.Errorf(v.Pos(), "unary '!' requires a bool operand, got %s", types.Describe(rt))
			}
			t = types.Bool
		}
	case *ast.IncDecExpr:
		t = a.checkIncDecTarget(v.Target, scope)
	case *ast.CastExpr:
		a.checkExpr(v.Inner, scope)
		target, ok := types.ParsePrimitive(v.Target)
		if !ok {
			a.sink.Errorf(v.Pos(), "invalid cast target %q", v.Target)
			break
		}
		t = target
	case *ast.CallExpr:
		t = a.checkCall(v, scope)
	case *ast.IndexExpr:
		arrType := a.checkExpr(v.Array, scope)
		idxType := a.checkExpr(v.Index, scope)
		if idxType != nil && idxType.Kind != types.KInt {
			a.sink.Errorf(v.Index.Pos(), "array index must be int, got %s", types.Describe(idxType))
		}
		if arrType != nil {
			if arrType.Kind != types.KArray {
				a.sink.Errorf(v.Pos(), "cannot index non-array type %s", types.Describe(arrType))
				break
			}
			t = arrType.Elem
		}
	case *ast.FieldExpr:
		objType := a.checkExpr(v.Object, scope)
		if objType != nil {
			if objType.Kind != types.KAggregate || objType.Agg == nil {
				a.sink.Errorf(v.Pos(), "cannot access field %q on non-aggregate type %s", v.Field, types.Describe(objType))
				break
			}
			idx := objType.Agg.FieldIndex(v.Field)
			if idx < 0 {
				a.sink.Errorf(v.Pos(), "type %s has no field %q", objType.Name, v.Field)
				break
			}
			t = objType.Agg.Fields[idx].Type
		}
	}
	e.SetTyped(t)
	return t
}

func (a *Analyzer) checkBinary(v *ast.BinaryExpr, scope *Scope) *types.Type {
	lt := a.checkExpr(v.Left, scope)
	rt := a.checkExpr(v.Right, scope)
	if lt == nil || rt == nil {
		return nil
	}

	switch v.Operator {
	case "+", "-", "*", "/", "%":
		if lt.Kind == types.KString || rt.Kind == types.KString {
			a.sink.Errorf(v.Pos(), "string concatenation is not supported; '+' on text is an error")
			return nil
		}
		if !lt.IsNumeric() || !rt.IsNumeric() {
			a.sink.Errorf(v.Pos(), "operator %q requires numeric operands, got %s and %s", v.Operator, types.Describe(lt), types.Describe(rt))
			return nil
		}
		if !lt.Equal(rt) {
			a.sink.Errorf(v.Pos(), "mismatched operand types %s and %s for %q; an explicit cast is required", types.Describe(lt), types.Describe(rt), v.Operator)
			return nil
		}
		return lt
	case "<", ">", "<=", ">=":
		if !lt.IsNumeric() || !rt.IsNumeric() {
			a.sink.Errorf(v.Pos(), "comparison %q requires numeric operands, got %s and %s", v.Operator, types.Describe(lt), types.Describe(rt))
		} else if !lt.Equal(rt) {
			a.sink.Errorf(v.Pos(), "comparison %q between mismatched numeric types %s and %s requires an explicit cast", v.Operator, types.Describe(lt), types.Describe(rt))
		} else {
			a.warnMixedSign(v)
		}
		return types.Bool
	case "==", "!=":
		if !lt.Equal(rt) {
			a.sink.Errorf(v.Pos(), "equality %q between mismatched types %s and %s", v.Operator, types.Describe(lt), types.Describe(rt))
		}
		return types.Bool
	default:
		return nil
	}
}

// warnMixedSign implements spec.md §4.3's "mixed-sign comparisons" warning:
// comparing a negative integer literal against a non-negative one is almost
// always a mistake in a language with no unsigned integer type to make the
// comparison meaningful.
func (a *Analyzer) warnMixedSign(v *ast.BinaryExpr) {
	lNeg, lIsLit := literalSign(v.Left)
	rNeg, rIsLit := literalSign(v.Right)
	if lIsLit && rIsLit && lNeg != rNeg {
		a.sink.Warningf(v.Pos(), "comparison between values of differing sign")
	}
}

func literalSign(e ast.Expression) (negative bool, isLiteral bool) {
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		return v.Value < 0, true
	case *ast.UnaryExpr:
		if v.Operator == "-" {
			if _, ok := v.Right.(*ast.IntegerLiteral); ok {
				return true, true
			}
		}
	}
	return false, false
}

func (a *Analyzer) checkCall(v *ast.CallExpr, scope *Scope) *types.Type {
	sym, ok := a.global.lookupLocal(v.Callee)
	if !ok || sym.Kind != SymFunc {
		a.sink.Errorf(v.Pos(), "call to undeclared function %q", v.Callee)
		for _, arg := range v.Args {
			a.checkExpr(arg, scope)
		}
		return nil
	}
	if len(v.Args) != len(sym.Params) {
		a.sink.Errorf(v.Pos(), "function %q expects %d argument(s), got %d", v.Callee, len(sym.Params), len(v.Args))
	}
	for i, arg := range v.Args {
		at := a.checkExpr(arg, scope)
		if i < len(sym.Params) && at != nil && sym.Params[i] != nil && !at.Equal(sym.Params[i]) {
			a.sink.Errorf(arg.Pos(), "argument %d to %q: expected %s, got %s", i+1, v.Callee, types.Describe(sym.Params[i]), types.Describe(at))
		}
	}
	return sym.ReturnType
}

// ---- shared helpers ------------------------------------------------------

func (a *Analyzer) requireBool(e ast.Expression, scope *Scope, what string) {
	t := a.checkExpr(e, scope)
	if t != nil && t.Kind != types.KBool {
		a.sink.Errorf(e.Pos(), "%s must be bool, got %s", what, types.Describe(t))
	}
	if lit, ok := e.(*ast.BoolLiteral); ok {
		word := "true"
		if !lit.Value {
			word = "false"
		}
		a.sink.Warningf(e.Pos(), "%s is always %s", what, word)
	}
}

func (a *Analyzer) requireAssignable(pos token.Position, target, value *types.Type) {
	if target == nil || value == nil {
		return
	}
	if !target.Equal(value) {
		a.sink.Errorf(pos, "cannot assign %s to %s; an explicit cast is required", types.Describe(value), types.Describe(target))
	}
}

func (a *Analyzer) markWrite(target ast.Expression, scope *Scope) {
	if id, ok := target.(*ast.Identifier); ok {
		if sym, found := scope.lookup(id.Value); found {
			sym.Writes++
			sym.Initialized = true
		}
	}
}

func (a *Analyzer) markRead(target ast.Expression, scope *Scope) {
	if id, ok := target.(*ast.Identifier); ok {
		if sym, found := scope.lookup(id.Value); found {
			sym.Reads++
		}
	}
}

// checkUnused emits the unused-variable / unused-parameter / write-never-
// read warnings for every symbol defined directly in scope (spec.md §4.3).
func (a *Analyzer) checkUnused(scope *Scope, includeParams bool) {
	for _, sym := range scope.all() {
		switch sym.Kind {
		case SymVar:
			if sym.Reads == 0 && sym.Writes <= 1 {
				a.sink.Warningf(sym.Pos, "unused variable %q", sym.Name)
			} else if sym.Reads == 0 {
				a.sink.Warningf(sym.Pos, "variable %q is assigned but never read", sym.Name)
			}
		case SymParam:
			if includeParams && sym.Reads == 0 {
				a.sink.Warningf(sym.Pos, "unused parameter %q", sym.Name)
			}
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
