package cmd

import (
	"fmt"
	"strings"

	"github.com/patakha-lang/patakha/internal/ast"
)

// dumpAST renders prog as an indented tree, for --dump-ast. Grounded on the
// teacher's parse.go dumpASTNode: a type switch over the container node
// kinds that actually nest other nodes, falling back to a node's own
// String() for everything else -- not every AST node variant gets its own
// case, matching the teacher's non-exhaustive style.
func dumpAST(prog *ast.Program) string {
	var b strings.Builder
	for _, d := range prog.Decls {
		dumpASTNode(&b, d, 0)
	}
	if prog.Main != nil {
		fmt.Fprintf(&b, "shuru\n")
		dumpASTNode(&b, prog.Main, 1)
		fmt.Fprintf(&b, "bass\n")
	}
	return b.String()
}

// dumpASTDot renders prog's statement tree as a Graphviz dot graph, for
// --dump-ast-dot. Each node becomes a labeled vertex; edges follow the same
// containment relationships dumpASTNode walks.
func dumpASTDot(prog *ast.Program) string {
	var b strings.Builder
	b.WriteString("digraph ast {\n")
	id := 0
	next := func() int { id++; return id }
	root := next()
	fmt.Fprintf(&b, "  n%d [label=\"Program\"];\n", root)
	for _, d := range prog.Decls {
		dumpASTDotNode(&b, d, root, next)
	}
	if prog.Main != nil {
		main := next()
		fmt.Fprintf(&b, "  n%d [label=\"shuru..bass\"];\n  n%d -> n%d;\n", main, root, main)
		dumpASTDotNode(&b, prog.Main, main, next)
	}
	b.WriteString("}\n")
	return b.String()
}

func dumpASTDotNode(b *strings.Builder, node ast.Node, parent int, next func() int) {
	self := next()
	fmt.Fprintf(b, "  n%d [label=%q];\n  n%d -> n%d;\n", self, fmt.Sprintf("%T", node), parent, self)
	switch n := node.(type) {
	case *ast.BlockStmt:
		for _, stmt := range n.Statements {
			dumpASTDotNode(b, stmt, self, next)
		}
	case *ast.FuncDecl:
		dumpASTDotNode(b, n.Body, self, next)
	case *ast.IfStmt:
		dumpASTDotNode(b, n.Then, self, next)
		if n.Else != nil {
			dumpASTDotNode(b, n.Else, self, next)
		}
	case *ast.WhileStmt:
		dumpASTDotNode(b, n.Body, self, next)
	case *ast.DoWhileStmt:
		dumpASTDotNode(b, n.Body, self, next)
	case *ast.ForStmt:
		dumpASTDotNode(b, n.Body, self, next)
	case *ast.SwitchStmt:
		for _, c := range n.Cases {
			for _, stmt := range c.Body {
				dumpASTDotNode(b, stmt, self, next)
			}
		}
	}
}

func dumpASTNode(b *strings.Builder, node ast.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n := node.(type) {
	case *ast.BlockStmt:
		for _, stmt := range n.Statements {
			dumpASTNode(b, stmt, indent)
		}
	case *ast.FuncDecl:
		fmt.Fprintf(b, "%sFuncDecl %s\n", pad, n.Name)
		dumpASTNode(b, n.Body, indent+1)
	case *ast.IfStmt:
		fmt.Fprintf(b, "%sIfStmt %s\n", pad, n.Condition.String())
		dumpASTNode(b, n.Then, indent+1)
		if n.Else != nil {
			fmt.Fprintf(b, "%sElse\n", pad)
			dumpASTNode(b, n.Else, indent+1)
		}
	case *ast.WhileStmt:
		fmt.Fprintf(b, "%sWhileStmt %s\n", pad, n.Condition.String())
		dumpASTNode(b, n.Body, indent+1)
	case *ast.DoWhileStmt:
		fmt.Fprintf(b, "%sDoWhileStmt %s\n", pad, n.Condition.String())
		dumpASTNode(b, n.Body, indent+1)
	case *ast.ForStmt:
		fmt.Fprintf(b, "%sForStmt\n", pad)
		dumpASTNode(b, n.Body, indent+1)
	case *ast.SwitchStmt:
		fmt.Fprintf(b, "%sSwitchStmt %s\n", pad, n.Discriminant.String())
		for _, c := range n.Cases {
			fmt.Fprintf(b, "%s  case:\n", pad)
			for _, stmt := range c.Body {
				dumpASTNode(b, stmt, indent+2)
			}
		}
	default:
		fmt.Fprintf(b, "%s%T: %s\n", pad, node, node.String())
	}
}
