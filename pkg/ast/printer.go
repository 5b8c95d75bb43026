package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Sexpr renders a node as a parenthesised prefix expression, e.g.
// `(+ 1 (* 2 3))`. It is used for parser tests and `valkyrie parse`.
func Sexpr(node Node) string {
	var b strings.Builder
	writeSexpr(&b, node)
	return b.String()
}

// SexprProgram renders each top-level statement on its own line.
func SexprProgram(program []Statement) string {
	lines := make([]string, 0, len(program))
	for _, stmt := range program {
		lines = append(lines, Sexpr(stmt))
	}
	return strings.Join(lines, "\n")
}

func writeSexpr(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("nil")
	case *NumberLiteral:
		b.WriteString(strconv.FormatFloat(n.Value, 'f', -1, 64))
	case *StringLiteral:
		b.WriteString(strconv.Quote(n.Value))
	case *BooleanLiteral:
		b.WriteString(strconv.FormatBool(n.Value))
	case *NilLiteral:
		b.WriteString("nil")
	case *Grouping:
		parenthesize(b, "group", n.Expression)
	case *UnaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Operand)
	case *BinaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *LogicalExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *Variable:
		b.WriteString(n.Name.Lexeme)
	case *AssignmentExpression:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *FunctionCall:
		nodes := append([]Node{n.Callee}, exprNodes(n.Arguments)...)
		parenthesize(b, "call", nodes...)
	case *GetExpression:
		parenthesize(b, "get "+n.Name.Lexeme, n.Object)
	case *SetExpression:
		parenthesize(b, "set "+n.Name.Lexeme, n.Object, n.Value)
	case *ThisExpression:
		b.WriteString(ThisName)
	case *SuperExpression:
		fmt.Fprintf(b, "(super %s)", n.Method.Lexeme)
	case *ExpressionStatement:
		parenthesize(b, ";", n.Expression)
	case *PrintStatement:
		parenthesize(b, "print", n.Expression)
	case *VarDeclaration:
		if n.Initializer == nil {
			fmt.Fprintf(b, "(var %s)", n.Name.Lexeme)
			return
		}
		parenthesize(b, "var "+n.Name.Lexeme, n.Initializer)
	case *BlockStatement:
		parenthesize(b, "block", stmtNodes(n.Body)...)
	case *IfStatement:
		if n.ElseBranch == nil {
			parenthesize(b, "if", n.Condition, n.ThenBranch)
			return
		}
		parenthesize(b, "if-else", n.Condition, n.ThenBranch, n.ElseBranch)
	case *WhileLoop:
		parenthesize(b, "while", n.Condition, n.Body)
	case *ReturnStatement:
		if n.Argument == nil {
			b.WriteString("(return)")
			return
		}
		parenthesize(b, "return", n.Argument)
	case *FunctionDeclaration:
		params := make([]string, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, p.Lexeme)
		}
		head := fmt.Sprintf("fun %s(%s)", n.Name.Lexeme, strings.Join(params, " "))
		parenthesize(b, head, stmtNodes(n.Body)...)
	case *ClassDeclaration:
		head := "class " + n.Name.Lexeme
		if n.Superclass != nil {
			head += " < " + n.Superclass.Name.Lexeme
		}
		nodes := make([]Node, 0, len(n.Methods))
		for _, m := range n.Methods {
			nodes = append(nodes, m)
		}
		parenthesize(b, head, nodes...)
	default:
		fmt.Fprintf(b, "<%s>", node.NodeType())
	}
}

func parenthesize(b *strings.Builder, head string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(head)
	for _, n := range nodes {
		b.WriteByte(' ')
		writeSexpr(b, n)
	}
	b.WriteByte(')')
}

func exprNodes(exprs []Expression) []Node {
	out := make([]Node, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, e)
	}
	return out
}

func stmtNodes(stmts []Statement) []Node {
	out := make([]Node, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s)
	}
	return out
}
