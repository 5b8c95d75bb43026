package resolver

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
)

func (r *Resolver) resolveExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BooleanLiteral, *ast.NilLiteral:
		return nil
	case *ast.Grouping:
		return r.resolveExpression(e.Expression)
	case *ast.UnaryExpression:
		return r.resolveExpression(e.Operand)
	case *ast.BinaryExpression:
		return r.resolvePair(e.Left, e.Right)
	case *ast.LogicalExpression:
		return r.resolvePair(e.Left, e.Right)
	case *ast.Variable:
		return r.resolveVariable(e)
	case *ast.AssignmentExpression:
		if err := r.resolveExpression(e.Value); err != nil {
			return err
		}
		if !r.resolveLocal(e, e.Name) {
			r.pending = append(r.pending, e.Name)
		}
		return nil
	case *ast.FunctionCall:
		if err := r.resolveExpression(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Arguments {
			if err := r.resolveExpression(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.GetExpression:
		return r.resolveExpression(e.Object)
	case *ast.SetExpression:
		return r.resolvePair(e.Object, e.Value)
	case *ast.ThisExpression:
		if r.currentClass == classNone {
			return &Error{Token: e.Keyword, Message: "Can't use 'this' outside of a class."}
		}
		r.resolveLocal(e, e.Keyword)
		return nil
	case *ast.SuperExpression:
		switch r.currentClass {
		case classNone:
			return &Error{Token: e.Keyword, Message: "Can't use 'super' outside of a class."}
		case classPlain:
			return &Error{Token: e.Keyword, Message: "Can't use 'super' in a class with no superclass."}
		}
		r.resolveLocal(e, e.Keyword)
		return nil
	default:
		return fmt.Errorf("resolver: unsupported expression %T", expr)
	}
}

// resolvePair resolves two subexpressions in evaluation order.
func (r *Resolver) resolvePair(first, second ast.Expression) error {
	if err := r.resolveExpression(first); err != nil {
		return err
	}
	return r.resolveExpression(second)
}

func (r *Resolver) resolveVariable(v *ast.Variable) error {
	if len(r.scopes) > 0 {
		if defined, ok := r.scopes[len(r.scopes)-1][v.Name.Lexeme]; ok && !defined {
			return &Error{Token: v.Name, Message: "Can't read local variable in its own initializer."}
		}
	} else if defined, ok := r.globals[v.Name.Lexeme]; ok && !defined {
		return &Error{Token: v.Name, Message: "Can't read global variable in its own initializer."}
	}
	r.resolveLocal(v, v.Name)
	return nil
}
