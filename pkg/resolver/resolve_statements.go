package resolver

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
)

func (r *Resolver) resolveStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := r.resolveStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return r.resolveExpression(s.Expression)
	case *ast.PrintStatement:
		return r.resolveExpression(s.Expression)
	case *ast.VarDeclaration:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		if s.Initializer != nil {
			if err := r.resolveExpression(s.Initializer); err != nil {
				return err
			}
		}
		r.define(s.Name)
		return nil
	case *ast.BlockStatement:
		opened := r.enter(s)
		defer r.leave(opened)
		return r.resolveStatements(s.Body)
	case *ast.IfStatement:
		if err := r.resolveExpression(s.Condition); err != nil {
			return err
		}
		if err := r.resolveStatement(s.ThenBranch); err != nil {
			return err
		}
		if s.ElseBranch != nil {
			return r.resolveStatement(s.ElseBranch)
		}
		return nil
	case *ast.WhileLoop:
		if err := r.resolveExpression(s.Condition); err != nil {
			return err
		}
		return r.resolveStatement(s.Body)
	case *ast.FunctionDeclaration:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name)
		return r.resolveFunction(s, functionPlain)
	case *ast.ReturnStatement:
		return r.resolveReturn(s)
	case *ast.ClassDeclaration:
		return r.resolveClass(s)
	default:
		return fmt.Errorf("resolver: unsupported statement %T", stmt)
	}
}

func (r *Resolver) resolveFunction(decl *ast.FunctionDeclaration, kind functionType) error {
	enclosing := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosing }()

	opened := r.enter(decl)
	defer r.leave(opened)

	for _, param := range decl.Params {
		if err := r.declare(param); err != nil {
			return err
		}
		r.define(param)
	}
	return r.resolveStatements(decl.Body)
}

func (r *Resolver) resolveReturn(stmt *ast.ReturnStatement) error {
	if r.currentFunction == functionNone {
		return &Error{Token: stmt.Keyword, Message: "Can't return from top-level code."}
	}
	if stmt.Argument == nil {
		return nil
	}
	if r.currentFunction == functionInitializer {
		return &Error{Token: stmt.Keyword, Message: "Can't return a value from an initializer."}
	}
	return r.resolveExpression(stmt.Argument)
}

func (r *Resolver) resolveClass(decl *ast.ClassDeclaration) error {
	enclosing := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosing }()

	if err := r.declare(decl.Name); err != nil {
		return err
	}
	r.define(decl.Name)

	if decl.Superclass != nil {
		if decl.Superclass.Name.Lexeme == decl.Name.Lexeme {
			return &Error{Token: decl.Superclass.Name, Message: "A class can't inherit from itself."}
		}
		r.currentClass = classSubclass
		if err := r.resolveExpression(decl.Superclass); err != nil {
			return err
		}
	}

	opened := r.enter(decl)
	defer r.leave(opened)

	for _, method := range decl.Methods {
		kind := functionMethod
		if method.Name.Lexeme == ast.InitializerName {
			kind = functionInitializer
		}
		if err := r.resolveFunction(method, kind); err != nil {
			return err
		}
	}
	return nil
}
