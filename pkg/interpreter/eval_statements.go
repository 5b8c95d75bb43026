package interpreter

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) error {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		_, err := i.evaluateExpression(n.Expression, env)
		return err
	case *ast.PrintStatement:
		val, err := i.evaluateExpression(n.Expression, env)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(i.out, valueToString(val))
		return err
	case *ast.VarDeclaration:
		return i.evaluateVarDeclaration(n, env)
	case *ast.BlockStatement:
		return i.evaluateBlock(n, env)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.WhileLoop:
		return i.evaluateWhileLoop(n, env)
	case *ast.FunctionDeclaration:
		env.Define(n.Name.Lexeme, &runtime.FunctionValue{Declaration: n, Closure: env})
		return nil
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env)
	case *ast.ClassDeclaration:
		return i.evaluateClassDeclaration(n, env)
	default:
		return fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateStatements(stmts []ast.Statement, env *runtime.Environment) error {
	for _, stmt := range stmts {
		if err := i.evaluateStatement(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluateVarDeclaration(decl *ast.VarDeclaration, env *runtime.Environment) error {
	var value runtime.Value = runtime.NilValue{}
	if decl.Initializer != nil {
		val, err := i.evaluateExpression(decl.Initializer, env)
		if err != nil {
			return err
		}
		value = val
	}
	env.Define(decl.Name.Lexeme, value)
	return nil
}

// evaluateBlock runs the body in a child frame. The caller's env is untouched,
// so leaving the block (normally, by return, or by error) restores it.
func (i *Interpreter) evaluateBlock(block *ast.BlockStatement, env *runtime.Environment) error {
	frame := env
	for _, kind := range ast.ScopesOpenedBy(block) {
		frame = i.pushFrame(frame, kind)
		defer i.popFrame(kind)
	}
	return i.evaluateStatements(block.Body, frame)
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, env *runtime.Environment) error {
	cond, err := i.evaluateExpression(stmt.Condition, env)
	if err != nil {
		return err
	}
	if isTruthy(cond) {
		return i.evaluateStatement(stmt.ThenBranch, env)
	}
	if stmt.ElseBranch != nil {
		return i.evaluateStatement(stmt.ElseBranch, env)
	}
	return nil
}

func (i *Interpreter) evaluateWhileLoop(loop *ast.WhileLoop, env *runtime.Environment) error {
	for {
		cond, err := i.evaluateExpression(loop.Condition, env)
		if err != nil {
			return err
		}
		if !isTruthy(cond) {
			return nil
		}
		if err := i.evaluateStatement(loop.Body, env); err != nil {
			return err
		}
	}
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, env *runtime.Environment) error {
	var result runtime.Value = runtime.NilValue{}
	if stmt.Argument != nil {
		val, err := i.evaluateExpression(stmt.Argument, env)
		if err != nil {
			return err
		}
		result = val
	}
	return returnSignal{keyword: stmt.Keyword, value: result}
}

func (i *Interpreter) evaluateClassDeclaration(decl *ast.ClassDeclaration, env *runtime.Environment) error {
	var superclass *runtime.ClassValue
	if decl.Superclass != nil {
		val, err := i.evaluateExpression(decl.Superclass, env)
		if err != nil {
			return err
		}
		class, ok := val.(*runtime.ClassValue)
		if !ok {
			return runtimeErrorf(decl.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	// Methods close over a frame binding `super` when the class has one; the
	// receiver frame binding `this` is added per instance by Bind.
	methodEnv := env
	if ast.OpensScope(decl, ast.ScopeSuperclass) {
		methodEnv = runtime.NewEnvironment(env)
		methodEnv.Define(ast.ScopeSuperclass.ImplicitName(), superclass)
	}

	methods := make(map[string]*runtime.FunctionValue, len(decl.Methods))
	for _, method := range decl.Methods {
		methods[method.Name.Lexeme] = &runtime.FunctionValue{
			Declaration:   method,
			Closure:       methodEnv,
			IsInitializer: method.Name.Lexeme == ast.InitializerName,
		}
	}

	env.Define(decl.Name.Lexeme, &runtime.ClassValue{
		Name:       decl.Name.Lexeme,
		Superclass: superclass,
		Methods:    methods,
	})
	return nil
}
