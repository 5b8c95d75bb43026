package interpreter

import (
	"log/slog"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return i.callValue(callee, args, call.Paren)
}

func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, paren ast.Token) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.invokeFunction(fn, args, paren)
	case runtime.NativeFunctionValue:
		if len(args) != fn.Arity() {
			return nil, runtimeErrorf(paren, "Function '%s' expects %d arguments, got %d", fn.Name, fn.Arity(), len(args))
		}
		i.logger.Debug("call function", slog.String("name", fn.Name), slog.Bool("native", true))
		result, err := fn.Impl(args)
		if err != nil {
			if _, ok := err.(*RuntimeError); ok {
				return nil, err
			}
			return nil, runtimeErrorf(paren, "%s", err.Error())
		}
		if result == nil {
			return runtime.NilValue{}, nil
		}
		return result, nil
	case *runtime.ClassValue:
		return i.instantiate(fn, args, paren)
	default:
		return nil, runtimeErrorf(paren, "Can only call functions and classes, got %s.", calleeKind(callee))
	}
}

// invokeFunction binds arguments in a frame nested under the function's
// closure, never under the caller's frame.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value, paren ast.Token) (runtime.Value, error) {
	decl := fn.Declaration
	if len(args) != len(decl.Params) {
		return nil, runtimeErrorf(paren, "Function '%s' expects %d arguments, got %d", fn.Name(), len(decl.Params), len(args))
	}
	if i.calls >= maxCallDepth {
		return nil, runtimeErrorf(paren, "Stack overflow.")
	}
	i.calls++
	defer func() { i.calls-- }()

	i.logger.Debug("call function", slog.String("name", fn.Name()), slog.Int("args", len(args)), slog.Int("calls", i.calls))

	frame := fn.Closure
	for _, kind := range ast.ScopesOpenedBy(decl) {
		frame = i.pushFrame(frame, kind)
		defer i.popFrame(kind)
	}
	for idx, param := range decl.Params {
		frame.Define(param.Lexeme, args[idx])
	}

	err := i.evaluateStatements(decl.Body, frame)
	if err != nil {
		ret, ok := err.(returnSignal)
		if !ok {
			return nil, err
		}
		if fn.IsInitializer {
			return i.receiverOf(fn, paren)
		}
		return ret.value, nil
	}
	if fn.IsInitializer {
		return i.receiverOf(fn, paren)
	}
	return runtime.NilValue{}, nil
}

// receiverOf returns the `this` bound in a method's receiver frame.
func (i *Interpreter) receiverOf(fn *runtime.FunctionValue, paren ast.Token) (runtime.Value, error) {
	this, ok := fn.Closure.Lookup(ast.ThisName)
	if !ok {
		return nil, runtimeErrorf(paren, "Initializer called without a receiver.")
	}
	return this, nil
}

func (i *Interpreter) instantiate(class *runtime.ClassValue, args []runtime.Value, paren ast.Token) (runtime.Value, error) {
	instance := runtime.NewInstance(class)
	initializer, ok := class.FindMethod(ast.InitializerName)
	if !ok {
		if len(args) != 0 {
			return nil, runtimeErrorf(paren, "Class '%s' expects 0 arguments, got %d", class.Name, len(args))
		}
		return instance, nil
	}
	if len(args) != initializer.Arity() {
		return nil, runtimeErrorf(paren, "Class '%s' expects %d arguments, got %d", class.Name, initializer.Arity(), len(args))
	}
	if _, err := i.invokeFunction(initializer.Bind(instance), args, paren); err != nil {
		return nil, err
	}
	return instance, nil
}

func calleeKind(val runtime.Value) string {
	if val == nil {
		return "nil"
	}
	return val.Kind().String()
}
