package interpreter

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NilLiteral:
		return runtime.NilValue{}, nil
	case *ast.Grouping:
		return i.evaluateExpression(n.Expression, env)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.LogicalExpression:
		return i.evaluateLogicalExpression(n, env)
	case *ast.Variable:
		return i.lookUpVariable(n.Name, n, env)
	case *ast.AssignmentExpression:
		return i.evaluateAssignmentExpression(n, env)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, env)
	case *ast.GetExpression:
		return i.evaluateGetExpression(n, env)
	case *ast.SetExpression:
		return i.evaluateSetExpression(n, env)
	case *ast.ThisExpression:
		return i.lookUpVariable(n.Keyword, n, env)
	case *ast.SuperExpression:
		return i.evaluateSuperExpression(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

// lookUpVariable reads a resolved local from exactly the frame the resolver
// chose, or falls back to the global frame for unresolved names.
func (i *Interpreter) lookUpVariable(name ast.Token, expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if distance, ok := i.locals[expr]; ok {
		val, err := env.GetAt(distance, name.Lexeme)
		if err != nil {
			return nil, runtimeErrorf(name, "%s", err.Error())
		}
		return val, nil
	}
	if val, ok := i.global.Lookup(name.Lexeme); ok {
		return val, nil
	}
	return nil, runtimeErrorf(name, "Undefined variable '%s'.", name.Lexeme)
}

func (i *Interpreter) evaluateAssignmentExpression(assign *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evaluateExpression(assign.Value, env)
	if err != nil {
		return nil, err
	}
	if distance, ok := i.locals[assign]; ok {
		if err := env.AssignAt(distance, assign.Name.Lexeme, value); err != nil {
			return nil, runtimeErrorf(assign.Name, "%s", err.Error())
		}
		return value, nil
	}
	if _, ok := i.global.Lookup(assign.Name.Lexeme); !ok {
		return nil, runtimeErrorf(assign.Name, "Assignment to undeclared variable '%s'.", assign.Name.Lexeme)
	}
	i.global.Define(assign.Name.Lexeme, value)
	return value, nil
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator.Type {
	case ast.Bang:
		return runtime.BoolValue{Val: !isTruthy(operand)}, nil
	case ast.Minus:
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, runtimeErrorf(expr.Operator, "Operand of '-' must be a number, got %s.", operand.Kind())
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	default:
		return nil, runtimeErrorf(expr.Operator, "Unsupported unary operator '%s'.", expr.Operator.Lexeme)
	}
}

// evaluateLogicalExpression returns the deciding operand itself, not a
// boolean, and never evaluates the right side once the left decides.
func (i *Interpreter) evaluateLogicalExpression(expr *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	if expr.Operator.Type == ast.Or {
		if isTruthy(left) {
			return left, nil
		}
	} else if !isTruthy(left) {
		return left, nil
	}
	return i.evaluateExpression(expr.Right, env)
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}

	op := expr.Operator
	switch op.Type {
	case ast.EqualEqual:
		return runtime.BoolValue{Val: valuesEqual(left, right)}, nil
	case ast.BangEqual:
		return runtime.BoolValue{Val: !valuesEqual(left, right)}, nil
	case ast.Plus:
		return addValues(op, left, right)
	}

	l, r, err := numberOperands(op, left, right)
	if err != nil {
		return nil, err
	}
	switch op.Type {
	case ast.Minus:
		return runtime.NumberValue{Val: l - r}, nil
	case ast.Star:
		return runtime.NumberValue{Val: l * r}, nil
	case ast.Slash:
		if r == 0 {
			return nil, runtimeErrorf(op, "Division by zero.")
		}
		return runtime.NumberValue{Val: l / r}, nil
	case ast.Greater:
		return runtime.BoolValue{Val: l > r}, nil
	case ast.GreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	case ast.Less:
		return runtime.BoolValue{Val: l < r}, nil
	case ast.LessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, runtimeErrorf(op, "Unsupported binary operator '%s'.", op.Lexeme)
	}
}

// addValues adds two numbers, or concatenates display text when either side
// is a string.
func addValues(op ast.Token, left, right runtime.Value) (runtime.Value, error) {
	ln, lok := left.(runtime.NumberValue)
	rn, rok := right.(runtime.NumberValue)
	if lok && rok {
		return runtime.NumberValue{Val: ln.Val + rn.Val}, nil
	}
	_, ls := left.(runtime.StringValue)
	_, rs := right.(runtime.StringValue)
	if ls || rs {
		return runtime.StringValue{Val: valueToString(left) + valueToString(right)}, nil
	}
	return nil, runtimeErrorf(op, "Operands of '+' must be numbers or strings, got %s and %s.", left.Kind(), right.Kind())
}

func numberOperands(op ast.Token, left, right runtime.Value) (float64, float64, error) {
	l, ok := left.(runtime.NumberValue)
	if !ok {
		return 0, 0, runtimeErrorf(op, "Left operand of '%s' must be a number, got %s.", op.Lexeme, left.Kind())
	}
	r, ok := right.(runtime.NumberValue)
	if !ok {
		return 0, 0, runtimeErrorf(op, "Right operand of '%s' must be a number, got %s.", op.Lexeme, right.Kind())
	}
	return l.Val, r.Val, nil
}

// valuesEqual never fails: mismatched kinds are simply unequal, and
// reference values compare by identity.
func valuesEqual(left, right runtime.Value) bool {
	switch l := left.(type) {
	case runtime.NilValue:
		_, ok := right.(runtime.NilValue)
		return ok
	case runtime.BoolValue:
		r, ok := right.(runtime.BoolValue)
		return ok && l.Val == r.Val
	case runtime.NumberValue:
		r, ok := right.(runtime.NumberValue)
		return ok && l.Val == r.Val
	case runtime.StringValue:
		r, ok := right.(runtime.StringValue)
		return ok && l.Val == r.Val
	case runtime.NativeFunctionValue:
		r, ok := right.(runtime.NativeFunctionValue)
		return ok && l.Name == r.Name
	case *runtime.FunctionValue:
		r, ok := right.(*runtime.FunctionValue)
		return ok && l == r
	case *runtime.ClassValue:
		r, ok := right.(*runtime.ClassValue)
		return ok && l == r
	case *runtime.InstanceValue:
		r, ok := right.(*runtime.InstanceValue)
		return ok && l == r
	default:
		return false
	}
}

func (i *Interpreter) evaluateGetExpression(expr *ast.GetExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtimeErrorf(expr.Name, "Only instances have properties.")
	}
	val, ok := instance.Get(expr.Name.Lexeme)
	if !ok {
		return nil, runtimeErrorf(expr.Name, "Undefined property '%s'.", expr.Name.Lexeme)
	}
	return val, nil
}

func (i *Interpreter) evaluateSetExpression(expr *ast.SetExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtimeErrorf(expr.Name, "Only instances have fields.")
	}
	value, err := i.evaluateExpression(expr.Value, env)
	if err != nil {
		return nil, err
	}
	instance.Set(expr.Name.Lexeme, value)
	return value, nil
}

// evaluateSuperExpression finds `super` at its resolved distance; `this` is
// always bound in the receiver frame one link closer.
func (i *Interpreter) evaluateSuperExpression(expr *ast.SuperExpression, env *runtime.Environment) (runtime.Value, error) {
	distance, ok := i.locals[expr]
	if !ok {
		return nil, runtimeErrorf(expr.Keyword, "Unresolved 'super'.")
	}
	superVal, err := env.GetAt(distance, ast.SuperName)
	if err != nil {
		return nil, runtimeErrorf(expr.Keyword, "%s", err.Error())
	}
	receiver, err := env.GetAt(distance-1, ast.ThisName)
	if err != nil {
		return nil, runtimeErrorf(expr.Keyword, "%s", err.Error())
	}
	superclass, ok := superVal.(*runtime.ClassValue)
	if !ok {
		return nil, runtimeErrorf(expr.Keyword, "Superclass must be a class.")
	}
	instance, ok := receiver.(*runtime.InstanceValue)
	if !ok {
		return nil, runtimeErrorf(expr.Keyword, "Can't use 'super' without a receiver.")
	}
	method, ok := superclass.FindMethod(expr.Method.Lexeme)
	if !ok {
		return nil, runtimeErrorf(expr.Method, "Undefined property '%s'.", expr.Method.Lexeme)
	}
	return method.Bind(instance), nil
}
