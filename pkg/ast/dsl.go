package ast

// Token helpers. Lines default to 1; tests that care use the constructors directly.

func Tok(tt TokenType, lexeme string) Token {
	return NewToken(tt, lexeme, 1)
}

func Ident(name string) Token {
	return NewToken(IdentifierToken, name, 1)
}

func Op(tt TokenType) Token {
	return NewToken(tt, tt.String(), 1)
}

// Literal helpers.

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func NilLit() *NilLiteral {
	return NewNilLiteral()
}

// Expression helpers.

func ID(name string) *Variable {
	return NewVariable(Ident(name))
}

func Group(expr Expression) *Grouping {
	return NewGrouping(expr)
}

func Un(op TokenType, operand Expression) *UnaryExpression {
	return NewUnaryExpression(Op(op), operand)
}

func Bin(op TokenType, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(left, Op(op), right)
}

func Logic(op TokenType, left, right Expression) *LogicalExpression {
	return NewLogicalExpression(left, Op(op), right)
}

func Assign(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(Ident(name), value)
}

func Call(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, Op(RightParen), args)
}

func CallNamed(name string, args ...Expression) *FunctionCall {
	return Call(ID(name), args...)
}

func Get(object Expression, name string) *GetExpression {
	return NewGetExpression(object, Ident(name))
}

func Set(object Expression, name string, value Expression) *SetExpression {
	return NewSetExpression(object, Ident(name), value)
}

func ThisExpr() *ThisExpression {
	return NewThisExpression(Tok(This, ThisName))
}

func SuperExpr(method string) *SuperExpression {
	return NewSuperExpression(Tok(Super, SuperName), Ident(method))
}

// Statement helpers.

func ExprStmt(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func PrintStmt(expr Expression) *PrintStatement {
	return NewPrintStatement(expr)
}

func VarDecl(name string, initializer Expression) *VarDeclaration {
	return NewVarDeclaration(Ident(name), initializer)
}

func Block(body ...Statement) *BlockStatement {
	return NewBlockStatement(body)
}

func IfStmt(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return NewIfStatement(condition, thenBranch, elseBranch)
}

func WhileStmt(condition Expression, body Statement) *WhileLoop {
	return NewWhileLoop(condition, body)
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(Tok(Return, "return"), argument)
}

func Fn(name string, params []string, body ...Statement) *FunctionDeclaration {
	tokens := make([]Token, 0, len(params))
	for _, p := range params {
		tokens = append(tokens, Ident(p))
	}
	return NewFunctionDeclaration(Ident(name), tokens, body)
}

func ClassDecl(name string, superclass string, methods ...*FunctionDeclaration) *ClassDeclaration {
	var super *Variable
	if superclass != "" {
		super = ID(superclass)
	}
	return NewClassDeclaration(Ident(name), super, methods)
}

func Program(stmts ...Statement) []Statement {
	return stmts
}
