package parser

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
)

func (p *Parser) expression() (ast.Expression, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expression, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.match(ast.Equal) {
		return expr, nil
	}

	equals := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	switch target := expr.(type) {
	case *ast.Variable:
		return ast.NewAssignmentExpression(target.Name, value), nil
	case *ast.GetExpression:
		return ast.NewSetExpression(target.Object, target.Name, value), nil
	default:
		return nil, p.errorAt(equals, "Invalid assignment target.")
	}
}

func (p *Parser) or() (ast.Expression, error) {
	return p.logical(p.and, ast.Or)
}

func (p *Parser) and() (ast.Expression, error) {
	return p.logical(p.equality, ast.And)
}

func (p *Parser) equality() (ast.Expression, error) {
	return p.binary(p.comparison, ast.BangEqual, ast.EqualEqual)
}

func (p *Parser) comparison() (ast.Expression, error) {
	return p.binary(p.term, ast.Greater, ast.GreaterEqual, ast.Less, ast.LessEqual)
}

func (p *Parser) term() (ast.Expression, error) {
	return p.binary(p.factor, ast.Minus, ast.Plus)
}

func (p *Parser) factor() (ast.Expression, error) {
	return p.binary(p.unary, ast.Slash, ast.Star)
}

// binary parses a left-associative chain of operands joined by operators.
func (p *Parser) binary(operand func() (ast.Expression, error), operators ...ast.TokenType) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(operators...) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) logical(operand func() (ast.Expression, error), operator ast.TokenType) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(operator) {
		op := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpression(expr, op, right)
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.match(ast.Bang, ast.Minus) {
		operator := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(operator, operand), nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(ast.LeftParen):
			if expr, err = p.finishCall(expr); err != nil {
				return nil, err
			}
		case p.match(ast.Dot):
			name, err := p.consume(ast.IdentifierToken, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = ast.NewGetExpression(expr, name)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	args := make([]ast.Expression, 0)
	if !p.check(ast.RightParen) {
		for {
			if len(args) >= MaxArguments {
				return nil, p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", MaxArguments))
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(ast.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(ast.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionCall(callee, paren, args), nil
}

func (p *Parser) primary() (ast.Expression, error) {
	switch {
	case p.match(ast.False):
		return ast.NewBooleanLiteral(false), nil
	case p.match(ast.True):
		return ast.NewBooleanLiteral(true), nil
	case p.match(ast.Nil):
		return ast.NewNilLiteral(), nil
	case p.match(ast.NumberToken):
		value, _ := p.previous().Literal.(float64)
		return ast.NewNumberLiteral(value), nil
	case p.match(ast.StringToken):
		value, _ := p.previous().Literal.(string)
		return ast.NewStringLiteral(value), nil
	case p.match(ast.This):
		return ast.NewThisExpression(p.previous()), nil
	case p.match(ast.Super):
		keyword := p.previous()
		if _, err := p.consume(ast.Dot, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(ast.IdentifierToken, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		return ast.NewSuperExpression(keyword, method), nil
	case p.match(ast.IdentifierToken):
		return ast.NewVariable(p.previous()), nil
	case p.match(ast.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(ast.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return ast.NewGrouping(expr), nil
	default:
		return nil, p.errorAt(p.peek(), "Expect expression.")
	}
}
