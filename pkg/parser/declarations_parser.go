package parser

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
)

func (p *Parser) declaration() (ast.Statement, error) {
	switch {
	case p.match(ast.Class):
		return p.classDeclaration()
	case p.match(ast.Fun):
		return p.function("function")
	case p.match(ast.Var):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) classDeclaration() (ast.Statement, error) {
	name, err := p.consume(ast.IdentifierToken, "Expect class name.")
	if err != nil {
		return nil, err
	}

	var superclass *ast.Variable
	if p.match(ast.Less) {
		superName, err := p.consume(ast.IdentifierToken, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		superclass = ast.NewVariable(superName)
	}

	if _, err := p.consume(ast.LeftBrace, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	methods := make([]*ast.FunctionDeclaration, 0)
	for !p.check(ast.RightBrace) && !p.isAtEnd() {
		method, err := p.function("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := p.consume(ast.RightBrace, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return ast.NewClassDeclaration(name, superclass, methods), nil
}

// function parses the part of a function or method after `fun`.
func (p *Parser) function(kind string) (*ast.FunctionDeclaration, error) {
	name, err := p.consume(ast.IdentifierToken, fmt.Sprintf("Expect %s name.", kind))
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(ast.LeftParen, fmt.Sprintf("Expect '(' after %s name.", kind)); err != nil {
		return nil, err
	}

	params := make([]ast.Token, 0)
	if !p.check(ast.RightParen) {
		for {
			if len(params) >= MaxArguments {
				return nil, p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", MaxArguments))
			}
			param, err := p.consume(ast.IdentifierToken, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(ast.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(ast.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}

	if _, err := p.consume(ast.LeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind)); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionDeclaration(name, params, body), nil
}

func (p *Parser) varDeclaration() (ast.Statement, error) {
	name, err := p.consume(ast.IdentifierToken, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var initializer ast.Expression
	if p.match(ast.Equal) {
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(ast.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return ast.NewVarDeclaration(name, initializer), nil
}
