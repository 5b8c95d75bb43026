package parser

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/scanner"
)

// MaxArguments bounds both call arguments and declared parameters.
const MaxArguments = 255

// Error is a syntax error anchored at the offending token.
type Error struct {
	Token   ast.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error%s: %s\nline %d", e.Token.Location(), e.Message, e.Token.Line)
}

// Parser is a recursive-descent parser over a scanned token slice. It has no
// error recovery: the first malformed construct aborts the parse.
type Parser struct {
	tokens  []ast.Token
	current int
}

// New constructs a parser. tokens must end with an EOF token, as produced by
// the scanner.
func New(tokens []ast.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != ast.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, ast.NewToken(ast.EOF, "", line))
	}
	return &Parser{tokens: tokens}
}

// ParseSource scans and parses source text in one step.
func ParseSource(source string) ([]ast.Statement, error) {
	tokens, err := scanner.Scan(source)
	if err != nil {
		return nil, err
	}
	return New(tokens).Parse()
}

// Parse consumes every token and returns the program's top-level statements.
func (p *Parser) Parse() ([]ast.Statement, error) {
	program := make([]ast.Statement, 0)
	for !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}
	return program, nil
}

func (p *Parser) match(types ...ast.TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tt ast.TokenType, message string) (ast.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return ast.Token{}, p.errorAt(p.peek(), message)
}

func (p *Parser) check(tt ast.TokenType) bool {
	if p.isAtEnd() {
		return tt == ast.EOF
	}
	return p.peek().Type == tt
}

func (p *Parser) advance() ast.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == ast.EOF
}

func (p *Parser) peek() ast.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() ast.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) errorAt(tok ast.Token, message string) error {
	return &Error{Token: tok, Message: message}
}
