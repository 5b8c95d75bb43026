package ast

import "fmt"

// TokenType identifies the lexeme class of a token.
type TokenType int

const (
	// Single-character tokens.
	LeftParen TokenType = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	IdentifierToken
	StringToken
	NumberToken

	// Keywords.
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	EOF
)

var tokenTypeNames = map[TokenType]string{
	LeftParen:       "(",
	RightParen:      ")",
	LeftBrace:       "{",
	RightBrace:      "}",
	Comma:           ",",
	Dot:             ".",
	Minus:           "-",
	Plus:            "+",
	Semicolon:       ";",
	Slash:           "/",
	Star:            "*",
	Bang:            "!",
	BangEqual:       "!=",
	Equal:           "=",
	EqualEqual:      "==",
	Greater:         ">",
	GreaterEqual:    ">=",
	Less:            "<",
	LessEqual:       "<=",
	IdentifierToken: "identifier",
	StringToken:     "string",
	NumberToken:     "number",
	And:             "and",
	Class:           "class",
	Else:            "else",
	False:           "false",
	Fun:             "fun",
	For:             "for",
	If:              "if",
	Nil:             "nil",
	Or:              "or",
	Print:           "print",
	Return:          "return",
	Super:           "super",
	This:            "this",
	True:            "true",
	Var:             "var",
	While:           "while",
	EOF:             "end of file",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token_%d", int(t))
}

// Keywords maps reserved words to their token types.
var Keywords = map[string]TokenType{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// LookupIdentifier classifies a scanned identifier as a keyword or plain identifier.
func LookupIdentifier(lexeme string) TokenType {
	if tt, ok := Keywords[lexeme]; ok {
		return tt
	}
	return IdentifierToken
}

// Token is an immutable lexeme produced by the scanner. Literal holds the
// decoded value for string (string) and number (float64) tokens.
type Token struct {
	Type    TokenType `json:"type"`
	Lexeme  string    `json:"lexeme"`
	Literal any       `json:"literal,omitempty"`
	Line    int       `json:"line"`
}

// NewToken builds a token without a literal payload.
func NewToken(tt TokenType, lexeme string, line int) Token {
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
}

// Location renders the " at ..." fragment that token-anchored diagnostics
// place after their kind.
func (t Token) Location() string {
	if t.Type == EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", t.Lexeme)
}
