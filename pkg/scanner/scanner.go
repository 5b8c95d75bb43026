// Package scanner turns Valkyrie source text into a flat token sequence.
//
// Scanning is a single left-to-right pass over runes. Whitespace and
// comments are dropped, operators are matched longest-first, identifiers are
// classified against the keyword table after they are read in full, and an
// EOF token is always appended so the parser never has to bounds-check.
package scanner

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"valkyrie/interpreter-go/pkg/ast"
)

// Error is a lexical failure. Scanning stops at the first one.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error: %s\nline %d", e.Message, e.Line)
}

// Scanner holds the state for tokenising one source string.
type Scanner struct {
	source  string
	tokens  []ast.Token
	start   int
	current int
	line    int
}

// New creates a scanner positioned at the start of source.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Scan is a convenience wrapper around New(source).ScanTokens().
func Scan(source string) ([]ast.Token, error) {
	return New(source).ScanTokens()
}

// ScanTokens consumes the whole input and returns its tokens, EOF last.
func (s *Scanner) ScanTokens() ([]ast.Token, error) {
	for !s.isAtEnd() {
		s.start = s.current
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, ast.NewToken(ast.EOF, "", s.line))
	return s.tokens, nil
}

func (s *Scanner) scanToken() error {
	r := s.advance()
	switch r {
	case '(':
		s.addToken(ast.LeftParen)
	case ')':
		s.addToken(ast.RightParen)
	case '{':
		s.addToken(ast.LeftBrace)
	case '}':
		s.addToken(ast.RightBrace)
	case ',':
		s.addToken(ast.Comma)
	case '.':
		s.addToken(ast.Dot)
	case '-':
		s.addToken(ast.Minus)
	case '+':
		s.addToken(ast.Plus)
	case ';':
		s.addToken(ast.Semicolon)
	case '*':
		s.addToken(ast.Star)
	case '!':
		s.addToken(s.either('=', ast.BangEqual, ast.Bang))
	case '=':
		s.addToken(s.either('=', ast.EqualEqual, ast.Equal))
	case '<':
		s.addToken(s.either('=', ast.LessEqual, ast.Less))
	case '>':
		s.addToken(s.either('=', ast.GreaterEqual, ast.Greater))
	case '/':
		switch {
		case s.match('/'):
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		case s.match('*'):
			return s.blockComment()
		default:
			s.addToken(ast.Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		return s.string()
	default:
		switch {
		case isDigit(r):
			return s.number()
		case isIdentifierStart(r):
			s.identifier()
		case r == utf8.RuneError && s.current-s.start == 1:
			return s.errorf("Invalid UTF-8 encoding.")
		default:
			return s.errorf("Unexpected character '%c'.", r)
		}
	}
	return nil
}

func (s *Scanner) blockComment() error {
	startLine := s.line
	for !s.isAtEnd() {
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			return nil
		}
		if s.advance() == '\n' {
			s.line++
		}
	}
	return &Error{Line: startLine, Message: "Unterminated block comment."}
}

func (s *Scanner) string() error {
	startLine := s.line
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return &Error{Line: startLine, Message: "Unterminated string."}
	}
	s.advance()

	value := s.source[s.start+1 : s.current-1]
	s.addLiteral(ast.StringToken, value)
	return nil
}

func (s *Scanner) number() error {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	lexeme := s.source[s.start:s.current]
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return s.errorf("Invalid number literal '%s'.", lexeme)
	}
	s.addLiteral(ast.NumberToken, value)
	return nil
}

func (s *Scanner) identifier() {
	for isIdentifierPart(s.peek()) {
		s.advance()
	}
	s.addToken(ast.LookupIdentifier(s.source[s.start:s.current]))
}

func (s *Scanner) either(expected rune, matched, otherwise ast.TokenType) ast.TokenType {
	if s.match(expected) {
		return matched
	}
	return otherwise
}

func (s *Scanner) match(expected rune) bool {
	if s.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(s.source[s.current:])
	if r != expected {
		return false
	}
	s.current += size
	return true
}

func (s *Scanner) advance() rune {
	r, size := utf8.DecodeRuneInString(s.source[s.current:])
	s.current += size
	return r
}

func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.source[s.current:])
	return r
}

func (s *Scanner) peekNext() rune {
	if s.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(s.source[s.current:])
	if s.current+size >= len(s.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.source[s.current+size:])
	return r
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) addToken(tt ast.TokenType) {
	s.tokens = append(s.tokens, ast.NewToken(tt, s.source[s.start:s.current], s.line))
}

func (s *Scanner) addLiteral(tt ast.TokenType, literal any) {
	tok := ast.NewToken(tt, s.source[s.start:s.current], s.line)
	tok.Literal = literal
	s.tokens = append(s.tokens, tok)
}

func (s *Scanner) errorf(format string, args ...any) error {
	return &Error{Line: s.line, Message: fmt.Sprintf(format, args...)}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
