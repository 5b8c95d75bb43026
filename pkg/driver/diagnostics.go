package driver

import (
	"errors"
	"fmt"
	"strings"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/interpreter"
	"valkyrie/interpreter-go/pkg/parser"
	"valkyrie/interpreter-go/pkg/resolver"
	"valkyrie/interpreter-go/pkg/scanner"
)

// DiagnosticKind names the pipeline stage that rejected a program.
type DiagnosticKind string

const (
	KindLex     DiagnosticKind = "lex"
	KindSyntax  DiagnosticKind = "parse"
	KindResolve DiagnosticKind = "resolve"
	KindRuntime DiagnosticKind = "runtime"
	KindHost    DiagnosticKind = "host"
)

// Diagnostic is the structured form of any error a run can end with.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Lexeme  string
	AtEnd   bool
	Line    int
	Path    string
}

// DiagnosticError carries a Diagnostic through error returns while keeping
// the original stage error reachable via errors.As.
type DiagnosticError struct {
	Diagnostic Diagnostic
	Err        error
}

func (e *DiagnosticError) Error() string {
	return DescribeDiagnostic(e.Diagnostic)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

// Diagnose classifies err by pipeline stage. Errors from outside the
// pipeline (I/O, transliteration) become KindHost diagnostics.
func Diagnose(err error) Diagnostic {
	var diagErr *DiagnosticError
	if errors.As(err, &diagErr) {
		return diagErr.Diagnostic
	}
	var lexErr *scanner.Error
	if errors.As(err, &lexErr) {
		return Diagnostic{Kind: KindLex, Message: lexErr.Message, Line: lexErr.Line}
	}
	var syntaxErr *parser.Error
	if errors.As(err, &syntaxErr) {
		tok := syntaxErr.Token
		return Diagnostic{Kind: KindSyntax, Message: syntaxErr.Message, Lexeme: tok.Lexeme, AtEnd: tok.Type == ast.EOF, Line: tok.Line}
	}
	var resolveErr *resolver.Error
	if errors.As(err, &resolveErr) {
		tok := resolveErr.Token
		return Diagnostic{Kind: KindResolve, Message: resolveErr.Message, Lexeme: tok.Lexeme, Line: tok.Line}
	}
	var runtimeErr *interpreter.RuntimeError
	if errors.As(err, &runtimeErr) {
		tok := runtimeErr.Token
		return Diagnostic{Kind: KindRuntime, Message: runtimeErr.Message, Lexeme: tok.Lexeme, Line: tok.Line}
	}
	return Diagnostic{Kind: KindHost, Message: err.Error()}
}

// DescribeDiagnostic formats a diagnostic for CLI output:
// "<kind> error[ at '<lexeme>']: <message>" followed by "line <N>".
func DescribeDiagnostic(diag Diagnostic) string {
	message := strings.TrimSpace(diag.Message)
	if diag.Kind == KindHost {
		return message
	}
	var b strings.Builder
	b.WriteString(string(diag.Kind))
	b.WriteString(" error")
	switch {
	case diag.AtEnd:
		b.WriteString(" at end")
	case diag.Lexeme != "":
		fmt.Fprintf(&b, " at '%s'", diag.Lexeme)
	}
	b.WriteString(": ")
	b.WriteString(message)
	if location := formatDiagnosticLocation(diag.Path, diag.Line); location != "" {
		b.WriteString("\n")
		b.WriteString(location)
	}
	return b.String()
}

func formatDiagnosticLocation(path string, line int) string {
	path = strings.TrimSpace(path)
	switch {
	case path != "" && line > 0:
		return fmt.Sprintf("%s: line %d", path, line)
	case path != "":
		return path
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}

// withPath attaches the source path to a pipeline failure.
func withPath(err error, path string) error {
	if err == nil || path == "" {
		return err
	}
	diag := Diagnose(err)
	if diag.Kind == KindHost {
		return err
	}
	diag.Path = path
	return &DiagnosticError{Diagnostic: diag, Err: err}
}
