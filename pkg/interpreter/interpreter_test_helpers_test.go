package interpreter

import (
	"bytes"
	"errors"
	"testing"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/parser"
	"valkyrie/interpreter-go/pkg/resolver"
)

// run pushes source through the whole pipeline on interp and returns what it
// printed.
func run(interp *Interpreter, source string) (string, error) {
	var out bytes.Buffer
	program, err := parser.ParseSource(source)
	if err != nil {
		return "", err
	}
	err = runProgram(interp, program, &out)
	return out.String(), err
}

func runProgram(interp *Interpreter, program []ast.Statement, out *bytes.Buffer) error {
	interp.SetOutput(out)
	locals, err := resolver.Resolve(program, interp.KnownGlobals()...)
	if err != nil {
		return err
	}
	interp.Resolve(locals)
	return interp.Interpret(program)
}

func mustRun(t *testing.T, source string) string {
	t.Helper()
	out, err := run(New(), source)
	if err != nil {
		t.Fatalf("run failed: %v\nsource:\n%s", err, source)
	}
	return out
}

func runtimeError(t *testing.T, source string) (*RuntimeError, string) {
	t.Helper()
	out, err := run(New(), source)
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected runtime error, got %v\nsource:\n%s", err, source)
	}
	return rtErr, out
}
