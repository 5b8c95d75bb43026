package interpreter

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
)

// RuntimeError is a failure during evaluation, anchored at the token whose
// evaluation failed.
type RuntimeError struct {
	Token   ast.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error%s: %s\nline %d", e.Token.Location(), e.Message, e.Token.Line)
}

func runtimeErrorf(tok ast.Token, format string, args ...any) error {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}
