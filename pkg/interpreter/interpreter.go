package interpreter

import (
	"io"
	"log/slog"
	"os"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/resolver"
	"valkyrie/interpreter-go/pkg/runtime"
)

// maxCallDepth bounds nested calls so runaway recursion surfaces as a
// RuntimeError instead of exhausting the Go stack.
const maxCallDepth = 10000

// Interpreter evaluates resolved Valkyrie programs. One instance owns one
// global environment, so repeated Interpret calls accumulate declarations.
type Interpreter struct {
	global *runtime.Environment
	locals resolver.Locals
	out    io.Writer
	logger *slog.Logger
	depth  int
	calls  int
}

// New returns an interpreter whose global environment holds only the
// built-in functions.
func New() *Interpreter {
	i := &Interpreter{
		global: runtime.NewEnvironment(nil),
		locals: make(resolver.Locals),
		out:    os.Stdout,
		logger: slog.New(slog.DiscardHandler),
	}
	i.defineBuiltins()
	return i
}

// SetOutput redirects print statements.
func (i *Interpreter) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	i.out = w
}

// SetLogger installs a logger for frame and call tracing. A nil logger
// disables tracing.
func (i *Interpreter) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	i.logger = logger
}

// GlobalEnvironment returns the interpreter’s global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// KnownGlobals lists every global name currently bound, in sorted order.
func (i *Interpreter) KnownGlobals() []string {
	return i.global.Keys()
}

// Resolve merges a resolver side-table into the interpreter's. Tables from
// earlier runs are kept because closures created by those runs still consult
// them.
func (i *Interpreter) Resolve(locals resolver.Locals) {
	for expr, distance := range locals {
		i.locals[expr] = distance
	}
}

// Interpret executes program statement by statement against the global
// environment and stops at the first runtime error.
func (i *Interpreter) Interpret(program []ast.Statement) error {
	for _, stmt := range program {
		if err := i.evaluateStatement(stmt, i.global); err != nil {
			if ret, ok := err.(returnSignal); ok {
				return runtimeErrorf(ret.keyword, "Can't return from top-level code.")
			}
			return err
		}
	}
	return nil
}

// pushFrame creates the environment for a scope being entered. Callers pair
// it with a deferred popFrame.
func (i *Interpreter) pushFrame(parent *runtime.Environment, kind ast.ScopeKind) *runtime.Environment {
	i.depth++
	i.logger.Debug("push frame", slog.String("kind", kind.String()), slog.Int("depth", i.depth))
	return runtime.NewEnvironment(parent)
}

func (i *Interpreter) popFrame(kind ast.ScopeKind) {
	i.logger.Debug("pop frame", slog.String("kind", kind.String()), slog.Int("depth", i.depth))
	i.depth--
}

func isTruthy(val runtime.Value) bool {
	switch v := val.(type) {
	case runtime.BoolValue:
		return v.Val
	case runtime.NilValue:
		return false
	case nil:
		return false
	default:
		return true
	}
}

// returnSignal unwinds to the nearest call boundary. It is an error only so
// it can travel the ordinary error path; invokeFunction intercepts it.
type returnSignal struct {
	keyword ast.Token
	value   runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}
