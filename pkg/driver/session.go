package driver

import (
	"context"
	"io"
	"log/slog"
	"os"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/interpreter"
	"valkyrie/interpreter-go/pkg/parser"
	"valkyrie/interpreter-go/pkg/resolver"
)

// Options configures a run.
type Options struct {
	Stdout         io.Writer
	Logger         *slog.Logger
	Transliterator Transliterator
}

// Session is a persistent interpreter: globals and resolution side-tables
// survive from one Run to the next, the way a prompt needs them to.
type Session struct {
	interp *interpreter.Interpreter
	opts   Options
}

// NewSession creates a session with fresh built-ins.
func NewSession(opts Options) *Session {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	interp := interpreter.New()
	interp.SetOutput(opts.Stdout)
	interp.SetLogger(opts.Logger)
	return &Session{interp: interp, opts: opts}
}

// Run scans, parses, resolves and executes source. Each stage must succeed
// before the next starts.
func (s *Session) Run(source string) error {
	program, locals, err := s.analyze(source)
	if err != nil {
		return err
	}
	s.interp.Resolve(locals)
	return s.interp.Interpret(program)
}

// Check runs every stage short of execution.
func (s *Session) Check(source string) error {
	_, _, err := s.analyze(source)
	return err
}

func (s *Session) analyze(source string) ([]ast.Statement, resolver.Locals, error) {
	program, err := parser.ParseSource(source)
	if err != nil {
		return nil, nil, err
	}
	locals, err := resolver.Resolve(program, s.interp.KnownGlobals()...)
	if err != nil {
		return nil, nil, err
	}
	return program, locals, nil
}

// RunFile loads path (transliterating .runic input) and runs it in the session.
func (s *Session) RunFile(ctx context.Context, path string) error {
	source, err := LoadSource(ctx, path, s.opts.Transliterator)
	if err != nil {
		return err
	}
	return withPath(s.Run(source), path)
}

// Binding is one global name with its display text.
type Binding struct {
	Name  string
	Value string
}

// Globals lists the session's global bindings in name order.
func (s *Session) Globals() []Binding {
	env := s.interp.GlobalEnvironment()
	keys := env.Keys()
	out := make([]Binding, 0, len(keys))
	for _, name := range keys {
		val, _ := env.Lookup(name)
		out = append(out, Binding{Name: name, Value: interpreter.Stringify(val)})
	}
	return out
}

// RunSource runs one program on a fresh interpreter.
func RunSource(source string, opts Options) error {
	return NewSession(opts).Run(source)
}

// RunFile runs one script on a fresh interpreter.
func RunFile(ctx context.Context, path string, opts Options) error {
	return NewSession(opts).RunFile(ctx, path)
}

// CheckFile loads path and checks it without executing.
func CheckFile(ctx context.Context, path string, t Transliterator) error {
	source, err := LoadSource(ctx, path, t)
	if err != nil {
		return err
	}
	return withPath(NewSession(Options{Stdout: io.Discard}).Check(source), path)
}

// ParseFile loads path and returns its syntax tree.
func ParseFile(ctx context.Context, path string, t Transliterator) ([]ast.Statement, error) {
	source, err := LoadSource(ctx, path, t)
	if err != nil {
		return nil, err
	}
	program, err := parser.ParseSource(source)
	if err != nil {
		return nil, withPath(err, path)
	}
	return program, nil
}
