// Package resolver performs the static scope pass that runs between parsing
// and evaluation. It walks the program in the same order the interpreter
// will, mirrors every environment frame the interpreter creates, and records
// for each local variable use how many frames out its binding lives.
package resolver

import (
	"fmt"

	"valkyrie/interpreter-go/pkg/ast"
)

// Locals maps a variable-use node to its scope distance. Keys are node
// pointers; a use that resolves to a global has no entry.
type Locals map[ast.Expression]int

// Error is an illegal variable use detected before any code runs.
type Error struct {
	Token   ast.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve error%s: %s\nline %d", e.Token.Location(), e.Message, e.Token.Line)
}

type functionType int

const (
	functionNone functionType = iota
	functionPlain
	functionMethod
	functionInitializer
)

type classType int

const (
	classNone classType = iota
	classPlain
	classSubclass
)

// scope maps each name to whether its declaration has finished initialising.
type scope map[string]bool

// Resolver holds the scope stack for one resolution pass.
type Resolver struct {
	scopes          []scope
	globals         map[string]bool
	known           map[string]struct{}
	pending         []ast.Token
	locals          Locals
	currentFunction functionType
	currentClass    classType
}

// New returns a resolver. Names passed here are treated as already-defined
// globals, e.g. built-ins and declarations from earlier runs in a session.
func New(knownGlobals ...string) *Resolver {
	r := &Resolver{known: make(map[string]struct{}, len(knownGlobals))}
	for _, name := range knownGlobals {
		r.known[name] = struct{}{}
	}
	return r
}

// Resolve annotates program and returns its side-table. It stops at the first
// error.
func (r *Resolver) Resolve(program []ast.Statement) (Locals, error) {
	r.scopes = nil
	r.globals = make(map[string]bool)
	r.pending = nil
	r.locals = make(Locals)
	r.currentFunction = functionNone
	r.currentClass = classNone

	for _, stmt := range program {
		if err := r.resolveStatement(stmt); err != nil {
			return nil, err
		}
	}
	if err := r.checkGlobalAssignments(); err != nil {
		return nil, err
	}
	return r.locals, nil
}

// Resolve is shorthand for New(knownGlobals...).Resolve(program).
func Resolve(program []ast.Statement, knownGlobals ...string) (Locals, error) {
	return New(knownGlobals...).Resolve(program)
}

func (r *Resolver) beginScope(kind ast.ScopeKind) {
	s := make(scope)
	if name := kind.ImplicitName(); name != "" {
		s[name] = true
	}
	r.scopes = append(r.scopes, s)
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// enter opens every scope node introduces, outermost first, and returns the
// number opened so the caller can close them.
func (r *Resolver) enter(node ast.Node) int {
	kinds := ast.ScopesOpenedBy(node)
	for _, kind := range kinds {
		r.beginScope(kind)
	}
	return len(kinds)
}

func (r *Resolver) leave(count int) {
	for i := 0; i < count; i++ {
		r.endScope()
	}
}

func (r *Resolver) declare(name ast.Token) error {
	if len(r.scopes) == 0 {
		r.globals[name.Lexeme] = false
		return nil
	}
	innermost := r.scopes[len(r.scopes)-1]
	if _, exists := innermost[name.Lexeme]; exists {
		return &Error{Token: name, Message: "Already a variable with this name in this scope."}
	}
	innermost[name.Lexeme] = false
	return nil
}

func (r *Resolver) define(name ast.Token) {
	if len(r.scopes) == 0 {
		r.globals[name.Lexeme] = true
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal records the distance from the innermost scope to the one
// binding name. Names found in no scope are left for global lookup.
func (r *Resolver) resolveLocal(expr ast.Expression, name ast.Token) bool {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return true
		}
	}
	return false
}

// checkGlobalAssignments rejects assignments to globals that nothing in the
// program or the surrounding session ever declares.
func (r *Resolver) checkGlobalAssignments() error {
	for _, name := range r.pending {
		if _, ok := r.globals[name.Lexeme]; ok {
			continue
		}
		if _, ok := r.known[name.Lexeme]; ok {
			continue
		}
		return &Error{Token: name, Message: fmt.Sprintf("Assignment to undeclared variable '%s'.", name.Lexeme)}
	}
	return nil
}
