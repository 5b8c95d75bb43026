package ast

// ScopeKind names a lexical scope that the resolver pushes and the
// interpreter materialises as a fresh environment frame.
type ScopeKind int

const (
	ScopeBlock ScopeKind = iota
	ScopeFunction
	ScopeSuperclass
	ScopeReceiver
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeBlock:
		return "block"
	case ScopeFunction:
		return "function"
	case ScopeSuperclass:
		return "superclass"
	case ScopeReceiver:
		return "receiver"
	default:
		return "unknown"
	}
}

// Implicit bindings introduced by class scopes.
const (
	ThisName  = "this"
	SuperName = "super"
)

// ScopesOpenedBy lists, outermost first, the scopes a node introduces. The
// resolver and the interpreter both consult this table so their notion of
// frame nesting cannot drift apart. Class methods additionally nest a
// function scope inside the receiver scope when they are called.
func ScopesOpenedBy(node Node) []ScopeKind {
	switch n := node.(type) {
	case *BlockStatement:
		return []ScopeKind{ScopeBlock}
	case *FunctionDeclaration:
		return []ScopeKind{ScopeFunction}
	case *ClassDeclaration:
		if n.Superclass != nil {
			return []ScopeKind{ScopeSuperclass, ScopeReceiver}
		}
		return []ScopeKind{ScopeReceiver}
	default:
		return nil
	}
}

// OpensScope reports whether node introduces a scope of the given kind.
func OpensScope(node Node, kind ScopeKind) bool {
	for _, k := range ScopesOpenedBy(node) {
		if k == kind {
			return true
		}
	}
	return false
}

// ImplicitName is the binding a scope kind introduces on entry, if any.
func (k ScopeKind) ImplicitName() string {
	switch k {
	case ScopeSuperclass:
		return SuperName
	case ScopeReceiver:
		return ThisName
	default:
		return ""
	}
}
