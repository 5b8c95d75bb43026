package ast

// Definitions

type VarDeclaration struct {
	nodeImpl
	statementMarker

	Name        Token      `json:"name"`
	Initializer Expression `json:"initializer,omitempty"`
}

func NewVarDeclaration(name Token, initializer Expression) *VarDeclaration {
	return &VarDeclaration{nodeImpl: newNodeImpl(NodeVarDeclaration), Name: name, Initializer: initializer}
}

// FunctionDeclaration is used both for top-level `fun` declarations and for
// class methods. Parameters and body statements share one scope.
type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name   Token       `json:"name"`
	Params []Token     `json:"params"`
	Body   []Statement `json:"body"`
}

func NewFunctionDeclaration(name Token, params []Token, body []Statement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Params: params, Body: body}
}

type ClassDeclaration struct {
	nodeImpl
	statementMarker

	Name       Token                  `json:"name"`
	Superclass *Variable              `json:"superclass,omitempty"`
	Methods    []*FunctionDeclaration `json:"methods"`
}

func NewClassDeclaration(name Token, superclass *Variable, methods []*FunctionDeclaration) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), Name: name, Superclass: superclass, Methods: methods}
}

// InitializerName is the method a class runs when it is called.
const InitializerName = "init"
