// statements.go contains every interpreter-AST statement node. A
// statement node is executed for its effect and never leaves a value.
package ast

import "zexus/token"

type Let struct {
	Base
	Name        string
	Initializer Expression
}

func (s Let) Accept(v StmtVisitor) any { return v.VisitLet(s) }

type Return struct {
	Base
	Value Expression // nil for a bare `return`
}

func (s Return) Accept(v StmtVisitor) any { return v.VisitReturn(s) }

type ExpressionStatement struct {
	Base
	Expression Expression
}

func (s ExpressionStatement) Accept(v StmtVisitor) any { return v.VisitExpressionStatement(s) }

type Block struct {
	Base
	Statements []Stmt
}

func (s Block) Accept(v StmtVisitor) any { return v.VisitBlock(s) }

type Print struct {
	Base
	Expression Expression
}

func (s Print) Accept(v StmtVisitor) any { return v.VisitPrint(s) }

// ForEach is `for each x in iterable { body }`.
type ForEach struct {
	Base
	Var      string
	Iterable Expression
	Body     Block
}

func (s ForEach) Accept(v StmtVisitor) any { return v.VisitForEach(s) }

type If struct {
	Base
	Condition Expression
	Then      Block
	Else      Stmt // nil, a Block, or another If (else-if chaining)
}

func (s If) Accept(v StmtVisitor) any { return v.VisitIf(s) }

type While struct {
	Base
	Condition Expression
	Body      Block
}

func (s While) Accept(v StmtVisitor) any { return v.VisitWhile(s) }

// TryCatch binds the caught Error to ErrVar inside Handler's own scope.
type TryCatch struct {
	Base
	Body    Block
	ErrVar  string
	Handler Block
}

func (s TryCatch) Accept(v StmtVisitor) any { return v.VisitTryCatch(s) }

// Action is a named (or anonymous, at top level treated as a no-op
// declaration) function declaration, optionally async.
type Action struct {
	Base
	Name   string
	Params []token.Token
	Body   []Stmt
	Async  bool
}

func (s Action) Accept(v StmtVisitor) any { return v.VisitAction(s) }

// EventField is one entry of an `event Name { field: Type, ... }`
// declaration's schema.
type EventField struct {
	Name string
	Type string
}

type Event struct {
	Base
	Name   string
	Fields []EventField
}

func (s Event) Accept(v StmtVisitor) any { return v.VisitEvent(s) }

// Emit is `emit Name { k: v, ... }`.
type Emit struct {
	Base
	Name    string
	Payload MapLiteral
}

func (s Emit) Accept(v StmtVisitor) any { return v.VisitEmit(s) }

type Enum struct {
	Base
	Name     string
	Variants []string
}

func (s Enum) Accept(v StmtVisitor) any { return v.VisitEnum(s) }

// ProtocolSignature is one required action signature of a Protocol.
type ProtocolSignature struct {
	Name  string
	Arity int
}

type Protocol struct {
	Base
	Name       string
	Signatures []ProtocolSignature
}

func (s Protocol) Accept(v StmtVisitor) any { return v.VisitProtocol(s) }

// Contract declares persistent storage fields plus the actions that
// operate on them; it is checked against a named Protocol for
// conformance by the semantic analyzer.
type Contract struct {
	Base
	Name     string
	Protocol string
	Storage  []string
	Actions  []Action
}

func (s Contract) Accept(v StmtVisitor) any { return v.VisitContract(s) }

// ExternalDeclaration is `external name from "source"` or `external name`.
type ExternalDeclaration struct {
	Base
	Name   string
	Source string
}

func (s ExternalDeclaration) Accept(v StmtVisitor) any { return v.VisitExternalDeclaration(s) }

// Export wraps a top-level binding statement, marking it exported.
type Export struct {
	Base
	Inner Stmt
}

func (s Export) Accept(v StmtVisitor) any { return v.VisitExport(s) }

// Debug is `debug "message"` or `debug "message", value`.
type Debug struct {
	Base
	Message string
	Value   Expression // nil if not provided
}

func (s Debug) Accept(v StmtVisitor) any { return v.VisitDebug(s) }

// Use is `use module` or `use module from alias`.
type Use struct {
	Base
	Module string
	Alias  string
}

func (s Use) Accept(v StmtVisitor) any { return v.VisitUse(s) }

// Exactly is a reserved placeholder node: the keyword and grammar slot
// exist, but evaluating/compiling one always raises a SyntaxError per the
// spec's own open question — its semantics were never specified.
type Exactly struct {
	Base
	Raw string
}

func (s Exactly) Accept(v StmtVisitor) any { return v.VisitExactly(s) }
