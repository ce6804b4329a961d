// Package ast defines the interpreter AST (IA): the richer of Zexus's two
// parallel node sets. Every node carries its source position and, when
// produced by the tolerant parser's recovery engine, a set of recovery
// notes describing how the parser kept going past malformed input.
//
// Traversal follows the visitor design pattern, the same shape the
// compiler AST and its visitors use, so the evaluator, the AST printer,
// and any future tooling share one dispatch style across both node sets.
package ast

// ExpressionVisitor is implemented by anything that operates over
// Expression nodes — the evaluator, most prominently.
type ExpressionVisitor interface {
	VisitIdentifier(e Identifier) any
	VisitInteger(e Integer) any
	VisitFloat(e Float) any
	VisitString(e String) any
	VisitBool(e Bool) any
	VisitNull(e Null) any
	VisitListLiteral(e ListLiteral) any
	VisitMapLiteral(e MapLiteral) any
	VisitActionLiteral(e ActionLiteral) any
	VisitLambda(e Lambda) any
	VisitCall(e Call) any
	VisitMethodCall(e MethodCall) any
	VisitPropertyAccess(e PropertyAccess) any
	VisitIndex(e Index) any
	VisitAssignment(e Assignment) any
	VisitPrefix(e Prefix) any
	VisitInfix(e Infix) any
	VisitIfExpr(e IfExpr) any
	VisitAwait(e Await) any
	VisitEmbeddedLiteral(e EmbeddedLiteral) any
}

// StmtVisitor is implemented by anything that operates over Stmt nodes.
type StmtVisitor interface {
	VisitLet(s Let) any
	VisitReturn(s Return) any
	VisitExpressionStatement(s ExpressionStatement) any
	VisitBlock(s Block) any
	VisitPrint(s Print) any
	VisitForEach(s ForEach) any
	VisitIf(s If) any
	VisitWhile(s While) any
	VisitTryCatch(s TryCatch) any
	VisitAction(s Action) any
	VisitEvent(s Event) any
	VisitEmit(s Emit) any
	VisitEnum(s Enum) any
	VisitProtocol(s Protocol) any
	VisitContract(s Contract) any
	VisitExternalDeclaration(s ExternalDeclaration) any
	VisitExport(s Export) any
	VisitDebug(s Debug) any
	VisitUse(s Use) any
	VisitExactly(s Exactly) any
	VisitImport(s Import) any
	VisitScreenDef(s ScreenDef) any
	VisitComponentDef(s ComponentDef) any
	VisitThemeDef(s ThemeDef) any
}

// Expression is any node that evaluates to a value.
type Expression interface {
	Accept(v ExpressionVisitor) any
	Position() Pos
}

// Stmt is any node that is executed for its effect and produces no value.
type Stmt interface {
	Accept(v StmtVisitor) any
	Position() Pos
}

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	Statements []Stmt
}
