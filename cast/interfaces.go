// Package cast defines the compiler AST (CA): the leaner of Zexus's two
// parallel node sets, produced by the strict production parser and
// consumed by the semantic analyzer and the bytecode emitter.
//
// Node names are kept aligned with package ast's interpreter-AST names
// construct-for-construct (spec §9's alignment requirement), but each
// node carries only a leaf token.Token for position recovery rather than
// an explicit Pos field plus recovery notes — the production parser never
// recovers, so there is nothing to annotate.
package cast

import "zexus/token"

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
}

type Expression interface {
	Accept(v ExpressionVisitor) any
	Token() token.Token
}

type Stmt interface {
	Accept(v StmtVisitor) any
	Token() token.Token
}

type Program struct {
	Statements []Stmt
}
