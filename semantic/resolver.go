package semantic

import (
	"zexus/cast"
	"zexus/diag"
)

// resolveStmt and resolveExpr thread a node through the analyzer's
// visitor dispatch and recover the concrete static type Accept always
// returns for these node sets, so the rest of the resolver can treat
// "visit and rewrite" as an ordinary function call.
func (a *Analyzer) resolveStmt(s cast.Stmt) cast.Stmt {
	return s.Accept(a).(cast.Stmt)
}

func (a *Analyzer) resolveExpr(e cast.Expression) cast.Expression {
	return e.Accept(a).(cast.Expression)
}

func (a *Analyzer) resolveStmts(stmts []cast.Stmt) []cast.Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]cast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = a.resolveStmt(s)
	}
	return out
}

func (a *Analyzer) resolveExprs(exprs []cast.Expression) []cast.Expression {
	if exprs == nil {
		return nil
	}
	out := make([]cast.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = a.resolveExpr(e)
	}
	return out
}

// withScope runs fn with a.scope replaced by a fresh child of the
// current scope, then restores the previous scope — the shape every
// block-introducing construct below needs (Block, ForEach, TryCatch's
// handler).
func (a *Analyzer) withScope(fn func()) {
	parent := a.scope
	a.scope = newScope(parent)
	fn()
	a.scope = parent
}

// --- ExpressionVisitor -------------------------------------------------

func (a *Analyzer) VisitIdentifier(e cast.Identifier) any {
	name := e.Name.Lexeme
	kind, crossed := a.scope.resolve(name)
	switch kind {
	case Outer:
		for _, fc := range crossed {
			fc.free[name] = true
		}
	case Unresolved:
		if !builtinNames[name] {
			a.errorf(e, "undefined name '%s'", name)
		}
	}
	return e
}

func (a *Analyzer) VisitInteger(e cast.Integer) any { return e }
func (a *Analyzer) VisitFloat(e cast.Float) any     { return e }
func (a *Analyzer) VisitString(e cast.String) any   { return e }
func (a *Analyzer) VisitBool(e cast.Bool) any       { return e }
func (a *Analyzer) VisitNull(e cast.Null) any       { return e }

func (a *Analyzer) VisitListLiteral(e cast.ListLiteral) any {
	e.Elements = a.resolveExprs(e.Elements)
	return e
}

func (a *Analyzer) VisitMapLiteral(e cast.MapLiteral) any {
	for i, entry := range e.Entries {
		e.Entries[i] = cast.MapEntry{
			Key:   a.resolveExpr(entry.Key),
			Value: a.resolveExpr(entry.Value),
		}
	}
	return e
}

func (a *Analyzer) VisitActionLiteral(e cast.ActionLiteral) any {
	fc := newFuncCtx(e.Async)
	a.scope = newFunctionScope(a.scope, fc)
	for _, p := range e.Params {
		a.scope.define(p.Lexeme)
	}
	e.Body = a.resolveStmts(e.Body)
	e.Captures = fc.captures()
	a.scope = a.scope.parent
	return e
}

func (a *Analyzer) VisitLambda(e cast.Lambda) any {
	fc := newFuncCtx(false)
	a.scope = newFunctionScope(a.scope, fc)
	for _, p := range e.Params {
		a.scope.define(p.Lexeme)
	}
	e.Body = a.resolveExpr(e.Body)
	e.Captures = fc.captures()
	a.scope = a.scope.parent
	return e
}

func (a *Analyzer) VisitCall(e cast.Call) any {
	e.Callee = a.resolveExpr(e.Callee)
	e.Args = a.resolveExprs(e.Args)
	return e
}

func (a *Analyzer) VisitMethodCall(e cast.MethodCall) any {
	e.Receiver = a.resolveExpr(e.Receiver)
	e.Args = a.resolveExprs(e.Args)
	return e
}

func (a *Analyzer) VisitPropertyAccess(e cast.PropertyAccess) any {
	e.Receiver = a.resolveExpr(e.Receiver)
	return e
}

func (a *Analyzer) VisitIndex(e cast.Index) any {
	e.Receiver = a.resolveExpr(e.Receiver)
	e.Index = a.resolveExpr(e.Index)
	return e
}

func (a *Analyzer) VisitAssignment(e cast.Assignment) any {
	e.Value = a.resolveExpr(e.Value)
	switch target := e.Target.(type) {
	case cast.Identifier:
		name := target.Name.Lexeme
		kind, crossed := a.scope.resolve(name)
		if kind == Unresolved && !builtinNames[name] {
			a.errorf(e, "assignment to undefined name '%s'", name)
		}
		for _, fc := range crossed {
			fc.free[name] = true
		}
		e.Target = target
	default:
		// Matches compiler.go's VisitAssignment: the emitter can only
		// produce OP_ASSIGN against a plain name, so an indexed or
		// property-access target is flagged here rather than left to
		// panic as a SemanticError at emission time.
		a.errorf(e, "only a plain name may be assigned to in the compiled path")
		e.Target = a.resolveExpr(e.Target)
	}
	return e
}

func (a *Analyzer) VisitPrefix(e cast.Prefix) any {
	e.Right = a.resolveExpr(e.Right)
	return e
}

func (a *Analyzer) VisitInfix(e cast.Infix) any {
	e.Left = a.resolveExpr(e.Left)
	e.Right = a.resolveExpr(e.Right)
	return e
}

func (a *Analyzer) VisitIfExpr(e cast.IfExpr) any {
	e.Condition = a.resolveExpr(e.Condition)
	e.Then = a.resolveExpr(e.Then)
	if e.Else != nil {
		e.Else = a.resolveExpr(e.Else)
	}
	return e
}

func (a *Analyzer) VisitAwait(e cast.Await) any {
	fc := a.scope.enclosingFunction()
	if fc == nil || !fc.async {
		a.errorf(e, "'await' is only valid inside an async action")
	}
	e.Value = a.resolveExpr(e.Value)
	return e
}

func (a *Analyzer) VisitEmbeddedLiteral(e cast.EmbeddedLiteral) any { return e }

// --- StmtVisitor ---------------------------------------------------

func (a *Analyzer) VisitLet(s cast.Let) any {
	s.Initializer = a.resolveExpr(s.Initializer)
	a.scope.define(s.Name)
	return s
}

func (a *Analyzer) VisitReturn(s cast.Return) any {
	if a.scope.enclosingFunction() == nil {
		a.errorAt(s, "'return' is only valid inside an action")
	}
	if s.Value != nil {
		s.Value = a.resolveExpr(s.Value)
	}
	return s
}

func (a *Analyzer) VisitExpressionStatement(s cast.ExpressionStatement) any {
	s.Expression = a.resolveExpr(s.Expression)
	return s
}

func (a *Analyzer) VisitBlock(s cast.Block) any {
	a.withScope(func() {
		s.Statements = a.resolveStmts(s.Statements)
	})
	return s
}

func (a *Analyzer) VisitPrint(s cast.Print) any {
	s.Expression = a.resolveExpr(s.Expression)
	return s
}

func (a *Analyzer) VisitForEach(s cast.ForEach) any {
	s.Iterable = a.resolveExpr(s.Iterable)
	a.withScope(func() {
		a.scope.define(s.Var)
		s.Body = s.Body.Accept(a).(cast.Block)
	})
	return s
}

func (a *Analyzer) VisitIf(s cast.If) any {
	s.Condition = a.resolveExpr(s.Condition)
	s.Then = s.Then.Accept(a).(cast.Block)
	if s.Else != nil {
		s.Else = a.resolveStmt(s.Else)
	}
	return s
}

func (a *Analyzer) VisitWhile(s cast.While) any {
	s.Condition = a.resolveExpr(s.Condition)
	s.Body = s.Body.Accept(a).(cast.Block)
	return s
}

func (a *Analyzer) VisitTryCatch(s cast.TryCatch) any {
	s.Body = s.Body.Accept(a).(cast.Block)
	a.withScope(func() {
		a.scope.define(s.ErrVar)
		s.Handler.Statements = a.resolveStmts(s.Handler.Statements)
	})
	return s
}

// resolveAction is shared by VisitAction (top-level/nested named
// actions, where calling oneself by its bare name must work) and
// VisitActionLiteral's cousin for Contract actions (which intentionally
// does NOT share this — see visitContractAction).
func (a *Analyzer) resolveAction(s cast.Action) cast.Action {
	if s.Name != "" {
		// Defined before descending into the body so a self-recursive
		// call resolves; for a top-level action this is a no-op (the
		// top-level prescan already defined it), for one nested in a
		// block it additionally makes the name visible to whatever
		// follows in that same block, ordinary sequential scoping.
		a.scope.define(s.Name)
	}
	fc := newFuncCtx(s.Async)
	a.scope = newFunctionScope(a.scope, fc)
	for _, p := range s.Params {
		a.scope.define(p.Lexeme)
	}
	s.Body = a.resolveStmts(s.Body)
	s.Captures = fc.captures()
	a.scope = a.scope.parent
	return s
}

func (a *Analyzer) VisitAction(s cast.Action) any {
	return a.resolveAction(s)
}

func (a *Analyzer) VisitEvent(s cast.Event) any { return s }

func (a *Analyzer) VisitEmit(s cast.Emit) any {
	if _, declared := a.events[s.Name]; !declared {
		a.errorAt(s, "emit of undeclared event '%s'", s.Name)
	}
	s.Payload = a.VisitMapLiteral(s.Payload).(cast.MapLiteral)
	return s
}

func (a *Analyzer) VisitEnum(s cast.Enum) any { return s }

func (a *Analyzer) VisitProtocol(s cast.Protocol) any { return s }

// visitContractAction resolves one contract action's body in total
// isolation from its siblings: the VM only ever binds a contract
// action under its dot-joined global name ("ContractName.action"), so
// — unlike an ordinary nested Action — a sibling action is never
// reachable by its bare name from inside another, and this pass must
// not pretend otherwise by defining it into a shared scope.
func (a *Analyzer) visitContractAction(act cast.Action) cast.Action {
	fc := newFuncCtx(act.Async)
	a.scope = newFunctionScope(a.scope, fc)
	for _, p := range act.Params {
		a.scope.define(p.Lexeme)
	}
	act.Body = a.resolveStmts(act.Body)
	act.Captures = fc.captures()
	a.scope = a.scope.parent
	return act
}

func (a *Analyzer) VisitContract(s cast.Contract) any {
	if s.Protocol != "" {
		sigs, ok := a.protocols[s.Protocol]
		if !ok {
			a.errorAt(s, "contract '%s' claims unknown protocol '%s'", s.Name, s.Protocol)
		} else {
			for _, sig := range sigs {
				if !contractSatisfies(s, sig) {
					a.errorAt(s, "contract '%s' is missing action '%s' with arity %d required by protocol '%s'",
						s.Name, sig.Name, sig.Arity, s.Protocol)
				}
			}
		}
	}
	for i, act := range s.Actions {
		s.Actions[i] = a.visitContractAction(act)
	}
	return s
}

func contractSatisfies(s cast.Contract, sig cast.ProtocolSignature) bool {
	for _, act := range s.Actions {
		if act.Name == sig.Name && len(act.Params) == sig.Arity {
			return true
		}
	}
	return false
}

func (a *Analyzer) VisitExternalDeclaration(s cast.ExternalDeclaration) any { return s }

func (a *Analyzer) VisitExport(s cast.Export) any {
	if !a.scope.atTopLevel() {
		a.errorAt(s, "export is only valid at top level")
	}
	s.Inner = a.resolveStmt(s.Inner)
	if name := exportedName(s.Inner); name != "" {
		a.exports = append(a.exports, name)
	}
	return s
}

func exportedName(s cast.Stmt) string {
	switch v := s.(type) {
	case cast.Let:
		return v.Name
	case cast.Action:
		return v.Name
	default:
		return ""
	}
}

func (a *Analyzer) VisitDebug(s cast.Debug) any {
	if s.Value != nil {
		s.Value = a.resolveExpr(s.Value)
	}
	return s
}

func (a *Analyzer) VisitUse(s cast.Use) any { return s }

func (a *Analyzer) VisitExactly(s cast.Exactly) any {
	a.add(diag.New(diag.Syntax, "'exactly' has no defined runtime semantics (spec §9 open question)", s.Token().Pos))
	return s
}
