// expressions.go implements ast.ExpressionVisitor on frame: every
// construct that evaluates to a value. Each method's shape is grounded
// on compiler.go's matching Visit method — same special cases (enum
// variant access, contract member access), same error conditions — but
// producing an object.Value directly instead of emitting opcodes.
package evaluator

import (
	"zexus/ast"
	"zexus/object"
	"zexus/scheduler"
	"zexus/token"
)

func (f frame) VisitIdentifier(e ast.Identifier) any {
	v, ok := f.env.Get(e.Name)
	if !ok {
		raise(object.NameError, "name '%s' is not defined", e.Name)
	}
	return v
}

func (f frame) VisitInteger(e ast.Integer) any { return object.NewInteger(e.Value) }
func (f frame) VisitFloat(e ast.Float) any     { return object.Float{Value: e.Value} }
func (f frame) VisitString(e ast.String) any   { return object.String{Value: e.Value} }
func (f frame) VisitBool(e ast.Bool) any       { return object.NativeBool(e.Value) }
func (f frame) VisitNull(e ast.Null) any       { return object.NullValue }

func (f frame) VisitListLiteral(e ast.ListLiteral) any {
	elems := make([]object.Value, len(e.Elements))
	for i, el := range e.Elements {
		elems[i] = f.eval(el)
	}
	return object.List{Elements: elems}
}

func (f frame) VisitMapLiteral(e ast.MapLiteral) any {
	m := object.NewMap()
	for _, entry := range e.Entries {
		key := f.eval(entry.Key)
		ks, ok := key.(object.String)
		if !ok {
			raise(object.TypeError, "map key must evaluate to a String")
		}
		m.Set(ks.Value, f.eval(entry.Value))
	}
	return m
}

func (f frame) VisitActionLiteral(e ast.ActionLiteral) any {
	return object.Action{Params: tokenNames(e.Params), Body: e.Body, Env: f.env, Async: e.Async}
}

func (f frame) VisitLambda(e ast.Lambda) any {
	return object.Action{Params: tokenNames(e.Params), ExprBody: e.Body, Env: f.env}
}

func tokenNames(toks []token.Token) []string {
	names := make([]string, len(toks))
	for i, t := range toks {
		names[i] = t.Lexeme
	}
	return names
}

// VisitCall special-cases `ContractName.action(args)`: a receiver
// identifier naming a prescanned Contract bypasses the generic
// property-then-call path and goes straight at the dot-joined global
// binding VisitContract stored the action under, matching
// compiler.go's VisitCall/contractMember exactly.
func (f frame) VisitCall(e ast.Call) any {
	args := make([]object.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = f.eval(a)
	}

	if prop, ok := e.Callee.(ast.PropertyAccess); ok {
		if recvIdent, isIdent := prop.Receiver.(ast.Identifier); isIdent && f.ev.contracts[recvIdent.Name] {
			qualified := recvIdent.Name + "." + prop.Name
			callee, found := f.env.Get(qualified)
			if !found {
				raise(object.NameError, "name '%s' is not defined", qualified)
			}
			v, err := f.ev.callValue(callee, args)
			if err != nil {
				panic(asObjectError(err))
			}
			return v
		}
	}

	callee := f.eval(e.Callee)
	v, err := f.ev.callValue(callee, args)
	if err != nil {
		panic(asObjectError(err))
	}
	return v
}

func (f frame) VisitMethodCall(e ast.MethodCall) any {
	recv := f.eval(e.Receiver)
	args := make([]object.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = f.eval(a)
	}
	v, handled, err := object.DispatchMethod(recv, e.Name, args)
	if err != nil {
		panic(asObjectError(err))
	}
	if !handled {
		raise(object.AttributeError, "%s has no method '%s'", recv.Kind(), e.Name)
	}
	return v
}

// VisitPropertyAccess checks, in order: enum variant access
// (`Color.Red`), contract member access (`Wallet.balance`), then falls
// back to ordinary Map property reads — the same three cases, in the
// same order, as compiler.go's VisitPropertyAccess.
func (f frame) VisitPropertyAccess(e ast.PropertyAccess) any {
	if recvIdent, ok := e.Receiver.(ast.Identifier); ok {
		if variants, isEnum := f.ev.enumVariants[recvIdent.Name]; isEnum && variants[e.Name] {
			return object.EnumValue{EnumName: recvIdent.Name, Variant: e.Name}
		}
		if f.ev.contracts[recvIdent.Name] {
			qualified := recvIdent.Name + "." + e.Name
			v, ok := f.env.Get(qualified)
			if !ok {
				raise(object.NameError, "name '%s' is not defined", qualified)
			}
			return v
		}
	}
	recv := f.eval(e.Receiver)
	v, err := propValue(recv, e.Name)
	if err != nil {
		panic(asObjectError(err))
	}
	return v
}

func (f frame) VisitIndex(e ast.Index) any {
	recv := f.eval(e.Receiver)
	idx := f.eval(e.Index)
	v, err := indexValue(recv, idx)
	if err != nil {
		panic(asObjectError(err))
	}
	return v
}

// VisitAssignment restricts targets to plain identifiers, matching
// compiler.go's VisitAssignment panic for anything else — ast.Assignment
// .Target is generically an Expression, but neither execution path
// actually supports an indexed/property lvalue, so both must reject
// one identically rather than have the evaluator silently accept what
// the compiled path cannot.
func (f frame) VisitAssignment(e ast.Assignment) any {
	v := f.eval(e.Value)
	ident, ok := e.Target.(ast.Identifier)
	if !ok {
		raise(object.SemanticError, "only identifier targets may be assigned to")
	}
	if !f.env.Assign(ident.Name, v) {
		raise(object.NameError, "name '%s' is not defined", ident.Name)
	}
	return v
}

func (f frame) VisitPrefix(e ast.Prefix) any {
	v := f.eval(e.Right)
	r, err := unaryOp(e.Operator, v)
	if err != nil {
		panic(asObjectError(err))
	}
	return r
}

// VisitInfix short-circuits && and || before ever touching binaryOp —
// `left && right` yields left when left is falsy (right never
// evaluated) and right otherwise; `left || right` yields left when
// truthy and right otherwise — the same short-circuit/result shape
// compiler.go's VisitInfix compiles via DUP+JUMP_IF_FALSE.
func (f frame) VisitInfix(e ast.Infix) any {
	switch e.Operator.TokenType {
	case token.AND_AND:
		left := f.eval(e.Left)
		if !truthy(left) {
			return left
		}
		return f.eval(e.Right)
	case token.OR_OR:
		left := f.eval(e.Left)
		if truthy(left) {
			return left
		}
		return f.eval(e.Right)
	}

	left := f.eval(e.Left)
	right := f.eval(e.Right)
	v, err := binaryOp(e.Operator, left, right)
	if err != nil {
		panic(asObjectError(err))
	}
	return v
}

func (f frame) VisitIfExpr(e ast.IfExpr) any {
	if truthy(f.eval(e.Condition)) {
		return f.eval(e.Then)
	}
	if e.Else != nil {
		return f.eval(e.Else)
	}
	return object.NullValue
}

// VisitAwait yields control to a sibling task (via Scheduler.Await)
// whenever Value evaluates to a Coroutine; a non-Coroutine value
// passes through unchanged, matching vm.go's OP_AWAIT exactly — that
// opcode pushes v straight back when it is not a *scheduler.Task.
func (f frame) VisitAwait(e ast.Await) any {
	v := f.eval(e.Value)
	task, ok := v.(*scheduler.Task)
	if !ok {
		return v
	}
	result, err := f.ev.scheduler.Await(f.task, task)
	if err != nil {
		panic(asObjectError(err))
	}
	return result
}

func (f frame) VisitEmbeddedLiteral(e ast.EmbeddedLiteral) any {
	return object.String{Value: e.Text}
}
