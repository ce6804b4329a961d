// statements.go implements ast.StmtVisitor on frame: every construct
// executed for its effect. Composite statements (Block, If, While,
// ForEach, TryCatch) propagate a nested object.ReturnSignal upward by
// checking exec's result after running a child statement — the
// non-error control-flow mechanism `return` uses, left unwrapped until
// runActionBody (evaluator.go) or Run itself finally consumes it.
package evaluator

import (
	"zexus/ast"
	"zexus/object"
)

func (f frame) VisitLet(s ast.Let) any {
	var v object.Value = object.NullValue
	if s.Initializer != nil {
		v = f.eval(s.Initializer)
	}
	f.env.Set(s.Name, v)
	return nil
}

func (f frame) VisitReturn(s ast.Return) any {
	var v object.Value = object.NullValue
	if s.Value != nil {
		v = f.eval(s.Value)
	}
	return object.ReturnSignal{Value: v}
}

func (f frame) VisitExpressionStatement(s ast.ExpressionStatement) any {
	f.eval(s.Expression)
	return nil
}

func (f frame) VisitBlock(s ast.Block) any {
	for _, stmt := range s.Statements {
		if sig, ok := f.exec(stmt).(object.ReturnSignal); ok {
			return sig
		}
	}
	return nil
}

func (f frame) VisitPrint(s ast.Print) any {
	v := f.eval(s.Expression)
	if _, err := f.callBuiltin("__print__", v); err != nil {
		panic(asObjectError(err))
	}
	return nil
}

// VisitForEach walks the receiver's elements natively — List elements
// in order, Map keys in insertion order — rather than going through
// the __iter__/__next__ builtins the compiled path's ForEach lowers to
// (object.Iterator's own doc comment: "The evaluator never needs one —
// it walks ast.ForEach natively"). It binds s.Var directly into the
// active environment on every iteration rather than opening a new
// child scope per iteration: object.Environment.Set always replaces
// the binding's Cell outright, so a closure created inside one
// iteration's body still captures that iteration's own cell even
// though the name is rebound afterward — the same behavior
// compiler.go's OP_STORE-per-iteration produces in the compiled path.
func (f frame) VisitForEach(s ast.ForEach) any {
	iterable := f.eval(s.Iterable)
	var elements []object.Value
	switch v := iterable.(type) {
	case object.List:
		elements = v.Elements
	case *object.Map:
		elements = make([]object.Value, len(v.Keys))
		for i, k := range v.Keys {
			elements[i] = object.String{Value: k}
		}
	default:
		raise(object.TypeError, "for-each expects a List or Map")
	}

	for _, el := range elements {
		f.env.Set(s.Var, el)
		if sig, ok := f.exec(s.Body).(object.ReturnSignal); ok {
			return sig
		}
	}
	return nil
}

func (f frame) VisitIf(s ast.If) any {
	if truthy(f.eval(s.Condition)) {
		return f.exec(s.Then)
	}
	if s.Else != nil {
		return f.exec(s.Else)
	}
	return nil
}

func (f frame) VisitWhile(s ast.While) any {
	for truthy(f.eval(s.Condition)) {
		if sig, ok := f.exec(s.Body).(object.ReturnSignal); ok {
			return sig
		}
	}
	return nil
}

// VisitTryCatch recovers a panicked object.Error raised anywhere
// inside Body (including inside a nested call's own runActionBody,
// since that only recovers panics at its own boundary and re-raises
// them as a returned error, which this method's own eval/exec calls
// re-panic via asObjectError), binds it to ErrVar in a fresh child
// environment, and runs Handler there — spec §4.4's "the handler runs
// in a fresh child environment containing only the error variable", so
// a catch block's `err` never clobbers an outer binding of the same
// name. A non-object.Error panic (a genuine Go bug) is never caught
// here — it re-panics, just as a Go panic inside vm.go escapes every
// TRY_PUSH handler (the VM's handlers do catch any returned error,
// wrapping a non-object.Error one as an InternalError).
func (f frame) VisitTryCatch(s ast.TryCatch) (result any) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				oerr, ok := r.(object.Error)
				if !ok {
					panic(r)
				}
				childEnv := object.NewChildEnvironment(f.env)
				childEnv.Set(s.ErrVar, oerr)
				result = f.withEnv(childEnv).exec(s.Handler)
			}
		}()
		result = f.exec(s.Body)
	}()
	return result
}

func (f frame) VisitAction(s ast.Action) any {
	f.env.Set(s.Name, object.Action{Name: s.Name, Params: tokenNames(s.Params), Body: s.Body, Env: f.env, Async: s.Async})
	return nil
}

// VisitEvent declares the event in ev.events at the moment this
// statement actually executes, in source order — matching vm.go's
// OP_REGISTER_EVENT, which calls events.Declare only when that opcode
// runs, never during any upfront prescan.
func (f frame) VisitEvent(s ast.Event) any {
	fields := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		fields[i] = field.Name
	}
	f.ev.events.Declare(object.EventDescriptor{Name: s.Name, Fields: fields})
	return nil
}

// VisitEmit never checks declaredness — matching vm.go's OP_EMIT_EVENT,
// which calls events.Handlers(name) unconditionally and simply gets an
// empty slice back for an event with no registered handlers (or none
// declared at all). Only the register_event builtin and the static
// semantic analyzer check declaredness. When the event was declared,
// its field schema still applies per spec §4.4: any field the literal
// payload omitted is defaulted to null before handlers see it.
func (f frame) VisitEmit(s ast.Emit) any {
	payload := f.eval(s.Payload)
	if desc, ok := f.ev.events.Declared(s.Name); ok {
		payload = object.ApplyEventDefaults(payload, desc.Fields)
	}
	for _, handler := range f.ev.events.Handlers(s.Name) {
		if _, err := f.ev.callValue(handler, []object.Value{payload}); err != nil {
			panic(asObjectError(err))
		}
	}
	return nil
}

// VisitEnum is a no-op at execution time: enum variants resolve to
// object.EnumValue constants entirely through ev.enumVariants, a table
// prescan already populated — matching OP_DEFINE_ENUM, whose case
// comment in vm.go says nothing further is needed at runtime.
func (f frame) VisitEnum(s ast.Enum) any { return nil }

// VisitProtocol is a no-op: a Protocol's signatures live in
// ev.protocols from prescan and are only ever consulted by
// assertProtocol when a Contract claims conformance — matching
// compiler.go's VisitProtocol, which emits nothing.
func (f frame) VisitProtocol(s ast.Protocol) any { return nil }

// VisitContract binds every storage field to Null under
// "ContractName.field" and every action under "ContractName.action" —
// dot-joined globals, never a bare name — so sibling actions never
// share an unqualified scope (calling a sibling action bare, with no
// receiver, is simply an unresolved name, exactly as it is in the
// compiled path). This mirrors compiler.go's VisitContract exactly,
// rather than the lighter object.Map-backed model spec.md's own
// Non-goals/Open Questions section floats as a fallback — the
// Evaluator ≡ VM invariant requires matching the contract runtime the
// compiled path already committed to, not re-deriving a second one.
func (f frame) VisitContract(s ast.Contract) any {
	for _, field := range s.Storage {
		f.env.Set(s.Name+"."+field, object.NullValue)
	}
	for _, action := range s.Actions {
		qualified := s.Name + "." + action.Name
		f.env.Set(qualified, object.Action{Name: qualified, Params: tokenNames(action.Params), Body: action.Body, Env: f.env, Async: action.Async})
	}
	if s.Protocol != "" {
		if err := f.ev.assertProtocol(s.Protocol, s.Name); err != nil {
			panic(err)
		}
	}
	return nil
}

func (f frame) VisitExternalDeclaration(s ast.ExternalDeclaration) any {
	f.env.Set(s.Name, object.String{Value: s.Source})
	return nil
}

// VisitExport runs Inner, then marks its bound name exported by
// calling env.Export — the real object.Environment API, which
// compiler.go's own VisitExport never actually calls (it instead hacks
// a "$export:"+name global binding via OP_STORE, there being no
// dedicated "mark exported" opcode). The evaluator is the first
// execution path to exercise Export/Exports as designed; see DESIGN.md.
func (f frame) VisitExport(s ast.Export) any {
	result := f.exec(s.Inner)
	if name := exportedName(s.Inner); name != "" {
		f.env.Export(name)
	}
	return result
}

func exportedName(s ast.Stmt) string {
	switch v := s.(type) {
	case ast.Let:
		return v.Name
	case ast.Action:
		return v.Name
	default:
		return ""
	}
}

func (f frame) VisitDebug(s ast.Debug) any {
	var v object.Value = object.NullValue
	if s.Value != nil {
		v = f.eval(s.Value)
	}
	if _, err := f.callBuiltin("debug_log", object.String{Value: s.Message}, v); err != nil {
		panic(asObjectError(err))
	}
	return nil
}

// VisitUse binds the alias — defaulting to the module name when no
// `from alias` clause was given, the same default compiler.go's
// VisitUse now applies (see DESIGN.md for the bug that fix corrected)
// — to Null. Module resolution itself is out of scope for the core
// (spec §1 leaves external-module loading to cmd/zexus); binding Null
// rather than leaving the name entirely unbound matches vm.go's
// OP_IMPORT, so referencing an unresolved import fails loudly at the
// point of use instead of looking like an ordinary undefined name.
func (f frame) VisitUse(s ast.Use) any {
	alias := s.Alias
	if alias == "" {
		alias = s.Module
	}
	f.env.Set(alias, object.NullValue)
	return nil
}

// VisitExactly always raises SyntaxError, matching the SyntaxError
// diagnostic semantic.Analyzer reports on the compiled path: the keyword and grammar slot exist, but spec §9 leaves
// its semantics an open question this repo declines to invent.
func (f frame) VisitExactly(s ast.Exactly) any {
	raise(object.SyntaxError, "'exactly' has no defined runtime semantics (spec §9 open question)")
	return nil
}
