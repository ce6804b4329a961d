// Package evaluator implements the tree-walking execution path of spec
// §4.4: a visitor over the interpreter AST (package ast) that runs a
// Program directly, with no lowering to bytecode at all. It is the
// direct descendant of the teacher's interpreter/interpreter.go —
// same panic/recover error idiom, same one-visitor-per-node-kind
// shape — generalized from the teacher's half-dozen node kinds to the
// full language and regrounded, wherever a choice has no single
// "obviously right" answer, on whatever the already-built bytecode
// path (package vm) already decided, so the two paths satisfy the
// Evaluator ≡ VM invariant of spec §8: identical externally observable
// behavior, even though this package's internal representation (true
// lexical closures, no bytecode function pool, no operand stack) looks
// nothing like vm's.
//
// ast.Expression.Accept(v ExpressionVisitor) any and ast.Stmt.Accept(v
// StmtVisitor) any both take a bare visitor with no room for extra
// per-call state, so frame (frame.go) — a small value type carrying
// the active environment and, when running inside a spawned
// coroutine's goroutine, its owning scheduler.Task — stands in for
// what would otherwise have to be mutable fields on Evaluator itself.
// A mutable "current env" field would race the moment two
// scheduler-driven goroutines evaluate concurrently; a per-call value
// cannot.
package evaluator

import (
	"fmt"

	"zexus/ast"
	"zexus/builtins"
	"zexus/object"
	"zexus/renderer"
	"zexus/scheduler"
)

// Evaluator owns every pool a running program needs, mirroring vm.VM's
// field-for-field shape exactly (scheduler, events, renderer, globals,
// builtins) so the two execution paths share one scheduler and one
// event registry when driven side by side in a test.
type Evaluator struct {
	globals   *object.Environment
	builtins  map[string]*object.Builtin
	scheduler *scheduler.Scheduler
	events    *object.EventRegistry
	renderer  renderer.Renderer

	// enumVariants/protocols/contracts are populated once, up front, by
	// prescan — mirroring compiler.go's prescanDeclarations — so a use
	// site that textually precedes its declaration still resolves.
	// events is deliberately NOT prescanned here: vm.go's own
	// OP_REGISTER_EVENT only calls events.Declare at the statement's
	// actual execution point, in source order, and OP_EMIT_EVENT never
	// checks declaredness at all. VisitEvent/VisitEmit reproduce that
	// exactly (statements.go), so an evaluator prescan of events would
	// itself be the divergence from vm, not a fix.
	enumVariants map[string]map[string]bool
	protocols    map[string][]ast.ProtocolSignature
	contracts    map[string]bool
}

// New builds an Evaluator. A nil renderer defaults to renderer.Null,
// matching vm.New and spec §9's "language core is fully testable
// without a UI" stance.
func New(r renderer.Renderer) *Evaluator {
	if r == nil {
		r = renderer.Null{}
	}
	ev := &Evaluator{
		globals:      object.NewEnvironment(),
		scheduler:    scheduler.New(),
		events:       object.NewEventRegistry(),
		renderer:     r,
		enumVariants: map[string]map[string]bool{},
		protocols:    map[string][]ast.ProtocolSignature{},
		contracts:    map[string]bool{},
	}
	ev.builtins = builtins.New(builtins.Deps{
		Apply:     ev.callValue,
		Scheduler: ev.scheduler,
		Renderer:  ev.renderer,
		Events:    ev.events,
	})
	return ev
}

// Run executes a complete program and drives every spawned coroutine
// to completion before returning, matching vm.VM.Run's own
// merge-builtins-then-drain-the-scheduler shape. Its panic/recovery
// mirrors the teacher's interpreter.go Interpret(): panic(object.Error)
// unwinds the Go call stack and is recovered here into a returned
// error, since Accept's fixed `any` return leaves no room to thread an
// error value back through every Visit method.
func (ev *Evaluator) Run(prog *ast.Program) (result object.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if oerr, ok := r.(object.Error); ok {
				err = oerr
				return
			}
			panic(r)
		}
	}()

	for name, b := range ev.builtins {
		ev.globals.Set(name, b)
	}
	ev.prescan(prog.Statements)

	f := frame{ev: ev, env: ev.globals}
	result = object.NullValue
	for _, stmt := range prog.Statements {
		if sig, ok := f.exec(stmt).(object.ReturnSignal); ok {
			result = sig.Value
			break
		}
	}
	ev.scheduler.RunUntilIdle()
	return result, nil
}

// prescan registers every top-level Enum/Protocol/Contract name before
// any statement body runs — see the field comment above for why events
// are excluded. Unlike semantic.Analyzer's prescan, this one does not
// need to define ordinary Let/Action names into a static scope table:
// the evaluator has no separate resolution pass, so Identifier lookups
// always resolve dynamically against object.Environment at the moment
// they run (VisitIdentifier), and an out-of-order top-level reference
// is simply a runtime NameError rather than a compile-time diagnostic.
func (ev *Evaluator) prescan(stmts []ast.Stmt) {
	for _, s := range stmts {
		ev.prescanOne(s)
	}
}

func (ev *Evaluator) prescanOne(s ast.Stmt) {
	switch decl := s.(type) {
	case ast.Enum:
		variants := map[string]bool{}
		for _, v := range decl.Variants {
			variants[v] = true
		}
		ev.enumVariants[decl.Name] = variants
	case ast.Protocol:
		ev.protocols[decl.Name] = decl.Signatures
	case ast.Contract:
		ev.contracts[decl.Name] = true
	case ast.Export:
		ev.prescanOne(decl.Inner)
	}
}

// callValue invokes any callable Value the same way regardless of how
// it was reached — by a Call expression, a method/contract dispatch,
// or a builtin like map/filter/reduce calling back into user code via
// builtins.Deps.Apply. Mirrors vm.VM.callValue, with object.Action in
// place of object.CompiledFunction.
func (ev *Evaluator) callValue(callee object.Value, args []object.Value) (object.Value, error) {
	switch fn := callee.(type) {
	case *object.Builtin:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, object.Error{ErrKind: object.ArityError, Message: fmt.Sprintf("%s() expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))}
		}
		return fn.Fn(args)
	case object.Action:
		return ev.callAction(fn, args)
	default:
		return nil, object.Error{ErrKind: object.TypeError, Message: "value is not callable: " + callee.String()}
	}
}

// callAction runs action's body in a fresh child of action.Env — the
// action's true lexical defining scope, captured at the point
// VisitActionLiteral/VisitAction ran. This is a deliberate, externally
// invisible divergence from vm.invokeProto, which always builds a
// child of vm.globals plus an explicit free-variable cell list (a
// workaround bytecode needs because a function's instruction stream
// has no pointer back to its defining environment; a tree-walker has
// no such gap, since Action.Env already points straight at it). Zexus
// has no construct that can observe scope-chain depth, so both models
// satisfy the Evaluator ≡ VM invariant identically.
func (ev *Evaluator) callAction(action object.Action, args []object.Value) (object.Value, error) {
	if len(args) != len(action.Params) {
		return nil, object.Error{ErrKind: object.ArityError, Message: fmt.Sprintf("%s() expects %d argument(s), got %d", displayName(action.Name), len(action.Params), len(args))}
	}

	env := object.NewChildEnvironment(action.Env)
	for i, p := range action.Params {
		env.Set(p, args[i])
	}

	if action.Async {
		task := ev.scheduler.NewTask(func(t *scheduler.Task) (object.Value, error) {
			return ev.runActionBody(action, env, t)
		})
		return task, nil
	}
	return ev.runActionBody(action, env, nil)
}

// runActionBody executes action's body, translating the
// ReturnSignal/panic control-flow idioms into a plain (Value, error)
// pair at the call boundary. This recover is not optional: when
// action.Async is true, runActionBody runs on a scheduler-owned
// goroutine (see scheduler.Scheduler.NewTask), and an unrecovered
// panic there would crash the whole process rather than simply fail
// the one coroutine that raised it.
func (ev *Evaluator) runActionBody(action object.Action, env *object.Environment, task *scheduler.Task) (result object.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if oerr, ok := r.(object.Error); ok {
				err = oerr
				return
			}
			panic(r)
		}
	}()

	f := frame{ev: ev, env: env, task: task}

	if action.IsLambda() {
		return f.eval(action.ExprBody), nil
	}
	for _, stmt := range action.Body {
		if sig, ok := f.exec(stmt).(object.ReturnSignal); ok {
			return sig.Value, nil
		}
	}
	return object.NullValue, nil
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}

// assertProtocol re-checks that every signature protoName names
// resolves to a callable binding of matching arity under
// contractName's dot-joined action names, mirroring vm.VM.assertProtocol
// exactly (object.Action standing in for object.CompiledFunction). It
// is called once, at the point VisitContract executes, rather than as
// a separately scheduled opcode — the evaluator has no opcode stream
// to schedule one in.
func (ev *Evaluator) assertProtocol(protoName, contractName string) error {
	sigs, ok := ev.protocols[protoName]
	if !ok {
		return object.Error{ErrKind: object.ProtocolError, Message: "contract " + contractName + " claims unknown protocol " + protoName}
	}
	for _, sig := range sigs {
		v, ok := ev.globals.Get(contractName + "." + sig.Name)
		if !ok {
			return object.Error{ErrKind: object.ProtocolError, Message: contractName + " does not conform to " + protoName + ": missing action '" + sig.Name + "'"}
		}
		action, ok := v.(object.Action)
		if !ok {
			return object.Error{ErrKind: object.ProtocolError, Message: contractName + "." + sig.Name + " is not an action"}
		}
		if len(action.Params) != sig.Arity {
			return object.Error{ErrKind: object.ProtocolError, Message: contractName + "." + sig.Name + " has the wrong arity for protocol " + protoName}
		}
	}
	return nil
}

// raise is the evaluator's equivalent of the teacher's `panic(err.Error())`:
// every runtime fault becomes a panic(object.Error{...}), caught at
// Run's top level, inside VisitTryCatch, and inside runActionBody.
func raise(kind object.ErrorKindTag, format string, args ...any) {
	panic(object.Error{ErrKind: kind, Message: fmt.Sprintf(format, args...)})
}

func asObjectError(err error) object.Error {
	if oerr, ok := err.(object.Error); ok {
		return oerr
	}
	return object.Error{ErrKind: object.InternalError, Message: err.Error()}
}

// truthy implements spec §4.4's rule exactly: false, null, 0, 0.0, and
// empty string/list/map are falsy, everything else truthy — the same
// rule builtins.go's own truthy helper (used by filter()) and vm.go's
// truthy (used by JUMP_IF_FALSE) both apply. Every conditional
// construct here — If, While, IfExpr, &&, || — must agree with the
// compiled path's JUMP_IF_FALSE for the Evaluator ≡ VM invariant to
// hold on control flow.
func truthy(v object.Value) bool {
	switch val := v.(type) {
	case object.Boolean:
		return val.Value
	case object.Null:
		return false
	case object.Integer:
		return val.Value.Sign() != 0
	case object.Float:
		return val.Value != 0
	case object.String:
		return val.Value != ""
	case object.List:
		return len(val.Elements) != 0
	case *object.Map:
		return len(val.Keys) != 0
	default:
		return true
	}
}
