// Package vm implements the stack-based bytecode virtual machine of
// spec §4.7. It is a from-scratch rewrite of the teacher's vm.go: the
// teacher's VM held one flat instruction array, one ip, and one shared
// Stack as struct fields and executed only OP_CONSTANT/OP_END. Every
// Call here recurses through a plain Go function (runFunction) instead
// — each function body gets its own local operand stack and try-stack,
// and a nested call is a nested Go call, so the native Go call stack
// stands in for the teacher's single flat frame/ip pair. This also
// makes the VM safe to invoke re-entrantly from multiple scheduler
// goroutines: nothing but read-mostly pools (globals, constants,
// function table) is shared mutable state.
package vm

import (
	"fmt"

	"zexus/builtins"
	"zexus/compiler"
	"zexus/object"
	"zexus/renderer"
	"zexus/scheduler"
)

// VM owns every pool a compiled program's instructions index into, plus
// the collaborators (scheduler, renderer, shared event registry) the
// evaluator also drives — so both execution paths observe identical
// concurrency and event semantics (spec §8's Evaluator ≡ VM invariant).
type VM struct {
	bc        *compiler.Bytecode
	globals   *object.Environment
	builtins  map[string]*object.Builtin
	scheduler *scheduler.Scheduler
	events    *object.EventRegistry
	renderer  renderer.Renderer
}

// New builds a VM. A nil renderer defaults to renderer.Null, matching
// spec §9's "language core is fully testable without a UI" stance.
func New(r renderer.Renderer) *VM {
	if r == nil {
		r = renderer.Null{}
	}
	vm := &VM{
		globals:   object.NewEnvironment(),
		scheduler: scheduler.New(),
		events:    object.NewEventRegistry(),
		renderer:  r,
	}
	vm.builtins = builtins.New(builtins.Deps{
		Apply:     vm.callValue,
		Scheduler: vm.scheduler,
		Renderer:  vm.renderer,
		Events:    vm.events,
	})
	return vm
}

// tryHandler is one entry on a function body's try-stack: where to jump
// on a caught error, and which name to bind it under.
type tryHandler struct {
	target  int
	errName string
}

// Run executes a complete compiled program and drives every spawned
// coroutine to completion before returning, matching the evaluator's
// own top-level behavior of not leaving pending async work dangling.
func (vm *VM) Run(bc *compiler.Bytecode) (object.Value, error) {
	vm.bc = bc
	for name, b := range vm.builtins {
		vm.globals.Set(name, b)
	}
	result, err := vm.runFunction(bc.Instructions, vm.globals, nil)
	vm.scheduler.RunUntilIdle()
	return result, err
}

// runFunction is the fetch-decode loop for one function body (or the
// top-level program). It owns its own operand stack and try-stack;
// RETURN/OP_END both terminate it. task is non-nil only when this call
// is running inside a spawned coroutine's goroutine, so AWAIT knows
// whether to yield cooperatively or drive the scheduler directly.
func (vm *VM) runFunction(instrs compiler.Instructions, env *object.Environment, task *scheduler.Task) (object.Value, error) {
	var stack Stack
	var tryStack []tryHandler
	ip := 0

	raise := func(err error) (object.Value, error, bool) {
		if len(tryStack) == 0 {
			return nil, err, false
		}
		h := tryStack[len(tryStack)-1]
		tryStack = tryStack[:len(tryStack)-1]
		stack = stack[:0]
		env.Set(h.errName, toErrorValue(err))
		ip = h.target
		return nil, nil, true
	}

	for {
		if ip >= len(instrs) {
			return object.NullValue, nil
		}
		op := compiler.Opcode(instrs[ip])
		width := compiler.Width(op)
		operandAt := func(n int) int { return int(compiler.ReadUint16(instrs, ip+1+n*2)) }

		var err error
		nextIP := ip + width

		switch op {
		case compiler.OP_END:
			return object.NullValue, nil

		case compiler.OP_LOAD_CONST:
			stack.Push(vm.bc.Constants[operandAt(0)])

		case compiler.OP_LOAD:
			name := vm.bc.Names[operandAt(0)]
			v, ok := env.Get(name)
			if !ok {
				err = object.Error{ErrKind: object.NameError, Message: "name '" + name + "' is not defined"}
				break
			}
			stack.Push(v)

		case compiler.OP_STORE:
			name := vm.bc.Names[operandAt(0)]
			v, _ := stack.Pop()
			env.Set(name, v)

		case compiler.OP_ASSIGN:
			name := vm.bc.Names[operandAt(0)]
			v, _ := stack.Pop()
			if !env.Assign(name, v) {
				err = object.Error{ErrKind: object.NameError, Message: "name '" + name + "' is not defined"}
			}

		case compiler.OP_POP:
			stack.Pop()

		case compiler.OP_DUP:
			v, _ := stack.Peek()
			stack.Push(v)

		case compiler.OP_MAKE_LIST:
			n := operandAt(0)
			stack.Push(object.List{Elements: stack.PopN(n)})

		case compiler.OP_MAKE_MAP:
			n := operandAt(0)
			pairs := stack.PopN(n * 2)
			m := object.NewMap()
			for i := 0; i < len(pairs); i += 2 {
				m.Set(pairs[i].String(), pairs[i+1])
			}
			stack.Push(m)

		case compiler.OP_INDEX:
			idx, _ := stack.Pop()
			recv, _ := stack.Pop()
			v, ierr := indexValue(recv, idx)
			if ierr != nil {
				err = ierr
				break
			}
			stack.Push(v)

		case compiler.OP_PROP:
			name := vm.bc.Names[operandAt(0)]
			recv, _ := stack.Pop()
			v, perr := propValue(recv, name)
			if perr != nil {
				err = perr
				break
			}
			stack.Push(v)

		case compiler.OP_BIN:
			right, _ := stack.Pop()
			left, _ := stack.Pop()
			v, berr := binOp(compiler.BinOp(operandAt(0)), left, right)
			if berr != nil {
				err = berr
				break
			}
			stack.Push(v)

		case compiler.OP_UN:
			v, _ := stack.Pop()
			r, uerr := unOp(compiler.UnOp(operandAt(0)), v)
			if uerr != nil {
				err = uerr
				break
			}
			stack.Push(r)

		case compiler.OP_JUMP:
			nextIP = operandAt(0)

		case compiler.OP_JUMP_IF_FALSE:
			v, _ := stack.Pop()
			if !truthy(v) {
				nextIP = operandAt(0)
			}

		case compiler.OP_CALL_NAME:
			name := vm.bc.Names[operandAt(0)]
			argc := operandAt(1)
			args := stack.PopN(argc)
			v, cerr := vm.callByName(name, args, env)
			if cerr != nil {
				err = cerr
				break
			}
			stack.Push(v)

		case compiler.OP_CALL_FUNC_CONST:
			fnIdx := operandAt(0)
			argc := operandAt(1)
			args := stack.PopN(argc)
			proto := vm.bc.Functions[fnIdx]
			v, cerr := vm.invokeProto(proto, fnIdx, nil, args)
			if cerr != nil {
				err = cerr
				break
			}
			stack.Push(v)

		case compiler.OP_CALL_TOP:
			argc := operandAt(0)
			args := stack.PopN(argc)
			callee, _ := stack.Pop()
			v, cerr := vm.callValue(callee, args)
			if cerr != nil {
				err = cerr
				break
			}
			stack.Push(v)

		case compiler.OP_RETURN:
			v, _ := stack.Pop()
			return v, nil

		case compiler.OP_STORE_FUNC:
			name := vm.bc.Names[operandAt(0)]
			fnIdx := operandAt(1)
			proto := vm.bc.Functions[fnIdx]
			free := make([]*object.Cell, 0, len(proto.FreeNames))
			for _, fname := range proto.FreeNames {
				cell, ok := env.GetCell(fname)
				if !ok {
					cell = object.NewCell(object.NullValue)
				}
				free = append(free, cell)
			}
			fn := object.CompiledFunction{Name: proto.Name, Index: fnIdx, Params: proto.Params, Free: free, Async: proto.Async}
			env.Set(name, fn)

		case compiler.OP_SPAWN:
			v, _ := stack.Pop()
			t, ok := v.(*scheduler.Task)
			if !ok {
				err = object.Error{ErrKind: object.TypeError, Message: "spawn expects an async action's result"}
				break
			}
			vm.scheduler.Enqueue(t)
			stack.Push(t)

		case compiler.OP_AWAIT:
			v, _ := stack.Pop()
			t, ok := v.(*scheduler.Task)
			if !ok {
				stack.Push(v)
				break
			}
			result, awaitErr := vm.scheduler.Await(task, t)
			if awaitErr != nil {
				err = awaitErr
				break
			}
			stack.Push(result)

		case compiler.OP_REGISTER_EVENT:
			proto := vm.bc.Events[operandAt(0)]
			vm.events.Declare(object.EventDescriptor{Name: proto.Name, Fields: proto.Fields})

		case compiler.OP_EMIT_EVENT:
			proto := vm.bc.Events[operandAt(0)]
			payload, _ := stack.Pop()
			payload = object.ApplyEventDefaults(payload, proto.Fields)
			for _, handler := range vm.events.Handlers(proto.Name) {
				if _, herr := vm.callValue(handler, []object.Value{payload}); herr != nil {
					err = herr
					break
				}
			}

		case compiler.OP_DEFINE_ENUM:
			// Enum variants are resolved to object.EnumValue constants
			// entirely at compile time (see compiler.Emitter's enum
			// prescan); nothing further is needed at runtime.

		case compiler.OP_ASSERT_PROTOCOL:
			protoIdx := operandAt(0)
			contractName := vm.bc.Names[operandAt(1)]
			if aerr := vm.assertProtocol(vm.bc.Protocols[protoIdx], contractName, env); aerr != nil {
				err = aerr
			}

		case compiler.OP_IMPORT:
			// Module resolution is out of scope for this VM (spec §1's
			// external-module loading is left to cmd/zexus); declare the
			// alias as null so referencing it fails loudly rather than
			// silently, instead of leaving it entirely unbound.
			alias := vm.bc.Names[operandAt(1)]
			env.Set(alias, object.NullValue)

		case compiler.OP_TRY_PUSH:
			tryStack = append(tryStack, tryHandler{target: operandAt(0), errName: vm.bc.Names[operandAt(1)]})

		case compiler.OP_TRY_POP:
			if len(tryStack) > 0 {
				tryStack = tryStack[:len(tryStack)-1]
			}

		case compiler.OP_RAISE:
			v, _ := stack.Pop()
			err = toErrorFromValue(v)

		case compiler.OP_RENDER_OP:
			tagName := vm.bc.Names[operandAt(0)]
			argc := operandAt(1)
			args := stack.PopN(argc)
			v, rerr := vm.renderer.Op(tagName, args)
			if rerr != nil {
				err = rerr
				break
			}
			stack.Push(v)

		default:
			return nil, RuntimeError{Message: fmt.Sprintf("unknown opcode %d at ip %d", op, ip)}
		}

		if err != nil {
			v, rerr, caught := raise(err)
			if caught {
				continue
			}
			return v, rerr
		}
		ip = nextIP
	}
}

// callByName resolves name against env first (ordinary identifiers and
// builtins), with one special case: the emitter's "$method:" pseudo-name
// convention for recv.method(args) calls, where the receiver was pushed
// as the first of args.
func (vm *VM) callByName(name string, args []object.Value, env *object.Environment) (object.Value, error) {
	if method, ok := methodName(name); ok {
		if len(args) == 0 {
			return nil, object.Error{ErrKind: object.InternalError, Message: "method call compiled with no receiver"}
		}
		recv, rest := args[0], args[1:]
		v, handled, err := object.DispatchMethod(recv, method, rest)
		if err != nil {
			return nil, err
		}
		if !handled {
			return nil, object.Error{ErrKind: object.AttributeError, Message: string(recv.Kind()) + " has no method '" + method + "'"}
		}
		return v, nil
	}

	v, ok := env.Get(name)
	if !ok {
		return nil, object.Error{ErrKind: object.NameError, Message: "name '" + name + "' is not defined"}
	}
	return vm.callValue(v, args)
}

const methodPrefix = "$method:"

func methodName(name string) (string, bool) {
	if len(name) > len(methodPrefix) && name[:len(methodPrefix)] == methodPrefix {
		return name[len(methodPrefix):], true
	}
	return "", false
}

// callValue invokes any callable Value the same way regardless of how
// it was reached — by CALL_TOP, by a name lookup, or by a builtin like
// map/filter/reduce calling back into user code via Deps.Apply.
func (vm *VM) callValue(callee object.Value, args []object.Value) (object.Value, error) {
	switch fn := callee.(type) {
	case *object.Builtin:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, object.Error{ErrKind: object.ArityError, Message: fmt.Sprintf("%s() expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))}
		}
		return fn.Fn(args)
	case object.CompiledFunction:
		proto := vm.bc.Functions[fn.Index]
		return vm.invokeProto(proto, fn.Index, fn.Free, args)
	default:
		return nil, object.Error{ErrKind: object.TypeError, Message: "value is not callable: " + callee.String()}
	}
}

// invokeProto runs proto's body in a fresh child environment, binding
// free variable cells (if any) and parameters, then either runs it
// synchronously or — for an async action — wraps it in an unexecuted
// scheduler.Task, matching spec §4.4's "calling an async action
// produces a Coroutine" rule exactly for both execution paths.
func (vm *VM) invokeProto(proto compiler.FunctionProto, fnIdx int, free []*object.Cell, args []object.Value) (object.Value, error) {
	if len(args) != len(proto.Params) {
		return nil, object.Error{ErrKind: object.ArityError, Message: fmt.Sprintf("%s() expects %d argument(s), got %d", displayName(proto.Name), len(proto.Params), len(args))}
	}

	env := object.NewChildEnvironment(vm.globals)
	for i, fname := range proto.FreeNames {
		if i < len(free) {
			env.SetCell(fname, free[i])
		}
	}
	for i, p := range proto.Params {
		env.Set(p, args[i])
	}

	if proto.Async {
		task := vm.scheduler.NewTask(func(t *scheduler.Task) (object.Value, error) {
			return vm.runFunction(proto.Instructions, env, t)
		})
		return task, nil
	}
	return vm.runFunction(proto.Instructions, env, nil)
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}

// assertProtocol re-checks, at runtime, that every signature a protocol
// names resolves to a callable binding of matching arity under the
// contract's dot-joined action names — a repeat of the semantic
// analyzer's static check (package semantic), kept here as a
// belt-and-suspenders runtime guard per spec §4.5/§4.7.
func (vm *VM) assertProtocol(proto compiler.ProtocolProto, contractName string, env *object.Environment) error {
	for _, sig := range proto.Signatures {
		v, ok := env.Get(contractName + "." + sig.Name)
		if !ok {
			return object.Error{ErrKind: object.ProtocolError, Message: contractName + " does not conform to " + proto.Name + ": missing action '" + sig.Name + "'"}
		}
		fn, ok := v.(object.CompiledFunction)
		if !ok {
			return object.Error{ErrKind: object.ProtocolError, Message: contractName + "." + sig.Name + " is not an action"}
		}
		if len(fn.Params) != sig.Arity {
			return object.Error{ErrKind: object.ProtocolError, Message: contractName + "." + sig.Name + " has the wrong arity for protocol " + proto.Name}
		}
	}
	return nil
}

func toErrorValue(err error) object.Value {
	if e, ok := err.(object.Error); ok {
		return e
	}
	return object.Error{ErrKind: object.InternalError, Message: err.Error()}
}

func toErrorFromValue(v object.Value) error {
	if e, ok := v.(object.Error); ok {
		return e
	}
	return object.Error{ErrKind: object.InternalError, Message: v.String()}
}

// truthy implements spec §4.4's rule exactly: false, null, 0, 0.0, and
// empty string/list/map are falsy, everything else truthy. Matches
// builtins.go's own truthy helper (used by filter()) — there is only
// one truthiness rule in this language, and every conditional opcode
// here must agree with it for the Evaluator ≡ VM invariant to hold.
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
