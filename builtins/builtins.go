// Package builtins implements the built-in function registry of spec
// §6.2: a map[string]*object.Builtin merged into the global frame by
// both the evaluator and the VM (spec §4.4, "held in a registry ...
// merged into the global frame"). The teacher ships no built-ins at
// all — interpreter/environment.go's Environment.set is the only thing
// grounding the registry's shape — so every entry here is built
// directly against spec.md's contract table rather than adapted from
// teacher code.
//
// Built-ins that need to call back into user code (map/filter/reduce)
// or touch cooperative scheduling (spawn) do not import the evaluator
// or VM package directly — that would cycle. Instead New takes a small
// Deps bundle supplying an Apply callback and the shared Scheduler and
// Renderer, so the same registry serves both execution paths.
package builtins

import (
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"zexus/object"
	"zexus/renderer"
	"zexus/scheduler"
)

// Apply invokes an arbitrary callable Value (Action, Builtin, or a
// compiled closure) with args, the same way a Call expression/CALL_*
// opcode would. The evaluator and VM each supply their own.
type Apply func(callee object.Value, args []object.Value) (object.Value, error)

type Deps struct {
	Apply     Apply
	Scheduler *scheduler.Scheduler
	Renderer  renderer.Renderer
	Events    *object.EventRegistry
}

func typeError(msg string) error {
	return object.Error{ErrKind: object.TypeError, Message: msg}
}

func arityError(msg string) error {
	return object.Error{ErrKind: object.ArityError, Message: msg}
}

// New builds the built-in registry. Names are merged into the global
// frame by the caller (evaluator.New / vm.New), never consulted here.
func New(deps Deps) map[string]*object.Builtin {
	reg := map[string]*object.Builtin{}
	add := func(name string, arity int, fn object.BuiltinFunc) {
		reg[name] = &object.Builtin{Name: name, Arity: arity, Fn: fn}
	}

	add("string", 1, func(args []object.Value) (object.Value, error) {
		return object.String{Value: stringify(args[0])}, nil
	})

	add("len", 1, func(args []object.Value) (object.Value, error) {
		switch v := args[0].(type) {
		case object.String:
			return object.NewInteger(int64(len(v.Value))), nil
		case object.List:
			return object.NewInteger(int64(len(v.Elements))), nil
		case *object.Map:
			return object.NewInteger(int64(len(v.Keys))), nil
		default:
			return nil, typeError("len() expects a String, List or Map")
		}
	})

	add("first", 1, func(args []object.Value) (object.Value, error) {
		l, ok := args[0].(object.List)
		if !ok {
			return nil, typeError("first() expects a List")
		}
		if len(l.Elements) == 0 {
			return object.NullValue, nil
		}
		return l.Elements[0], nil
	})

	add("rest", 1, func(args []object.Value) (object.Value, error) {
		l, ok := args[0].(object.List)
		if !ok {
			return nil, typeError("rest() expects a List")
		}
		if len(l.Elements) == 0 {
			return object.List{}, nil
		}
		rest := make([]object.Value, len(l.Elements)-1)
		copy(rest, l.Elements[1:])
		return object.List{Elements: rest}, nil
	})

	add("push", 2, func(args []object.Value) (object.Value, error) {
		l, ok := args[0].(object.List)
		if !ok {
			return nil, typeError("push() expects a List")
		}
		next := make([]object.Value, len(l.Elements)+1)
		copy(next, l.Elements)
		next[len(l.Elements)] = args[1]
		return object.List{Elements: next}, nil
	})

	add("map", 2, func(args []object.Value) (object.Value, error) {
		l, ok := args[0].(object.List)
		if !ok {
			return nil, typeError("map() expects a List as its first argument")
		}
		out := make([]object.Value, len(l.Elements))
		for i, el := range l.Elements {
			v, err := deps.Apply(args[1], []object.Value{el})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return object.List{Elements: out}, nil
	})

	add("filter", 2, func(args []object.Value) (object.Value, error) {
		l, ok := args[0].(object.List)
		if !ok {
			return nil, typeError("filter() expects a List as its first argument")
		}
		var out []object.Value
		for _, el := range l.Elements {
			v, err := deps.Apply(args[1], []object.Value{el})
			if err != nil {
				return nil, err
			}
			if truthy(v) {
				out = append(out, el)
			}
		}
		return object.List{Elements: out}, nil
	})

	add("reduce", -1, func(args []object.Value) (object.Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, arityError("reduce() expects 2 or 3 arguments")
		}
		l, ok := args[0].(object.List)
		if !ok {
			return nil, typeError("reduce() expects a List as its first argument")
		}
		fn := args[1]
		elements := l.Elements
		var acc object.Value
		if len(args) == 3 {
			acc = args[2]
		} else {
			if len(elements) == 0 {
				return nil, object.Error{ErrKind: object.InternalError, Message: "reduce() on empty list with no initial value"}
			}
			acc = elements[0]
			elements = elements[1:]
		}
		for _, el := range elements {
			v, err := deps.Apply(fn, []object.Value{acc, el})
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	})

	add("datetime_now", 0, func(args []object.Value) (object.Value, error) {
		return object.DateTime{Unix: time.Now().Unix()}, nil
	})

	add("random", 0, func(args []object.Value) (object.Value, error) {
		return object.Float{Value: rand.Float64()}, nil
	})

	add("sqrt", 1, func(args []object.Value) (object.Value, error) {
		f, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		return object.Float{Value: math.Sqrt(f)}, nil
	})

	add("to_hex", 1, func(args []object.Value) (object.Value, error) {
		i, ok := args[0].(object.Integer)
		if !ok {
			return nil, typeError("to_hex() expects an Integer")
		}
		return object.String{Value: strings.ToLower(i.Value.Text(16))}, nil
	})

	add("from_hex", 1, func(args []object.Value) (object.Value, error) {
		s, ok := args[0].(object.String)
		if !ok {
			return nil, typeError("from_hex() expects a String")
		}
		n := new(big.Int)
		if _, ok := n.SetString(strings.TrimPrefix(s.Value, "0x"), 16); !ok {
			return nil, typeError("from_hex(): invalid hex string " + strconv.Quote(s.Value))
		}
		return object.Integer{Value: n}, nil
	})

	add("file_read_text", 1, func(args []object.Value) (object.Value, error) {
		path, err := toStringArg(args[0], "file_read_text")
		if err != nil {
			return nil, err
		}
		data, ioErr := os.ReadFile(path)
		if ioErr != nil {
			return nil, object.Error{ErrKind: object.IOError, Message: ioErr.Error()}
		}
		return object.String{Value: string(data)}, nil
	})

	add("file_write_text", 2, func(args []object.Value) (object.Value, error) {
		path, err := toStringArg(args[0], "file_write_text")
		if err != nil {
			return nil, err
		}
		text, err := toStringArg(args[1], "file_write_text")
		if err != nil {
			return nil, err
		}
		if ioErr := os.WriteFile(path, []byte(text), 0644); ioErr != nil {
			return nil, object.Error{ErrKind: object.IOError, Message: ioErr.Error()}
		}
		return object.NullValue, nil
	})

	add("file_read_json", 1, func(args []object.Value) (object.Value, error) {
		path, err := toStringArg(args[0], "file_read_json")
		if err != nil {
			return nil, err
		}
		data, ioErr := os.ReadFile(path)
		if ioErr != nil {
			return nil, object.Error{ErrKind: object.IOError, Message: ioErr.Error()}
		}
		v, decErr := decodeJSON(data)
		if decErr != nil {
			return nil, object.Error{ErrKind: object.IOError, Message: decErr.Error()}
		}
		return v, nil
	})

	add("file_write_json", 2, func(args []object.Value) (object.Value, error) {
		path, err := toStringArg(args[0], "file_write_json")
		if err != nil {
			return nil, err
		}
		data, encErr := encodeJSON(args[1])
		if encErr != nil {
			return nil, object.Error{ErrKind: object.IOError, Message: encErr.Error()}
		}
		if ioErr := os.WriteFile(path, data, 0644); ioErr != nil {
			return nil, object.Error{ErrKind: object.IOError, Message: ioErr.Error()}
		}
		return object.NullValue, nil
	})

	add("list_dir", 1, func(args []object.Value) (object.Value, error) {
		path, err := toStringArg(args[0], "list_dir")
		if err != nil {
			return nil, err
		}
		entries, ioErr := os.ReadDir(path)
		if ioErr != nil {
			return nil, object.Error{ErrKind: object.IOError, Message: ioErr.Error()}
		}
		names := make([]object.Value, len(entries))
		for i, e := range entries {
			names[i] = object.String{Value: e.Name()}
		}
		return object.List{Elements: names}, nil
	})

	// __print__ backs the `print` statement in both execution paths; the
	// evaluator could write to stdout directly, but routing it through
	// the same builtin-call mechanism as every other runtime call keeps
	// the compiled path's Print lowering uniform with ForEach's.
	add("__print__", 1, func(args []object.Value) (object.Value, error) {
		fmt.Println(stringify(args[0]))
		return object.NullValue, nil
	})

	add("debug_log", -1, func(args []object.Value) (object.Value, error) {
		if len(args) == 0 || len(args) > 2 {
			return nil, arityError("debug_log() expects 1 or 2 arguments")
		}
		if len(args) == 2 {
			fmt.Fprintf(os.Stderr, "[debug] %s %s\n", stringify(args[0]), stringify(args[1]))
		} else {
			fmt.Fprintf(os.Stderr, "[debug] %s\n", stringify(args[0]))
		}
		return object.NullValue, nil
	})

	add("debug_trace", 1, func(args []object.Value) (object.Value, error) {
		fmt.Fprintf(os.Stderr, "[trace] %s\n", stringify(args[0]))
		return object.NullValue, nil
	})

	add("sleep", 1, func(args []object.Value) (object.Value, error) {
		if _, err := toFloat(args[0]); err != nil {
			return nil, err
		}
		return object.NullValue, nil
	})

	add("spawn", 1, func(args []object.Value) (object.Value, error) {
		task, ok := args[0].(*scheduler.Task)
		if !ok {
			return nil, typeError("spawn() expects a Coroutine")
		}
		deps.Scheduler.Enqueue(task)
		return task, nil
	})

	// __iter__/__next__ are not part of spec §6.2's public table — they
	// are the runtime calls spec §4.6 says ForEach lowers to in the
	// compiled path ("obtain an iterator handle via a runtime call
	// __iter__"). Reusing the ordinary builtin-call mechanism for them
	// avoids inventing a dedicated opcode for a construct the evaluator
	// itself never needs (it walks ForEach natively).
	add("__iter__", 1, func(args []object.Value) (object.Value, error) {
		switch v := args[0].(type) {
		case object.List:
			return object.NewIterator(v.Elements), nil
		case *object.Map:
			keys := make([]object.Value, len(v.Keys))
			for i, k := range v.Keys {
				keys[i] = object.String{Value: k}
			}
			return object.NewIterator(keys), nil
		default:
			return nil, typeError("for-each expects a List or Map")
		}
	})

	add("__next__", 1, func(args []object.Value) (object.Value, error) {
		it, ok := args[0].(*object.Iterator)
		if !ok {
			return nil, typeError("__next__() expects an Iterator")
		}
		v, more := it.Next()
		out := object.NewMap()
		out.Set("done", object.NativeBool(!more))
		out.Set("value", v)
		return out, nil
	})

	add("register_event", 2, func(args []object.Value) (object.Value, error) {
		name, err := toStringArg(args[0], "register_event")
		if err != nil {
			return nil, err
		}
		if _, declared := deps.Events.Declared(name); !declared {
			return nil, object.Error{ErrKind: object.EventError, Message: "register_event(): no event named " + strconv.Quote(name) + " is declared"}
		}
		deps.Events.Register(name, args[1])
		return object.NullValue, nil
	})

	for _, tag := range []string{
		"define_screen", "define_component", "render_screen", "add_to_screen",
		"set_theme", "mix", "create_canvas", "draw_line", "draw_circle",
		"draw_rectangle", "draw_text", "create_animation", "start_animation",
	} {
		tag := tag
		add(tag, -1, func(args []object.Value) (object.Value, error) {
			return deps.Renderer.Op(tag, args)
		})
	}

	for _, name := range []string{
		"blockchain_connect", "blockchain_sign", "blockchain_broadcast",
		"crypto_hash", "crypto_verify", "wallet_balance",
	} {
		name := name
		add(name, -1, func(args []object.Value) (object.Value, error) {
			return nil, object.Error{ErrKind: object.InternalError, Message: name + "() is a name-only stub (spec §1: blockchain/crypto built-ins are out of scope)"}
		})
	}

	return reg
}

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

func toFloat(v object.Value) (float64, error) {
	switch val := v.(type) {
	case object.Integer:
		f, _ := new(big.Float).SetInt(val.Value).Float64()
		return f, nil
	case object.Float:
		return val.Value, nil
	default:
		return 0, typeError("expected a numeric value")
	}
}

func toStringArg(v object.Value, builtin string) (string, error) {
	s, ok := v.(object.String)
	if !ok {
		return "", typeError(builtin + "() expects a String argument")
	}
	return s.Value, nil
}

// stringify implements the `string()` builtin's recursive printer. Maps
// print in insertion order (spec §6.2); nested strings are quoted.
func stringify(v object.Value) string {
	return v.String()
}
