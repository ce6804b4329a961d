package object

import "strings"

// DispatchMethod implements spec §4.4's "recv.m(args) is resolved by a
// built-in dispatch table keyed on the receiver's tag kind and the
// method name". It is shared by the evaluator and the VM so a method
// call behaves identically on both execution paths (the Evaluator ≡
// VM invariant, spec §8). The bool result reports whether name was a
// recognized method for recv's kind at all; false means the caller
// should raise AttributeError.
func DispatchMethod(recv Value, name string, args []Value) (Value, bool, error) {
	switch r := recv.(type) {
	case String:
		return dispatchStringMethod(r, name, args)
	case List:
		return dispatchListMethod(r, name, args)
	case *Map:
		return dispatchMapMethod(r, name, args)
	default:
		return nil, false, nil
	}
}

func dispatchStringMethod(s String, name string, args []Value) (Value, bool, error) {
	switch name {
	case "length":
		return NewInteger(int64(len(s.Value))), true, nil
	case "upper":
		return String{Value: strings.ToUpper(s.Value)}, true, nil
	case "lower":
		return String{Value: strings.ToLower(s.Value)}, true, nil
	case "contains":
		if len(args) != 1 {
			return nil, true, Error{ErrKind: ArityError, Message: "contains() expects 1 argument"}
		}
		needle, ok := args[0].(String)
		if !ok {
			return nil, true, Error{ErrKind: TypeError, Message: "contains() expects a String argument"}
		}
		return NativeBool(strings.Contains(s.Value, needle.Value)), true, nil
	default:
		return nil, false, nil
	}
}

func dispatchListMethod(l List, name string, args []Value) (Value, bool, error) {
	switch name {
	case "length":
		return NewInteger(int64(len(l.Elements))), true, nil
	default:
		return nil, false, nil
	}
}

func dispatchMapMethod(m *Map, name string, args []Value) (Value, bool, error) {
	switch name {
	case "keys":
		out := make([]Value, len(m.Keys))
		for i, k := range m.Keys {
			out[i] = String{Value: k}
		}
		return List{Elements: out}, true, nil
	case "has":
		if len(args) != 1 {
			return nil, true, Error{ErrKind: ArityError, Message: "has() expects 1 argument"}
		}
		key, ok := args[0].(String)
		if !ok {
			return nil, true, Error{ErrKind: TypeError, Message: "has() expects a String argument"}
		}
		_, found := m.Get(key.Value)
		return NativeBool(found), true, nil
	case "length":
		return NewInteger(int64(len(m.Keys))), true, nil
	default:
		return nil, false, nil
	}
}

