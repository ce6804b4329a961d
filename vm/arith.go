package vm

import (
	"math/big"

	"zexus/compiler"
	"zexus/object"
)

// indexValue implements the OP_INDEX opcode: List[Integer], Map[String],
// String[Integer] (single-rune slice). Grounded on the same value model
// the evaluator will use, so indexing behaves identically on both
// execution paths.
func indexValue(recv, idx object.Value) (object.Value, error) {
	switch r := recv.(type) {
	case object.List:
		i, ok := idx.(object.Integer)
		if !ok {
			return nil, object.Error{ErrKind: object.TypeError, Message: "list index must be an Integer"}
		}
		n := int(i.Value.Int64())
		if n < 0 || n >= len(r.Elements) {
			return nil, object.Error{ErrKind: object.AttributeError, Message: "list index out of range"}
		}
		return r.Elements[n], nil
	case *object.Map:
		key, ok := idx.(object.String)
		if !ok {
			return nil, object.Error{ErrKind: object.TypeError, Message: "map key must be a String"}
		}
		v, found := r.Get(key.Value)
		if !found {
			return nil, object.Error{ErrKind: object.AttributeError, Message: "map has no key '" + key.Value + "'"}
		}
		return v, nil
	case object.String:
		i, ok := idx.(object.Integer)
		if !ok {
			return nil, object.Error{ErrKind: object.TypeError, Message: "string index must be an Integer"}
		}
		runes := []rune(r.Value)
		n := int(i.Value.Int64())
		if n < 0 || n >= len(runes) {
			return nil, object.Error{ErrKind: object.AttributeError, Message: "string index out of range"}
		}
		return object.String{Value: string(runes[n])}, nil
	default:
		return nil, object.Error{ErrKind: object.TypeError, Message: "value is not indexable"}
	}
}

// propValue implements the OP_PROP opcode for field-style property
// reads (Map entries, including the `done`/`value` pair __next__
// returns to the compiled ForEach loop).
func propValue(recv object.Value, name string) (object.Value, error) {
	m, ok := recv.(*object.Map)
	if !ok {
		return nil, object.Error{ErrKind: object.AttributeError, Message: "value has no property '" + name + "'"}
	}
	v, found := m.Get(name)
	if !found {
		return nil, object.Error{ErrKind: object.AttributeError, Message: "map has no property '" + name + "'"}
	}
	return v, nil
}

func isNumeric(v object.Value) bool {
	switch v.(type) {
	case object.Integer, object.Float:
		return true
	}
	return false
}

func asFloat(v object.Value) float64 {
	switch n := v.(type) {
	case object.Integer:
		f := new(big.Float).SetInt(n.Value)
		out, _ := f.Float64()
		return out
	case object.Float:
		return n.Value
	}
	return 0
}

// binOp implements spec §4.4's arithmetic/comparison rules: Integer
// stays arbitrary-precision (big.Int) unless either operand is a
// Float, in which case both promote to float64; `+` concatenates only
// when both operands are String; every comparison is valid across
// Integer/Float/String.
func binOp(op compiler.BinOp, left, right object.Value) (object.Value, error) {
	if op == compiler.BIN_ADD {
		ls, lok := left.(object.String)
		rs, rok := right.(object.String)
		if lok && rok {
			return object.String{Value: ls.Value + rs.Value}, nil
		}
		if lok != rok {
			return nil, object.Error{ErrKind: object.TypeError, Message: "'+' requires both operands to be numbers or both to be strings"}
		}
	}

	switch op {
	case compiler.BIN_EQ:
		return object.NativeBool(valuesEqual(left, right)), nil
	case compiler.BIN_NEQ:
		return object.NativeBool(!valuesEqual(left, right)), nil
	}

	if !isNumeric(left) || !isNumeric(right) {
		return nil, object.Error{ErrKind: object.TypeError, Message: "operator requires numeric operands"}
	}

	li, liok := left.(object.Integer)
	ri, riok := right.(object.Integer)
	if liok && riok {
		return integerBinOp(op, li, ri)
	}

	lf, rf := asFloat(left), asFloat(right)
	switch op {
	case compiler.BIN_ADD:
		return object.Float{Value: lf + rf}, nil
	case compiler.BIN_SUB:
		return object.Float{Value: lf - rf}, nil
	case compiler.BIN_MUL:
		return object.Float{Value: lf * rf}, nil
	case compiler.BIN_DIV:
		if rf == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Float{Value: lf / rf}, nil
	case compiler.BIN_MOD:
		if rf == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Float{Value: float64(int64(lf) % int64(rf))}, nil
	case compiler.BIN_LT:
		return object.NativeBool(lf < rf), nil
	case compiler.BIN_LTE:
		return object.NativeBool(lf <= rf), nil
	case compiler.BIN_GT:
		return object.NativeBool(lf > rf), nil
	case compiler.BIN_GTE:
		return object.NativeBool(lf >= rf), nil
	}
	return nil, object.Error{ErrKind: object.InternalError, Message: "unhandled binary operator"}
}

func integerBinOp(op compiler.BinOp, l, r object.Integer) (object.Value, error) {
	switch op {
	case compiler.BIN_ADD:
		return object.Integer{Value: new(big.Int).Add(l.Value, r.Value)}, nil
	case compiler.BIN_SUB:
		return object.Integer{Value: new(big.Int).Sub(l.Value, r.Value)}, nil
	case compiler.BIN_MUL:
		return object.Integer{Value: new(big.Int).Mul(l.Value, r.Value)}, nil
	case compiler.BIN_DIV:
		if r.Value.Sign() == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Integer{Value: new(big.Int).Quo(l.Value, r.Value)}, nil
	case compiler.BIN_MOD:
		if r.Value.Sign() == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Integer{Value: new(big.Int).Rem(l.Value, r.Value)}, nil
	case compiler.BIN_LT:
		return object.NativeBool(l.Value.Cmp(r.Value) < 0), nil
	case compiler.BIN_LTE:
		return object.NativeBool(l.Value.Cmp(r.Value) <= 0), nil
	case compiler.BIN_GT:
		return object.NativeBool(l.Value.Cmp(r.Value) > 0), nil
	case compiler.BIN_GTE:
		return object.NativeBool(l.Value.Cmp(r.Value) >= 0), nil
	}
	return nil, object.Error{ErrKind: object.InternalError, Message: "unhandled integer operator"}
}

func valuesEqual(left, right object.Value) bool {
	switch l := left.(type) {
	case object.Integer:
		r, ok := right.(object.Integer)
		return ok && l.Value.Cmp(r.Value) == 0
	case object.Float:
		r, ok := right.(object.Float)
		return ok && l.Value == r.Value
	case object.String:
		r, ok := right.(object.String)
		return ok && l.Value == r.Value
	case object.Boolean:
		r, ok := right.(object.Boolean)
		return ok && l.Value == r.Value
	case object.Null:
		_, ok := right.(object.Null)
		return ok
	case object.EnumValue:
		r, ok := right.(object.EnumValue)
		return ok && l.EnumName == r.EnumName && l.Variant == r.Variant
	default:
		return false
	}
}

// unOp implements UN_NEGATE (Integer/Float) and UN_NOT (any value via
// the same truthiness rule JUMP_IF_FALSE uses).
func unOp(op compiler.UnOp, v object.Value) (object.Value, error) {
	switch op {
	case compiler.UN_NEGATE:
		switch n := v.(type) {
		case object.Integer:
			return object.Integer{Value: new(big.Int).Neg(n.Value)}, nil
		case object.Float:
			return object.Float{Value: -n.Value}, nil
		default:
			return nil, object.Error{ErrKind: object.TypeError, Message: "unary '-' requires a number"}
		}
	case compiler.UN_NOT:
		return object.NativeBool(!truthy(v)), nil
	default:
		return nil, object.Error{ErrKind: object.InternalError, Message: "unhandled unary operator"}
	}
}
