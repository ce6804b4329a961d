// arith.go hand-mirrors vm/arith.go's indexValue/propValue/binOp/unOp
// exactly, operating on token.Token operators straight off ast.Infix/
// ast.Prefix nodes instead of the compiler's BinOp/UnOp enum encoding.
// The tree-walker never decodes an opcode operand, so there is no
// shared enum to reuse — this duplication, not a shared helper
// package, is what the Evaluator ≡ VM invariant (spec §8) actually
// demands: both execution paths must compute the identical result
// while consuming two entirely different operator representations.
// Keep this file's logic synchronized with vm/arith.go by hand; they
// are grounded on the same spec §4.4 arithmetic/comparison rules.
package evaluator

import (
	"math/big"

	"zexus/object"
	"zexus/token"
)

// indexValue implements List[Integer], Map[String], String[Integer]
// (single-rune slice) indexing — identical to vm/arith.go's
// indexValue.
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

// propValue implements field-style property reads against a Map —
// identical to vm/arith.go's propValue.
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

// binaryOp implements spec §4.4's arithmetic/comparison rules: Integer
// stays arbitrary-precision unless either operand is a Float, in which
// case both promote to float64; `+` concatenates only when both
// operands are String.
func binaryOp(op token.Token, left, right object.Value) (object.Value, error) {
	if op.TokenType == token.PLUS {
		ls, lok := left.(object.String)
		rs, rok := right.(object.String)
		if lok && rok {
			return object.String{Value: ls.Value + rs.Value}, nil
		}
		if lok != rok {
			return nil, object.Error{ErrKind: object.TypeError, Message: "'+' requires both operands to be numbers or both to be strings"}
		}
	}

	switch op.TokenType {
	case token.EQUAL_EQUAL:
		return object.NativeBool(valuesEqual(left, right)), nil
	case token.NOT_EQUAL:
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
	switch op.TokenType {
	case token.PLUS:
		return object.Float{Value: lf + rf}, nil
	case token.MINUS:
		return object.Float{Value: lf - rf}, nil
	case token.STAR:
		return object.Float{Value: lf * rf}, nil
	case token.SLASH:
		if rf == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Float{Value: lf / rf}, nil
	case token.PERCENT:
		if rf == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Float{Value: float64(int64(lf) % int64(rf))}, nil
	case token.LESS:
		return object.NativeBool(lf < rf), nil
	case token.LESS_EQUAL:
		return object.NativeBool(lf <= rf), nil
	case token.LARGER:
		return object.NativeBool(lf > rf), nil
	case token.LARGER_EQUAL:
		return object.NativeBool(lf >= rf), nil
	}
	return nil, object.Error{ErrKind: object.InternalError, Message: "unhandled binary operator"}
}

func integerBinOp(op token.Token, l, r object.Integer) (object.Value, error) {
	switch op.TokenType {
	case token.PLUS:
		return object.Integer{Value: new(big.Int).Add(l.Value, r.Value)}, nil
	case token.MINUS:
		return object.Integer{Value: new(big.Int).Sub(l.Value, r.Value)}, nil
	case token.STAR:
		return object.Integer{Value: new(big.Int).Mul(l.Value, r.Value)}, nil
	case token.SLASH:
		if r.Value.Sign() == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Integer{Value: new(big.Int).Quo(l.Value, r.Value)}, nil
	case token.PERCENT:
		if r.Value.Sign() == 0 {
			return nil, object.Error{ErrKind: object.ArithmeticError, Message: "division by zero"}
		}
		return object.Integer{Value: new(big.Int).Rem(l.Value, r.Value)}, nil
	case token.LESS:
		return object.NativeBool(l.Value.Cmp(r.Value) < 0), nil
	case token.LESS_EQUAL:
		return object.NativeBool(l.Value.Cmp(r.Value) <= 0), nil
	case token.LARGER:
		return object.NativeBool(l.Value.Cmp(r.Value) > 0), nil
	case token.LARGER_EQUAL:
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

// unaryOp implements unary `-` (Integer/Float) and `!` (any value via
// the same truthiness rule every conditional construct uses).
func unaryOp(op token.Token, v object.Value) (object.Value, error) {
	switch op.TokenType {
	case token.MINUS:
		switch n := v.(type) {
		case object.Integer:
			return object.Integer{Value: new(big.Int).Neg(n.Value)}, nil
		case object.Float:
			return object.Float{Value: -n.Value}, nil
		default:
			return nil, object.Error{ErrKind: object.TypeError, Message: "unary '-' requires a number"}
		}
	case token.BANG:
		return object.NativeBool(!truthy(v)), nil
	default:
		return nil, object.Error{ErrKind: object.InternalError, Message: "unhandled unary operator"}
	}
}
