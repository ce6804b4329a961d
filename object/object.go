// Package object defines the runtime value model shared by the tree-walk
// evaluator and the bytecode VM — both execution paths must observe the
// Evaluator ≡ VM invariant, which only holds if they speak the same
// values.
package object

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

type Kind string

const (
	IntegerKind   Kind = "Integer"
	FloatKind     Kind = "Float"
	StringKind    Kind = "String"
	BooleanKind   Kind = "Boolean"
	NullKind      Kind = "Null"
	ListKind      Kind = "List"
	MapKind       Kind = "Map"
	BuiltinKind   Kind = "Builtin"
	ActionKind    Kind = "Action"
	ReturnKind    Kind = "ReturnSignal"
	ErrorKind     Kind = "Error"
	DateTimeKind  Kind = "DateTime"
	EnumKind      Kind = "EnumValue"
	EventDescKind Kind = "EventDescriptor"
	CoroutineKind Kind = "Coroutine"

	CompiledFunctionKind Kind = "CompiledFunction"
	IteratorKind         Kind = "Iterator"
)

// Value is any runtime object flowing through the evaluator or the VM.
type Value interface {
	Kind() Kind
	String() string
}

// Integer wraps an arbitrary-precision *big.Int. Literal tokens are bound
// by int64 at the lexer (a practical bound, not a semantic one — see
// DESIGN.md); values computed at runtime are never truncated.
type Integer struct{ Value *big.Int }

func NewInteger(v int64) Integer        { return Integer{Value: big.NewInt(v)} }
func (Integer) Kind() Kind              { return IntegerKind }
func (i Integer) String() string        { return i.Value.String() }

type Float struct{ Value float64 }

func (Float) Kind() Kind       { return FloatKind }
func (f Float) String() string { return formatFloat(f.Value) }

type String struct{ Value string }

func (String) Kind() Kind       { return StringKind }
func (s String) String() string { return s.Value }

type Boolean struct{ Value bool }

func (Boolean) Kind() Kind { return BooleanKind }
func (b Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

var (
	True  = Boolean{Value: true}
	False = Boolean{Value: false}
)

func NativeBool(b bool) Boolean {
	if b {
		return True
	}
	return False
}

type Null struct{}

func (Null) Kind() Kind       { return NullKind }
func (Null) String() string   { return "null" }

var NullValue = Null{}

// List is an ordered, mutable sequence. Mutation happens in place via
// pointer receivers only where the language's own built-ins require it
// (push is documented non-mutating, so List values are usually copied).
type List struct{ Elements []Value }

func (List) Kind() Kind { return ListKind }
func (l List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = reprOf(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is insertion-ordered: Keys records insertion order, Entries holds
// the values. All Zexus map keys are strings (bare-identifier keys are
// coerced to their name by the parser).
type Map struct {
	Keys    []string
	Entries map[string]Value
}

func NewMap() *Map {
	return &Map{Entries: map[string]Value{}}
}

func (*Map) Kind() Kind { return MapKind }

func (m *Map) Set(key string, value Value) {
	if _, exists := m.Entries[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = value
}

func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.Entries[key]
	return v, ok
}

func (m *Map) String() string {
	parts := make([]string, 0, len(m.Keys))
	for _, k := range m.Keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, reprOf(m.Entries[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SortedKeys is used only by diagnostics/printers that want a
// deterministic, not insertion, order.
func (m *Map) SortedKeys() []string {
	out := append([]string(nil), m.Keys...)
	sort.Strings(out)
	return out
}

// reprOf renders a nested value the way `string()` does: quoted strings
// inside list/map containers, bare elsewhere.
func reprOf(v Value) string {
	if s, ok := v.(String); ok {
		return fmt.Sprintf("%q", s.Value)
	}
	return v.String()
}

// BuiltinFunc is the Go-side implementation behind a Builtin value.
type BuiltinFunc func(args []Value) (Value, error)

type Builtin struct {
	Name    string
	Arity   int // -1 means variadic/flexible
	Fn      BuiltinFunc
}

func (Builtin) Kind() Kind       { return BuiltinKind }
func (b Builtin) String() string { return "<builtin " + b.Name + ">" }

// ReturnSignal unwinds the evaluator up to the nearest Action frame.
type ReturnSignal struct{ Value Value }

func (ReturnSignal) Kind() Kind       { return ReturnKind }
func (r ReturnSignal) String() string { return "<return " + reprOf(r.Value) + ">" }

// Error is the first-class runtime error value bound by a catch handler.
type ErrorKindTag string

const (
	LexicalError     ErrorKindTag = "LexicalError"
	SyntaxError       ErrorKindTag = "SyntaxError"
	SemanticError     ErrorKindTag = "SemanticError"
	ArityError        ErrorKindTag = "ArityError"
	TypeError         ErrorKindTag = "TypeError"
	NameError         ErrorKindTag = "NameError"
	AttributeError    ErrorKindTag = "AttributeError"
	ArithmeticError   ErrorKindTag = "ArithmeticError"
	IOError           ErrorKindTag = "IOError"
	ProtocolError     ErrorKindTag = "ProtocolError"
	EventError        ErrorKindTag = "EventError"
	InterruptedError  ErrorKindTag = "InterruptedError"
	InternalError     ErrorKindTag = "InternalError"
)

type Error struct {
	ErrKind ErrorKindTag
	Message string
	Node    any // the originating AST node, for debug stack traces
}

func (Error) Kind() Kind { return ErrorKind }
func (e Error) String() string {
	return fmt.Sprintf("%s: %s", e.ErrKind, e.Message)
}

func (e Error) Error() string { return e.String() }

type DateTime struct{ Unix int64 }

func (DateTime) Kind() Kind       { return DateTimeKind }
func (d DateTime) String() string { return fmt.Sprintf("DateTime(%d)", d.Unix) }

type EnumValue struct {
	EnumName string
	Variant  string
}

func (EnumValue) Kind() Kind       { return EnumKind }
func (e EnumValue) String() string { return e.EnumName + "." + e.Variant }

type EventDescriptor struct {
	Name   string
	Fields []string
}

func (EventDescriptor) Kind() Kind       { return EventDescKind }
func (e EventDescriptor) String() string { return "<event " + e.Name + ">" }

// formatFloat renders a float the way Zexus's `string()` builtin
// does: shortest round-trip representation, always with a decimal point
// so 2.0 does not print as the integer-looking "2".
func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
