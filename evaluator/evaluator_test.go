package evaluator

import (
	"testing"

	"zexus/ast"
	"zexus/object"
	"zexus/renderer"
	"zexus/token"
)

func ident(name string) ast.Identifier { return ast.Identifier{Name: name} }

func param(name string) token.Token { return token.Token{TokenType: token.IDENTIFIER, Lexeme: name} }

func op(t token.TokenType) token.Token { return token.Token{TokenType: t} }

func runProgram(t *testing.T, stmts []ast.Stmt) object.Value {
	t.Helper()
	ev := New(renderer.Null{})
	result, err := ev.Run(&ast.Program{Statements: stmts})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestArithmeticAndReturn(t *testing.T) {
	// return 2 + 3
	stmts := []ast.Stmt{
		ast.Return{Value: ast.Infix{Left: ast.Integer{Value: 2}, Operator: op(token.PLUS), Right: ast.Integer{Value: 3}}},
	}
	got, ok := runProgram(t, stmts).(object.Integer)
	if !ok || got.Value.Int64() != 5 {
		t.Fatalf("got %v, want Integer(5)", got)
	}
}

func TestStringConcatenation(t *testing.T) {
	// return "foo" + "bar"
	stmts := []ast.Stmt{
		ast.Return{Value: ast.Infix{Left: ast.String{Value: "foo"}, Operator: op(token.PLUS), Right: ast.String{Value: "bar"}}},
	}
	got, ok := runProgram(t, stmts).(object.String)
	if !ok || got.Value != "foobar" {
		t.Fatalf("got %v, want String(foobar)", got)
	}
}

func TestMixedAddTypeError(t *testing.T) {
	// return 1 + "a"
	ev := New(renderer.Null{})
	prog := &ast.Program{Statements: []ast.Stmt{
		ast.Return{Value: ast.Infix{Left: ast.Integer{Value: 1}, Operator: op(token.PLUS), Right: ast.String{Value: "a"}}},
	}}
	_, err := ev.Run(prog)
	if err == nil {
		t.Fatal("expected a TypeError, got none")
	}
	oerr, ok := err.(object.Error)
	if !ok || oerr.ErrKind != object.TypeError {
		t.Fatalf("got %v, want a TypeError", err)
	}
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	// action make_adder(x) { return lambda y -> x + y }
	// let add5 = make_adder(5)
	// return add5(3)
	makeAdder := ast.Action{
		Name:   "make_adder",
		Params: []token.Token{param("x")},
		Body: []ast.Stmt{
			ast.Return{Value: ast.Lambda{
				Params: []token.Token{param("y")},
				Body:   ast.Infix{Left: ident("x"), Operator: op(token.PLUS), Right: ident("y")},
			}},
		},
	}
	stmts := []ast.Stmt{
		makeAdder,
		ast.Let{Name: "add5", Initializer: ast.Call{Callee: ident("make_adder"), Args: []ast.Expression{ast.Integer{Value: 5}}}},
		ast.Return{Value: ast.Call{Callee: ident("add5"), Args: []ast.Expression{ast.Integer{Value: 3}}}},
	}
	got, ok := runProgram(t, stmts).(object.Integer)
	if !ok || got.Value.Int64() != 8 {
		t.Fatalf("got %v, want Integer(8)", got)
	}
}

func TestForEachAccumulatesOverList(t *testing.T) {
	// let sum = 0
	// for each x in [1, 2, 3] { sum = sum + x }
	// return sum
	stmts := []ast.Stmt{
		ast.Let{Name: "sum", Initializer: ast.Integer{Value: 0}},
		ast.ForEach{
			Var:      "x",
			Iterable: ast.ListLiteral{Elements: []ast.Expression{ast.Integer{Value: 1}, ast.Integer{Value: 2}, ast.Integer{Value: 3}}},
			Body: ast.Block{Statements: []ast.Stmt{
				ast.ExpressionStatement{Expression: ast.Assignment{
					Target: ident("sum"),
					Value:  ast.Infix{Left: ident("sum"), Operator: op(token.PLUS), Right: ident("x")},
				}},
			}},
		},
		ast.Return{Value: ident("sum")},
	}
	got, ok := runProgram(t, stmts).(object.Integer)
	if !ok || got.Value.Int64() != 6 {
		t.Fatalf("got %v, want Integer(6)", got)
	}
}

func TestTryCatchBindsErrorToHandler(t *testing.T) {
	// try { return 1 / 0 } catch err { return err }
	stmts := []ast.Stmt{
		ast.TryCatch{
			Body: ast.Block{Statements: []ast.Stmt{
				ast.Return{Value: ast.Infix{Left: ast.Integer{Value: 1}, Operator: op(token.SLASH), Right: ast.Integer{Value: 0}}},
			}},
			ErrVar: "err",
			Handler: ast.Block{Statements: []ast.Stmt{
				ast.Return{Value: ident("err")},
			}},
		},
	}
	got, ok := runProgram(t, stmts).(object.Error)
	if !ok || got.ErrKind != object.ArithmeticError {
		t.Fatalf("got %v, want an ArithmeticError", got)
	}
}

func TestTryCatchErrVarDoesNotClobberOuterBinding(t *testing.T) {
	// let err = "original"
	// try { let x = 10 / 0 } catch(err) { }
	// return err
	stmts := []ast.Stmt{
		ast.Let{Name: "err", Initializer: ast.String{Value: "original"}},
		ast.TryCatch{
			Body: ast.Block{Statements: []ast.Stmt{
				ast.Let{Name: "x", Initializer: ast.Infix{Left: ast.Integer{Value: 10}, Operator: op(token.SLASH), Right: ast.Integer{Value: 0}}},
			}},
			ErrVar:  "err",
			Handler: ast.Block{Statements: []ast.Stmt{}},
		},
		ast.Return{Value: ident("err")},
	}
	got, ok := runProgram(t, stmts).(object.String)
	if !ok || got.Value != "original" {
		t.Fatalf("got %v, want String(original) — catch's err must stay scoped to the handler", got)
	}
}

func TestContractActionReachableOnlyThroughQualifiedName(t *testing.T) {
	// protocol Wallet { deposit(1) }
	// contract MyWallet: Wallet { balance; deposit(n) { return n } }
	// return MyWallet.deposit(10)
	stmts := []ast.Stmt{
		ast.Protocol{Name: "Wallet", Signatures: []ast.ProtocolSignature{{Name: "deposit", Arity: 1}}},
		ast.Contract{
			Name:     "MyWallet",
			Protocol: "Wallet",
			Storage:  []string{"balance"},
			Actions: []ast.Action{
				{Name: "deposit", Params: []token.Token{param("n")}, Body: []ast.Stmt{ast.Return{Value: ident("n")}}},
			},
		},
		ast.Return{Value: ast.Call{
			Callee: ast.PropertyAccess{Receiver: ident("MyWallet"), Name: "deposit"},
			Args:   []ast.Expression{ast.Integer{Value: 10}},
		}},
	}
	got, ok := runProgram(t, stmts).(object.Integer)
	if !ok || got.Value.Int64() != 10 {
		t.Fatalf("got %v, want Integer(10)", got)
	}

	// A bare, unqualified reference to the action name must not resolve —
	// contract members live only under "ContractName.action".
	ev := New(renderer.Null{})
	_, err := ev.Run(&ast.Program{Statements: append(append([]ast.Stmt{}, stmts[:2]...), ast.Return{Value: ident("deposit")})})
	if err == nil {
		t.Fatal("expected a NameError for the bare action name, got none")
	}
}

func TestContractMissingProtocolActionIsRuntimeError(t *testing.T) {
	stmts := []ast.Stmt{
		ast.Protocol{Name: "Wallet", Signatures: []ast.ProtocolSignature{{Name: "deposit", Arity: 1}}},
		ast.Contract{Name: "MyWallet", Protocol: "Wallet", Storage: []string{"balance"}},
	}
	ev := New(renderer.Null{})
	_, err := ev.Run(&ast.Program{Statements: stmts})
	if err == nil {
		t.Fatal("expected a ProtocolError, got none")
	}
	oerr, ok := err.(object.Error)
	if !ok || oerr.ErrKind != object.ProtocolError {
		t.Fatalf("got %v, want a ProtocolError", err)
	}
}

func TestEnumVariantEquality(t *testing.T) {
	// enum Color { Red, Green }
	// return Color.Red == Color.Red
	stmts := []ast.Stmt{
		ast.Enum{Name: "Color", Variants: []string{"Red", "Green"}},
		ast.Return{Value: ast.Infix{
			Left:     ast.PropertyAccess{Receiver: ident("Color"), Name: "Red"},
			Operator: op(token.EQUAL_EQUAL),
			Right:    ast.PropertyAccess{Receiver: ident("Color"), Name: "Red"},
		}},
	}
	got, ok := runProgram(t, stmts).(object.Boolean)
	if !ok || !got.Value {
		t.Fatalf("got %v, want true", got)
	}
}

func TestEventHandlersFireInRegistrationOrder(t *testing.T) {
	// event Deposited { amount }
	// let order = 0
	// let handler1 = action(payload) { order = order * 10 + 1 }
	// let handler2 = action(payload) { order = order * 10 + 2 }
	// register_event("Deposited", handler1)
	// register_event("Deposited", handler2)
	// emit Deposited { amount: 5 }
	// return order
	mkHandler := func(digit int64) ast.ActionLiteral {
		return ast.ActionLiteral{
			Params: []token.Token{param("payload")},
			Body: []ast.Stmt{
				ast.ExpressionStatement{Expression: ast.Assignment{
					Target: ident("order"),
					Value: ast.Infix{
						Left:     ast.Infix{Left: ident("order"), Operator: op(token.STAR), Right: ast.Integer{Value: 10}},
						Operator: op(token.PLUS),
						Right:    ast.Integer{Value: digit},
					},
				}},
			},
		}
	}
	stmts := []ast.Stmt{
		ast.Event{Name: "Deposited", Fields: []ast.EventField{{Name: "amount", Type: "Int"}}},
		ast.Let{Name: "order", Initializer: ast.Integer{Value: 0}},
		ast.Let{Name: "handler1", Initializer: mkHandler(1)},
		ast.Let{Name: "handler2", Initializer: mkHandler(2)},
		ast.ExpressionStatement{Expression: ast.Call{Callee: ident("register_event"), Args: []ast.Expression{ast.String{Value: "Deposited"}, ident("handler1")}}},
		ast.ExpressionStatement{Expression: ast.Call{Callee: ident("register_event"), Args: []ast.Expression{ast.String{Value: "Deposited"}, ident("handler2")}}},
		ast.Emit{Name: "Deposited", Payload: ast.MapLiteral{Entries: []ast.MapEntry{{Key: ast.String{Value: "amount"}, Value: ast.Integer{Value: 5}}}}},
		ast.Return{Value: ident("order")},
	}
	got, ok := runProgram(t, stmts).(object.Integer)
	if !ok || got.Value.Int64() != 12 {
		t.Fatalf("got %v, want Integer(12) (handler1 then handler2)", got)
	}
}

func TestEmitDefaultsMissingDeclaredFieldsToNull(t *testing.T) {
	// event E { x }
	// let seen = 1
	// register_event("E", action(e) { seen = e.x })
	// emit E { }
	// return seen
	handler := ast.ActionLiteral{
		Params: []token.Token{param("e")},
		Body: []ast.Stmt{
			ast.ExpressionStatement{Expression: ast.Assignment{
				Target: ident("seen"),
				Value:  ast.PropertyAccess{Receiver: ident("e"), Name: "x"},
			}},
		},
	}
	stmts := []ast.Stmt{
		ast.Event{Name: "E", Fields: []ast.EventField{{Name: "x", Type: "Int"}}},
		ast.Let{Name: "seen", Initializer: ast.Integer{Value: 1}},
		ast.ExpressionStatement{Expression: ast.Call{Callee: ident("register_event"), Args: []ast.Expression{ast.String{Value: "E"}, handler}}},
		ast.Emit{Name: "E", Payload: ast.MapLiteral{}},
		ast.Return{Value: ident("seen")},
	}
	got := runProgram(t, stmts)
	if _, ok := got.(object.Null); !ok {
		t.Fatalf("got %v, want Null — a declared field missing from the emit payload defaults to null", got)
	}
}

func TestEmitOfUndeclaredEventIsSilentNotError(t *testing.T) {
	// Matches vm.go's OP_EMIT_EVENT: emit never checks declaredness, it
	// just calls Handlers(name) and gets an empty slice back.
	stmts := []ast.Stmt{
		ast.Emit{Name: "Nobody", Payload: ast.MapLiteral{}},
		ast.Return{Value: ast.Integer{Value: 1}},
	}
	got, ok := runProgram(t, stmts).(object.Integer)
	if !ok || got.Value.Int64() != 1 {
		t.Fatalf("got %v, want Integer(1)", got)
	}
}

func TestExactlyAlwaysRaisesSyntaxError(t *testing.T) {
	ev := New(renderer.Null{})
	_, err := ev.Run(&ast.Program{Statements: []ast.Stmt{ast.Exactly{Raw: "exactly 1"}}})
	oerr, ok := err.(object.Error)
	if !ok || oerr.ErrKind != object.SyntaxError {
		t.Fatalf("got %v, want a SyntaxError", err)
	}
}

func TestTruthinessTreatsZeroAndEmptyAsFalse(t *testing.T) {
	// if 0 { return "wrong" } else { return "right" }
	// (also covers "", [], {} via the same branch at the expression level)
	stmts := []ast.Stmt{
		ast.If{
			Condition: ast.Integer{Value: 0},
			Then:      ast.Block{Statements: []ast.Stmt{ast.Return{Value: ast.String{Value: "wrong"}}}},
			Else:      ast.Block{Statements: []ast.Stmt{ast.Return{Value: ast.String{Value: "right"}}}},
		},
	}
	got, ok := runProgram(t, stmts).(object.String)
	if !ok || got.Value != "right" {
		t.Fatalf("got %v, want String(right) — 0 must be falsy per spec §4.4", got)
	}
}

func TestAwaitOnSpawnedActionReturnsItsResult(t *testing.T) {
	// action fetch() async { return 42 }
	// return await spawn(fetch())
	fetch := ast.Action{Name: "fetch", Async: true, Body: []ast.Stmt{
		ast.Return{Value: ast.Integer{Value: 42}},
	}}
	stmts := []ast.Stmt{
		fetch,
		ast.Return{Value: ast.Await{Value: ast.Call{Callee: ident("spawn"), Args: []ast.Expression{
			ast.Call{Callee: ident("fetch")},
		}}}},
	}
	got, ok := runProgram(t, stmts).(object.Integer)
	if !ok || got.Value.Int64() != 42 {
		t.Fatalf("got %v, want Integer(42)", got)
	}
}
