package semantic

import (
	"testing"

	"zexus/cast"
	"zexus/token"
)

func ident(name string) cast.Identifier {
	return cast.Identifier{Name: token.Token{TokenType: token.IDENTIFIER, Lexeme: name}}
}

func param(name string) token.Token {
	return token.Token{TokenType: token.IDENTIFIER, Lexeme: name}
}

func TestUndefinedNameIsDiagnosed(t *testing.T) {
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.ExpressionStatement{Expression: ident("missing")},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
}

func TestBuiltinNameResolvesWithoutDiagnostic(t *testing.T) {
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.ExpressionStatement{Expression: cast.Call{Callee: ident("len"), Args: []cast.Expression{
			cast.String{Value: "hi"},
		}}},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestTopLevelForwardReferenceResolves(t *testing.T) {
	// action a() { return b() }
	// action b() { return 1 }
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.Action{Name: "a", Body: []cast.Stmt{
			cast.Return{Value: cast.Call{Callee: ident("b")}},
		}},
		cast.Action{Name: "b", Body: []cast.Stmt{
			cast.Return{Value: cast.Integer{Value: 1}},
		}},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestActionCapturesOuterVariable(t *testing.T) {
	// action make_adder(x) { return action(y) { return x + y } }
	inner := cast.ActionLiteral{
		Params: []token.Token{param("y")},
		Body: []cast.Stmt{
			cast.Return{Value: cast.Infix{Left: ident("x"), Operator: token.Token{TokenType: token.PLUS}, Right: ident("y")}},
		},
	}
	outer := cast.Action{
		Name:   "make_adder",
		Params: []token.Token{param("x")},
		Body: []cast.Stmt{
			cast.Return{Value: inner},
		},
	}
	prog := &cast.Program{Statements: []cast.Stmt{outer}}

	rewritten, _, diags := Analyze(prog)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	gotOuter := rewritten.Statements[0].(cast.Action)
	ret := gotOuter.Body[0].(cast.Return)
	gotInner := ret.Value.(cast.ActionLiteral)
	if len(gotInner.Captures) != 1 || gotInner.Captures[0] != "x" {
		t.Fatalf("got captures %v, want [x]", gotInner.Captures)
	}
}

func TestAwaitOutsideAsyncIsDiagnosed(t *testing.T) {
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.Action{Name: "a", Body: []cast.Stmt{
			cast.ExpressionStatement{Expression: cast.Await{Value: cast.Integer{Value: 1}}},
		}},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
}

func TestEmitOfUndeclaredEventIsDiagnosed(t *testing.T) {
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.Emit{Name: "Deposited", Payload: cast.MapLiteral{}},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
}

func TestContractMissingProtocolActionIsDiagnosed(t *testing.T) {
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.Protocol{Name: "Wallet", Signatures: []cast.ProtocolSignature{
			{Name: "deposit", Arity: 1},
		}},
		cast.Contract{Name: "MyWallet", Protocol: "Wallet", Storage: []string{"balance"}},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
}

func TestContractSiblingActionsDoNotShareBareScope(t *testing.T) {
	// contract MyWallet { deposit(n) { withdraw(n) } withdraw(n) { ... } }
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.Contract{Name: "MyWallet", Actions: []cast.Action{
			{Name: "deposit", Params: []token.Token{param("n")}, Body: []cast.Stmt{
				cast.ExpressionStatement{Expression: cast.Call{Callee: ident("withdraw"), Args: []cast.Expression{ident("n")}}},
			}},
			{Name: "withdraw", Params: []token.Token{param("n")}, Body: []cast.Stmt{
				cast.Return{Value: ident("n")},
			}},
		}},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1 (bare sibling call unresolved): %v", len(diags), diags)
	}
}

func TestReturnOutsideActionIsDiagnosed(t *testing.T) {
	prog := &cast.Program{Statements: []cast.Stmt{
		cast.Return{Value: cast.Integer{Value: 1}},
	}}

	_, _, diags := Analyze(prog)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
}
