package parser_test

import (
	"testing"

	"zexus/cast"
	"zexus/lexer"
	"zexus/parser"
)

func parseProgram(t *testing.T, input string) cast.Program {
	t.Helper()
	l := lexer.New(input)
	toks, diags := l.Scan()
	if len(diags) > 0 {
		t.Fatalf("unexpected lexer diagnostics: %v", diags)
	}
	prog, err := parser.Make(toks).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseLetDeclaration(t *testing.T) {
	prog := parseProgram(t, `let x = 1 + 2;`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	let, ok := prog.Statements[0].(cast.Let)
	if !ok {
		t.Fatalf("expected cast.Let, got %T", prog.Statements[0])
	}
	if let.Name != "x" {
		t.Fatalf("expected name x, got %s", let.Name)
	}
	if _, ok := let.Initializer.(cast.Infix); !ok {
		t.Fatalf("expected infix initializer, got %T", let.Initializer)
	}
}

func TestParsePrintExpressionStatement(t *testing.T) {
	prog := parseProgram(t, `print "hello"`)
	stmt, ok := prog.Statements[0].(cast.Print)
	if !ok {
		t.Fatalf("expected cast.Print, got %T", prog.Statements[0])
	}
	s, ok := stmt.Expression.(cast.String)
	if !ok || s.Value != "hello" {
		t.Fatalf("expected string %q, got %#v", "hello", stmt.Expression)
	}
}

func TestParseActionDeclarationAndCall(t *testing.T) {
	prog := parseProgram(t, `
		action add(a, b) {
			return a + b
		}
		print add(1, 2)
	`)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	action, ok := prog.Statements[0].(cast.Action)
	if !ok {
		t.Fatalf("expected cast.Action, got %T", prog.Statements[0])
	}
	if action.Name != "add" || len(action.Params) != 2 {
		t.Fatalf("unexpected action shape: %#v", action)
	}
	print := prog.Statements[1].(cast.Print)
	call, ok := print.Expression.(cast.Call)
	if !ok {
		t.Fatalf("expected cast.Call, got %T", print.Expression)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 call args, got %d", len(call.Args))
	}
}

func TestParseAsyncActionKeyword(t *testing.T) {
	prog := parseProgram(t, `
		action async fetch() {
			return 1
		}
	`)
	action := prog.Statements[0].(cast.Action)
	if !action.Async {
		t.Fatalf("expected action to be async")
	}
}

func TestParseIfElseStatement(t *testing.T) {
	prog := parseProgram(t, `
		if x > 0 {
			print "positive"
		} else {
			print "non-positive"
		}
	`)
	ifStmt, ok := prog.Statements[0].(cast.If)
	if !ok {
		t.Fatalf("expected cast.If, got %T", prog.Statements[0])
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected else branch")
	}
}

func TestParseIfExpression(t *testing.T) {
	prog := parseProgram(t, `let x = if 1 < 2 "yes" else "no";`)
	let := prog.Statements[0].(cast.Let)
	ifExpr, ok := let.Initializer.(cast.IfExpr)
	if !ok {
		t.Fatalf("expected cast.IfExpr, got %T", let.Initializer)
	}
	if _, ok := ifExpr.Condition.(cast.Infix); !ok {
		t.Fatalf("expected infix condition, got %T", ifExpr.Condition)
	}
}

func TestParseTryCatchAllForms(t *testing.T) {
	inputs := []string{
		`try { print 1 } catch err { print err }`,
		`try { print 1 } catch(err) { print err }`,
		`try { print 1 } catch((err)) { print err }`,
	}
	for _, in := range inputs {
		prog := parseProgram(t, in)
		tc, ok := prog.Statements[0].(cast.TryCatch)
		if !ok {
			t.Fatalf("input %q: expected cast.TryCatch, got %T", in, prog.Statements[0])
		}
		if tc.ErrVar != "err" {
			t.Fatalf("input %q: expected err var 'err', got %q", in, tc.ErrVar)
		}
	}
}

func TestParseForEach(t *testing.T) {
	prog := parseProgram(t, `
		for each item in list {
			print item
		}
	`)
	fe, ok := prog.Statements[0].(cast.ForEach)
	if !ok {
		t.Fatalf("expected cast.ForEach, got %T", prog.Statements[0])
	}
	if fe.Var != "item" {
		t.Fatalf("expected loop var item, got %s", fe.Var)
	}
}

func TestParseMapLiteralMixedSeparatorsAndTrailingComma(t *testing.T) {
	prog := parseProgram(t, `let m = { a: 1, b: 2; c: 3, };`)
	let := prog.Statements[0].(cast.Let)
	m, ok := let.Initializer.(cast.MapLiteral)
	if !ok {
		t.Fatalf("expected cast.MapLiteral, got %T", let.Initializer)
	}
	if len(m.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m.Entries))
	}
	for i, name := range []string{"a", "b", "c"} {
		key := m.Entries[i].Key.(cast.String)
		if key.Value != name {
			t.Fatalf("entry %d: expected key %q, got %q", i, name, key.Value)
		}
	}
}

func TestParseLambdaSingleAndParenParams(t *testing.T) {
	prog := parseProgram(t, `
		let double = lambda x -> x * 2;
		let add = lambda (a, b) -> a + b;
	`)
	double := prog.Statements[0].(cast.Let).Initializer.(cast.Lambda)
	if len(double.Params) != 1 || double.Params[0].Lexeme != "x" {
		t.Fatalf("unexpected params for single-arg lambda: %#v", double.Params)
	}
	add := prog.Statements[1].(cast.Let).Initializer.(cast.Lambda)
	if len(add.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(add.Params))
	}
}

func TestParseMethodCallAndIndexChain(t *testing.T) {
	prog := parseProgram(t, `print list.first().name[0]`)
	print := prog.Statements[0].(cast.Print)
	idx, ok := print.Expression.(cast.Index)
	if !ok {
		t.Fatalf("expected cast.Index at top, got %T", print.Expression)
	}
	prop, ok := idx.Receiver.(cast.PropertyAccess)
	if !ok {
		t.Fatalf("expected cast.PropertyAccess, got %T", idx.Receiver)
	}
	if prop.Name != "name" {
		t.Fatalf("expected property name, got %s", prop.Name)
	}
	if _, ok := prop.Receiver.(cast.MethodCall); !ok {
		t.Fatalf("expected cast.MethodCall receiver, got %T", prop.Receiver)
	}
}

func TestParseEventEnumProtocolContract(t *testing.T) {
	prog := parseProgram(t, `
		event Deposit {
			amount: Integer
		}

		enum Status {
			Active, Closed
		}

		protocol Account {
			balance()
			deposit(amount)
		}

		contract Wallet require Account {
			persistent storage balance

			action balance() {
				return 0
			}

			action deposit(amount) {
				return amount
			}
		}
	`)
	if len(prog.Statements) != 4 {
		t.Fatalf("expected 4 top-level declarations, got %d", len(prog.Statements))
	}
	event := prog.Statements[0].(cast.Event)
	if event.Name != "Deposit" || len(event.Fields) != 1 {
		t.Fatalf("unexpected event shape: %#v", event)
	}
	enum := prog.Statements[1].(cast.Enum)
	if len(enum.Variants) != 2 {
		t.Fatalf("expected 2 enum variants, got %d", len(enum.Variants))
	}
	protocol := prog.Statements[2].(cast.Protocol)
	if len(protocol.Signatures) != 2 || protocol.Signatures[1].Arity != 1 {
		t.Fatalf("unexpected protocol shape: %#v", protocol)
	}
	contract := prog.Statements[3].(cast.Contract)
	if contract.Protocol != "Account" || len(contract.Storage) != 1 || len(contract.Actions) != 2 {
		t.Fatalf("unexpected contract shape: %#v", contract)
	}
}

func TestParseEmitWithPayload(t *testing.T) {
	prog := parseProgram(t, `emit Deposit { amount: 10 }`)
	emit, ok := prog.Statements[0].(cast.Emit)
	if !ok {
		t.Fatalf("expected cast.Emit, got %T", prog.Statements[0])
	}
	if emit.Name != "Deposit" || len(emit.Payload.Entries) != 1 {
		t.Fatalf("unexpected emit shape: %#v", emit)
	}
}

func TestParseExportWrapsDeclaration(t *testing.T) {
	prog := parseProgram(t, `export let x = 1;`)
	export, ok := prog.Statements[0].(cast.Export)
	if !ok {
		t.Fatalf("expected cast.Export, got %T", prog.Statements[0])
	}
	if _, ok := export.Inner.(cast.Let); !ok {
		t.Fatalf("expected wrapped cast.Let, got %T", export.Inner)
	}
}

func TestParseAssignmentRejectsBadTarget(t *testing.T) {
	l := lexer.New(`1 + 1 = 2;`)
	toks, _ := l.Scan()
	_, err := parser.Make(toks).Parse()
	if err == nil {
		t.Fatalf("expected a syntax error for an invalid assignment target")
	}
	if _, ok := err.(parser.SyntaxError); !ok {
		t.Fatalf("expected parser.SyntaxError, got %T", err)
	}
}

func TestParseUnexpectedTokenIsSyntaxError(t *testing.T) {
	l := lexer.New(`let x = ;`)
	toks, _ := l.Scan()
	_, err := parser.Make(toks).Parse()
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
	if _, ok := err.(parser.SyntaxError); !ok {
		t.Fatalf("expected parser.SyntaxError, got %T", err)
	}
}
