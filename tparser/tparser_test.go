package tparser_test

import (
	"testing"

	"zexus/ast"
	"zexus/config"
	"zexus/lexer"
	"zexus/tparser"
)

func parseTolerant(t *testing.T, input string) (ast.Program, int) {
	t.Helper()
	toks, lexDiags := lexer.New(input).Scan()
	if len(lexDiags) > 0 {
		t.Fatalf("unexpected lexer diagnostics: %v", lexDiags)
	}
	prog, diags := tparser.Parse(toks, config.Default())
	return prog, len(diags)
}

func TestParseWellFormedProgramHasNoDiagnostics(t *testing.T) {
	prog, n := parseTolerant(t, `let x = 1 + 2 * 3 print(string(x))`)
	if n != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", n)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	let, ok := prog.Statements[0].(ast.Let)
	if !ok || let.Name != "x" {
		t.Fatalf("expected let x, got %#v", prog.Statements[0])
	}
}

func TestParseColonBlockIf(t *testing.T) {
	prog, n := parseTolerant(t, "if true: print \"yes\"")
	if n != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", n)
	}
	ifStmt, ok := prog.Statements[0].(ast.If)
	if !ok {
		t.Fatalf("expected ast.If, got %T", prog.Statements[0])
	}
	if len(ifStmt.Then.Statements) != 1 {
		t.Fatalf("expected 1 statement in colon-block body, got %d", len(ifStmt.Then.Statements))
	}
	if _, ok := ifStmt.Then.Statements[0].(ast.Print); !ok {
		t.Fatalf("expected ast.Print, got %T", ifStmt.Then.Statements[0])
	}
}

func TestParseColonBlockMultilineAction(t *testing.T) {
	prog, n := parseTolerant(t, "action greet(name):\n  let msg = \"hi\"\n  print msg\nprint \"after\"")
	if n != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", n)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Statements))
	}
	action, ok := prog.Statements[0].(ast.Action)
	if !ok {
		t.Fatalf("expected ast.Action, got %T", prog.Statements[0])
	}
	if len(action.Body) != 2 {
		t.Fatalf("expected colon-block to capture 2 statements, got %d", len(action.Body))
	}
	if _, ok := prog.Statements[1].(ast.Print); !ok {
		t.Fatalf("expected the dedented print to stay at top level, got %T", prog.Statements[1])
	}
}

func TestParseStraySemicolonsIgnored(t *testing.T) {
	prog, n := parseTolerant(t, `;;; let x = 1 ;;; print x ;;;`)
	if n != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", n)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}

func TestParseCatchFormsEquivalent(t *testing.T) {
	for _, src := range []string{
		`try { print 1 } catch err { print err }`,
		`try { print 1 } catch(err) { print err }`,
		`try { print 1 } catch((err)) { print err }`,
	} {
		prog, n := parseTolerant(t, src)
		if n != 0 {
			t.Fatalf("input %q: expected 0 diagnostics, got %d", src, n)
		}
		tc, ok := prog.Statements[0].(ast.TryCatch)
		if !ok || tc.ErrVar != "err" {
			t.Fatalf("input %q: expected try/catch binding err, got %#v", src, prog.Statements[0])
		}
	}
}

func TestParseMapLiteralMixedSeparatorsAndBareKeys(t *testing.T) {
	prog, n := parseTolerant(t, `let m = { a: 1, "b": 2; c: 3, }`)
	if n != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", n)
	}
	let := prog.Statements[0].(ast.Let)
	m := let.Initializer.(ast.MapLiteral)
	if len(m.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m.Entries))
	}
	for i, name := range []string{"a", "b", "c"} {
		key := m.Entries[i].Key.(ast.String)
		if key.Value != name {
			t.Fatalf("entry %d: expected key %q, got %q", i, name, key.Value)
		}
	}
}

func TestParseLambdaSingleParamShorthand(t *testing.T) {
	prog, n := parseTolerant(t, `let inc = lambda x -> x + 1`)
	if n != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", n)
	}
	let := prog.Statements[0].(ast.Let)
	lam, ok := let.Initializer.(ast.Lambda)
	if !ok {
		t.Fatalf("expected ast.Lambda, got %T", let.Initializer)
	}
	if len(lam.Params) != 1 || lam.Params[0].Lexeme != "x" {
		t.Fatalf("expected single param x, got %#v", lam.Params)
	}
}

func TestParseNeverAbortsOnMalformedInput(t *testing.T) {
	// A truly broken program: a dangling operator, an unmatched brace,
	// and a bad token — the tolerant parser must still return a Program
	// covering the whole input, with diagnostics describing every spot
	// it had to recover from.
	prog, n := parseTolerant(t, `let x = + print x { let y = 1`)
	if n == 0 {
		t.Fatalf("expected diagnostics for malformed input")
	}
	if prog.Statements == nil {
		t.Fatalf("expected a non-nil Program even for malformed input")
	}
}

func TestParseUnmatchedClosingBraceRecovers(t *testing.T) {
	prog, n := parseTolerant(t, `print 1 } print 2`)
	if n == 0 {
		t.Fatalf("expected a brace_mismatch diagnostic")
	}
	if len(prog.Statements) < 2 {
		t.Fatalf("expected parsing to continue past the stray '}', got %d statements", len(prog.Statements))
	}
}

func TestParseFallbackWhenAdvancedParsingDisabled(t *testing.T) {
	toks, _ := lexer.New(`let x = 1 print x`).Scan()
	cfg := config.New(config.WithAdvancedParsing(false))
	prog, diags := tparser.Parse(toks, cfg)
	if len(diags) != 0 {
		t.Fatalf("expected clean parse via fallback, got %v", diags)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}

func TestParseEventAndEmit(t *testing.T) {
	prog, n := parseTolerant(t, `event E { x: integer } emit E { x: 7 }`)
	if n != 0 {
		t.Fatalf("expected 0 diagnostics, got %d", n)
	}
	ev, ok := prog.Statements[0].(ast.Event)
	if !ok || ev.Name != "E" || len(ev.Fields) != 1 {
		t.Fatalf("expected event E with 1 field, got %#v", prog.Statements[0])
	}
	emit, ok := prog.Statements[1].(ast.Emit)
	if !ok || emit.Name != "E" {
		t.Fatalf("expected emit E, got %#v", prog.Statements[1])
	}
}
