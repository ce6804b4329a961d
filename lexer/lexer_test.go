package lexer

import (
	"testing"

	"zexus/token"
)

func kinds(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.TokenType
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, errs := New(`let x = 1 + 2 * (3 - 4) / 5 && true || false == 1 != 2 <= 3 >= 4 -> x`).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	want := []token.TokenType{
		token.LET, token.IDENTIFIER, token.ASSIGN, token.INT, token.PLUS, token.INT,
		token.STAR, token.LPA, token.INT, token.MINUS, token.INT, token.RPA,
		token.SLASH, token.INT, token.AND_AND, token.TRUE, token.OR_OR, token.FALSE,
		token.EQUAL_EQUAL, token.INT, token.NOT_EQUAL, token.INT, token.LESS_EQUAL, token.INT,
		token.LARGER_EQUAL, token.INT, token.ARROW, token.IDENTIFIER, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAsyncContextualKeyword(t *testing.T) {
	toks, _ := New(`action async greet() { } async`).Scan()
	if toks[0].TokenType != token.ACTION || toks[1].TokenType != token.ASYNC {
		t.Fatalf("expected ACTION ASYNC, got %v", kinds(toks[:2]))
	}
	last := toks[len(toks)-2] // before EOF
	if last.TokenType != token.IDENTIFIER {
		t.Errorf("trailing async outside action position should be IDENTIFIER, got %s", last.TokenType)
	}
}

func TestNumberLiterals(t *testing.T) {
	toks, errs := New(`1 2.5 .5`).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	if toks[0].Literal.(int64) != 1 {
		t.Errorf("want int64(1), got %v", toks[0].Literal)
	}
	if toks[1].Literal.(float64) != 2.5 {
		t.Errorf("want float64(2.5), got %v", toks[1].Literal)
	}
	if toks[2].Literal.(float64) != 0.5 {
		t.Errorf("want float64(0.5), got %v", toks[2].Literal)
	}
}

func TestTrailingDotIsLexicalError(t *testing.T) {
	_, errs := New(`1.`).Scan()
	if len(errs) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(errs))
	}
}

func TestStringEscapes(t *testing.T) {
	toks, errs := New(`"a\nb\tc\x41"`).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	want := "a\nb\tcA"
	if toks[0].Literal.(string) != want {
		t.Errorf("got %q, want %q", toks[0].Literal, want)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, errs := New("\"unterminated").Scan()
	if len(errs) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(errs))
	}
}

func TestComments(t *testing.T) {
	toks, _ := New("let x = 1 // trailing comment\n/* block\ncomment */ print x").Scan()
	got := kinds(toks)
	want := []token.TokenType{token.LET, token.IDENTIFIER, token.ASSIGN, token.INT, token.PRINT, token.IDENTIFIER, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEmbeddedCodeBlock(t *testing.T) {
	src := "{|sql\nSELECT * FROM t|}"
	toks, errs := New(src).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	if toks[0].TokenType != token.EMBED_OPEN {
		t.Fatalf("want EMBED_OPEN, got %s", toks[0].TokenType)
	}
	if toks[0].Lexeme != "sql" {
		t.Errorf("want tag 'sql', got %q", toks[0].Lexeme)
	}
	if toks[0].Literal.(string) != "SELECT * FROM t" {
		t.Errorf("want body 'SELECT * FROM t', got %q", toks[0].Literal)
	}
}

func TestKeywords(t *testing.T) {
	toks, _ := New(`try catch enum protocol register_event emit lambda exactly`).Scan()
	want := []token.TokenType{
		token.TRY, token.CATCH, token.ENUM, token.PROTOCOL,
		token.REGISTER_EVENT, token.EMIT, token.LAMBDA, token.EXACTLY, token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}
