package token

import "testing"

func TestCreateToken(t *testing.T) {
	pos := Position{Line: 1, Column: 1}
	tests := []struct {
		name      string
		tokenType TokenType
		lexeme    string
		want      Token
	}{
		{"assign", ASSIGN, "=", Token{TokenType: ASSIGN, Lexeme: "=", Pos: pos}},
		{"identifier", IDENTIFIER, "myVar", Token{TokenType: IDENTIFIER, Lexeme: "myVar", Pos: pos}},
		{"star", STAR, "*", Token{TokenType: STAR, Lexeme: "*", Pos: pos}},
		{"arrow", ARROW, "->", Token{TokenType: ARROW, Lexeme: "->", Pos: pos}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.lexeme, pos)
			if got != tt.want {
				t.Errorf("CreateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	pos := Position{Line: 3, Column: 10}
	got := CreateLiteralToken(INT, int64(42), "42", pos)
	if got.Literal != int64(42) || got.Lexeme != "42" || got.TokenType != INT {
		t.Errorf("CreateLiteralToken() = %+v", got)
	}
}

func TestLookupIdentifier(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"let", LET},
		{"action", ACTION},
		{"await", AWAIT},
		{"enum", ENUM},
		{"foo", IDENTIFIER},
		{"async", IDENTIFIER}, // contextual, not a bare keyword lookup
	}
	for _, tt := range tests {
		if got := LookupIdentifier(tt.ident); got != tt.want {
			t.Errorf("LookupIdentifier(%q) = %s, want %s", tt.ident, got, tt.want)
		}
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 2, Column: 5}
	if p.String() != "line:2, column:5" {
		t.Errorf("Position.String() = %q", p.String())
	}
	pf := Position{Line: 2, Column: 5, File: "main.zx"}
	if pf.String() != "main.zx:2:5" {
		t.Errorf("Position.String() with file = %q", pf.String())
	}
}
