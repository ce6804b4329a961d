// Package tparser implements Zexus's tolerant (interpreter) parser: the
// multi-strategy pipeline of spec §4.2 that always consumes the whole
// token stream and always yields an ast.Program, collecting diagnostics
// instead of aborting.
//
// The pipeline has four named stages, each grounded on a different part
// of the production parser's (package parser) recursive-descent shape,
// generalized with the tolerances production deliberately refuses:
//
//  1. structural.go — a blind left-to-right delimiter-matching pass
//     (segment) that resolves the one tie-break a lexical scan alone can
//     make (map vs. brace block) and reports whether the token stream is
//     well-bracketed enough to trust ("trusted").
//  2. parser.go / statements.go / expressions.go — the context-stack
//     parser: the same declaration/statement/expression-ladder/primary
//     method chain package parser uses, generalized to accept every
//     tolerance spec §4.2 lists (colon-blocks, stray separators, the
//     three catch forms, lambda's single-param shorthand) and to never
//     return a hard error.
//  3. recovery.go — the shared synchronization/diagnostic engine both
//     the context-stack parser and the fallback parser call into.
//  4. fallback.go — reruns the same recursive descent without the
//     structural pre-segmentation, for input too malformed to trust.
package tparser

import (
	"zexus/ast"
	"zexus/config"
	"zexus/diag"
	"zexus/token"
)

// Parser holds the tolerant parser's mutable state across the context-
// stack stage: the token stream, a cursor, the structural segmentation
// (nil in fallback mode), accumulated diagnostics, and a context stack
// naming the grammar position currently expected (used for recovery
// messages — "expected a map-entry", "expected a catch-var").
type Parser struct {
	tokens  []token.Token
	current int
	blocks  map[int]block // nil in fallback mode
	diags   []diag.Diagnostic
	cfg     config.Config
	ctx     []string
}

// Parse runs the full tolerant pipeline over tokens and always returns a
// complete Program plus every diagnostic collected along the way.
func Parse(tokens []token.Token, cfg config.Config) (ast.Program, []diag.Diagnostic) {
	if !cfg.EnableAdvancedParsing {
		return parseFallback(tokens, cfg, nil)
	}
	byOpen, sdiags, trusted := segment(tokens)
	if !trusted {
		return parseFallback(tokens, cfg, sdiags)
	}
	p := &Parser{tokens: tokens, blocks: byOpen, cfg: cfg, diags: sdiags}
	prog := p.parseProgram()
	return prog, p.diags
}

func (p *Parser) parseProgram() ast.Program {
	var statements []ast.Stmt
	for !p.isAtEnd() {
		if p.match(token.SEMICOLON) {
			continue
		}
		before := p.current
		statements = append(statements, p.declaration())
		if p.current == before {
			// Safety net: a declaration that consumed nothing would loop
			// forever. Force progress and record why.
			p.errorf(p.peek().Pos, "parser made no progress at '"+string(p.peek().TokenType)+"'")
			p.advance()
		}
	}
	return ast.Program{Statements: statements}
}

// --- token-stream primitives, mirroring package parser's shape ---

func (p *Parser) peek() token.Token { return p.tokens[p.current] }

func (p *Parser) peekAt(k int) token.Token {
	i := p.current + k
	if i < 0 {
		i = 0
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) peekNext() token.Token { return p.peekAt(1) }

func (p *Parser) previous() token.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool { return p.peek().TokenType == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt token.TokenType) bool {
	if p.isAtEnd() {
		return tt == token.EOF
	}
	return p.peek().TokenType == tt
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past tt, or records a diagnostic and leaves the
// cursor in place (the caller decides whether to synchronize).
func (p *Parser) consume(tt token.TokenType, message string) (token.Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	p.errorf(p.peek().Pos, "expected "+message+", got '"+string(p.peek().TokenType)+"'")
	return token.Token{}, false
}

// consumeOptionalSemicolon implements "optional semicolons between
// statements; stray semicolons ignored".
func (p *Parser) consumeOptionalSemicolon() {
	for p.match(token.SEMICOLON) {
	}
}

func (p *Parser) pushCtx(name string) { p.ctx = append(p.ctx, name) }
func (p *Parser) popCtx()             { p.ctx = p.ctx[:len(p.ctx)-1] }
