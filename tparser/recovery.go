// recovery.go is stage 3 of the tolerant parser's pipeline (spec
// §4.2.3): the shared synchronization engine both the context-stack
// parser (parser.go/statements.go/expressions.go) and the fallback
// parser (fallback.go) call into whenever they hit a token the grammar
// doesn't expect. It never aborts a parse — only the caller's own loop
// bound (EOF) can end one.
package tparser

import (
	"zexus/ast"
	"zexus/diag"
	"zexus/token"
)

func (p *Parser) errorf(pos token.Position, message string) {
	if len(p.ctx) > 0 {
		message = message + " (expecting " + p.ctx[len(p.ctx)-1] + ")"
	}
	p.diags = append(p.diags, diag.Diagnostic{
		Kind:    diag.Syntax,
		Message: message,
		Pos:     pos,
	})
}

// synchronize implements recovery steps (a)-(c) of spec §4.2.3: skip
// forward to the next ';' or the innermost block's closing '}' at brace
// depth 0, dropping whatever lies between, and record that the skip
// happened. It never steps past the boundary of the structural block
// the caller is currently inside of, so one malformed statement can't
// swallow an entire enclosing construct.
func (p *Parser) synchronize(reason string) {
	start := p.current
	depth := 0
	for !p.isAtEnd() {
		switch p.peek().TokenType {
		case token.SEMICOLON:
			if depth == 0 {
				p.advance()
				p.noteSkip(start, reason)
				return
			}
		case token.LCUR, token.LPA, token.LBRACKET:
			depth++
		case token.RCUR:
			if depth == 0 {
				p.noteSkip(start, reason)
				return
			}
			depth--
		case token.RPA, token.RBRACKET:
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
	p.noteSkip(start, reason)
}

func (p *Parser) noteSkip(start int, reason string) {
	if p.current == start || len(p.diags) == 0 {
		return
	}
	p.diags[len(p.diags)-1].Recovery = reason
}

// placeholderStmt stands in for a statement the parser gave up on after
// a diagnostic + synchronize, so the enclosing block/program keeps its
// expected shape (one Stmt per parse attempt) instead of silently
// dropping a slot.
func placeholderStmt(pos token.Position, note string) ast.Stmt {
	return ast.ExpressionStatement{
		Base:       ast.Base{Pos: pos, Notes: []string{note}},
		Expression: ast.Null{Base: ast.Base{Pos: pos}},
	}
}

// placeholderExpr stands in for an expression the parser couldn't parse
// at all, letting the caller's expression chain keep going rather than
// unwind entirely on the first bad token.
func placeholderExpr(pos token.Position, note string) ast.Expression {
	return ast.Null{Base: ast.Base{Pos: pos, Notes: []string{note}}}
}
