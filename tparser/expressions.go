// expressions.go continues stage 2 (the context-stack parser) with the
// expression precedence ladder: assignment, ||, &&, equality,
// relational, additive, multiplicative, unary, call/index/property,
// primary — identical precedence to package parser's own ladder (spec
// §4.2/§4.3 require the two parsers agree here), but every level
// degrades to a placeholder plus a diagnostic instead of aborting when
// its operand can't be parsed.
package tparser

import (
	"zexus/ast"
	"zexus/token"
)

func (p *Parser) expression() ast.Expression {
	p.pushCtx("expression")
	defer p.popCtx()
	return p.assignment()
}

func (p *Parser) assignment() ast.Expression {
	left := p.logicalOr()
	if p.match(token.ASSIGN) {
		eqTok := p.previous()
		value := p.assignment()
		switch left.(type) {
		case ast.Identifier, ast.Index, ast.PropertyAccess:
			return ast.Assignment{Base: ast.Base{Pos: eqTok.Pos}, Target: left, Value: value}
		default:
			p.errorf(eqTok.Pos, "invalid assignment target")
			return left
		}
	}
	return left
}

func (p *Parser) logicalOr() ast.Expression {
	left := p.logicalAnd()
	for p.match(token.OR_OR) {
		op := p.previous()
		right := p.logicalAnd()
		left = ast.Infix{Base: ast.Base{Pos: op.Pos}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) logicalAnd() ast.Expression {
	left := p.equality()
	for p.match(token.AND_AND) {
		op := p.previous()
		right := p.equality()
		left = ast.Infix{Base: ast.Base{Pos: op.Pos}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) equality() ast.Expression {
	left := p.relational()
	for p.match(token.EQUAL_EQUAL, token.NOT_EQUAL) {
		op := p.previous()
		right := p.relational()
		left = ast.Infix{Base: ast.Base{Pos: op.Pos}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) relational() ast.Expression {
	left := p.additive()
	for p.match(token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL) {
		op := p.previous()
		right := p.additive()
		left = ast.Infix{Base: ast.Base{Pos: op.Pos}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) additive() ast.Expression {
	left := p.multiplicative()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.multiplicative()
		left = ast.Infix{Base: ast.Base{Pos: op.Pos}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) multiplicative() ast.Expression {
	left := p.unary()
	for p.match(token.STAR, token.SLASH, token.PERCENT) {
		op := p.previous()
		right := p.unary()
		left = ast.Infix{Base: ast.Base{Pos: op.Pos}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) unary() ast.Expression {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return ast.Prefix{Base: ast.Base{Pos: op.Pos}, Operator: op, Right: right}
	}
	if p.match(token.AWAIT) {
		tok := p.previous()
		value := p.unary()
		return ast.Await{Base: ast.Base{Pos: tok.Pos}, Value: value}
	}
	return p.callChain()
}

func (p *Parser) callChain() ast.Expression {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LPA):
			tok := p.previous()
			args := p.parseArgs()
			expr = ast.Call{Base: ast.Base{Pos: tok.Pos}, Callee: expr, Args: args}
		case p.match(token.DOT):
			name, ok := p.consume(token.IDENTIFIER, "a property or method name after '.'")
			if !ok {
				return expr
			}
			if p.match(token.LPA) {
				args := p.parseArgs()
				expr = ast.MethodCall{Base: ast.Base{Pos: name.Pos}, Receiver: expr, Name: name.Lexeme, Args: args}
			} else {
				expr = ast.PropertyAccess{Base: ast.Base{Pos: name.Pos}, Receiver: expr, Name: name.Lexeme}
			}
		case p.match(token.LBRACKET):
			tok := p.previous()
			idx := p.expression()
			p.consume(token.RBRACKET, "']' after index expression")
			expr = ast.Index{Base: ast.Base{Pos: tok.Pos}, Receiver: expr, Index: idx}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []ast.Expression {
	if p.check(token.RPA) {
		p.advance()
		return nil
	}
	var args []ast.Expression
	for {
		args = append(args, p.expression())
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	p.consume(token.RPA, "')' after argument list")
	return args
}

// parseMapLiteral implements the map-entry tolerances: entries separated
// by ',' or ';', trailing separators allowed, bare-identifier keys
// coerced to string keys.
func (p *Parser) parseMapLiteral() ast.MapLiteral {
	tok, ok := p.consume(token.LCUR, "'{' to start a map literal")
	if !ok {
		return ast.MapLiteral{Base: ast.Base{Pos: tok.Pos}}
	}
	p.pushCtx("map-entry")
	defer p.popCtx()
	var entries []ast.MapEntry
	for !p.check(token.RCUR) && !p.isAtEnd() {
		var key ast.Expression
		if p.check(token.STRING) {
			t := p.advance()
			s, _ := t.Literal.(string)
			key = ast.String{Base: ast.Base{Pos: t.Pos}, Value: s}
		} else {
			name, ok := p.consume(token.IDENTIFIER, "a map key")
			if !ok {
				p.synchronize("skipped malformed map entry")
				continue
			}
			key = ast.String{Base: ast.Base{Pos: name.Pos}, Value: name.Lexeme}
		}
		if _, ok := p.consume(token.COLON, "':' after map key"); !ok {
			p.synchronize("skipped malformed map entry")
			continue
		}
		value := p.expression()
		entries = append(entries, ast.MapEntry{Key: key, Value: value})
		if p.match(token.COMMA) || p.match(token.SEMICOLON) {
			continue
		}
		break
	}
	p.consume(token.RCUR, "'}' to close map literal")
	return ast.MapLiteral{Base: ast.Base{Pos: tok.Pos}, Entries: entries}
}

func (p *Parser) primary() ast.Expression {
	switch p.peek().TokenType {
	case token.INT:
		t := p.advance()
		v, _ := t.Literal.(int64)
		return ast.Integer{Base: ast.Base{Pos: t.Pos}, Value: v}
	case token.FLOAT:
		t := p.advance()
		v, _ := t.Literal.(float64)
		return ast.Float{Base: ast.Base{Pos: t.Pos}, Value: v}
	case token.STRING:
		t := p.advance()
		v, _ := t.Literal.(string)
		return ast.String{Base: ast.Base{Pos: t.Pos}, Value: v}
	case token.TRUE:
		t := p.advance()
		return ast.Bool{Base: ast.Base{Pos: t.Pos}, Value: true}
	case token.FALSE:
		t := p.advance()
		return ast.Bool{Base: ast.Base{Pos: t.Pos}, Value: false}
	case token.NULL:
		t := p.advance()
		return ast.Null{Base: ast.Base{Pos: t.Pos}}
	case token.IDENTIFIER, token.REGISTER_EVENT:
		t := p.advance()
		return ast.Identifier{Base: ast.Base{Pos: t.Pos}, Name: t.Lexeme}
	case token.LPA:
		p.advance()
		expr := p.expression()
		p.consume(token.RPA, "')' after grouped expression")
		return expr
	case token.LBRACKET:
		return p.listLiteral()
	case token.LCUR:
		return p.parseMapLiteral()
	case token.ACTION:
		return p.actionLiteral()
	case token.LAMBDA:
		return p.lambdaLiteral()
	case token.IF:
		return p.ifExpr()
	case token.EMBED_OPEN:
		t := p.advance()
		text := ""
		if t.Literal != nil {
			text, _ = t.Literal.(string)
		}
		return ast.EmbeddedLiteral{Base: ast.Base{Pos: t.Pos}, Language: t.Lexeme, Text: text}
	}
	pos := p.peek().Pos
	p.errorf(pos, "unexpected token '"+string(p.peek().TokenType)+"'")
	if !p.isAtEnd() {
		p.advance()
	}
	return placeholderExpr(pos, "unparsable expression")
}

func (p *Parser) listLiteral() ast.Expression {
	tok := p.advance()
	var elements []ast.Expression
	for !p.check(token.RBRACKET) && !p.isAtEnd() {
		elements = append(elements, p.expression())
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	p.consume(token.RBRACKET, "']' to close list literal")
	return ast.ListLiteral{Base: ast.Base{Pos: tok.Pos}, Elements: elements}
}

func (p *Parser) actionLiteral() ast.Expression {
	tok := p.advance()
	async := p.match(token.ASYNC)
	params := p.parseParams()
	body := p.braceOrColonBlock()
	return ast.ActionLiteral{Base: ast.Base{Pos: tok.Pos}, Params: params, Body: body.Statements, Async: async}
}

// lambdaLiteral accepts the single-param shorthand tolerance:
// `lambda x -> expr` equivalent to `lambda(x) -> expr`.
func (p *Parser) lambdaLiteral() ast.Expression {
	tok := p.advance()
	var params []token.Token
	if p.match(token.LPA) {
		if !p.check(token.RPA) {
			for {
				name, ok := p.consume(token.IDENTIFIER, "a lambda parameter name")
				if !ok {
					break
				}
				params = append(params, name)
				if p.match(token.COMMA) {
					continue
				}
				break
			}
		}
		p.consume(token.RPA, "')' after lambda parameters")
	} else if name, ok := p.consume(token.IDENTIFIER, "a lambda parameter"); ok {
		params = []token.Token{name}
	}
	p.consume(token.ARROW, "'->' in lambda")
	body := p.expression()
	return ast.Lambda{Base: ast.Base{Pos: tok.Pos}, Params: params, Body: body}
}

// ifExpr is `if cond thenExpr else elseExpr`: the bare-expression form,
// disambiguated from the If statement purely by never being reachable
// from statement()/declaration() — matching package parser's own
// resolution of the same ambiguity.
func (p *Parser) ifExpr() ast.Expression {
	tok := p.advance()
	cond := p.expression()
	then := p.expression()
	p.consume(token.ELSE, "'else' in if-expression")
	elseExpr := p.expression()
	return ast.IfExpr{Base: ast.Base{Pos: tok.Pos}, Condition: cond, Then: then, Else: elseExpr}
}
