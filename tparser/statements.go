// statements.go is stage 2 of the tolerant parser's pipeline (spec
// §4.2.2): the context-stack parser's statement-level grammar. Every
// method mirrors its namesake in package parser's own declaration/
// statement ladder, generalized to accept every tolerance spec §4.2
// enumerates and to never return a hard error — a method that can't
// make sense of the current token records a diagnostic, calls
// synchronize, and returns a placeholder so its caller's loop keeps
// making progress toward EOF.
package tparser

import (
	"zexus/ast"
	"zexus/token"
)

func (p *Parser) declaration() ast.Stmt {
	switch p.peek().TokenType {
	case token.EXPORT:
		return p.exportDecl()
	case token.LET:
		return p.letDecl()
	case token.ACTION:
		if p.peekNext().TokenType == token.IDENTIFIER || p.peekNext().TokenType == token.ASYNC {
			return p.actionDecl()
		}
	case token.EVENT:
		return p.eventDecl()
	case token.ENUM:
		return p.enumDecl()
	case token.PROTOCOL:
		return p.protocolDecl()
	case token.CONTRACT:
		return p.contractDecl()
	case token.EXTERNAL:
		return p.externalDecl()
	case token.USE:
		return p.useDecl()
	case token.IMPORT:
		return p.importDecl()
	case token.SCREEN:
		return p.screenDecl()
	case token.COMPONENT:
		return p.componentDecl()
	case token.THEME:
		return p.themeDecl()
	}
	return p.statement()
}

func (p *Parser) exportDecl() ast.Stmt {
	tok := p.advance()
	inner := p.declaration()
	return ast.Export{Base: ast.Base{Pos: tok.Pos}, Inner: inner}
}

func (p *Parser) letDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "an identifier after 'let'")
	if !ok {
		p.synchronize("skipped malformed 'let'")
		return placeholderStmt(tok.Pos, "malformed let declaration")
	}
	if _, ok := p.consume(token.ASSIGN, "'=' in let declaration"); !ok {
		p.synchronize("skipped malformed 'let'")
		return placeholderStmt(tok.Pos, "malformed let declaration")
	}
	value := p.expression()
	p.consumeOptionalSemicolon()
	return ast.Let{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Initializer: value}
}

// parseParams accepts a parenthesized parameter list.
func (p *Parser) parseParams() []token.Token {
	if _, ok := p.consume(token.LPA, "'(' to start a parameter list"); !ok {
		return nil
	}
	var params []token.Token
	if p.check(token.RPA) {
		p.advance()
		return params
	}
	for {
		name, ok := p.consume(token.IDENTIFIER, "a parameter name")
		if !ok {
			break
		}
		params = append(params, name)
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	p.consume(token.RPA, "')' after parameter list")
	return params
}

// block parses a brace-delimited statement block. In context-stack terms
// this is a Brace structural block whose body the context stack parses
// under the "statement" context.
func (p *Parser) block() ast.Block {
	tok, ok := p.consume(token.LCUR, "'{' to start a block")
	if !ok {
		return ast.Block{Base: ast.Base{Pos: tok.Pos}}
	}
	var statements []ast.Stmt
	for !p.check(token.RCUR) && !p.isAtEnd() {
		before := p.current
		statements = append(statements, p.declaration())
		if p.current == before {
			p.advance()
		}
	}
	p.consume(token.RCUR, "'}' to close block")
	return ast.Block{Base: ast.Base{Pos: tok.Pos}, Statements: statements}
}

// braceOrColonBlock implements the "colon-style blocks" tolerance: a
// block body introduced by ':' instead of '{'/'}'. It is the one
// grammar point where the context-stack parser consults stage 1's
// structural segmentation directly, per spec §9's colon-block design
// note ("...or the next closing brace of an enclosing block, whichever
// comes first").
func (p *Parser) braceOrColonBlock() ast.Block {
	if p.check(token.LCUR) {
		return p.block()
	}
	colon, ok := p.consume(token.COLON, "'{' or ':' to start a block")
	if !ok {
		return ast.Block{Base: ast.Base{Pos: colon.Pos}}
	}
	return p.colonBlock(colon.Pos)
}

func (p *Parser) colonBlock(colonPos token.Position) ast.Block {
	if p.isAtEnd() || p.check(token.RCUR) {
		p.errorf(colonPos, "ambiguous colon-block: empty body")
		return ast.Block{Base: ast.Base{Pos: colonPos, Notes: []string{"ambiguous_colon_block"}}}
	}

	boundary, haveBoundary := p.enclosingClose()
	sameLine := p.peek().Pos.Line == colonPos.Line
	bodyIndent := p.peek().Pos.Column

	var statements []ast.Stmt
	for {
		if p.isAtEnd() || p.check(token.RCUR) {
			break
		}
		if haveBoundary && p.current >= boundary {
			break
		}
		if !sameLine && p.peek().Pos.Line != colonPos.Line && p.peek().Pos.Column < bodyIndent {
			break
		}
		before := p.current
		statements = append(statements, p.declaration())
		if p.current == before {
			p.advance()
		}
		if sameLine {
			// The one-line form `if cond: stmt` takes exactly one
			// statement; anything further belongs to the enclosing scope.
			break
		}
	}
	return ast.Block{Base: ast.Base{Pos: colonPos}, Statements: statements}
}

func (p *Parser) actionDecl() ast.Action {
	tok := p.advance()
	async := p.match(token.ASYNC)
	name, ok := p.consume(token.IDENTIFIER, "an action name")
	if !ok {
		p.synchronize("skipped malformed action declaration")
		return ast.Action{Base: ast.Base{Pos: tok.Pos}}
	}
	params := p.parseParams()
	body := p.braceOrColonBlock()
	return ast.Action{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Params: params, Body: body.Statements, Async: async}
}

func (p *Parser) eventDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "an event name")
	if !ok {
		p.synchronize("skipped malformed event declaration")
		return placeholderStmt(tok.Pos, "malformed event declaration")
	}
	if _, ok := p.consume(token.LCUR, "'{' in event declaration"); !ok {
		p.synchronize("skipped malformed event declaration")
		return placeholderStmt(tok.Pos, "malformed event declaration")
	}
	var fields []ast.EventField
	for !p.check(token.RCUR) && !p.isAtEnd() {
		fname, ok := p.consume(token.IDENTIFIER, "a field name")
		if !ok {
			break
		}
		p.consume(token.COLON, "':' after field name")
		ftype, ok := p.consume(token.IDENTIFIER, "a field type")
		fieldType := ""
		if ok {
			fieldType = ftype.Lexeme
		}
		fields = append(fields, ast.EventField{Name: fname.Lexeme, Type: fieldType})
		if p.match(token.COMMA) || p.match(token.SEMICOLON) {
			continue
		}
		break
	}
	p.consume(token.RCUR, "'}' to close event declaration")
	return ast.Event{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Fields: fields}
}

func (p *Parser) enumDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "an enum name")
	if !ok {
		p.synchronize("skipped malformed enum declaration")
		return placeholderStmt(tok.Pos, "malformed enum declaration")
	}
	p.consume(token.LCUR, "'{' in enum declaration")
	var variants []string
	for !p.check(token.RCUR) && !p.isAtEnd() {
		variant, ok := p.consume(token.IDENTIFIER, "an enum variant name")
		if !ok {
			break
		}
		variants = append(variants, variant.Lexeme)
		if p.match(token.COMMA) || p.match(token.SEMICOLON) {
			continue
		}
		break
	}
	p.consume(token.RCUR, "'}' to close enum declaration")
	return ast.Enum{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Variants: variants}
}

func (p *Parser) protocolDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "a protocol name")
	if !ok {
		p.synchronize("skipped malformed protocol declaration")
		return placeholderStmt(tok.Pos, "malformed protocol declaration")
	}
	p.consume(token.LCUR, "'{' in protocol declaration")
	var sigs []ast.ProtocolSignature
	for !p.check(token.RCUR) && !p.isAtEnd() {
		sigName, ok := p.consume(token.IDENTIFIER, "a signature name")
		if !ok {
			break
		}
		p.consume(token.LPA, "'(' in protocol signature")
		arity := 0
		if !p.check(token.RPA) {
			for {
				if _, ok := p.consume(token.IDENTIFIER, "a parameter name"); !ok {
					break
				}
				arity++
				if p.match(token.COMMA) {
					continue
				}
				break
			}
		}
		p.consume(token.RPA, "')' after protocol signature")
		sigs = append(sigs, ast.ProtocolSignature{Name: sigName.Lexeme, Arity: arity})
		p.consumeOptionalSemicolon()
	}
	p.consume(token.RCUR, "'}' to close protocol declaration")
	return ast.Protocol{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Signatures: sigs}
}

func (p *Parser) contractDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "a contract name")
	if !ok {
		p.synchronize("skipped malformed contract declaration")
		return placeholderStmt(tok.Pos, "malformed contract declaration")
	}
	protocolName := ""
	if p.match(token.REQUIRE) {
		if protoTok, ok := p.consume(token.IDENTIFIER, "a protocol name after 'require'"); ok {
			protocolName = protoTok.Lexeme
		}
	}
	p.consume(token.LCUR, "'{' in contract declaration")
	var storage []string
	var actions []ast.Action
	for !p.check(token.RCUR) && !p.isAtEnd() {
		switch {
		case p.match(token.PERSISTENT):
			p.consume(token.STORAGE, "'storage' after 'persistent'")
			if field, ok := p.consume(token.IDENTIFIER, "a storage field name"); ok {
				storage = append(storage, field.Lexeme)
			}
			p.consumeOptionalSemicolon()
		case p.check(token.ACTION):
			actions = append(actions, p.actionDecl())
		default:
			p.errorf(p.peek().Pos, "expected 'persistent storage' or an action inside contract body")
			p.synchronize("skipped unrecognized contract member")
		}
	}
	p.consume(token.RCUR, "'}' to close contract declaration")
	return ast.Contract{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Protocol: protocolName, Storage: storage, Actions: actions}
}

func (p *Parser) externalDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "an identifier after 'external'")
	if !ok {
		p.synchronize("skipped malformed external declaration")
		return placeholderStmt(tok.Pos, "malformed external declaration")
	}
	source := ""
	if p.match(token.FROM) {
		if src, ok := p.consume(token.STRING, "a string source after 'from'"); ok {
			source, _ = src.Literal.(string)
		}
	}
	p.consumeOptionalSemicolon()
	return ast.ExternalDeclaration{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Source: source}
}

func (p *Parser) useDecl() ast.Stmt {
	tok := p.advance()
	module, ok := p.consume(token.IDENTIFIER, "a module name after 'use'")
	if !ok {
		p.synchronize("skipped malformed use declaration")
		return placeholderStmt(tok.Pos, "malformed use declaration")
	}
	alias := ""
	if p.match(token.FROM) {
		if aliasTok, ok := p.consume(token.IDENTIFIER, "an alias after 'from'"); ok {
			alias = aliasTok.Lexeme
		}
	}
	p.consumeOptionalSemicolon()
	return ast.Use{Base: ast.Base{Pos: tok.Pos}, Module: module.Lexeme, Alias: alias}
}

// importDecl, screenDecl, componentDecl and themeDecl parse the render-
// declarative sugar that exists only in ast (render_decls.go) — the
// tolerant parser is the only front end that ever produces them, since
// the compiled path (package cast/compiler) has no renderer-facing
// surface at all (spec §1's scope note on the renderer collaborator).
func (p *Parser) importDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "a name after 'import'")
	if !ok {
		p.synchronize("skipped malformed import declaration")
		return placeholderStmt(tok.Pos, "malformed import declaration")
	}
	source := ""
	if p.match(token.FROM) {
		if src, ok := p.consume(token.STRING, "a string source after 'from'"); ok {
			source, _ = src.Literal.(string)
		}
	}
	p.consumeOptionalSemicolon()
	return ast.Import{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Source: source}
}

func (p *Parser) screenDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "a screen name")
	if !ok {
		p.synchronize("skipped malformed screen declaration")
		return placeholderStmt(tok.Pos, "malformed screen declaration")
	}
	body := p.block()
	return ast.ScreenDef{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Body: body.Statements}
}

func (p *Parser) componentDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "a component name")
	if !ok {
		p.synchronize("skipped malformed component declaration")
		return placeholderStmt(tok.Pos, "malformed component declaration")
	}
	var params []string
	if p.check(token.LPA) {
		for _, t := range p.parseParams() {
			params = append(params, t.Lexeme)
		}
	}
	body := p.block()
	return ast.ComponentDef{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Params: params, Body: body.Statements}
}

func (p *Parser) themeDecl() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "a theme name")
	if !ok {
		p.synchronize("skipped malformed theme declaration")
		return placeholderStmt(tok.Pos, "malformed theme declaration")
	}
	props := p.parseMapLiteral()
	return ast.ThemeDef{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Props: props}
}

// --- statements ---

func (p *Parser) statement() ast.Stmt {
	p.pushCtx("statement")
	defer p.popCtx()
	switch p.peek().TokenType {
	case token.PRINT:
		return p.printStmt()
	case token.RETURN:
		return p.returnStmt()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	case token.FOR:
		return p.forEachStmt()
	case token.TRY:
		return p.tryCatchStmt()
	case token.DEBUG:
		return p.debugStmt()
	case token.EMIT:
		return p.emitStmt()
	case token.EXACTLY:
		return p.exactlyStmt()
	case token.LCUR:
		return p.block()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) printStmt() ast.Stmt {
	tok := p.advance()
	expr := p.expression()
	p.consumeOptionalSemicolon()
	return ast.Print{Base: ast.Base{Pos: tok.Pos}, Expression: expr}
}

func (p *Parser) atStatementBoundary() bool {
	switch p.peek().TokenType {
	case token.SEMICOLON, token.RCUR, token.EOF:
		return true
	}
	return false
}

func (p *Parser) returnStmt() ast.Stmt {
	tok := p.advance()
	var value ast.Expression
	if !p.atStatementBoundary() {
		value = p.expression()
	}
	p.consumeOptionalSemicolon()
	return ast.Return{Base: ast.Base{Pos: tok.Pos}, Value: value}
}

func (p *Parser) ifStmt() ast.Stmt {
	tok := p.advance()
	cond := p.expression()
	then := p.braceOrColonBlock()
	var elseStmt ast.Stmt
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			elseStmt = p.ifStmt()
		} else {
			elseStmt = p.braceOrColonBlock()
		}
	}
	return ast.If{Base: ast.Base{Pos: tok.Pos}, Condition: cond, Then: then, Else: elseStmt}
}

func (p *Parser) whileStmt() ast.Stmt {
	tok := p.advance()
	cond := p.expression()
	body := p.braceOrColonBlock()
	return ast.While{Base: ast.Base{Pos: tok.Pos}, Condition: cond, Body: body}
}

func (p *Parser) forEachStmt() ast.Stmt {
	tok := p.advance()
	p.consume(token.EACH, "'each' after 'for'")
	name, ok := p.consume(token.IDENTIFIER, "a loop variable name")
	if !ok {
		p.synchronize("skipped malformed for-each")
		return placeholderStmt(tok.Pos, "malformed for-each")
	}
	p.consume(token.IN, "'in' after loop variable")
	iterable := p.expression()
	body := p.braceOrColonBlock()
	return ast.ForEach{Base: ast.Base{Pos: tok.Pos}, Var: name.Lexeme, Iterable: iterable, Body: body}
}

// tryCatchStmt accepts the three enumerated equivalent catch forms:
// `catch err`, `catch(err)`, `catch((err))`.
func (p *Parser) tryCatchStmt() ast.Stmt {
	tok := p.advance()
	body := p.braceOrColonBlock()
	if _, ok := p.consume(token.CATCH, "'catch' after try block"); !ok {
		p.synchronize("skipped malformed try/catch")
		return ast.TryCatch{Base: ast.Base{Pos: tok.Pos}, Body: body}
	}
	p.pushCtx("catch-var")
	var errVar token.Token
	if p.match(token.LPA) {
		extraParen := p.match(token.LPA)
		errVar, _ = p.consume(token.IDENTIFIER, "an error variable name in catch")
		if extraParen {
			p.consume(token.RPA, "')' to close nested catch parens")
		}
		p.consume(token.RPA, "')' after catch variable")
	} else {
		errVar, _ = p.consume(token.IDENTIFIER, "an error variable name in catch")
	}
	p.popCtx()
	handler := p.braceOrColonBlock()
	return ast.TryCatch{Base: ast.Base{Pos: tok.Pos}, Body: body, ErrVar: errVar.Lexeme, Handler: handler}
}

func (p *Parser) debugStmt() ast.Stmt {
	tok := p.advance()
	msg, ok := p.consume(token.STRING, "a string message after 'debug'")
	message := ""
	if ok {
		message, _ = msg.Literal.(string)
	}
	var value ast.Expression
	if p.match(token.COMMA) {
		value = p.expression()
	}
	p.consumeOptionalSemicolon()
	return ast.Debug{Base: ast.Base{Pos: tok.Pos}, Message: message, Value: value}
}

func (p *Parser) emitStmt() ast.Stmt {
	tok := p.advance()
	name, ok := p.consume(token.IDENTIFIER, "an event name after 'emit'")
	if !ok {
		p.synchronize("skipped malformed emit")
		return placeholderStmt(tok.Pos, "malformed emit")
	}
	payload := p.parseMapLiteral()
	p.consumeOptionalSemicolon()
	return ast.Emit{Base: ast.Base{Pos: tok.Pos}, Name: name.Lexeme, Payload: payload}
}

// exactlyStmt parses but never gives meaning to `exactly` — its
// semantics were never specified (spec §9's open question).
func (p *Parser) exactlyStmt() ast.Stmt {
	tok := p.advance()
	raw := tok.Lexeme
	for !p.check(token.SEMICOLON) && !p.check(token.RCUR) && !p.isAtEnd() {
		raw += " " + p.advance().Lexeme
	}
	p.consumeOptionalSemicolon()
	return ast.Exactly{Base: ast.Base{Pos: tok.Pos}, Raw: raw}
}

func (p *Parser) expressionStatement() ast.Stmt {
	pos := p.peek().Pos
	expr := p.expression()
	p.consumeOptionalSemicolon()
	return ast.ExpressionStatement{Base: ast.Base{Pos: pos}, Expression: expr}
}
