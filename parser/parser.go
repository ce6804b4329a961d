// Package parser implements Zexus's production (compiler) parser: an
// ordinary recursive-descent parser, grounded in the teacher's
// parser/parser.go method-chain shape (declaration → statement →
// expression → precedence ladder → primary), generalized to the full
// grammar and producing compiler-AST (cast) nodes. Unlike the tolerant
// parser, it aborts at the first SyntaxError instead of recovering.
package parser

import (
	"zexus/cast"
	"zexus/token"
)

type Parser struct {
	tokens  []token.Token
	current int
}

func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) Parse() (cast.Program, error) {
	var statements []cast.Stmt
	for !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return cast.Program{}, err
		}
		statements = append(statements, stmt)
	}
	return cast.Program{Statements: statements}, nil
}

// --- token-stream primitives, grounded in the teacher's parser.go ---

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) peekNext() token.Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().TokenType == token.EOF
}

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

func (p *Parser) consume(tt token.TokenType, message string) (token.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return token.Token{}, SyntaxError{Pos: p.peek().Pos, Message: message}
}

func (p *Parser) errorAt(message string) error {
	return SyntaxError{Pos: p.peek().Pos, Message: message}
}

// consumeOptionalSemicolon implements the shared "optional semicolons
// between statements; stray semicolons ignored" tolerance.
func (p *Parser) consumeOptionalSemicolon() {
	for p.match(token.SEMICOLON) {
	}
}

// --- declarations ---

func (p *Parser) declaration() (cast.Stmt, error) {
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
	}
	return p.statement()
}

func (p *Parser) exportDecl() (cast.Stmt, error) {
	tok := p.advance()
	inner, err := p.declaration()
	if err != nil {
		return nil, err
	}
	return cast.Export{Tok: tok, Inner: inner}, nil
}

func (p *Parser) letDecl() (cast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENTIFIER, "expected identifier after 'let'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.ASSIGN, "expected '=' in let declaration"); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()
	return cast.Let{Tok: tok, Name: name.Lexeme, Initializer: value}, nil
}

func (p *Parser) parseParams() ([]token.Token, error) {
	if _, err := p.consume(token.LPA, "expected '(' to start parameter list"); err != nil {
		return nil, err
	}
	var params []token.Token
	if p.check(token.RPA) {
		p.advance()
		return params, nil
	}
	for {
		name, err := p.consume(token.IDENTIFIER, "expected parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, name)
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	if _, err := p.consume(token.RPA, "expected ')' after parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) actionDecl() (cast.Action, error) {
	tok := p.advance()
	async := p.match(token.ASYNC)
	name, err := p.consume(token.IDENTIFIER, "expected action name")
	if err != nil {
		return cast.Action{}, err
	}
	params, err := p.parseParams()
	if err != nil {
		return cast.Action{}, err
	}
	body, err := p.blockOrColon()
	if err != nil {
		return cast.Action{}, err
	}
	return cast.Action{Tok: tok, Name: name.Lexeme, Params: params, Body: body.Statements, Async: async}, nil
}

func (p *Parser) eventDecl() (cast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENTIFIER, "expected event name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' in event declaration"); err != nil {
		return nil, err
	}
	var fields []cast.EventField
	for !p.check(token.RCUR) {
		fname, err := p.consume(token.IDENTIFIER, "expected field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COLON, "expected ':' after field name"); err != nil {
			return nil, err
		}
		ftype, err := p.consume(token.IDENTIFIER, "expected field type")
		if err != nil {
			return nil, err
		}
		fields = append(fields, cast.EventField{Name: fname.Lexeme, Type: ftype.Lexeme})
		if p.match(token.COMMA) || p.match(token.SEMICOLON) {
			continue
		}
		break
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close event declaration"); err != nil {
		return nil, err
	}
	return cast.Event{Tok: tok, Name: name.Lexeme, Fields: fields}, nil
}

func (p *Parser) enumDecl() (cast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENTIFIER, "expected enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' in enum declaration"); err != nil {
		return nil, err
	}
	var variants []string
	for !p.check(token.RCUR) {
		variant, err := p.consume(token.IDENTIFIER, "expected enum variant name")
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant.Lexeme)
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close enum declaration"); err != nil {
		return nil, err
	}
	return cast.Enum{Tok: tok, Name: name.Lexeme, Variants: variants}, nil
}

func (p *Parser) protocolDecl() (cast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENTIFIER, "expected protocol name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' in protocol declaration"); err != nil {
		return nil, err
	}
	var sigs []cast.ProtocolSignature
	for !p.check(token.RCUR) {
		sigName, err := p.consume(token.IDENTIFIER, "expected signature name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.LPA, "expected '(' in protocol signature"); err != nil {
			return nil, err
		}
		arity := 0
		if !p.check(token.RPA) {
			for {
				if _, err := p.consume(token.IDENTIFIER, "expected parameter name"); err != nil {
					return nil, err
				}
				arity++
				if p.match(token.COMMA) {
					continue
				}
				break
			}
		}
		if _, err := p.consume(token.RPA, "expected ')' after protocol signature"); err != nil {
			return nil, err
		}
		sigs = append(sigs, cast.ProtocolSignature{Name: sigName.Lexeme, Arity: arity})
		p.consumeOptionalSemicolon()
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close protocol declaration"); err != nil {
		return nil, err
	}
	return cast.Protocol{Tok: tok, Name: name.Lexeme, Signatures: sigs}, nil
}

func (p *Parser) contractDecl() (cast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENTIFIER, "expected contract name")
	if err != nil {
		return nil, err
	}
	protocolName := ""
	if p.match(token.REQUIRE) {
		protoTok, err := p.consume(token.IDENTIFIER, "expected protocol name after 'require'")
		if err != nil {
			return nil, err
		}
		protocolName = protoTok.Lexeme
	}
	if _, err := p.consume(token.LCUR, "expected '{' in contract declaration"); err != nil {
		return nil, err
	}
	var storage []string
	var actions []cast.Action
	for !p.check(token.RCUR) {
		switch {
		case p.match(token.PERSISTENT):
			if _, err := p.consume(token.STORAGE, "expected 'storage' after 'persistent'"); err != nil {
				return nil, err
			}
			field, err := p.consume(token.IDENTIFIER, "expected storage field name")
			if err != nil {
				return nil, err
			}
			storage = append(storage, field.Lexeme)
			p.consumeOptionalSemicolon()
		case p.check(token.ACTION):
			action, err := p.actionDecl()
			if err != nil {
				return nil, err
			}
			actions = append(actions, action)
		default:
			return nil, p.errorAt("expected 'persistent storage' or an action inside contract body")
		}
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close contract declaration"); err != nil {
		return nil, err
	}
	return cast.Contract{Tok: tok, Name: name.Lexeme, Protocol: protocolName, Storage: storage, Actions: actions}, nil
}

func (p *Parser) externalDecl() (cast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENTIFIER, "expected identifier after 'external'")
	if err != nil {
		return nil, err
	}
	source := ""
	if p.match(token.FROM) {
		src, err := p.consume(token.STRING, "expected string source after 'from'")
		if err != nil {
			return nil, err
		}
		source = src.Literal.(string)
	}
	p.consumeOptionalSemicolon()
	return cast.ExternalDeclaration{Tok: tok, Name: name.Lexeme, Source: source}, nil
}

func (p *Parser) useDecl() (cast.Stmt, error) {
	tok := p.advance()
	module, err := p.consume(token.IDENTIFIER, "expected module name after 'use'")
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.match(token.FROM) {
		aliasTok, err := p.consume(token.IDENTIFIER, "expected alias after 'from'")
		if err != nil {
			return nil, err
		}
		alias = aliasTok.Lexeme
	}
	p.consumeOptionalSemicolon()
	return cast.Use{Tok: tok, Module: module.Lexeme, Alias: alias}, nil
}

// --- statements ---

func (p *Parser) block() (cast.Block, error) {
	tok, err := p.consume(token.LCUR, "expected '{' to start a block")
	if err != nil {
		return cast.Block{}, err
	}
	var statements []cast.Stmt
	for !p.check(token.RCUR) && !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return cast.Block{}, err
		}
		statements = append(statements, stmt)
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close block"); err != nil {
		return cast.Block{}, err
	}
	return cast.Block{Tok: tok, Statements: statements}, nil
}

// blockOrColon accepts the "colon-style blocks" tolerance (spec §4.2,
// carried into production per §4.3's tolerance list) in addition to the
// brace form. The production parser has none of the tolerant parser's
// structural pre-segmentation to bound an indented colon-block's
// extent, so it accepts only the single-statement form — `if cond:
// stmt` — which is unambiguous regardless of indentation; a colon body
// spanning multiple statements is exactly the kind of layout-sensitive
// input the tolerant parser exists to absorb, and is a hard SyntaxError
// here if more than one statement was intended.
func (p *Parser) blockOrColon() (cast.Block, error) {
	if p.check(token.LCUR) {
		return p.block()
	}
	tok, err := p.consume(token.COLON, "expected '{' or ':' to start a block")
	if err != nil {
		return cast.Block{}, err
	}
	stmt, err := p.declaration()
	if err != nil {
		return cast.Block{}, err
	}
	return cast.Block{Tok: tok, Statements: []cast.Stmt{stmt}}, nil
}

func (p *Parser) statement() (cast.Stmt, error) {
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

func (p *Parser) printStmt() (cast.Stmt, error) {
	tok := p.advance()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()
	return cast.Print{Tok: tok, Expression: expr}, nil
}

// atStatementBoundary reports whether the current token cannot start an
// expression, used to detect a bare `return`/omitted debug value.
func (p *Parser) atStatementBoundary() bool {
	switch p.peek().TokenType {
	case token.SEMICOLON, token.RCUR, token.EOF:
		return true
	}
	return false
}

func (p *Parser) returnStmt() (cast.Stmt, error) {
	tok := p.advance()
	var value cast.Expression
	if !p.atStatementBoundary() {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	p.consumeOptionalSemicolon()
	return cast.Return{Tok: tok, Value: value}, nil
}

func (p *Parser) ifStmt() (cast.Stmt, error) {
	tok := p.advance()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.blockOrColon()
	if err != nil {
		return nil, err
	}
	var elseStmt cast.Stmt
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			elseStmt, err = p.ifStmt()
		} else {
			var b cast.Block
			b, err = p.blockOrColon()
			elseStmt = b
		}
		if err != nil {
			return nil, err
		}
	}
	return cast.If{Tok: tok, Condition: cond, Then: then, Else: elseStmt}, nil
}

func (p *Parser) whileStmt() (cast.Stmt, error) {
	tok := p.advance()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.blockOrColon()
	if err != nil {
		return nil, err
	}
	return cast.While{Tok: tok, Condition: cond, Body: body}, nil
}

func (p *Parser) forEachStmt() (cast.Stmt, error) {
	tok := p.advance()
	if _, err := p.consume(token.EACH, "expected 'each' after 'for'"); err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER, "expected loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.IN, "expected 'in' after loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.blockOrColon()
	if err != nil {
		return nil, err
	}
	return cast.ForEach{Tok: tok, Var: name.Lexeme, Iterable: iterable, Body: body}, nil
}

// tryCatchStmt accepts exactly the three enumerated equivalent catch
// forms: `catch err`, `catch(err)`, `catch((err))`.
func (p *Parser) tryCatchStmt() (cast.Stmt, error) {
	tok := p.advance()
	body, err := p.blockOrColon()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.CATCH, "expected 'catch' after try block"); err != nil {
		return nil, err
	}
	var errVar token.Token
	if p.match(token.LPA) {
		extraParen := p.match(token.LPA)
		errVar, err = p.consume(token.IDENTIFIER, "expected error variable name in catch")
		if err != nil {
			return nil, err
		}
		if extraParen {
			if _, err := p.consume(token.RPA, "expected ')' to close nested catch parens"); err != nil {
				return nil, err
			}
		}
		if _, err := p.consume(token.RPA, "expected ')' after catch variable"); err != nil {
			return nil, err
		}
	} else {
		errVar, err = p.consume(token.IDENTIFIER, "expected error variable name in catch")
		if err != nil {
			return nil, err
		}
	}
	handler, err := p.blockOrColon()
	if err != nil {
		return nil, err
	}
	return cast.TryCatch{Tok: tok, Body: body, ErrVar: errVar.Lexeme, Handler: handler}, nil
}

func (p *Parser) debugStmt() (cast.Stmt, error) {
	tok := p.advance()
	msg, err := p.consume(token.STRING, "expected string message after 'debug'")
	if err != nil {
		return nil, err
	}
	var value cast.Expression
	if p.match(token.COMMA) {
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	p.consumeOptionalSemicolon()
	return cast.Debug{Tok: tok, Message: msg.Literal.(string), Value: value}, nil
}

func (p *Parser) emitStmt() (cast.Stmt, error) {
	tok := p.advance()
	name, err := p.consume(token.IDENTIFIER, "expected event name after 'emit'")
	if err != nil {
		return nil, err
	}
	payload, err := p.parseMapLiteral()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()
	return cast.Emit{Tok: tok, Name: name.Lexeme, Payload: payload}, nil
}

// exactlyStmt parses but never gives meaning to `exactly` — its
// semantics were never specified (spec §9 open question); the semantic
// analyzer reports every Exactly node as a SyntaxError diagnostic.
func (p *Parser) exactlyStmt() (cast.Stmt, error) {
	tok := p.advance()
	raw := tok.Lexeme
	for !p.check(token.SEMICOLON) && !p.check(token.RCUR) && !p.isAtEnd() {
		raw += " " + p.advance().Lexeme
	}
	p.consumeOptionalSemicolon()
	return cast.Exactly{Tok: tok, Raw: raw}, nil
}

func (p *Parser) expressionStatement() (cast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()
	return cast.ExpressionStatement{Expression: expr}, nil
}

// --- expressions, precedence low to high: assignment, ||, &&, equality,
// relational, additive, multiplicative, unary, call/index/property, primary ---

func (p *Parser) expression() (cast.Expression, error) {
	return p.assignment()
}

func (p *Parser) assignment() (cast.Expression, error) {
	left, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if p.match(token.ASSIGN) {
		eqTok := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch left.(type) {
		case cast.Identifier, cast.Index, cast.PropertyAccess:
			return cast.Assignment{Tok: eqTok, Target: left, Value: value}, nil
		default:
			return nil, SyntaxError{Pos: eqTok.Pos, Message: "invalid assignment target"}
		}
	}
	return left, nil
}

func (p *Parser) logicalOr() (cast.Expression, error) {
	left, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.OR_OR) {
		op := p.previous()
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		left = cast.Infix{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) logicalAnd() (cast.Expression, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.AND_AND) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = cast.Infix{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) equality() (cast.Expression, error) {
	left, err := p.relational()
	if err != nil {
		return nil, err
	}
	for p.match(token.EQUAL_EQUAL, token.NOT_EQUAL) {
		op := p.previous()
		right, err := p.relational()
		if err != nil {
			return nil, err
		}
		left = cast.Infix{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) relational() (cast.Expression, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.match(token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL) {
		op := p.previous()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = cast.Infix{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) additive() (cast.Expression, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = cast.Infix{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) multiplicative() (cast.Expression, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(token.STAR, token.SLASH, token.PERCENT) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = cast.Infix{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) unary() (cast.Expression, error) {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return cast.Prefix{Operator: op, Right: right}, nil
	}
	if p.match(token.AWAIT) {
		tok := p.previous()
		value, err := p.unary()
		if err != nil {
			return nil, err
		}
		return cast.Await{Tok: tok, Value: value}, nil
	}
	return p.callChain()
}

func (p *Parser) callChain() (cast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LPA):
			tok := p.previous()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = cast.Call{Tok: tok, Callee: expr, Args: args}
		case p.match(token.DOT):
			name, err := p.consume(token.IDENTIFIER, "expected property or method name after '.'")
			if err != nil {
				return nil, err
			}
			if p.match(token.LPA) {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = cast.MethodCall{Tok: name, Receiver: expr, Name: name.Lexeme, Args: args}
			} else {
				expr = cast.PropertyAccess{Tok: name, Receiver: expr, Name: name.Lexeme}
			}
		case p.match(token.LBRACKET):
			tok := p.previous()
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']' after index expression"); err != nil {
				return nil, err
			}
			expr = cast.Index{Tok: tok, Receiver: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]cast.Expression, error) {
	if p.check(token.RPA) {
		p.advance()
		return nil, nil
	}
	var args []cast.Expression
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	if _, err := p.consume(token.RPA, "expected ')' after argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseMapLiteral() (cast.MapLiteral, error) {
	tok, err := p.consume(token.LCUR, "expected '{' to start a map literal")
	if err != nil {
		return cast.MapLiteral{}, err
	}
	var entries []cast.MapEntry
	for !p.check(token.RCUR) {
		var key cast.Expression
		if p.check(token.STRING) {
			t := p.advance()
			key = cast.String{Tok: t, Value: t.Literal.(string)}
		} else {
			name, err := p.consume(token.IDENTIFIER, "expected map key")
			if err != nil {
				return cast.MapLiteral{}, err
			}
			key = cast.String{Tok: name, Value: name.Lexeme}
		}
		if _, err := p.consume(token.COLON, "expected ':' after map key"); err != nil {
			return cast.MapLiteral{}, err
		}
		value, err := p.expression()
		if err != nil {
			return cast.MapLiteral{}, err
		}
		entries = append(entries, cast.MapEntry{Key: key, Value: value})
		if p.match(token.COMMA) || p.match(token.SEMICOLON) {
			continue
		}
		break
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close map literal"); err != nil {
		return cast.MapLiteral{}, err
	}
	return cast.MapLiteral{Tok: tok, Entries: entries}, nil
}

func (p *Parser) primary() (cast.Expression, error) {
	switch p.peek().TokenType {
	case token.INT:
		t := p.advance()
		return cast.Integer{Tok: t, Value: t.Literal.(int64)}, nil
	case token.FLOAT:
		t := p.advance()
		return cast.Float{Tok: t, Value: t.Literal.(float64)}, nil
	case token.STRING:
		t := p.advance()
		return cast.String{Tok: t, Value: t.Literal.(string)}, nil
	case token.TRUE:
		t := p.advance()
		return cast.Bool{Tok: t, Value: true}, nil
	case token.FALSE:
		t := p.advance()
		return cast.Bool{Tok: t, Value: false}, nil
	case token.NULL:
		t := p.advance()
		return cast.Null{Tok: t}, nil
	case token.IDENTIFIER, token.REGISTER_EVENT:
		t := p.advance()
		return cast.Identifier{Name: t}, nil
	case token.LPA:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPA, "expected ')' after grouped expression"); err != nil {
			return nil, err
		}
		return expr, nil
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
			text = t.Literal.(string)
		}
		return cast.EmbeddedLiteral{Tok: t, Language: t.Lexeme, Text: text}, nil
	}
	return nil, p.errorAt("unexpected token '" + string(p.peek().TokenType) + "'")
}

func (p *Parser) listLiteral() (cast.Expression, error) {
	tok := p.advance()
	var elements []cast.Expression
	for !p.check(token.RBRACKET) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' to close list literal"); err != nil {
		return nil, err
	}
	return cast.ListLiteral{Tok: tok, Elements: elements}, nil
}

func (p *Parser) actionLiteral() (cast.Expression, error) {
	tok := p.advance()
	async := p.match(token.ASYNC)
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.blockOrColon()
	if err != nil {
		return nil, err
	}
	return cast.ActionLiteral{Tok: tok, Params: params, Body: body.Statements, Async: async}, nil
}

func (p *Parser) lambdaLiteral() (cast.Expression, error) {
	tok := p.advance()
	var params []token.Token
	if p.match(token.LPA) {
		if !p.check(token.RPA) {
			for {
				name, err := p.consume(token.IDENTIFIER, "expected lambda parameter name")
				if err != nil {
					return nil, err
				}
				params = append(params, name)
				if p.match(token.COMMA) {
					continue
				}
				break
			}
		}
		if _, err := p.consume(token.RPA, "expected ')' after lambda parameters"); err != nil {
			return nil, err
		}
	} else {
		name, err := p.consume(token.IDENTIFIER, "expected lambda parameter")
		if err != nil {
			return nil, err
		}
		params = []token.Token{name}
	}
	if _, err := p.consume(token.ARROW, "expected '->' in lambda"); err != nil {
		return nil, err
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	return cast.Lambda{Tok: tok, Params: params, Body: body}, nil
}

// ifExpr is `if cond thenExpr else elseExpr`: no braces, both branches are
// plain expressions. This is how the grammar disambiguates If-as-expression
// from the brace-bodied If statement.
func (p *Parser) ifExpr() (cast.Expression, error) {
	tok := p.advance()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.ELSE, "expected 'else' in if-expression"); err != nil {
		return nil, err
	}
	elseExpr, err := p.expression()
	if err != nil {
		return nil, err
	}
	return cast.IfExpr{Tok: tok, Condition: cond, Then: then, Else: elseExpr}, nil
}
