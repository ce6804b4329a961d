// compiler.go implements the bytecode emitter of spec §4.6: a visitor
// over the compiler AST (package cast) that linearizes a Program into
// a Bytecode value for the VM. It replaces the teacher's token-stream
// Pratt compiler entirely (that file's own doc comment already called
// it dead: "this compiler will be deleted in the future and only the
// AST compiler will remain") — this rewrite is the AST compiler the
// teacher was heading towards, targeting cast instead of the teacher's
// broken ast package and spec.md's actual opcode list instead of the
// teacher's local-slot one.
//
// Each Action/Lambda body compiles into its own, independent
// instruction stream stored in the function pool (FunctionProto); the
// teacher's single shared instruction array with absolute jump targets
// has no place here once call frames are VM-level, not inlined, so
// every jump target here is relative to its own function's stream.
package compiler

import (
	"fmt"

	"zexus/cast"
	"zexus/object"
	"zexus/token"
)

// Emitter walks a cast.Program and builds a Bytecode value. It
// implements both cast.StmtVisitor and cast.ExpressionVisitor; every
// Visit* method on the expression side leaves exactly one value on
// whichever instruction buffer is current, and every Visit* on the
// statement side leaves none, per spec §4.6's stack-discipline rule.
type Emitter struct {
	bc Bytecode

	nameIndex    map[string]int
	eventIndex   map[string]int
	enumVariants map[string]map[string]bool
	contracts    map[string]bool

	buf      Instructions
	bufStack []Instructions
	hidden   int
}

func New() *Emitter {
	return &Emitter{
		nameIndex:    map[string]int{},
		eventIndex:   map[string]int{},
		enumVariants: map[string]map[string]bool{},
		contracts:    map[string]bool{},
	}
}

// Compile linearizes prog into a complete Bytecode. Panics raised by
// the visitor (SemanticError, DeveloperError — the teacher's own
// panic/recover idiom, kept verbatim) are converted to a returned
// error rather than propagating.
func (e *Emitter) Compile(prog *cast.Program) (bc *Bytecode, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SemanticError:
				err = v
			case DeveloperError:
				err = v
			default:
				panic(r)
			}
		}
	}()

	e.prescanDeclarations(prog.Statements)

	e.buf = Instructions{}
	for _, stmt := range prog.Statements {
		stmt.Accept(e)
	}
	e.emit(OP_END)
	e.bc.Instructions = e.buf
	return &e.bc, nil
}

// prescanDeclarations registers every top-level Enum/Event/Protocol
// before compiling any statement body, so a use site that textually
// precedes its declaration (unusual, but not forbidden by the grammar)
// still resolves. Declarations are expected at top level only — a
// deliberate, narrow simplification over a fully recursive scan.
func (e *Emitter) prescanDeclarations(stmts []cast.Stmt) {
	for _, s := range stmts {
		switch decl := s.(type) {
		case cast.Enum:
			variants := map[string]bool{}
			for _, v := range decl.Variants {
				variants[v] = true
			}
			e.enumVariants[decl.Name] = variants
			e.bc.Enums = append(e.bc.Enums, EnumProto{Name: decl.Name, Variants: decl.Variants})
		case cast.Event:
			fields := make([]string, len(decl.Fields))
			for i, f := range decl.Fields {
				fields[i] = f.Name
			}
			e.eventIndex[decl.Name] = len(e.bc.Events)
			e.bc.Events = append(e.bc.Events, EventProto{Name: decl.Name, Fields: fields})
		case cast.Protocol:
			sigs := make([]ProtocolSignature, len(decl.Signatures))
			for i, sig := range decl.Signatures {
				sigs[i] = ProtocolSignature{Name: sig.Name, Arity: sig.Arity}
			}
			e.bc.Protocols = append(e.bc.Protocols, ProtocolProto{Name: decl.Name, Signatures: sigs})
		case cast.Contract:
			e.contracts[decl.Name] = true
		}
	}
}

// contractMember reports whether n is `ContractName.member`, i.e. a
// PropertyAccess whose receiver names a prescanned Contract — the one
// situation where a property read/call must bypass the generic
// OP_PROP path and go straight at the dot-joined global binding
// VisitContract stored the field/action under.
func (e *Emitter) contractMember(n cast.PropertyAccess) (string, bool) {
	recvIdent, ok := n.Receiver.(cast.Identifier)
	if !ok || !e.contracts[recvIdent.Name.Lexeme] {
		return "", false
	}
	return recvIdent.Name.Lexeme + "." + n.Name, true
}

// --- emission helpers -------------------------------------------------

func (e *Emitter) emit(op Opcode, operands ...int) int {
	pos := len(e.buf)
	instr := MakeInstruction(op, operands...)
	if instr == nil {
		panic(DeveloperError{Message: fmt.Sprintf("cannot assemble opcode %d with operands %v", op, operands)})
	}
	e.buf = append(e.buf, instr...)
	return pos
}

// emitPlaceholderJump emits op with a zero operand and returns the
// position of the instruction so a later patchJump can fix it up —
// the teacher's emitPlaceholderJump/patchJump backpatching idiom.
func (e *Emitter) emitPlaceholderJump(op Opcode) int {
	pos := len(e.buf)
	e.emit(op, 0)
	return pos
}

// patchJump overwrites the first operand word of the jump instruction
// at pos with target.
func (e *Emitter) patchJump(pos int, target int) {
	e.buf[pos+1] = byte(target >> 8)
	e.buf[pos+2] = byte(target)
}

func (e *Emitter) nameIdx(name string) int {
	if i, ok := e.nameIndex[name]; ok {
		return i
	}
	i := len(e.bc.Names)
	e.bc.Names = append(e.bc.Names, name)
	e.nameIndex[name] = i
	return i
}

func (e *Emitter) constIdx(v object.Value) int {
	e.bc.Constants = append(e.bc.Constants, v)
	return len(e.bc.Constants) - 1
}

func (e *Emitter) hiddenName() string {
	e.hidden++
	return fmt.Sprintf("$h%d", e.hidden)
}

// enterFunction/leaveFunction swap the instruction buffer a function
// body compiles into, while constants/names/function pools stay
// shared across the whole program.
func (e *Emitter) enterFunction() {
	e.bufStack = append(e.bufStack, e.buf)
	e.buf = Instructions{}
}

func (e *Emitter) leaveFunction() Instructions {
	body := e.buf
	n := len(e.bufStack)
	e.buf = e.bufStack[n-1]
	e.bufStack = e.bufStack[:n-1]
	return body
}

// compileFunctionLiteral compiles an Action/Lambda body into its own
// FunctionProto and returns its pool index, without emitting any
// call/store opcode for it — callers decide how to bind or invoke it.
func (e *Emitter) compileFunctionLiteral(name string, params []token.Token, body []cast.Stmt, exprBody cast.Expression, async bool, captures []string) int {
	e.enterFunction()
	if exprBody != nil {
		exprBody.Accept(e)
		e.emit(OP_RETURN)
	} else {
		for _, s := range body {
			s.Accept(e)
		}
		e.emit(OP_LOAD_CONST, e.constIdx(object.NullValue))
		e.emit(OP_RETURN)
	}
	instrs := e.leaveFunction()

	paramNames := make([]string, len(params))
	for i, p := range params {
		paramNames[i] = p.Lexeme
	}

	proto := FunctionProto{
		Name:         name,
		Params:       paramNames,
		FreeNames:    captures,
		Instructions: instrs,
		Async:        async,
	}
	e.bc.Functions = append(e.bc.Functions, proto)
	return len(e.bc.Functions) - 1
}

func binOpFor(t token.TokenType) (BinOp, bool) {
	switch t {
	case token.PLUS:
		return BIN_ADD, true
	case token.MINUS:
		return BIN_SUB, true
	case token.STAR:
		return BIN_MUL, true
	case token.SLASH:
		return BIN_DIV, true
	case token.PERCENT:
		return BIN_MOD, true
	case token.EQUAL_EQUAL:
		return BIN_EQ, true
	case token.NOT_EQUAL:
		return BIN_NEQ, true
	case token.LESS:
		return BIN_LT, true
	case token.LESS_EQUAL:
		return BIN_LTE, true
	case token.LARGER:
		return BIN_GT, true
	case token.LARGER_EQUAL:
		return BIN_GTE, true
	default:
		return 0, false
	}
}

// --- expressions -------------------------------------------------------

func (e *Emitter) VisitIdentifier(n cast.Identifier) any {
	e.emit(OP_LOAD, e.nameIdx(n.Name.Lexeme))
	return nil
}

func (e *Emitter) VisitInteger(n cast.Integer) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.NewInteger(n.Value)))
	return nil
}

func (e *Emitter) VisitFloat(n cast.Float) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.Float{Value: n.Value}))
	return nil
}

func (e *Emitter) VisitString(n cast.String) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.String{Value: n.Value}))
	return nil
}

func (e *Emitter) VisitBool(n cast.Bool) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.NativeBool(n.Value)))
	return nil
}

func (e *Emitter) VisitNull(n cast.Null) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.NullValue))
	return nil
}

func (e *Emitter) VisitListLiteral(n cast.ListLiteral) any {
	for _, el := range n.Elements {
		el.Accept(e)
	}
	e.emit(OP_MAKE_LIST, len(n.Elements))
	return nil
}

func (e *Emitter) VisitMapLiteral(n cast.MapLiteral) any {
	for _, entry := range n.Entries {
		entry.Key.Accept(e)
		entry.Value.Accept(e)
	}
	e.emit(OP_MAKE_MAP, len(n.Entries))
	return nil
}

func (e *Emitter) VisitActionLiteral(n cast.ActionLiteral) any {
	idx := e.compileFunctionLiteral("", n.Params, n.Body, nil, n.Async, n.Captures)
	hidden := e.hiddenName()
	e.emit(OP_STORE_FUNC, e.nameIdx(hidden), idx)
	e.emit(OP_LOAD, e.nameIdx(hidden))
	return nil
}

func (e *Emitter) VisitLambda(n cast.Lambda) any {
	idx := e.compileFunctionLiteral("", n.Params, nil, n.Body, false, n.Captures)
	hidden := e.hiddenName()
	e.emit(OP_STORE_FUNC, e.nameIdx(hidden), idx)
	e.emit(OP_LOAD, e.nameIdx(hidden))
	return nil
}

func (e *Emitter) VisitCall(n cast.Call) any {
	switch callee := n.Callee.(type) {
	case cast.Identifier:
		for _, a := range n.Args {
			a.Accept(e)
		}
		e.emit(OP_CALL_NAME, e.nameIdx(callee.Name.Lexeme), len(n.Args))
	case cast.ActionLiteral:
		idx := e.compileFunctionLiteral("", callee.Params, callee.Body, nil, callee.Async, callee.Captures)
		for _, a := range n.Args {
			a.Accept(e)
		}
		e.emit(OP_CALL_FUNC_CONST, idx, len(n.Args))
	case cast.Lambda:
		idx := e.compileFunctionLiteral("", callee.Params, nil, callee.Body, false, callee.Captures)
		for _, a := range n.Args {
			a.Accept(e)
		}
		e.emit(OP_CALL_FUNC_CONST, idx, len(n.Args))
	case cast.PropertyAccess:
		if qualified, ok := e.contractMember(callee); ok {
			for _, a := range n.Args {
				a.Accept(e)
			}
			e.emit(OP_CALL_NAME, e.nameIdx(qualified), len(n.Args))
			return nil
		}
		n.Callee.Accept(e)
		for _, a := range n.Args {
			a.Accept(e)
		}
		e.emit(OP_CALL_TOP, len(n.Args))
	default:
		n.Callee.Accept(e)
		for _, a := range n.Args {
			a.Accept(e)
		}
		e.emit(OP_CALL_TOP, len(n.Args))
	}
	return nil
}

// VisitMethodCall lowers recv.name(args) to a CALL_NAME whose name is
// tagged with a "$method:" prefix the VM recognizes before it ever
// attempts an environment lookup — identifiers can never lex to that
// spelling, so it cannot collide with a real global.
func (e *Emitter) VisitMethodCall(n cast.MethodCall) any {
	n.Receiver.Accept(e)
	for _, a := range n.Args {
		a.Accept(e)
	}
	e.emit(OP_CALL_NAME, e.nameIdx("$method:"+n.Name), len(n.Args)+1)
	return nil
}

func (e *Emitter) VisitPropertyAccess(n cast.PropertyAccess) any {
	if recvIdent, ok := n.Receiver.(cast.Identifier); ok {
		if variants, isEnum := e.enumVariants[recvIdent.Name.Lexeme]; isEnum && variants[n.Name] {
			e.emit(OP_LOAD_CONST, e.constIdx(object.EnumValue{EnumName: recvIdent.Name.Lexeme, Variant: n.Name}))
			return nil
		}
	}
	if qualified, ok := e.contractMember(n); ok {
		e.emit(OP_LOAD, e.nameIdx(qualified))
		return nil
	}
	n.Receiver.Accept(e)
	e.emit(OP_PROP, e.nameIdx(n.Name))
	return nil
}

func (e *Emitter) VisitIndex(n cast.Index) any {
	n.Receiver.Accept(e)
	n.Index.Accept(e)
	e.emit(OP_INDEX)
	return nil
}

func (e *Emitter) VisitAssignment(n cast.Assignment) any {
	n.Value.Accept(e)
	ident, ok := n.Target.(cast.Identifier)
	if !ok {
		panic(SemanticError{Message: "only identifier targets may be assigned to in the compiled path"})
	}
	e.emit(OP_DUP)
	e.emit(OP_ASSIGN, e.nameIdx(ident.Name.Lexeme))
	return nil
}

func (e *Emitter) VisitPrefix(n cast.Prefix) any {
	n.Right.Accept(e)
	switch n.Operator.TokenType {
	case token.MINUS:
		e.emit(OP_UN, int(UN_NEGATE))
	case token.BANG:
		e.emit(OP_UN, int(UN_NOT))
	default:
		panic(DeveloperError{Message: "unknown prefix operator " + string(n.Operator.TokenType)})
	}
	return nil
}

func (e *Emitter) VisitInfix(n cast.Infix) any {
	switch n.Operator.TokenType {
	case token.AND_AND:
		n.Left.Accept(e)
		e.emit(OP_DUP)
		skip := e.emitPlaceholderJump(OP_JUMP_IF_FALSE)
		e.emit(OP_POP)
		n.Right.Accept(e)
		e.patchJump(skip, len(e.buf))
		return nil
	case token.OR_OR:
		n.Left.Accept(e)
		e.emit(OP_DUP)
		e.emit(OP_UN, int(UN_NOT))
		skip := e.emitPlaceholderJump(OP_JUMP_IF_FALSE)
		e.emit(OP_POP)
		n.Right.Accept(e)
		e.patchJump(skip, len(e.buf))
		return nil
	}

	n.Left.Accept(e)
	n.Right.Accept(e)
	op, ok := binOpFor(n.Operator.TokenType)
	if !ok {
		panic(DeveloperError{Message: "unknown infix operator " + string(n.Operator.TokenType)})
	}
	e.emit(OP_BIN, int(op))
	return nil
}

func (e *Emitter) VisitIfExpr(n cast.IfExpr) any {
	n.Condition.Accept(e)
	elseJump := e.emitPlaceholderJump(OP_JUMP_IF_FALSE)
	n.Then.Accept(e)
	endJump := e.emitPlaceholderJump(OP_JUMP)
	e.patchJump(elseJump, len(e.buf))
	n.Else.Accept(e)
	e.patchJump(endJump, len(e.buf))
	return nil
}

func (e *Emitter) VisitAwait(n cast.Await) any {
	n.Value.Accept(e)
	e.emit(OP_AWAIT)
	return nil
}

func (e *Emitter) VisitEmbeddedLiteral(n cast.EmbeddedLiteral) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.String{Value: n.Text}))
	return nil
}

// --- statements ----------------------------------------------------------

func (e *Emitter) VisitLet(n cast.Let) any {
	n.Initializer.Accept(e)
	e.emit(OP_STORE, e.nameIdx(n.Name))
	return nil
}

func (e *Emitter) VisitReturn(n cast.Return) any {
	if n.Value != nil {
		n.Value.Accept(e)
	} else {
		e.emit(OP_LOAD_CONST, e.constIdx(object.NullValue))
	}
	e.emit(OP_RETURN)
	return nil
}

func (e *Emitter) VisitExpressionStatement(n cast.ExpressionStatement) any {
	n.Expression.Accept(e)
	e.emit(OP_POP)
	return nil
}

func (e *Emitter) VisitBlock(n cast.Block) any {
	for _, s := range n.Statements {
		s.Accept(e)
	}
	return nil
}

func (e *Emitter) VisitPrint(n cast.Print) any {
	n.Expression.Accept(e)
	e.emit(OP_CALL_NAME, e.nameIdx("__print__"), 1)
	e.emit(OP_POP)
	return nil
}

func (e *Emitter) VisitForEach(n cast.ForEach) any {
	n.Iterable.Accept(e)
	e.emit(OP_CALL_NAME, e.nameIdx("__iter__"), 1)
	iterName := e.hiddenName()
	e.emit(OP_STORE, e.nameIdx(iterName))

	pairName := e.hiddenName()
	loopStart := len(e.buf)
	e.emit(OP_LOAD, e.nameIdx(iterName))
	e.emit(OP_CALL_NAME, e.nameIdx("__next__"), 1)
	e.emit(OP_STORE, e.nameIdx(pairName))

	e.emit(OP_LOAD, e.nameIdx(pairName))
	e.emit(OP_PROP, e.nameIdx("done"))
	e.emit(OP_UN, int(UN_NOT))
	endJump := e.emitPlaceholderJump(OP_JUMP_IF_FALSE)

	e.emit(OP_LOAD, e.nameIdx(pairName))
	e.emit(OP_PROP, e.nameIdx("value"))
	e.emit(OP_STORE, e.nameIdx(n.Var))

	n.Body.Accept(e)
	e.emit(OP_JUMP, loopStart)
	e.patchJump(endJump, len(e.buf))
	return nil
}

func (e *Emitter) VisitIf(n cast.If) any {
	n.Condition.Accept(e)
	elseJump := e.emitPlaceholderJump(OP_JUMP_IF_FALSE)
	n.Then.Accept(e)
	if n.Else != nil {
		endJump := e.emitPlaceholderJump(OP_JUMP)
		e.patchJump(elseJump, len(e.buf))
		n.Else.Accept(e)
		e.patchJump(endJump, len(e.buf))
	} else {
		e.patchJump(elseJump, len(e.buf))
	}
	return nil
}

func (e *Emitter) VisitWhile(n cast.While) any {
	loopStart := len(e.buf)
	n.Condition.Accept(e)
	endJump := e.emitPlaceholderJump(OP_JUMP_IF_FALSE)
	n.Body.Accept(e)
	e.emit(OP_JUMP, loopStart)
	e.patchJump(endJump, len(e.buf))
	return nil
}

func (e *Emitter) VisitTryCatch(n cast.TryCatch) any {
	tryPush := e.emitPlaceholderJump2(OP_TRY_PUSH, e.nameIdx(n.ErrVar))
	n.Body.Accept(e)
	e.emit(OP_TRY_POP)
	endJump := e.emitPlaceholderJump(OP_JUMP)
	e.patchJump(tryPush, len(e.buf))
	n.Handler.Accept(e)
	e.patchJump(endJump, len(e.buf))
	return nil
}

// emitPlaceholderJump2 emits a 2-operand opcode whose first operand is
// a jump target to be patched later and whose second operand is fixed
// up front (TRY_PUSH's err_name index).
func (e *Emitter) emitPlaceholderJump2(op Opcode, second int) int {
	pos := len(e.buf)
	e.emit(op, 0, second)
	return pos
}

func (e *Emitter) VisitAction(n cast.Action) any {
	idx := e.compileFunctionLiteral(n.Name, n.Params, n.Body, nil, n.Async, n.Captures)
	e.emit(OP_STORE_FUNC, e.nameIdx(n.Name), idx)
	return nil
}

func (e *Emitter) VisitEvent(n cast.Event) any {
	idx, ok := e.eventIndex[n.Name]
	if !ok {
		panic(DeveloperError{Message: "event " + n.Name + " missing from prescan"})
	}
	e.emit(OP_REGISTER_EVENT, idx)
	return nil
}

func (e *Emitter) VisitEmit(n cast.Emit) any {
	idx, ok := e.eventIndex[n.Name]
	if !ok {
		panic(SemanticError{Message: "emit of undeclared event " + n.Name})
	}
	n.Payload.Accept(e)
	e.emit(OP_EMIT_EVENT, idx)
	return nil
}

func (e *Emitter) VisitEnum(n cast.Enum) any {
	for i, enum := range e.bc.Enums {
		if enum.Name == n.Name {
			e.emit(OP_DEFINE_ENUM, i, len(n.Variants))
			return nil
		}
	}
	panic(DeveloperError{Message: "enum " + n.Name + " missing from prescan"})
}

func (e *Emitter) VisitProtocol(n cast.Protocol) any {
	return nil
}

func (e *Emitter) VisitContract(n cast.Contract) any {
	for _, name := range n.Storage {
		e.emit(OP_LOAD_CONST, e.constIdx(object.NullValue))
		e.emit(OP_STORE, e.nameIdx(n.Name+"."+name))
	}
	for _, action := range n.Actions {
		qualified := action
		qualified.Name = n.Name + "." + action.Name
		qualified.Accept(e)
	}
	if n.Protocol != "" {
		protoIdx := -1
		for i, p := range e.bc.Protocols {
			if p.Name == n.Protocol {
				protoIdx = i
				break
			}
		}
		if protoIdx < 0 {
			panic(SemanticError{Message: "contract " + n.Name + " claims unknown protocol " + n.Protocol})
		}
		e.emit(OP_ASSERT_PROTOCOL, protoIdx, e.nameIdx(n.Name))
	}
	return nil
}

func (e *Emitter) VisitExternalDeclaration(n cast.ExternalDeclaration) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.String{Value: n.Source}))
	e.emit(OP_STORE, e.nameIdx(n.Name))
	return nil
}

func (e *Emitter) VisitExport(n cast.Export) any {
	n.Inner.Accept(e)
	name := exportedName(n.Inner)
	if name != "" {
		e.emit(OP_LOAD, e.nameIdx(name))
		e.emit(OP_STORE, e.nameIdx("$export:"+name))
	}
	return nil
}

func exportedName(s cast.Stmt) string {
	switch v := s.(type) {
	case cast.Let:
		return v.Name
	case cast.Action:
		return v.Name
	default:
		return ""
	}
}

func (e *Emitter) VisitDebug(n cast.Debug) any {
	e.emit(OP_LOAD_CONST, e.constIdx(object.String{Value: n.Message}))
	if n.Value != nil {
		n.Value.Accept(e)
	} else {
		e.emit(OP_LOAD_CONST, e.constIdx(object.NullValue))
	}
	e.emit(OP_CALL_NAME, e.nameIdx("debug_log"), 2)
	e.emit(OP_POP)
	return nil
}

func (e *Emitter) VisitUse(n cast.Use) any {
	alias := n.Alias
	if alias == "" {
		alias = n.Module
	}
	e.emit(OP_IMPORT, e.nameIdx(n.Module), e.nameIdx(alias))
	return nil
}

func (e *Emitter) VisitExactly(n cast.Exactly) any {
	panic(SemanticError{Message: "'exactly' has no defined runtime semantics (spec §9 open question)"})
}
