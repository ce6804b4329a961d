// Package langtest compares the interpreter AST (package ast) produced
// by the tolerant parser against the compiler AST (package cast)
// produced by the production parser for the same source text. The two
// node sets are deliberately distinct Go types (spec §9's "construct
// names stay aligned, representations don't" decision — see DESIGN.md),
// so there is no single type a plain == or reflect.DeepEqual could
// compare them as. Shape flattens either tree into one common,
// comparable representation: a node's grammar role plus its scalar
// payload (names, literal values, operators), discarding each AST's own
// bookkeeping (ast.Base's position/recovery notes, cast's leaf
// token.Token) that has no counterpart on the other side.
//
// This mirrors the teacher's own printer.go, which already walks one
// AST into a side-channel representation (there, for human-readable
// dumping) rather than operating on it directly.
package langtest

import (
	"fmt"
	"sort"
	"strings"

	"zexus/ast"
	"zexus/cast"
	"zexus/token"
)

// Shape is one flattened AST node: its grammar role, a formatted scalar
// payload for leaf nodes (identifiers, literals, operators), and its
// children in traversal order.
type Shape struct {
	Kind     string
	Scalar   string
	Children []Shape
}

func leaf(kind, scalar string) Shape { return Shape{Kind: kind, Scalar: scalar} }

func node(kind string, children ...Shape) Shape { return Shape{Kind: kind, Children: children} }

func paramNames(params []token.Token) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Lexeme
	}
	return strings.Join(names, ",")
}

// ShapeOfInterp flattens an interpreter-AST program.
func ShapeOfInterp(prog ast.Program) Shape {
	return node("Program", shapeInterpStmts(prog.Statements)...)
}

func shapeInterpStmts(stmts []ast.Stmt) []Shape {
	out := make([]Shape, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s.Accept(interpShaper{}).(Shape))
	}
	return out
}

func shapeInterpExprs(exprs []ast.Expression) []Shape {
	out := make([]Shape, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, shapeInterpExpr(e))
	}
	return out
}

func shapeInterpExpr(e ast.Expression) Shape {
	if e == nil {
		return leaf("nil", "")
	}
	return e.Accept(interpShaper{}).(Shape)
}

func shapeInterpBlock(b ast.Block) Shape {
	return node("Block", shapeInterpStmts(b.Statements)...)
}

type interpShaper struct{}

func (interpShaper) VisitIdentifier(e ast.Identifier) any { return leaf("Identifier", e.Name) }
func (interpShaper) VisitInteger(e ast.Integer) any       { return leaf("Integer", fmt.Sprint(e.Value)) }
func (interpShaper) VisitFloat(e ast.Float) any           { return leaf("Float", fmt.Sprint(e.Value)) }
func (interpShaper) VisitString(e ast.String) any         { return leaf("String", e.Value) }
func (interpShaper) VisitBool(e ast.Bool) any             { return leaf("Bool", fmt.Sprint(e.Value)) }
func (interpShaper) VisitNull(ast.Null) any               { return leaf("Null", "") }

func (interpShaper) VisitListLiteral(e ast.ListLiteral) any {
	return node("ListLiteral", shapeInterpExprs(e.Elements)...)
}

func (interpShaper) VisitMapLiteral(e ast.MapLiteral) any {
	children := make([]Shape, 0, len(e.Entries)*2)
	for _, entry := range e.Entries {
		children = append(children, shapeInterpExpr(entry.Key), shapeInterpExpr(entry.Value))
	}
	return node("MapLiteral", children...)
}

func (interpShaper) VisitActionLiteral(e ast.ActionLiteral) any {
	children := append([]Shape{leaf("Params", paramNames(e.Params))}, shapeInterpStmts(e.Body)...)
	return node(fmt.Sprintf("ActionLiteral:%v", e.Async), children...)
}

func (interpShaper) VisitLambda(e ast.Lambda) any {
	return node("Lambda", leaf("Params", paramNames(e.Params)), shapeInterpExpr(e.Body))
}

func (interpShaper) VisitCall(e ast.Call) any {
	return node("Call", append([]Shape{shapeInterpExpr(e.Callee)}, shapeInterpExprs(e.Args)...)...)
}

func (interpShaper) VisitMethodCall(e ast.MethodCall) any {
	return node("MethodCall:"+e.Name, append([]Shape{shapeInterpExpr(e.Receiver)}, shapeInterpExprs(e.Args)...)...)
}

func (interpShaper) VisitPropertyAccess(e ast.PropertyAccess) any {
	return node("PropertyAccess:"+e.Name, shapeInterpExpr(e.Receiver))
}

func (interpShaper) VisitIndex(e ast.Index) any {
	return node("Index", shapeInterpExpr(e.Receiver), shapeInterpExpr(e.Index))
}

func (interpShaper) VisitAssignment(e ast.Assignment) any {
	return node("Assignment", shapeInterpExpr(e.Target), shapeInterpExpr(e.Value))
}

func (interpShaper) VisitPrefix(e ast.Prefix) any {
	return node("Prefix:"+string(e.Operator.TokenType), shapeInterpExpr(e.Right))
}

func (interpShaper) VisitInfix(e ast.Infix) any {
	return node("Infix:"+string(e.Operator.TokenType), shapeInterpExpr(e.Left), shapeInterpExpr(e.Right))
}

func (interpShaper) VisitIfExpr(e ast.IfExpr) any {
	return node("IfExpr", shapeInterpExpr(e.Condition), shapeInterpExpr(e.Then), shapeInterpExpr(e.Else))
}

func (interpShaper) VisitAwait(e ast.Await) any {
	return node("Await", shapeInterpExpr(e.Value))
}

func (interpShaper) VisitEmbeddedLiteral(e ast.EmbeddedLiteral) any {
	return leaf("EmbeddedLiteral:"+e.Language, e.Text)
}

func (interpShaper) VisitLet(s ast.Let) any {
	return node("Let:"+s.Name, shapeInterpExpr(s.Initializer))
}

func (interpShaper) VisitReturn(s ast.Return) any {
	return node("Return", shapeInterpExpr(s.Value))
}

func (interpShaper) VisitExpressionStatement(s ast.ExpressionStatement) any {
	return node("ExpressionStatement", shapeInterpExpr(s.Expression))
}

func (interpShaper) VisitBlock(s ast.Block) any { return shapeInterpBlock(s) }

func (interpShaper) VisitPrint(s ast.Print) any {
	return node("Print", shapeInterpExpr(s.Expression))
}

func (interpShaper) VisitForEach(s ast.ForEach) any {
	return node("ForEach:"+s.Var, shapeInterpExpr(s.Iterable), shapeInterpBlock(s.Body))
}

func (interpShaper) VisitIf(s ast.If) any {
	children := []Shape{shapeInterpExpr(s.Condition), shapeInterpBlock(s.Then)}
	if s.Else != nil {
		children = append(children, s.Else.Accept(interpShaper{}).(Shape))
	}
	return node("If", children...)
}

func (interpShaper) VisitWhile(s ast.While) any {
	return node("While", shapeInterpExpr(s.Condition), shapeInterpBlock(s.Body))
}

func (interpShaper) VisitTryCatch(s ast.TryCatch) any {
	return node("TryCatch:"+s.ErrVar, shapeInterpBlock(s.Body), shapeInterpBlock(s.Handler))
}

func (interpShaper) VisitAction(s ast.Action) any {
	children := append([]Shape{leaf("Params", paramNames(s.Params))}, shapeInterpStmts(s.Body)...)
	return node(fmt.Sprintf("Action:%s:%v", s.Name, s.Async), children...)
}

func (interpShaper) VisitEvent(s ast.Event) any {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.Name + ":" + f.Type
	}
	return leaf("Event:"+s.Name, strings.Join(fields, ","))
}

func (interpShaper) VisitEmit(s ast.Emit) any {
	return node("Emit:"+s.Name, shapeInterpExpr(s.Payload))
}

func (interpShaper) VisitEnum(s ast.Enum) any {
	return leaf("Enum:"+s.Name, strings.Join(s.Variants, ","))
}

func (interpShaper) VisitProtocol(s ast.Protocol) any {
	return leaf("Protocol:"+s.Name, strings.Join(interpSignatureNames(s.Signatures), ","))
}

func (interpShaper) VisitContract(s ast.Contract) any {
	children := make([]Shape, 0, len(s.Actions))
	for _, a := range s.Actions {
		children = append(children, a.Accept(interpShaper{}).(Shape))
	}
	storage := append([]string(nil), s.Storage...)
	sort.Strings(storage)
	return node(fmt.Sprintf("Contract:%s:%s:%s", s.Name, s.Protocol, strings.Join(storage, ",")), children...)
}

func (interpShaper) VisitExternalDeclaration(s ast.ExternalDeclaration) any {
	return leaf("ExternalDeclaration:"+s.Name, s.Source)
}

func (interpShaper) VisitExport(s ast.Export) any {
	return node("Export", s.Inner.Accept(interpShaper{}).(Shape))
}

func (interpShaper) VisitDebug(s ast.Debug) any {
	return node("Debug:"+s.Message, shapeInterpExpr(s.Value))
}

func (interpShaper) VisitUse(s ast.Use) any {
	return leaf("Use:"+s.Module, s.Alias)
}

func (interpShaper) VisitExactly(s ast.Exactly) any {
	return leaf("Exactly", s.Raw)
}

// VisitImport, VisitScreenDef, VisitComponentDef and VisitThemeDef have
// no cast counterpart: the renderer declarations they shape are kept as
// their own ast nodes by the tolerant parser, lowered to renderer calls
// only by the evaluator (evaluator/render.go), and never reach the
// production parser's grammar (§6.2), so there is
// nothing on the compiled side for an equivalence test to compare them
// against. They're still implemented here since interpShaper must
// satisfy the full ast.StmtVisitor interface.
func (interpShaper) VisitImport(s ast.Import) any {
	return leaf("Import:"+s.Name, s.Source)
}

func (interpShaper) VisitScreenDef(s ast.ScreenDef) any {
	return node("ScreenDef:"+s.Name, shapeInterpStmts(s.Body)...)
}

func (interpShaper) VisitComponentDef(s ast.ComponentDef) any {
	children := append([]Shape{leaf("Params", strings.Join(s.Params, ","))}, shapeInterpStmts(s.Body)...)
	return node("ComponentDef:"+s.Name, children...)
}

func (interpShaper) VisitThemeDef(s ast.ThemeDef) any {
	return node("ThemeDef:"+s.Name, shapeInterpExpr(s.Props).Children...)
}

func interpSignatureNames(sigs []ast.ProtocolSignature) []string {
	out := make([]string, len(sigs))
	for i, sig := range sigs {
		out[i] = fmt.Sprintf("%s/%d", sig.Name, sig.Arity)
	}
	return out
}

// ShapeOfCompiled flattens a compiler-AST program, the same way
// ShapeOfInterp does for the interpreter AST.
func ShapeOfCompiled(prog cast.Program) Shape {
	return node("Program", shapeCompiledStmts(prog.Statements)...)
}

func shapeCompiledStmts(stmts []cast.Stmt) []Shape {
	out := make([]Shape, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s.Accept(compiledShaper{}).(Shape))
	}
	return out
}

func shapeCompiledExprs(exprs []cast.Expression) []Shape {
	out := make([]Shape, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, shapeCompiledExpr(e))
	}
	return out
}

func shapeCompiledExpr(e cast.Expression) Shape {
	if e == nil {
		return leaf("nil", "")
	}
	return e.Accept(compiledShaper{}).(Shape)
}

func shapeCompiledBlock(b cast.Block) Shape {
	return node("Block", shapeCompiledStmts(b.Statements)...)
}

type compiledShaper struct{}

func (compiledShaper) VisitIdentifier(e cast.Identifier) any { return leaf("Identifier", e.Name.Lexeme) }
func (compiledShaper) VisitInteger(e cast.Integer) any       { return leaf("Integer", fmt.Sprint(e.Value)) }
func (compiledShaper) VisitFloat(e cast.Float) any           { return leaf("Float", fmt.Sprint(e.Value)) }
func (compiledShaper) VisitString(e cast.String) any         { return leaf("String", e.Value) }
func (compiledShaper) VisitBool(e cast.Bool) any             { return leaf("Bool", fmt.Sprint(e.Value)) }
func (compiledShaper) VisitNull(cast.Null) any               { return leaf("Null", "") }

func (compiledShaper) VisitListLiteral(e cast.ListLiteral) any {
	return node("ListLiteral", shapeCompiledExprs(e.Elements)...)
}

func (compiledShaper) VisitMapLiteral(e cast.MapLiteral) any {
	children := make([]Shape, 0, len(e.Entries)*2)
	for _, entry := range e.Entries {
		children = append(children, shapeCompiledExpr(entry.Key), shapeCompiledExpr(entry.Value))
	}
	return node("MapLiteral", children...)
}

func (compiledShaper) VisitActionLiteral(e cast.ActionLiteral) any {
	children := append([]Shape{leaf("Params", paramNames(e.Params))}, shapeCompiledStmts(e.Body)...)
	return node(fmt.Sprintf("ActionLiteral:%v", e.Async), children...)
}

func (compiledShaper) VisitLambda(e cast.Lambda) any {
	return node("Lambda", leaf("Params", paramNames(e.Params)), shapeCompiledExpr(e.Body))
}

func (compiledShaper) VisitCall(e cast.Call) any {
	return node("Call", append([]Shape{shapeCompiledExpr(e.Callee)}, shapeCompiledExprs(e.Args)...)...)
}

func (compiledShaper) VisitMethodCall(e cast.MethodCall) any {
	return node("MethodCall:"+e.Name, append([]Shape{shapeCompiledExpr(e.Receiver)}, shapeCompiledExprs(e.Args)...)...)
}

func (compiledShaper) VisitPropertyAccess(e cast.PropertyAccess) any {
	return node("PropertyAccess:"+e.Name, shapeCompiledExpr(e.Receiver))
}

func (compiledShaper) VisitIndex(e cast.Index) any {
	return node("Index", shapeCompiledExpr(e.Receiver), shapeCompiledExpr(e.Index))
}

func (compiledShaper) VisitAssignment(e cast.Assignment) any {
	return node("Assignment", shapeCompiledExpr(e.Target), shapeCompiledExpr(e.Value))
}

func (compiledShaper) VisitPrefix(e cast.Prefix) any {
	return node("Prefix:"+string(e.Operator.TokenType), shapeCompiledExpr(e.Right))
}

func (compiledShaper) VisitInfix(e cast.Infix) any {
	return node("Infix:"+string(e.Operator.TokenType), shapeCompiledExpr(e.Left), shapeCompiledExpr(e.Right))
}

func (compiledShaper) VisitIfExpr(e cast.IfExpr) any {
	return node("IfExpr", shapeCompiledExpr(e.Condition), shapeCompiledExpr(e.Then), shapeCompiledExpr(e.Else))
}

func (compiledShaper) VisitAwait(e cast.Await) any {
	return node("Await", shapeCompiledExpr(e.Value))
}

func (compiledShaper) VisitEmbeddedLiteral(e cast.EmbeddedLiteral) any {
	return leaf("EmbeddedLiteral:"+e.Language, e.Text)
}

func (compiledShaper) VisitLet(s cast.Let) any {
	return node("Let:"+s.Name, shapeCompiledExpr(s.Initializer))
}

func (compiledShaper) VisitReturn(s cast.Return) any {
	return node("Return", shapeCompiledExpr(s.Value))
}

func (compiledShaper) VisitExpressionStatement(s cast.ExpressionStatement) any {
	return node("ExpressionStatement", shapeCompiledExpr(s.Expression))
}

func (compiledShaper) VisitBlock(s cast.Block) any { return shapeCompiledBlock(s) }

func (compiledShaper) VisitPrint(s cast.Print) any {
	return node("Print", shapeCompiledExpr(s.Expression))
}

func (compiledShaper) VisitForEach(s cast.ForEach) any {
	return node("ForEach:"+s.Var, shapeCompiledExpr(s.Iterable), shapeCompiledBlock(s.Body))
}

func (compiledShaper) VisitIf(s cast.If) any {
	children := []Shape{shapeCompiledExpr(s.Condition), shapeCompiledBlock(s.Then)}
	if s.Else != nil {
		children = append(children, s.Else.Accept(compiledShaper{}).(Shape))
	}
	return node("If", children...)
}

func (compiledShaper) VisitWhile(s cast.While) any {
	return node("While", shapeCompiledExpr(s.Condition), shapeCompiledBlock(s.Body))
}

func (compiledShaper) VisitTryCatch(s cast.TryCatch) any {
	return node("TryCatch:"+s.ErrVar, shapeCompiledBlock(s.Body), shapeCompiledBlock(s.Handler))
}

func (compiledShaper) VisitAction(s cast.Action) any {
	children := append([]Shape{leaf("Params", paramNames(s.Params))}, shapeCompiledStmts(s.Body)...)
	return node(fmt.Sprintf("Action:%s:%v", s.Name, s.Async), children...)
}

func (compiledShaper) VisitEvent(s cast.Event) any {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.Name + ":" + f.Type
	}
	return leaf("Event:"+s.Name, strings.Join(fields, ","))
}

func (compiledShaper) VisitEmit(s cast.Emit) any {
	return node("Emit:"+s.Name, shapeCompiledExpr(s.Payload))
}

func (compiledShaper) VisitEnum(s cast.Enum) any {
	return leaf("Enum:"+s.Name, strings.Join(s.Variants, ","))
}

func (compiledShaper) VisitProtocol(s cast.Protocol) any {
	return leaf("Protocol:"+s.Name, strings.Join(compiledSignatureNames(s.Signatures), ","))
}

func (compiledShaper) VisitContract(s cast.Contract) any {
	children := make([]Shape, 0, len(s.Actions))
	for _, a := range s.Actions {
		children = append(children, a.Accept(compiledShaper{}).(Shape))
	}
	storage := append([]string(nil), s.Storage...)
	sort.Strings(storage)
	return node(fmt.Sprintf("Contract:%s:%s:%s", s.Name, s.Protocol, strings.Join(storage, ",")), children...)
}

func (compiledShaper) VisitExternalDeclaration(s cast.ExternalDeclaration) any {
	return leaf("ExternalDeclaration:"+s.Name, s.Source)
}

func (compiledShaper) VisitExport(s cast.Export) any {
	return node("Export", s.Inner.Accept(compiledShaper{}).(Shape))
}

func (compiledShaper) VisitDebug(s cast.Debug) any {
	return node("Debug:"+s.Message, shapeCompiledExpr(s.Value))
}

func (compiledShaper) VisitUse(s cast.Use) any {
	return leaf("Use:"+s.Module, s.Alias)
}

func (compiledShaper) VisitExactly(s cast.Exactly) any {
	return leaf("Exactly", s.Raw)
}

func compiledSignatureNames(sigs []cast.ProtocolSignature) []string {
	out := make([]string, len(sigs))
	for i, sig := range sigs {
		out[i] = fmt.Sprintf("%s/%d", sig.Name, sig.Arity)
	}
	return out
}
