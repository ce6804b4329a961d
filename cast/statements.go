// statements.go contains every compiler-AST statement node.
package cast

import "zexus/token"

type Let struct {
	Tok         token.Token
	Name        string
	Initializer Expression
}

func (s Let) Accept(v StmtVisitor) any { return v.VisitLet(s) }
func (s Let) Token() token.Token       { return s.Tok }

type Return struct {
	Tok   token.Token
	Value Expression
}

func (s Return) Accept(v StmtVisitor) any { return v.VisitReturn(s) }
func (s Return) Token() token.Token       { return s.Tok }

type ExpressionStatement struct {
	Expression Expression
}

func (s ExpressionStatement) Accept(v StmtVisitor) any { return v.VisitExpressionStatement(s) }
func (s ExpressionStatement) Token() token.Token       { return s.Expression.Token() }

type Block struct {
	Tok        token.Token
	Statements []Stmt
}

func (s Block) Accept(v StmtVisitor) any { return v.VisitBlock(s) }
func (s Block) Token() token.Token       { return s.Tok }

type Print struct {
	Tok        token.Token
	Expression Expression
}

func (s Print) Accept(v StmtVisitor) any { return v.VisitPrint(s) }
func (s Print) Token() token.Token       { return s.Tok }

type ForEach struct {
	Tok      token.Token
	Var      string
	Iterable Expression
	Body     Block
}

func (s ForEach) Accept(v StmtVisitor) any { return v.VisitForEach(s) }
func (s ForEach) Token() token.Token       { return s.Tok }

type If struct {
	Tok       token.Token
	Condition Expression
	Then      Block
	Else      Stmt
}

func (s If) Accept(v StmtVisitor) any { return v.VisitIf(s) }
func (s If) Token() token.Token       { return s.Tok }

type While struct {
	Tok       token.Token
	Condition Expression
	Body      Block
}

func (s While) Accept(v StmtVisitor) any { return v.VisitWhile(s) }
func (s While) Token() token.Token       { return s.Tok }

type TryCatch struct {
	Tok     token.Token
	Body    Block
	ErrVar  string
	Handler Block
}

func (s TryCatch) Accept(v StmtVisitor) any { return v.VisitTryCatch(s) }
func (s TryCatch) Token() token.Token       { return s.Tok }

// Action carries, once the semantic analyzer has run, its resolved free
// variables — the names an emitted closure must snapshot into cells.
type Action struct {
	Tok      token.Token
	Name     string
	Params   []token.Token
	Body     []Stmt
	Async    bool
	Captures []string
}

func (s Action) Accept(v StmtVisitor) any { return v.VisitAction(s) }
func (s Action) Token() token.Token       { return s.Tok }

type EventField struct {
	Name string
	Type string
}

type Event struct {
	Tok    token.Token
	Name   string
	Fields []EventField
}

func (s Event) Accept(v StmtVisitor) any { return v.VisitEvent(s) }
func (s Event) Token() token.Token       { return s.Tok }

type Emit struct {
	Tok     token.Token
	Name    string
	Payload MapLiteral
}

func (s Emit) Accept(v StmtVisitor) any { return v.VisitEmit(s) }
func (s Emit) Token() token.Token       { return s.Tok }

type Enum struct {
	Tok      token.Token
	Name     string
	Variants []string
}

func (s Enum) Accept(v StmtVisitor) any { return v.VisitEnum(s) }
func (s Enum) Token() token.Token       { return s.Tok }

type ProtocolSignature struct {
	Name  string
	Arity int
}

type Protocol struct {
	Tok        token.Token
	Name       string
	Signatures []ProtocolSignature
}

func (s Protocol) Accept(v StmtVisitor) any { return v.VisitProtocol(s) }
func (s Protocol) Token() token.Token       { return s.Tok }

type Contract struct {
	Tok      token.Token
	Name     string
	Protocol string
	Storage  []string
	Actions  []Action
}

func (s Contract) Accept(v StmtVisitor) any { return v.VisitContract(s) }
func (s Contract) Token() token.Token       { return s.Tok }

type ExternalDeclaration struct {
	Tok    token.Token
	Name   string
	Source string
}

func (s ExternalDeclaration) Accept(v StmtVisitor) any { return v.VisitExternalDeclaration(s) }
func (s ExternalDeclaration) Token() token.Token       { return s.Tok }

type Export struct {
	Tok   token.Token
	Inner Stmt
}

func (s Export) Accept(v StmtVisitor) any { return v.VisitExport(s) }
func (s Export) Token() token.Token       { return s.Tok }

type Debug struct {
	Tok     token.Token
	Message string
	Value   Expression
}

func (s Debug) Accept(v StmtVisitor) any { return v.VisitDebug(s) }
func (s Debug) Token() token.Token       { return s.Tok }

type Use struct {
	Tok    token.Token
	Module string
	Alias  string
}

func (s Use) Accept(v StmtVisitor) any { return v.VisitUse(s) }
func (s Use) Token() token.Token       { return s.Tok }

// Exactly mirrors ast.Exactly: parsed, never compiled. The semantic
// analyzer reports every one as a SyntaxError (see semantic.Analyzer).
type Exactly struct {
	Tok token.Token
	Raw string
}

func (s Exactly) Accept(v StmtVisitor) any { return v.VisitExactly(s) }
func (s Exactly) Token() token.Token       { return s.Tok }
