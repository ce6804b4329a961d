// render_decls.go contains the declaration nodes that exist solely to be
// lowered into calls against the external renderer collaborator (§6.2).
// The core never interprets their bodies beyond collecting name/args.
package ast

// Import is `import name from "source"`, distinct from Use in that it
// names a renderer asset (a screen/component bundle) rather than a code
// module.
type Import struct {
	Base
	Name   string
	Source string
}

func (s Import) Accept(v StmtVisitor) any { return v.VisitImport(s) }

// ScreenDef is `screen Name { ... }`; its body is a list of statements
// evaluated to build up a renderer payload via add_to_screen calls.
type ScreenDef struct {
	Base
	Name string
	Body []Stmt
}

func (s ScreenDef) Accept(v StmtVisitor) any { return v.VisitScreenDef(s) }

type ComponentDef struct {
	Base
	Name   string
	Params []string
	Body   []Stmt
}

func (s ComponentDef) Accept(v StmtVisitor) any { return v.VisitComponentDef(s) }

// ThemeDef is `theme Name { ... }`, a map literal of style properties.
type ThemeDef struct {
	Base
	Name  string
	Props MapLiteral
}

func (s ThemeDef) Accept(v StmtVisitor) any { return v.VisitThemeDef(s) }
