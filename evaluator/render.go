// render.go implements the four render-declarative statements — Import,
// ScreenDef, ComponentDef, ThemeDef — that exist solely in the
// interpreter AST (package ast's render_decls.go). Neither cast nor
// compiler.go has any equivalent node or Visit method for these: the
// tolerant parser's screen/component/theme sugar is evaluator-only,
// never reaching the compiled path at all, so there is no vm/compiler
// counterpart to mirror here the way every other Visit method in this
// package has one. Each lowers to the shared builtins registry's
// renderer-delegating tags (builtins.go) rather than calling
// renderer.Op directly, so a program that shadows one of these tag
// names still reaches whatever is actually bound, and so the compiled
// path could pick up the same nodes later without this package needing
// a second lowering convention.
package evaluator

import (
	"zexus/ast"
	"zexus/object"
)

// VisitImport binds Name to Source — a renderer asset reference, not a
// code module (ast.Import's own doc comment draws that line against
// Use) — the same "bind the source string, let misuse fail at the
// point of use" treatment VisitUse and VisitExternalDeclaration give
// module/external names, since asset loading itself is out of scope
// for the core.
func (f frame) VisitImport(s ast.Import) any {
	f.env.Set(s.Name, object.String{Value: s.Source})
	return nil
}

func (f frame) VisitScreenDef(s ast.ScreenDef) any {
	if _, err := f.callBuiltin("define_screen", object.String{Value: s.Name}); err != nil {
		panic(asObjectError(err))
	}
	for _, stmt := range s.Body {
		f.exec(stmt)
	}
	return nil
}

func (f frame) VisitComponentDef(s ast.ComponentDef) any {
	params := make([]object.Value, len(s.Params))
	for i, p := range s.Params {
		params[i] = object.String{Value: p}
	}
	if _, err := f.callBuiltin("define_component", object.String{Value: s.Name}, object.List{Elements: params}); err != nil {
		panic(asObjectError(err))
	}
	for _, stmt := range s.Body {
		f.exec(stmt)
	}
	return nil
}

func (f frame) VisitThemeDef(s ast.ThemeDef) any {
	props := f.eval(s.Props)
	if _, err := f.callBuiltin("set_theme", object.String{Value: s.Name}, props); err != nil {
		panic(asObjectError(err))
	}
	return nil
}
