package object

import "zexus/ast"

// Action is a user-defined callable: a captured environment (lexical
// scope at the point of definition), a parameter list, and a body. A
// Lambda is represented as an Action whose body is a single expression
// rather than a statement list — spec's "Lambda (expression-bodied
// Action)" — rather than as a wholly separate Go type, since the two
// share every other field and the evaluator/VM must treat them
// identically at call time.
type Action struct {
	Name       string
	Params     []string
	Body       []ast.Stmt
	ExprBody   ast.Expression // set instead of Body for a Lambda
	Env        *Environment
	Async      bool
}

func (Action) Kind() Kind { return ActionKind }
func (a Action) String() string {
	name := a.Name
	if name == "" {
		name = "anonymous"
	}
	return "<action " + name + ">"
}

func (a Action) IsLambda() bool { return a.ExprBody != nil }
