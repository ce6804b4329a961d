package semantic

import "sort"

// SymbolKind classifies how an Identifier resolves, per spec §4.5 step 2.
type SymbolKind int

const (
	Unresolved SymbolKind = iota
	Local
	Outer
	Global
	BuiltinSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case Local:
		return "local"
	case Outer:
		return "outer"
	case Global:
		return "global"
	case BuiltinSymbol:
		return "builtin"
	default:
		return "unresolved"
	}
}

// funcCtx is one Action/ActionLiteral/Lambda body's capture accumulator.
// Every name an inner scope resolves as Outer gets recorded here, on
// every funcCtx the resolution crosses on its way out to whichever
// scope actually defines it — not just the innermost one — so a
// doubly-nested closure correctly propagates the capture through its
// immediate parent, matching how invokeProto only ever binds a
// function's FreeNames from its *direct* caller's visible cells (see
// vm.go's STORE_FUNC/invokeProto: env is always a fresh child of
// globals, never nested under the defining closure's own env).
type funcCtx struct {
	async bool
	free  map[string]bool
}

func newFuncCtx(async bool) *funcCtx {
	return &funcCtx{async: async, free: map[string]bool{}}
}

// captures returns fc's free-variable set as a sorted slice, so the
// same program compiles to the same Captures list on every run.
func (fc *funcCtx) captures() []string {
	if len(fc.free) == 0 {
		return nil
	}
	out := make([]string, 0, len(fc.free))
	for name := range fc.free {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// scope is one nested lexical frame: one per Program, Block, and
// function body. isFunction marks the frames that bound a capture
// search (Action/ActionLiteral/Lambda), each carrying its own funcCtx.
type scope struct {
	parent     *scope
	names      map[string]bool
	isFunction bool
	fn         *funcCtx
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]bool{}}
}

func newFunctionScope(parent *scope, fn *funcCtx) *scope {
	s := newScope(parent)
	s.isFunction = true
	s.fn = fn
	return s
}

func (s *scope) define(name string) {
	s.names[name] = true
}

// resolve classifies name relative to s. When it returns Outer, crossed
// holds every funcCtx the search passed through — excluding the one
// (if any) whose own frame defines name — in innermost-first order.
func (s *scope) resolve(name string) (SymbolKind, []*funcCtx) {
	var crossed []*funcCtx
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			if cur.parent == nil {
				return Global, nil
			}
			if len(crossed) == 0 {
				return Local, nil
			}
			return Outer, crossed
		}
		if cur.isFunction {
			crossed = append(crossed, cur.fn)
		}
	}
	return Unresolved, nil
}

// enclosingFunction returns the funcCtx of the nearest function frame
// (for await/return validation), or nil at top level.
func (s *scope) enclosingFunction() *funcCtx {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.isFunction {
			return cur.fn
		}
	}
	return nil
}

// atTopLevel reports whether s is the program's root scope itself
// (used to validate that Export only wraps a top-level binding).
func (s *scope) atTopLevel() bool {
	return s.parent == nil
}
