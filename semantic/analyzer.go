// Package semantic implements the pre-pass of spec §4.5: a single walk
// over the compiler AST (package cast) that resolves every Identifier,
// records each Action/ActionLiteral/Lambda's captured free variables,
// validates the handful of context-sensitive rules the grammar alone
// can't enforce, and collects exports/events/enums into a program
// header. It sits strictly between the production parser and the
// bytecode emitter: `cmd/zexus` runs it on every `cast.Program` and
// only hands the (possibly rewritten) tree to `compiler.Emitter` when
// its diagnostic list comes back empty, matching spec §4.5's "errors
// accumulate; emission proceeds only if the error list is empty".
//
// The teacher has no equivalent pass at all — its `compiler/
// ast_compiler.go` folded a thin version of this (its own `locals`/
// `resolveLocal`/`resolveGlobal`) directly into bytecode emission, with
// a TODO noting the resolution logic ought to be factored out on its
// own. This package is that factoring, generalized to the full
// local/outer/global/builtin classification and free-variable capture
// analysis spec.md actually asks for.
package semantic

import (
	"fmt"

	"zexus/cast"
	"zexus/diag"
)

// EventDescriptor and EnumDescriptor are the program-header entries
// spec §4.5 step 6 asks the analyzer to collect, independent of (and
// consulted before) the compiler's own identical prescan — the two
// exist at different layers: this one gates whether compilation is
// attempted at all, the compiler's is what the emitted Bytecode
// actually carries.
type EventDescriptor struct {
	Name   string
	Fields []string
}

type EnumDescriptor struct {
	Name     string
	Variants []string
}

// Result is everything the analyzer learned about a program beyond the
// rewritten tree itself.
type Result struct {
	Exports []string
	Events  []EventDescriptor
	Enums   []EnumDescriptor
}

// Analyzer carries the mutable state of one Analyze call. It is not
// meant to be reused across programs.
type Analyzer struct {
	scope *scope
	diags []diag.Diagnostic

	events    map[string]EventDescriptor
	enums     map[string]EnumDescriptor
	protocols map[string][]cast.ProtocolSignature
	contracts map[string]bool

	exports []string
}

// Analyze resolves prog, returning the rewritten tree (Action/
// ActionLiteral/Lambda nodes now carry their resolved Captures),
// everything collected into Result, and every diagnostic raised along
// the way. The caller must not proceed to compilation unless the
// diagnostic slice is empty.
func Analyze(prog *cast.Program) (*cast.Program, Result, []diag.Diagnostic) {
	a := &Analyzer{
		events:    map[string]EventDescriptor{},
		enums:     map[string]EnumDescriptor{},
		protocols: map[string][]cast.ProtocolSignature{},
		contracts: map[string]bool{},
	}
	a.scope = newScope(nil)

	a.prescan(prog.Statements)

	rewritten := make([]cast.Stmt, len(prog.Statements))
	for i, s := range prog.Statements {
		rewritten[i] = a.resolveStmt(s)
	}

	result := Result{Exports: a.exports}
	for _, ev := range a.events {
		result.Events = append(result.Events, ev)
	}
	for _, en := range a.enums {
		result.Enums = append(result.Enums, en)
	}

	return &cast.Program{Statements: rewritten}, result, a.diags
}

// prescan registers every top-level binding name — Let, Action, Enum,
// Event, Protocol, Contract, ExternalDeclaration, Use alias, and the
// inner statement of an Export — before any statement body is
// resolved. This is what lets one top-level binding reference another
// declared later in the file (mutual recursion between actions being
// the main case), mirroring compiler.go's own prescanDeclarations —
// and, like that prescan, deliberately narrow to top level only; a
// statement nested in a block is visible to what follows it in the
// same block (ordinary sequential scoping) and, for Action
// declarations specifically, to its own body (self-recursion), via
// the define-before-descend step in resolveAction.
func (a *Analyzer) prescan(stmts []cast.Stmt) {
	for _, s := range stmts {
		a.prescanOne(s)
	}
}

func (a *Analyzer) prescanOne(s cast.Stmt) {
	switch decl := s.(type) {
	case cast.Let:
		a.scope.define(decl.Name)
	case cast.Action:
		a.scope.define(decl.Name)
	case cast.Enum:
		a.scope.define(decl.Name)
		a.enums[decl.Name] = EnumDescriptor{Name: decl.Name, Variants: decl.Variants}
	case cast.Event:
		a.scope.define(decl.Name)
		fields := make([]string, len(decl.Fields))
		for i, f := range decl.Fields {
			fields[i] = f.Name
		}
		a.events[decl.Name] = EventDescriptor{Name: decl.Name, Fields: fields}
	case cast.Protocol:
		a.scope.define(decl.Name)
		a.protocols[decl.Name] = decl.Signatures
	case cast.Contract:
		// A contract's own name is defined so `ContractName.field`/
		// `ContractName.action(...)` resolves its receiver identifier
		// without a spurious Unresolved — there is no literal runtime
		// binding for the bare name itself (every member lives under a
		// dot-joined global, per compiler.go's VisitContract), but
		// that distinction is the emitter's concern, not this pass's.
		a.scope.define(decl.Name)
		a.contracts[decl.Name] = true
	case cast.ExternalDeclaration:
		a.scope.define(decl.Name)
	case cast.Use:
		if decl.Alias != "" {
			a.scope.define(decl.Alias)
		} else {
			a.scope.define(decl.Module)
		}
	case cast.Export:
		a.prescanOne(decl.Inner)
	}
}

func (a *Analyzer) add(d diag.Diagnostic) {
	a.diags = append(a.diags, d)
}

func (a *Analyzer) errorf(pos cast.Expression, format string, args ...any) {
	a.add(diag.New(diag.Semantic, fmt.Sprintf(format, args...), pos.Token().Pos))
}

func (a *Analyzer) errorAt(tok cast.Stmt, format string, args ...any) {
	a.add(diag.New(diag.Semantic, fmt.Sprintf(format, args...), tok.Token().Pos))
}
