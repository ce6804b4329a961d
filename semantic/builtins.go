package semantic

import "zexus/builtins"

// builtinNames is the set of identifiers the resolver treats as
// BuiltinSymbol rather than Unresolved. Rather than hand-duplicate the
// registry's name list (and risk it drifting out of sync), it is built
// once by calling builtins.New with a zero-value Deps: registration
// only records each name against its Fn closure, never invokes one, so
// the nil Scheduler/Renderer/Events inside that Deps are never
// dereferenced.
var builtinNames = collectBuiltinNames()

func collectBuiltinNames() map[string]bool {
	names := map[string]bool{}
	for name := range builtins.New(builtins.Deps{}) {
		names[name] = true
	}
	return names
}
