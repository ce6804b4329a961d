// Package renderer defines the single external collaborator the
// evaluator and VM delegate to for every UI-shaped built-in (screens,
// components, themes, canvas drawing, per spec §6.2/§9). The language
// core never inspects tag semantics; it only ever calls Op and passes
// the result straight through.
package renderer

import "zexus/object"

// Renderer is the calling convention the core shares with the terminal
// UI subsystem. That subsystem itself is out of scope (spec §1).
type Renderer interface {
	Op(tag string, args []object.Value) (object.Value, error)
}

// Null is a no-op Renderer: every call returns object.NullValue. Zexus
// ships it so the core is fully testable without any terminal I/O.
type Null struct{}

func (Null) Op(tag string, args []object.Value) (object.Value, error) {
	return object.NullValue, nil
}
