package vm

import "fmt"

// RuntimeError signals a VM-internal inconsistency (a malformed
// bytecode stream, an unknown opcode) rather than a Zexus-level
// failure — those are always object.Error, which already satisfies Go's
// error interface and is what a Zexus `try`/`catch` actually binds.
type RuntimeError struct {
	Message string
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 RuntimeError: %s", e.Message)
}
