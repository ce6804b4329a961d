package object

// CompiledFunction is the VM's counterpart to Action: a closure over
// compiled bytecode rather than over an ast.Stmt body. It only ever
// holds an index into the owning VM's function pool — never a pointer
// back into package compiler — so object stays free of any dependency
// on compiler (which itself depends on object for constants).
type CompiledFunction struct {
	Name   string
	Index  int
	Params []string
	Free   []*Cell
	Async  bool
}

func (CompiledFunction) Kind() Kind { return CompiledFunctionKind }
func (f CompiledFunction) String() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return "<compiled action " + name + ">"
}
