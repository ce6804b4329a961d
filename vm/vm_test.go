package vm

import (
	"testing"

	"zexus/compiler"
	"zexus/object"
	"zexus/renderer"
)

func runSnippet(t *testing.T, bc *compiler.Bytecode) object.Value {
	t.Helper()
	machine := New(renderer.Null{})
	result, err := machine.Run(bc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestArithmeticAndReturn(t *testing.T) {
	// return 2 + 3
	bc := &compiler.Bytecode{
		Constants: []object.Value{object.NewInteger(2), object.NewInteger(3)},
		Instructions: joinInstructions(
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 0),
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 1),
			compiler.MakeInstruction(compiler.OP_BIN, int(compiler.BIN_ADD)),
			compiler.MakeInstruction(compiler.OP_RETURN),
		),
	}

	result := runSnippet(t, bc)
	got, ok := result.(object.Integer)
	if !ok || got.Value.Int64() != 5 {
		t.Fatalf("got %v, want Integer(5)", result)
	}
}

func TestStoreLoadAssign(t *testing.T) {
	// let x = 1; x = x + 1; return x
	names := []string{"x"}
	bc := &compiler.Bytecode{
		Constants: []object.Value{object.NewInteger(1)},
		Names:     names,
		Instructions: joinInstructions(
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 0),
			compiler.MakeInstruction(compiler.OP_STORE, 0),
			compiler.MakeInstruction(compiler.OP_LOAD, 0),
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 0),
			compiler.MakeInstruction(compiler.OP_BIN, int(compiler.BIN_ADD)),
			compiler.MakeInstruction(compiler.OP_ASSIGN, 0),
			compiler.MakeInstruction(compiler.OP_LOAD, 0),
			compiler.MakeInstruction(compiler.OP_RETURN),
		),
	}

	result := runSnippet(t, bc)
	got, ok := result.(object.Integer)
	if !ok || got.Value.Int64() != 2 {
		t.Fatalf("got %v, want Integer(2)", result)
	}
}

func TestJumpIfFalseSkipsBranch(t *testing.T) {
	// if false { return 1 } return 2
	loadCond := compiler.MakeInstruction(compiler.OP_LOAD_CONST, 1)
	falseJump := compiler.MakeInstruction(compiler.OP_JUMP_IF_FALSE, 0)
	thenBranch := joinInstructions(
		compiler.MakeInstruction(compiler.OP_LOAD_CONST, 0),
		compiler.MakeInstruction(compiler.OP_RETURN),
	)
	target := len(loadCond) + len(falseJump) + len(thenBranch)
	falseJump = compiler.MakeInstruction(compiler.OP_JUMP_IF_FALSE, target)

	bc := &compiler.Bytecode{
		Constants: []object.Value{object.NewInteger(1), object.False, object.NewInteger(2)},
		Instructions: joinInstructions(
			loadCond,
			falseJump,
			thenBranch,
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 2),
			compiler.MakeInstruction(compiler.OP_RETURN),
		),
	}

	result := runSnippet(t, bc)
	got, ok := result.(object.Integer)
	if !ok || got.Value.Int64() != 2 {
		t.Fatalf("got %v, want Integer(2)", result)
	}
}

func TestCallFuncConst(t *testing.T) {
	// (action(a, b) { return a + b })(2, 3)
	body := joinInstructions(
		compiler.MakeInstruction(compiler.OP_LOAD, 0),
		compiler.MakeInstruction(compiler.OP_LOAD, 1),
		compiler.MakeInstruction(compiler.OP_BIN, int(compiler.BIN_ADD)),
		compiler.MakeInstruction(compiler.OP_RETURN),
	)
	bc := &compiler.Bytecode{
		Constants: []object.Value{object.NewInteger(2), object.NewInteger(3)},
		Names:     []string{"a", "b"},
		Functions: []compiler.FunctionProto{{Name: "", Params: []string{"a", "b"}, Instructions: body}},
		Instructions: joinInstructions(
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 0),
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 1),
			compiler.MakeInstruction(compiler.OP_CALL_FUNC_CONST, 0, 2),
			compiler.MakeInstruction(compiler.OP_RETURN),
		),
	}

	result := runSnippet(t, bc)
	got, ok := result.(object.Integer)
	if !ok || got.Value.Int64() != 5 {
		t.Fatalf("got %v, want Integer(5)", result)
	}
}

func TestEmitDefaultsMissingDeclaredFieldsToNull(t *testing.T) {
	// event E { x }
	// let seen = 1
	// register_event("E", action(e) { seen = e.x })
	// emit E { }
	// return seen
	names := []string{"seen", "handler", "register_event", "e", "x"}
	const (
		seenIdx = iota
		handlerIdx
		registerEventIdx
		eIdx
		xIdx
	)

	handlerBody := joinInstructions(
		compiler.MakeInstruction(compiler.OP_LOAD, eIdx),
		compiler.MakeInstruction(compiler.OP_PROP, xIdx),
		compiler.MakeInstruction(compiler.OP_ASSIGN, seenIdx),
	)

	bc := &compiler.Bytecode{
		Constants: []object.Value{object.NewInteger(1), object.String{Value: "E"}},
		Names:     names,
		Events:    []compiler.EventProto{{Name: "E", Fields: []string{"x"}}},
		Functions: []compiler.FunctionProto{{Name: "", Params: []string{"e"}, Instructions: handlerBody}},
		Instructions: joinInstructions(
			compiler.MakeInstruction(compiler.OP_REGISTER_EVENT, 0),
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 0),
			compiler.MakeInstruction(compiler.OP_STORE, seenIdx),
			compiler.MakeInstruction(compiler.OP_STORE_FUNC, handlerIdx, 0),
			compiler.MakeInstruction(compiler.OP_LOAD_CONST, 1),
			compiler.MakeInstruction(compiler.OP_LOAD, handlerIdx),
			compiler.MakeInstruction(compiler.OP_CALL_NAME, registerEventIdx, 2),
			compiler.MakeInstruction(compiler.OP_POP),
			compiler.MakeInstruction(compiler.OP_MAKE_MAP, 0),
			compiler.MakeInstruction(compiler.OP_EMIT_EVENT, 0),
			compiler.MakeInstruction(compiler.OP_LOAD, seenIdx),
			compiler.MakeInstruction(compiler.OP_RETURN),
		),
	}

	result := runSnippet(t, bc)
	if _, ok := result.(object.Null); !ok {
		t.Fatalf("got %v, want Null — a declared field missing from the emit payload defaults to null", result)
	}
}

func TestTryCatchBindsError(t *testing.T) {
	// try { raise InternalError("boom") } catch err { return err }
	names := []string{"err"}
	tryPush := compiler.MakeInstruction(compiler.OP_TRY_PUSH, 0, 0)
	body := joinInstructions(
		compiler.MakeInstruction(compiler.OP_LOAD_CONST, 0),
		compiler.MakeInstruction(compiler.OP_RAISE),
	)
	afterTry := joinInstructions(
		compiler.MakeInstruction(compiler.OP_TRY_POP),
		compiler.MakeInstruction(compiler.OP_JUMP, 0),
	)
	handlerTarget := len(tryPush) + len(body) + len(afterTry)
	tryPush = compiler.MakeInstruction(compiler.OP_TRY_PUSH, handlerTarget, 0)

	handler := joinInstructions(
		compiler.MakeInstruction(compiler.OP_LOAD, 0),
		compiler.MakeInstruction(compiler.OP_RETURN),
	)
	endPos := len(tryPush) + len(body) + len(afterTry) + len(handler)
	afterTry = joinInstructions(
		compiler.MakeInstruction(compiler.OP_TRY_POP),
		compiler.MakeInstruction(compiler.OP_JUMP, endPos),
	)

	bc := &compiler.Bytecode{
		Constants: []object.Value{object.Error{ErrKind: object.InternalError, Message: "boom"}},
		Names:     names,
		Instructions: joinInstructions(
			tryPush,
			body,
			afterTry,
			handler,
		),
	}

	result := runSnippet(t, bc)
	got, ok := result.(object.Error)
	if !ok || got.Message != "boom" {
		t.Fatalf("got %v, want bound Error(boom)", result)
	}
}

func joinInstructions(parts ...[]byte) compiler.Instructions {
	var out compiler.Instructions
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
