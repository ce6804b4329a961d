package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"zexus/compiler"
	"zexus/lexer"
	"zexus/parser"
	"zexus/semantic"
)

// emitBytecodeCmd is "emit": runs a source file through the production
// parser, semantic analyzer and emitter, then writes the resulting
// bytecode's disassembly (`<name>.dnic`) and/or hex-encoded raw bytes
// (`<name>.nic`) to disk, mirroring the teacher's own
// DiassembleBytecode/DumpBytecode file-naming convention (strip the
// source extension, reuse the stem).
type emitBytecodeCmd struct {
	disassemble  bool
	dumpBytecode bool
}

func (*emitBytecodeCmd) Name() string { return "emit" }
func (*emitBytecodeCmd) Synopsis() string {
	return "Emit the bytecode representation of a source file"
}
func (*emitBytecodeCmd) Usage() string {
	return `zexus emit <file>`
}

func (cmd *emitBytecodeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", true, "write a human-readable disassembly to <name>.dnic")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", true, "write the hex-encoded raw bytecode to <name>.nic")
}

func (cmd *emitBytecodeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	zexusFile := args[0]
	data, err := os.ReadFile(zexusFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	lex := lexer.New(string(data))
	tokens, lexDiags := lex.Scan()
	if len(lexDiags) > 0 {
		for _, d := range lexDiags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		return subcommands.ExitFailure
	}

	p := parser.Make(tokens)
	prog, err := p.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Parsing error:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	resolved, _, semDiags := semantic.Analyze(&prog)
	if len(semDiags) > 0 {
		fmt.Fprintf(os.Stderr, "💥 Semantic error:\n")
		for _, d := range semDiags {
			fmt.Fprintf(os.Stderr, "\t%s\n", d.String())
		}
		return subcommands.ExitFailure
	}

	bc, err := compiler.New().Compile(resolved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Compilation error:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	stem := zexusFile
	if i := strings.LastIndex(zexusFile, "."); i >= 0 {
		stem = zexusFile[:i]
	}

	if cmd.disassemble {
		out := compiler.Disassemble(bc.Instructions)
		if err := os.WriteFile(stem+".dnic", []byte(out), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Bytecode disassemble error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	if cmd.dumpBytecode {
		out := hex.EncodeToString(bc.Instructions)
		if err := os.WriteFile(stem+".nic", []byte(out), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Dump bytecode error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
