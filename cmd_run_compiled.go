package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"zexus/compiler"
	"zexus/lexer"
	"zexus/parser"
	"zexus/renderer"
	"zexus/semantic"
	"zexus/vm"
)

// runCompiledCmd implements "runC" (spec §4.5/§4.6): the production
// parser into the semantic analyzer into the bytecode emitter into the
// VM. Compilation only proceeds once the analyzer's diagnostic list
// comes back empty, per semantic.Analyze's own contract.
type runCompiledCmd struct{}

func (*runCompiledCmd) Name() string { return "runC" }
func (*runCompiledCmd) Synopsis() string {
	return "Execute Zexus code from a source file with the compiled VM"
}
func (*runCompiledCmd) Usage() string {
	return `runC <file>:
  Execute Zexus code through the production parser, semantic analyzer,
  bytecode emitter and VM.
`
}
func (r *runCompiledCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
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
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	resolved, _, semDiags := semantic.Analyze(&prog)
	if len(semDiags) > 0 {
		for _, d := range semDiags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		return subcommands.ExitFailure
	}

	bc, err := compiler.New().Compile(resolved)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	machine := vm.New(renderer.Null{})
	if _, err := machine.Run(bc); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
