package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"zexus/evaluator"
	"zexus/lexer"
	"zexus/renderer"
	"zexus/tparser"
)

// runCmd implements the tree-walking "run" command (spec §4.4): lexer
// into the tolerant parser into the evaluator, no compilation step.
type runCmd struct{}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string {
	return "Execute Zexus code from a source file with the tree-walking evaluator"
}
func (*runCmd) Usage() string {
	return `run <file>:
  Execute Zexus code through the tolerant parser and tree-walking evaluator.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	for _, d := range lexDiags {
		fmt.Fprintln(os.Stderr, d.String())
	}

	prog, diags := tparser.Parse(tokens, globalConfig)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}

	ev := evaluator.New(renderer.Null{})
	if _, err := ev.Run(&prog); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
